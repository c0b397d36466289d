package ecs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	awsECS "github.com/aws/aws-sdk-go-v2/service/ecs"
)

// ECSAPI is the subset of the ECS client the orchestrator uses.
type ECSAPI interface {
	DescribeClusters(ctx context.Context, params *awsECS.DescribeClustersInput, optFns ...func(*awsECS.Options)) (*awsECS.DescribeClustersOutput, error) //nolint:lll
	ListTasks(ctx context.Context, params *awsECS.ListTasksInput, optFns ...func(*awsECS.Options)) (*awsECS.ListTasksOutput, error)                      //nolint:lll
	DescribeTasks(ctx context.Context, params *awsECS.DescribeTasksInput, optFns ...func(*awsECS.Options)) (*awsECS.DescribeTasksOutput, error)          //nolint:lll
}

// EC2API is the subset of the EC2 client the orchestrator uses.
type EC2API interface {
	DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) //nolint:lll
}
