package ecs_test

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	awsECS "github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/aws/smithy-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/orchestrator/ecs"
	"github.com/zhulik/tps/testhelpers"
	"github.com/zhulik/tps/testhelpers/mocks"
)

const clusterArn = "arn:aws:ecs:eu-central-1:123456789012:cluster/proxy-cluster"

var fleet = core.Fleet{ClusterID: clusterArn, Family: "proxy-def"}

func task(arn, status, eni string) types.Task {
	return types.Task{
		TaskArn:    aws.String(arn),
		LastStatus: aws.String(status),
		Containers: []types.Container{{LastStatus: aws.String(status)}},
		Attachments: []types.Attachment{
			{
				Type: aws.String("ElasticNetworkInterface"),
				Details: []types.KeyValuePair{
					{Name: aws.String("subnetId"), Value: aws.String("subnet-1")},
					{Name: aws.String("networkInterfaceId"), Value: aws.String(eni)},
				},
			},
		},
	}
}

var _ = Describe("Orchestrator", func() {
	var ecsAPI *mocks.MockECSAPI
	var ec2API *mocks.MockEC2API
	var orchestrator *ecs.Orchestrator

	BeforeEach(func() {
		ecsAPI = mocks.NewMockECSAPI(GinkgoT())
		ec2API = mocks.NewMockEC2API(GinkgoT())
		orchestrator = ecs.NewOrchestrator(ecsAPI, ec2API, testhelpers.NewLogger())
	})

	Describe("ResolveFleet", func() {
		Context("when the cluster is active", func() {
			It("returns its arn", func(ctx SpecContext) {
				ecsAPI.On("DescribeClusters", mock.Anything, mock.Anything).Return(&awsECS.DescribeClustersOutput{
					Clusters: []types.Cluster{{ClusterArn: aws.String(clusterArn), Status: aws.String("ACTIVE")}},
				}, nil).Once()

				Expect(orchestrator.ResolveFleet(ctx, "proxy-cluster", "proxy-def")).To(Equal(fleet))
			})
		})

		Context("when the cluster is missing", func() {
			It("returns ErrFleetNotFound", func(ctx SpecContext) {
				ecsAPI.On("DescribeClusters", mock.Anything, mock.Anything).Return(&awsECS.DescribeClustersOutput{
					Failures: []types.Failure{{Arn: aws.String("proxy-cluster"), Reason: aws.String("MISSING")}},
				}, nil).Once()

				_, err := orchestrator.ResolveFleet(ctx, "proxy-cluster", "proxy-def")

				Expect(err).To(MatchError(core.ErrFleetNotFound))
			})
		})

		Context("when access is denied", func() {
			It("returns ErrUnauthorized", func(ctx SpecContext) {
				ecsAPI.On("DescribeClusters", mock.Anything, mock.Anything).
					Return(nil, &smithy.GenericAPIError{Code: "AccessDeniedException"}).Once()

				_, err := orchestrator.ResolveFleet(ctx, "proxy-cluster", "proxy-def")

				Expect(err).To(MatchError(core.ErrUnauthorized))
			})
		})
	})

	Describe("ListTasks", func() {
		It("collects task arns across pages", func(ctx SpecContext) {
			ecsAPI.On("ListTasks", mock.Anything, mock.MatchedBy(func(in *awsECS.ListTasksInput) bool {
				return in.NextToken == nil && aws.ToString(in.Family) == "proxy-def"
			})).Return(&awsECS.ListTasksOutput{
				TaskArns:  []string{"task-1"},
				NextToken: aws.String("next"),
			}, nil).Once()
			ecsAPI.On("ListTasks", mock.Anything, mock.MatchedBy(func(in *awsECS.ListTasksInput) bool {
				return aws.ToString(in.NextToken) == "next"
			})).Return(&awsECS.ListTasksOutput{
				TaskArns: []string{"task-2"},
			}, nil).Once()

			Expect(orchestrator.ListTasks(ctx, fleet)).To(Equal([]string{"task-1", "task-2"}))
		})
	})

	Describe("DescribeTasks", func() {
		It("maps primary container status and network interface", func(ctx SpecContext) {
			ecsAPI.On("DescribeTasks", mock.Anything, mock.Anything).Return(&awsECS.DescribeTasksOutput{
				Tasks: []types.Task{
					task("task-1", "RUNNING", "eni-1"),
					task("task-2", "PROVISIONING", "eni-2"),
				},
				Failures: []types.Failure{{Arn: aws.String("task-3"), Reason: aws.String("MISSING")}},
			}, nil).Once()

			tasks, err := orchestrator.DescribeTasks(ctx, fleet, []string{"task-1", "task-2", "task-3"})

			Expect(err).ToNot(HaveOccurred())
			Expect(tasks).To(Equal([]core.WorkerTask{
				{ID: "task-1", Status: core.TaskStatusRunning, AttachmentID: "eni-1"},
				{ID: "task-2", Status: core.TaskStatusPending, AttachmentID: "eni-2"},
			}))
		})
	})

	Describe("DescribeAttachments", func() {
		It("returns public addresses of network interfaces", func(ctx SpecContext) {
			ec2API.On("DescribeNetworkInterfaces", mock.Anything, mock.Anything).
				Return(&ec2.DescribeNetworkInterfacesOutput{
					NetworkInterfaces: []ec2Types.NetworkInterface{
						{
							NetworkInterfaceId: aws.String("eni-1"),
							Association:        &ec2Types.NetworkInterfaceAssociation{PublicIp: aws.String("203.0.113.1")},
						},
						{NetworkInterfaceId: aws.String("eni-2")},
					},
				}, nil).Once()

			Expect(orchestrator.DescribeAttachments(ctx, []string{"eni-1", "eni-2"})).To(Equal([]core.Attachment{
				{ID: "eni-1", Address: "203.0.113.1"},
				{ID: "eni-2"},
			}))
		})
	})
})
