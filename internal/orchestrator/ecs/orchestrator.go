package ecs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	awsECS "github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/awsconfig"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/pkg/iter"
)

const (
	describeTasksBatch   = 100
	clusterStatusActive  = "ACTIVE"
	networkInterfaceName = "networkInterfaceId"
)

// Orchestrator reads fleet state from ECS and resolves task ENIs to public addresses through EC2.
type Orchestrator struct {
	ecs ECSAPI
	ec2 EC2API

	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Orchestrator, error) {
	cfg := do.MustInvoke[aws.Config](injector)

	return NewOrchestrator(
		awsECS.NewFromConfig(cfg),
		ec2.NewFromConfig(cfg),
		do.MustInvoke[logrus.FieldLogger](injector),
	), nil
}

func NewOrchestrator(ecsAPI ECSAPI, ec2API EC2API, logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		ecs:    ecsAPI,
		ec2:    ec2API,
		logger: logger.WithField("component", "orchestrator.ecs.Orchestrator"),
	}
}

func (o Orchestrator) ResolveFleet(ctx context.Context, cluster, family string) (core.Fleet, error) {
	out, err := o.ecs.DescribeClusters(ctx, &awsECS.DescribeClustersInput{
		Clusters: []string{cluster},
	})
	if err != nil {
		return core.Fleet{}, fmt.Errorf("failed to describe cluster: %w", awsconfig.Classify(err, core.ErrOrchestrator))
	}

	found, ok := lo.Find(out.Clusters, func(c types.Cluster) bool {
		return aws.ToString(c.Status) == clusterStatusActive
	})
	if !ok {
		return core.Fleet{}, fmt.Errorf("%w: cluster %s", core.ErrFleetNotFound, cluster)
	}

	o.logger.WithField("cluster", aws.ToString(found.ClusterArn)).Debug("Cluster resolved")

	return core.Fleet{
		ClusterID: aws.ToString(found.ClusterArn),
		Family:    family,
	}, nil
}

func (o Orchestrator) ListTasks(ctx context.Context, fleet core.Fleet) ([]string, error) {
	paginator := awsECS.NewListTasksPaginator(o.ecs, &awsECS.ListTasksInput{
		Cluster: aws.String(fleet.ClusterID),
		Family:  aws.String(fleet.Family),
	})

	arns := []string{}

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", awsconfig.Classify(err, core.ErrOrchestrator))
		}

		arns = append(arns, page.TaskArns...)
	}

	return arns, nil
}

// DescribeTasks describes tasks in batches, tasks reported as failures (usually MISSING) are omitted.
func (o Orchestrator) DescribeTasks(ctx context.Context, fleet core.Fleet, taskIDs []string) ([]core.WorkerTask, error) {
	return iter.FlatMapErr(lo.Chunk(taskIDs, describeTasksBatch), func(batch []string) ([]core.WorkerTask, error) {
		out, err := o.ecs.DescribeTasks(ctx, &awsECS.DescribeTasksInput{
			Cluster: aws.String(fleet.ClusterID),
			Tasks:   batch,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe tasks: %w", awsconfig.Classify(err, core.ErrOrchestrator))
		}

		for _, failure := range out.Failures {
			o.logger.WithFields(logrus.Fields{
				"task":   aws.ToString(failure.Arn),
				"reason": aws.ToString(failure.Reason),
			}).Debug("Task could not be described")
		}

		return lo.Map(out.Tasks, func(task types.Task, _ int) core.WorkerTask {
			return core.WorkerTask{
				ID:           aws.ToString(task.TaskArn),
				Status:       taskStatus(task),
				AttachmentID: networkInterfaceID(task),
			}
		}), nil
	})
}

// DescribeAttachments looks interfaces up by filter so that deleted interfaces are omitted instead of
// failing the whole call.
func (o Orchestrator) DescribeAttachments(ctx context.Context, attachmentIDs []string) ([]core.Attachment, error) {
	if len(attachmentIDs) == 0 {
		return []core.Attachment{}, nil
	}

	paginator := ec2.NewDescribeNetworkInterfacesPaginator(o.ec2, &ec2.DescribeNetworkInterfacesInput{
		Filters: []ec2Types.Filter{
			{
				Name:   aws.String("network-interface-id"),
				Values: attachmentIDs,
			},
		},
	})

	result := []core.Attachment{}

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe network interfaces: %w",
				awsconfig.Classify(err, core.ErrOrchestrator))
		}

		result = append(result, lo.Map(page.NetworkInterfaces, func(eni ec2Types.NetworkInterface, _ int) core.Attachment {
			attachment := core.Attachment{ID: aws.ToString(eni.NetworkInterfaceId)}

			if eni.Association != nil {
				attachment.Address = aws.ToString(eni.Association.PublicIp)
			}

			return attachment
		})...)
	}

	return result, nil
}

func (o Orchestrator) HealthCheck() error {
	return nil
}

func (o Orchestrator) Shutdown() error {
	return nil
}

// taskStatus uses the status of the task's primary container, falling back to the task status.
func taskStatus(task types.Task) core.TaskStatus {
	status := aws.ToString(task.LastStatus)
	if len(task.Containers) > 0 {
		status = aws.ToString(task.Containers[0].LastStatus)
	}

	switch status {
	case "RUNNING":
		return core.TaskStatusRunning
	case "DEACTIVATING", "STOPPING", "DEPROVISIONING", "STOPPED", "DELETED":
		return core.TaskStatusStopped
	default:
		return core.TaskStatusPending
	}
}

func networkInterfaceID(task types.Task) string {
	for _, attachment := range task.Attachments {
		for _, detail := range attachment.Details {
			if aws.ToString(detail.Name) == networkInterfaceName {
				return aws.ToString(detail.Value)
			}
		}
	}

	return ""
}
