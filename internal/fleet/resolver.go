package fleet

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/core"
)

// Resolver turns ready tasks into routable endpoints.
type Resolver struct {
	orchestrator core.Orchestrator
	user         string

	logger logrus.FieldLogger
}

func NewResolver(orchestrator core.Orchestrator, user string, logger logrus.FieldLogger) *Resolver {
	return &Resolver{
		orchestrator: orchestrator,
		user:         user,
		logger:       logger.WithField("component", "fleet.Resolver"),
	}
}

// Resolve returns one endpoint per task, in task order. If any task can't be resolved, no endpoints
// are returned.
func (r Resolver) Resolve(ctx context.Context, tasks []core.WorkerTask) ([]core.Endpoint, error) {
	if len(tasks) == 0 {
		return nil, core.ErrNoEndpoints
	}

	for _, task := range tasks {
		if task.AttachmentID == "" {
			return nil, fmt.Errorf("%w: task %s has no network attachment", core.ErrEndpointResolution, task.ID)
		}
	}

	attachmentIDs := lo.Uniq(lo.Map(tasks, func(task core.WorkerTask, _ int) string { return task.AttachmentID }))

	attachments, err := r.orchestrator.DescribeAttachments(ctx, attachmentIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEndpointResolution, err)
	}

	addresses := lo.SliceToMap(attachments, func(attachment core.Attachment) (string, string) {
		return attachment.ID, attachment.Address
	})

	endpoints := make([]core.Endpoint, 0, len(tasks))
	seen := map[string]string{}

	for _, task := range tasks {
		address := addresses[task.AttachmentID]
		if address == "" {
			return nil, fmt.Errorf("%w: task %s (attachment %s) has no routable address",
				core.ErrEndpointResolution, task.ID, task.AttachmentID)
		}

		if other, ok := seen[address]; ok {
			return nil, fmt.Errorf("%w: tasks %s and %s share address %s", core.ErrDuplicateEndpoint, other, task.ID, address)
		}

		seen[address] = task.ID

		endpoints = append(endpoints, core.Endpoint{
			TaskID:  task.ID,
			Address: address,
			User:    r.user,
		})
	}

	r.logger.WithField("endpoints", len(endpoints)).Info("Endpoints resolved")

	return endpoints, nil
}
