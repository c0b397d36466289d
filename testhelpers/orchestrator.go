package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/zhulik/tps/internal/core"
)

// Snapshot is what FakeOrchestrator reports for one polling round. Listed defaults to the ids of Tasks,
// set it explicitly to simulate tasks disappearing between list and describe.
type Snapshot struct {
	Listed []string
	Tasks  []core.WorkerTask
}

// FakeOrchestrator replays snapshots, one per ListTasks call, repeating the last one.
type FakeOrchestrator struct {
	Fleet       core.Fleet
	Snapshots   []Snapshot
	Attachments map[string]string
	ResolveErr  error

	mu        sync.Mutex
	rounds    int
	current   Snapshot
	described int
}

func (o *FakeOrchestrator) Rounds() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.rounds
}

// AttachmentCalls returns the number of DescribeAttachments calls.
func (o *FakeOrchestrator) AttachmentCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.described
}

func (o *FakeOrchestrator) ResolveFleet(_ context.Context, cluster, family string) (core.Fleet, error) {
	if o.ResolveErr != nil {
		return core.Fleet{}, o.ResolveErr
	}

	if o.Fleet.ClusterID == "" {
		return core.Fleet{ClusterID: cluster, Family: family}, nil
	}

	return o.Fleet, nil
}

func (o *FakeOrchestrator) ListTasks(_ context.Context, _ core.Fleet) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.Snapshots) == 0 {
		o.rounds++

		return []string{}, nil
	}

	o.current = o.Snapshots[min(o.rounds, len(o.Snapshots)-1)]
	o.rounds++

	if o.current.Listed != nil {
		return o.current.Listed, nil
	}

	return lo.Map(o.current.Tasks, func(task core.WorkerTask, _ int) string { return task.ID }), nil
}

func (o *FakeOrchestrator) DescribeTasks(_ context.Context, _ core.Fleet, taskIDs []string) ([]core.WorkerTask, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return lo.Filter(o.current.Tasks, func(task core.WorkerTask, _ int) bool {
		return lo.Contains(taskIDs, task.ID)
	}), nil
}

func (o *FakeOrchestrator) DescribeAttachments(_ context.Context, attachmentIDs []string) ([]core.Attachment, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.described++

	result := []core.Attachment{}

	for _, id := range attachmentIDs {
		address, ok := o.Attachments[id]
		if !ok {
			continue
		}

		result = append(result, core.Attachment{ID: id, Address: address})
	}

	return result, nil
}

func (o *FakeOrchestrator) HealthCheck() error {
	return nil
}

func (o *FakeOrchestrator) Shutdown() error {
	return nil
}

// Task builds a worker task whose attachment id is derived from its id.
func Task(id string, status core.TaskStatus) core.WorkerTask {
	return core.WorkerTask{
		ID:           id,
		Status:       status,
		AttachmentID: fmt.Sprintf("eni-%s", id),
	}
}
