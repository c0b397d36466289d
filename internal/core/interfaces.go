package core

import (
	"context"
	"time"

	"github.com/samber/do"
)

type ServiceDependency interface {
	do.Healthcheckable
	do.Shutdownable
}

// Message is a demand signal as received from a SignalChannel. Receipt identifies this particular
// delivery, operations on the message are only valid while the receipt is held.
type Message interface {
	ID() string
	DedupKey() string
	Body() []byte
	Receipt() string
}

// SignalChannel is an at-least-once message channel with retention and visibility hold semantics.
type SignalChannel interface {
	ServiceDependency

	Send(ctx context.Context, body []byte, dedupKey, groupKey string) (string, error)
	Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]Message, error)
	// ExtendVisibility keeps msg hidden from other consumers for d. d == 0 makes it visible immediately.
	ExtendVisibility(ctx context.Context, msg Message, d time.Duration) error
	Delete(ctx context.Context, msg Message) error

	VisibilityTimeout(ctx context.Context) (time.Duration, error)
	// Demand returns the number of currently held signals.
	Demand(ctx context.Context) (int, error)
}

type Orchestrator interface {
	ServiceDependency

	ResolveFleet(ctx context.Context, cluster, family string) (Fleet, error)
	ListTasks(ctx context.Context, fleet Fleet) ([]string, error)
	// DescribeTasks returns descriptions for the tasks that still exist, missing ones are omitted.
	DescribeTasks(ctx context.Context, fleet Fleet, taskIDs []string) ([]WorkerTask, error)
	DescribeAttachments(ctx context.Context, attachmentIDs []string) ([]Attachment, error)
}

type Identity interface {
	Verify(ctx context.Context) (string, error)
}

type ProxyTool interface {
	Run(ctx context.Context, target ProxyTarget) error
}

type Provisioner interface {
	Provision(ctx context.Context, action ProvisionAction, params ProvisionParams) error
}

type StatusProvider interface {
	Status() RunStatus
}
