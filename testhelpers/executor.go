package testhelpers

import (
	"context"
	"sync"

	"github.com/zhulik/tps/internal/command"
)

// RecordingExecutor records executed commands instead of running them.
type RecordingExecutor struct {
	// OnExecute, when set, is called for every command and its error is returned.
	OnExecute func(ctx context.Context, spec command.Spec) error

	mu    sync.Mutex
	specs []command.Spec
}

func (e *RecordingExecutor) Execute(ctx context.Context, spec command.Spec) error {
	e.mu.Lock()
	e.specs = append(e.specs, spec)
	e.mu.Unlock()

	if e.OnExecute != nil {
		return e.OnExecute(ctx, spec)
	}

	return nil
}

func (e *RecordingExecutor) Specs() []command.Spec {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]command.Spec{}, e.specs...)
}
