package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/core"
)

type PollerConfig struct {
	PollInterval    time.Duration
	MaxPollInterval time.Duration
	// MaxWait 0 means wait forever.
	MaxWait time.Duration
	Clock   clock.Clock
}

// Poller blocks until every task of a fleet is running.
type Poller struct {
	orchestrator core.Orchestrator
	config       PollerConfig

	logger logrus.FieldLogger
}

func NewPoller(orchestrator core.Orchestrator, config PollerConfig, logger logrus.FieldLogger) *Poller {
	if config.Clock == nil {
		config.Clock = clock.New()
	}

	if config.PollInterval <= 0 {
		config.PollInterval = core.DefaultPollInterval
	}

	config.MaxPollInterval = max(config.MaxPollInterval, config.PollInterval)

	return &Poller{
		orchestrator: orchestrator,
		config:       config,
		logger:       logger.WithField("component", "fleet.Poller"),
	}
}

// WaitReady resolves the fleet once, then polls until all of its tasks are running and returns them in
// listing order. The interval between rounds doubles up to MaxPollInterval and goes back to PollInterval
// whenever more tasks are running than in any round before.
func (p Poller) WaitReady(ctx context.Context, cluster, family string) ([]core.WorkerTask, error) {
	fleet, err := p.orchestrator.ResolveFleet(ctx, cluster, family)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fleet: %w", err)
	}

	logger := p.logger.WithFields(logrus.Fields{
		"cluster": cluster,
		"family":  family,
	})

	startedAt := p.config.Clock.Now()
	interval := p.config.PollInterval
	bestRunning := 0

	for round := 1; ; round++ {
		tasks, err := p.poll(ctx, fleet)
		if err != nil {
			return nil, err
		}

		running := lo.CountBy(tasks, func(task core.WorkerTask) bool { return task.Running() })

		if Ready(tasks) {
			logger.WithFields(logrus.Fields{
				"round": round,
				"tasks": len(tasks),
			}).Info("Fleet is ready")

			return tasks, nil
		}

		if running > bestRunning {
			bestRunning = running
			interval = p.config.PollInterval
		}

		logger.WithFields(logrus.Fields{
			"round":   round,
			"running": running,
			"tasks":   len(tasks),
			"next":    interval,
		}).Info("Waiting for fleet")

		wait := interval

		if p.config.MaxWait > 0 {
			remaining := p.config.MaxWait - p.config.Clock.Since(startedAt)
			if remaining <= 0 {
				return nil, fmt.Errorf("%w: %d of %d tasks running after %s",
					core.ErrFleetNotReady, running, len(tasks), p.config.MaxWait)
			}

			wait = min(wait, remaining)
		}

		err = p.sleep(ctx, wait)
		if err != nil {
			return nil, err
		}

		interval = min(interval*2, p.config.MaxPollInterval) //nolint:mnd
	}
}

// Snapshot resolves the fleet and describes its tasks once, without waiting.
func (p Poller) Snapshot(ctx context.Context, cluster, family string) ([]core.WorkerTask, error) {
	fleet, err := p.orchestrator.ResolveFleet(ctx, cluster, family)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fleet: %w", err)
	}

	return p.poll(ctx, fleet)
}

// Ready reports whether a fleet with these tasks can serve: it has tasks and all of them are running.
func Ready(tasks []core.WorkerTask) bool {
	return len(tasks) > 0 && lo.EveryBy(tasks, func(task core.WorkerTask) bool { return task.Running() })
}

// poll lists the fleet's tasks and describes them. Listed tasks that are gone by the time they are
// described are reported as stopped so the round is not ready.
func (p Poller) poll(ctx context.Context, fleet core.Fleet) ([]core.WorkerTask, error) {
	ids, err := p.orchestrator.ListTasks(ctx, fleet)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(ids) == 0 {
		return []core.WorkerTask{}, nil
	}

	described, err := p.orchestrator.DescribeTasks(ctx, fleet, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to describe tasks: %w", err)
	}

	byID := lo.KeyBy(described, func(task core.WorkerTask) string { return task.ID })

	return lo.Map(ids, func(id string, _ int) core.WorkerTask {
		task, ok := byID[id]
		if !ok {
			return core.WorkerTask{ID: id, Status: core.TaskStatusStopped}
		}

		return task
	}), nil
}

func (p Poller) sleep(ctx context.Context, d time.Duration) error {
	timer := p.config.Clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fleet wait cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
