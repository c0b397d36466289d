package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/fleet"
	"github.com/zhulik/tps/internal/lease"
	"go.uber.org/atomic"
)

// Runner holds a demand lease while it waits for the fleet and runs the proxy tool against it.
type Runner struct {
	channel      core.SignalChannel
	orchestrator core.Orchestrator
	identity     core.Identity
	proxy        core.ProxyTool

	params    core.RunParams
	leaseOpts []lease.Option

	phase     atomic.String
	startedAt atomic.Time
	lease     atomic.Pointer[lease.Lease]
	endpoints atomic.Pointer[[]core.Endpoint]

	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Runner, error) {
	return NewRunner(
		do.MustInvoke[core.SignalChannel](injector),
		do.MustInvoke[core.Orchestrator](injector),
		do.MustInvoke[core.Identity](injector),
		do.MustInvoke[core.ProxyTool](injector),
		do.MustInvoke[*config.Config](injector).RunParams(),
		do.MustInvoke[logrus.FieldLogger](injector),
	), nil
}

func NewRunner(
	channel core.SignalChannel,
	orchestrator core.Orchestrator,
	identity core.Identity,
	proxy core.ProxyTool,
	params core.RunParams,
	logger logrus.FieldLogger,
	leaseOpts ...lease.Option,
) *Runner {
	return &Runner{
		channel:      channel,
		orchestrator: orchestrator,
		identity:     identity,
		proxy:        proxy,
		params:       params,
		leaseOpts:    leaseOpts,
		logger:       logger.WithField("component", "runner.Runner"),
	}
}

// Run blocks until the proxy tool exits or ctx is canceled. The lease is released on every exit path.
// Cancellation is not an error.
func (r *Runner) Run(ctx context.Context) error {
	r.startedAt.Store(time.Now())
	r.phase.Store(core.RunPhaseAcquiring)

	principal, err := r.identity.Verify(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify identity: %w", err)
	}

	r.logger.WithField("principal", principal).Info("Running as")

	opts := append([]lease.Option{lease.WithRenewalInterval(r.params.RenewalInterval)}, r.leaseOpts...)

	demand, err := lease.New(ctx, r.channel, r.logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	r.lease.Store(demand)

	defer r.release(ctx, demand)

	err = demand.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return r.interrupted()
		}

		if errors.Is(err, core.ErrUnauthorized) {
			return fmt.Errorf("failed to acquire lease: %w", err)
		}

		r.logger.WithError(err).Warn("Failed to acquire lease, will retry on renewal")
	}

	demand.Start(ctx)

	r.phase.Store(core.RunPhaseWaiting)

	poller := fleet.NewPoller(r.orchestrator, fleet.PollerConfig{
		PollInterval:    r.params.PollInterval,
		MaxPollInterval: r.params.MaxPollInterval,
		MaxWait:         r.params.MaxWait,
	}, r.logger)

	tasks, err := poller.WaitReady(ctx, r.params.Cluster, r.params.Family)
	if err != nil {
		if ctx.Err() != nil {
			return r.interrupted()
		}

		return fmt.Errorf("fleet is not ready: %w", err)
	}

	r.phase.Store(core.RunPhaseResolving)

	endpoints, err := fleet.NewResolver(r.orchestrator, r.params.User, r.logger).Resolve(ctx, tasks)
	if err != nil {
		if ctx.Err() != nil {
			return r.interrupted()
		}

		return fmt.Errorf("failed to resolve endpoints: %w", err)
	}

	r.endpoints.Store(&endpoints)
	r.phase.Store(core.RunPhaseRunning)

	r.logger.WithField("endpoints", len(endpoints)).Info("Fleet is ready, starting proxy")

	err = r.proxy.Run(ctx, core.ProxyTarget{
		User:          r.params.User,
		KeyPath:       r.params.KeyPath,
		ListenAddress: r.params.ListenAddress,
		Port:          r.params.Port,
		BasePort:      r.params.BasePort,
		Endpoints:     endpoints,
	})
	if err != nil {
		if ctx.Err() != nil {
			return r.interrupted()
		}

		return fmt.Errorf("proxy tool failed: %w", err)
	}

	return nil
}

func (r *Runner) Status() core.RunStatus {
	status := core.RunStatus{
		Phase:     r.phase.Load(),
		StartedAt: r.startedAt.Load(),
		Endpoints: []core.Endpoint{},
	}

	if demand := r.lease.Load(); demand != nil {
		status.Lease.ID = demand.ID()

		if handle := demand.Handle(); handle != nil {
			status.Lease.Held = true
			status.Lease.MessageID = handle.MessageID
			status.Lease.AcquiredAt = handle.AcquiredAt
			status.Lease.RenewedAt = handle.RenewedAt
			status.Lease.ExpiresAt = handle.ExpiresAt
		}
	}

	if endpoints := r.endpoints.Load(); endpoints != nil {
		status.Endpoints = *endpoints
	}

	return status
}

func (r *Runner) interrupted() error {
	r.logger.Info("Interrupted")

	return nil
}

func (r *Runner) release(ctx context.Context, demand *lease.Lease) {
	r.phase.Store(core.RunPhaseStopping)

	demand.Stop()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.params.ReleaseTimeout)
	defer cancel()

	err := demand.Release(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to release lease, it will expire on its own")
	}
}
