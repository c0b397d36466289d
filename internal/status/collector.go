package status

import (
	"context"
	"fmt"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/fleet"
)

type Task struct {
	ID      string          `json:"id"`
	Status  core.TaskStatus `json:"status"`
	Address string          `json:"address,omitempty"`
}

// Report is a read-only view of demand and fleet state.
type Report struct {
	Demand    int             `json:"demand"`
	Tasks     []Task          `json:"tasks"`
	Ready     bool            `json:"ready"`
	Endpoints []core.Endpoint `json:"endpoints"`
	Error     string          `json:"error,omitempty"`
}

// Collector builds a Report without acquiring a lease.
type Collector struct {
	channel      core.SignalChannel
	orchestrator core.Orchestrator

	cluster string
	family  string
	user    string

	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Collector, error) {
	cfg := do.MustInvoke[*config.Config](injector)

	return NewCollector(
		do.MustInvoke[core.SignalChannel](injector),
		do.MustInvoke[core.Orchestrator](injector),
		cfg.Cluster,
		cfg.Family,
		cfg.User,
		do.MustInvoke[logrus.FieldLogger](injector),
	), nil
}

func NewCollector(
	channel core.SignalChannel,
	orchestrator core.Orchestrator,
	cluster, family, user string,
	logger logrus.FieldLogger,
) *Collector {
	return &Collector{
		channel:      channel,
		orchestrator: orchestrator,
		cluster:      cluster,
		family:       family,
		user:         user,
		logger:       logger.WithField("component", "status.Collector"),
	}
}

// Collect fails only if demand or tasks can't be read. Endpoint resolution errors end up in Report.Error.
func (c Collector) Collect(ctx context.Context) (Report, error) {
	demand, err := c.channel.Demand(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read demand: %w", err)
	}

	tasks, err := fleet.NewPoller(c.orchestrator, fleet.PollerConfig{}, c.logger).Snapshot(ctx, c.cluster, c.family)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Demand:    demand,
		Ready:     fleet.Ready(tasks),
		Endpoints: []core.Endpoint{},
		Tasks: lo.Map(tasks, func(task core.WorkerTask, _ int) Task {
			return Task{ID: task.ID, Status: task.Status}
		}),
	}

	if !report.Ready {
		return report, nil
	}

	endpoints, err := fleet.NewResolver(c.orchestrator, c.user, c.logger).Resolve(ctx, tasks)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to resolve endpoints")

		report.Error = err.Error()

		return report, nil
	}

	addresses := lo.SliceToMap(endpoints, func(e core.Endpoint) (string, string) { return e.TaskID, e.Address })

	for i := range report.Tasks {
		report.Tasks[i].Address = addresses[report.Tasks[i].ID]
	}

	report.Endpoints = endpoints

	return report, nil
}
