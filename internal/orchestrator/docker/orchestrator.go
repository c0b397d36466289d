package docker

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/pkg/iter"
)

const healthy = "healthy"

// Orchestrator treats labeled docker containers as a fleet: containers labeled with the cluster and
// family names are its tasks, their container ids double as attachment ids.
type Orchestrator struct {
	docker API
	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Orchestrator, error) {
	cfg := do.MustInvoke[*config.Config](injector)

	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if cfg.DockerHost != "" {
		opts = append(opts, client.WithHost(cfg.DockerHost))
	}

	docker, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return NewOrchestrator(docker, do.MustInvoke[logrus.FieldLogger](injector)), nil
}

func NewOrchestrator(docker API, logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		docker: docker,
		logger: logger.WithField("component", "orchestrator.docker.Orchestrator"),
	}
}

// ResolveFleet only checks that the docker engine is reachable, a fleet without containers is a fleet
// that is not scaled yet.
func (o Orchestrator) ResolveFleet(ctx context.Context, cluster, family string) (core.Fleet, error) {
	_, err := o.docker.Info(ctx)
	if err != nil {
		return core.Fleet{}, fmt.Errorf("%w: failed to docker info: %w", core.ErrOrchestrator, err)
	}

	return core.Fleet{
		ClusterID: cluster,
		Family:    family,
	}, nil
}

func (o Orchestrator) ListTasks(ctx context.Context, fleet core.Fleet) ([]string, error) {
	fleetFilters := filters.NewArgs()
	fleetFilters.Add("label", fmt.Sprintf("%s=%s", core.LabelNameCluster, fleet.ClusterID))
	fleetFilters.Add("label", fmt.Sprintf("%s=%s", core.LabelNameFleet, fleet.Family))
	fleetFilters.Add("status", "created")
	fleetFilters.Add("status", "restarting")
	fleetFilters.Add("status", "running")

	containers, err := o.docker.ContainerList(ctx, container.ListOptions{Filters: fleetFilters, All: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list containers: %w", core.ErrOrchestrator, err)
	}

	slices.SortStableFunc(containers, func(a, b types.Container) int {
		return cmp.Or(cmp.Compare(a.Created, b.Created), strings.Compare(a.ID, b.ID))
	})

	return lo.Map(containers, func(c types.Container, _ int) string { return c.ID }), nil
}

func (o Orchestrator) DescribeTasks(ctx context.Context, _ core.Fleet, taskIDs []string) ([]core.WorkerTask, error) {
	inspected, err := o.inspectAll(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	return lo.Map(inspected, func(inspect types.ContainerJSON, _ int) core.WorkerTask {
		return core.WorkerTask{
			ID:           inspect.ID,
			Status:       taskStatus(inspect.State),
			AttachmentID: inspect.ID,
		}
	}), nil
}

func (o Orchestrator) DescribeAttachments(ctx context.Context, attachmentIDs []string) ([]core.Attachment, error) {
	inspected, err := o.inspectAll(ctx, attachmentIDs)
	if err != nil {
		return nil, err
	}

	return lo.Map(inspected, func(inspect types.ContainerJSON, _ int) core.Attachment {
		return core.Attachment{
			ID:      inspect.ID,
			Address: address(inspect),
		}
	}), nil
}

func (o Orchestrator) HealthCheck() error {
	o.logger.Debug("Orchestrator health check.")

	_, err := o.docker.Info(context.Background())
	if err != nil {
		return fmt.Errorf("orchestrator health check failed: %w", err)
	}

	return nil
}

func (o Orchestrator) Shutdown() error {
	err := o.docker.Close()
	if err != nil {
		return fmt.Errorf("failed to close docker client: %w", err)
	}

	return nil
}

// inspectAll inspects containers in order, skipping the ones that are gone.
func (o Orchestrator) inspectAll(ctx context.Context, ids []string) ([]types.ContainerJSON, error) {
	return iter.FilterMapErr(ids, func(id string) (types.ContainerJSON, bool, error) {
		inspect, err := o.docker.ContainerInspect(ctx, id)
		if err != nil {
			if client.IsErrNotFound(err) {
				o.logger.WithField("container", id).Debug("Container is gone")

				return inspect, false, nil
			}

			return inspect, false, fmt.Errorf("%w: failed to inspect container: %w", core.ErrOrchestrator, err)
		}

		return inspect, true, nil
	})
}

func taskStatus(state *types.ContainerState) core.TaskStatus {
	switch {
	case state == nil:
		return core.TaskStatusPending
	case state.Running && !state.Restarting:
		if state.Health != nil && state.Health.Status != healthy {
			return core.TaskStatusPending
		}

		return core.TaskStatusRunning
	case state.Status == "created" || state.Restarting:
		return core.TaskStatusPending
	default:
		return core.TaskStatusStopped
	}
}

// address returns the container's IP on the first of its networks by name.
func address(inspect types.ContainerJSON) string {
	if inspect.NetworkSettings == nil {
		return ""
	}

	names := lo.Keys(inspect.NetworkSettings.Networks)
	slices.Sort(names)

	for _, name := range names {
		endpoint := inspect.NetworkSettings.Networks[name]
		if endpoint != nil && endpoint.IPAddress != "" {
			return endpoint.IPAddress
		}
	}

	return ""
}
