package docker_test

import (
	"errors"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/system"
	"github.com/docker/docker/errdefs"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/orchestrator/docker"
	"github.com/zhulik/tps/testhelpers"
	"github.com/zhulik/tps/testhelpers/mocks"
)

var fleet = core.Fleet{ClusterID: "proxy-cluster", Family: "proxy-def"}

func inspect(id string, state *types.ContainerState, ip string) types.ContainerJSON {
	return types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:    id,
			State: state,
		},
		NetworkSettings: &types.NetworkSettings{
			Networks: map[string]*network.EndpointSettings{
				"proxy": {IPAddress: ip},
			},
		},
	}
}

var _ = Describe("Orchestrator", func() {
	var api *mocks.MockDockerAPI
	var orchestrator *docker.Orchestrator

	BeforeEach(func() {
		api = mocks.NewMockDockerAPI(GinkgoT())
		orchestrator = docker.NewOrchestrator(api, testhelpers.NewLogger())
	})

	Describe("ResolveFleet", func() {
		It("returns the fleet when docker is reachable", func(ctx SpecContext) {
			api.On("Info", mock.Anything).Return(system.Info{}, nil).Once()

			Expect(orchestrator.ResolveFleet(ctx, "proxy-cluster", "proxy-def")).To(Equal(fleet))
		})

		It("fails when docker is unreachable", func(ctx SpecContext) {
			api.On("Info", mock.Anything).Return(system.Info{}, errors.New("connection refused")).Once()

			_, err := orchestrator.ResolveFleet(ctx, "proxy-cluster", "proxy-def")

			Expect(err).To(MatchError(core.ErrOrchestrator))
		})
	})

	Describe("ListTasks", func() {
		It("lists labeled containers ordered by creation time", func(ctx SpecContext) {
			api.On("ContainerList", mock.Anything, mock.MatchedBy(func(opts container.ListOptions) bool {
				return opts.Filters.ExactMatch("label", core.LabelNameCluster+"=proxy-cluster") &&
					opts.Filters.ExactMatch("label", core.LabelNameFleet+"=proxy-def") &&
					opts.All
			})).Return([]types.Container{
				{ID: "c", Created: 30},
				{ID: "a", Created: 10},
				{ID: "b", Created: 20},
			}, nil).Once()

			Expect(orchestrator.ListTasks(ctx, fleet)).To(Equal([]string{"a", "b", "c"}))
		})
	})

	Describe("DescribeTasks", func() {
		It("maps container states to task statuses", func(ctx SpecContext) {
			api.On("ContainerInspect", mock.Anything, "a").
				Return(inspect("a", &types.ContainerState{Status: "running", Running: true}, "172.18.0.2"), nil).Once()
			api.On("ContainerInspect", mock.Anything, "b").
				Return(inspect("b", &types.ContainerState{Status: "created"}, ""), nil).Once()
			api.On("ContainerInspect", mock.Anything, "c").
				Return(inspect("c", &types.ContainerState{
					Status:  "running",
					Running: true,
					Health:  &types.Health{Status: "starting"},
				}, "172.18.0.4"), nil).Once()
			api.On("ContainerInspect", mock.Anything, "d").
				Return(inspect("d", &types.ContainerState{Status: "exited"}, ""), nil).Once()

			tasks, err := orchestrator.DescribeTasks(ctx, fleet, []string{"a", "b", "c", "d"})

			Expect(err).ToNot(HaveOccurred())
			Expect(tasks).To(Equal([]core.WorkerTask{
				{ID: "a", Status: core.TaskStatusRunning, AttachmentID: "a"},
				{ID: "b", Status: core.TaskStatusPending, AttachmentID: "b"},
				{ID: "c", Status: core.TaskStatusPending, AttachmentID: "c"},
				{ID: "d", Status: core.TaskStatusStopped, AttachmentID: "d"},
			}))
		})

		Context("when a container is gone", func() {
			It("omits it", func(ctx SpecContext) {
				api.On("ContainerInspect", mock.Anything, "a").
					Return(inspect("a", &types.ContainerState{Status: "running", Running: true}, "172.18.0.2"), nil).Once()
				api.On("ContainerInspect", mock.Anything, "b").
					Return(types.ContainerJSON{}, errdefs.NotFound(errors.New("no such container"))).Once()

				tasks, err := orchestrator.DescribeTasks(ctx, fleet, []string{"a", "b"})

				Expect(err).ToNot(HaveOccurred())
				Expect(tasks).To(HaveLen(1))
				Expect(tasks[0].ID).To(Equal("a"))
			})
		})

		Context("when inspect fails", func() {
			It("returns an error", func(ctx SpecContext) {
				api.On("ContainerInspect", mock.Anything, "a").
					Return(types.ContainerJSON{}, errors.New("boom")).Once()

				_, err := orchestrator.DescribeTasks(ctx, fleet, []string{"a"})

				Expect(err).To(MatchError(core.ErrOrchestrator))
			})
		})
	})

	Describe("DescribeAttachments", func() {
		It("returns the container network addresses", func(ctx SpecContext) {
			api.On("ContainerInspect", mock.Anything, "a").
				Return(inspect("a", &types.ContainerState{Running: true}, "172.18.0.2"), nil).Once()

			Expect(orchestrator.DescribeAttachments(ctx, []string{"a"})).To(Equal([]core.Attachment{
				{ID: "a", Address: "172.18.0.2"},
			}))
		})
	})
})
