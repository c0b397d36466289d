package status_test

import (
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/status"
	"github.com/zhulik/tps/testhelpers"
)

var _ = Describe("Collector", func() {
	var channel *testhelpers.MemChannel
	var orchestrator *testhelpers.FakeOrchestrator

	collect := func(ctx SpecContext) status.Report {
		collector := status.NewCollector(channel, orchestrator, core.DefaultCluster, core.DefaultFamily,
			core.DefaultUser, testhelpers.NewLogger())

		return lo.Must(collector.Collect(ctx))
	}

	BeforeEach(func(ctx SpecContext) {
		channel = testhelpers.NewMemChannel(clock.New(), time.Minute)
		orchestrator = &testhelpers.FakeOrchestrator{
			Snapshots: []testhelpers.Snapshot{{Tasks: []core.WorkerTask{
				testhelpers.Task("a", core.TaskStatusRunning),
				testhelpers.Task("b", core.TaskStatusRunning),
			}}},
			Attachments: map[string]string{"eni-a": "10.0.0.1", "eni-b": "10.0.0.2"},
		}

		lo.Must(channel.Send(ctx, []byte(`{}`), "held", "held"))
		lo.Must(channel.Send(ctx, []byte(`{}`), "visible", "visible"))

		messages := lo.Must(channel.Receive(ctx, 1, 0))
		lo.Must0(channel.ExtendVisibility(ctx, messages[0], time.Minute))
	})

	It("reports demand, tasks and endpoints of a ready fleet", func(ctx SpecContext) {
		report := collect(ctx)

		Expect(report.Demand).To(Equal(1))
		Expect(report.Ready).To(BeTrue())
		Expect(report.Tasks).To(HaveExactElements(
			status.Task{ID: "a", Status: core.TaskStatusRunning, Address: "10.0.0.1"},
			status.Task{ID: "b", Status: core.TaskStatusRunning, Address: "10.0.0.2"},
		))
		Expect(report.Endpoints).To(HaveLen(2))
		Expect(report.Error).To(BeEmpty())
	})

	Context("when the fleet is not ready", func() {
		BeforeEach(func() {
			orchestrator.Snapshots[0].Tasks[1].Status = core.TaskStatusPending
		})

		It("does not resolve endpoints", func(ctx SpecContext) {
			report := collect(ctx)

			Expect(report.Ready).To(BeFalse())
			Expect(report.Endpoints).To(BeEmpty())
			Expect(orchestrator.AttachmentCalls()).To(BeZero())
		})
	})

	Context("when an endpoint can't be resolved", func() {
		BeforeEach(func() {
			delete(orchestrator.Attachments, "eni-b")
		})

		It("reports the error instead of failing", func(ctx SpecContext) {
			report := collect(ctx)

			Expect(report.Ready).To(BeTrue())
			Expect(report.Endpoints).To(BeEmpty())
			Expect(report.Error).To(ContainSubstring(core.ErrEndpointResolution.Error()))
		})
	})

	Context("when the fleet can't be found", func() {
		BeforeEach(func() {
			orchestrator.ResolveErr = core.ErrFleetNotFound
		})

		It("returns an error", func(ctx SpecContext) {
			collector := status.NewCollector(channel, orchestrator, core.DefaultCluster, core.DefaultFamily,
				core.DefaultUser, testhelpers.NewLogger())

			_, err := collector.Collect(ctx)

			Expect(err).To(MatchError(core.ErrFleetNotFound))
		})
	})
})
