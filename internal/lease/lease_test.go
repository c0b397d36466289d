package lease_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/lease"
	"github.com/zhulik/tps/pkg/json"
	"github.com/zhulik/tps/testhelpers"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
)

const visibility = 30 * time.Second

// stallingChannel blocks ExtendVisibility until ctx is done once stalling is enabled.
type stallingChannel struct {
	*testhelpers.MemChannel

	stalling atomic.Bool
	stalled  chan struct{}
	once     sync.Once
}

func (c *stallingChannel) ExtendVisibility(ctx context.Context, msg core.Message, d time.Duration) error {
	if !c.stalling.Load() {
		return c.MemChannel.ExtendVisibility(ctx, msg, d)
	}

	c.once.Do(func() { close(c.stalled) })

	<-ctx.Done()

	return ctx.Err()
}

func sendSignals(ctx context.Context, channel core.SignalChannel, createdAt time.Time, n int) {
	for i := range n {
		id := fmt.Sprintf("gone-%d", i)
		body := lo.Must(json.Marshal(core.Signal{Lease: id, CreatedAt: createdAt}))

		lo.Must(channel.Send(ctx, body, id+"-1", id))
	}
}

var _ = Describe("Lease", func() {
	var mockClock *clock.Mock
	var channel *testhelpers.MemChannel

	newLease := func(ctx SpecContext, opts ...lease.Option) *lease.Lease {
		opts = append([]lease.Option{lease.WithClock(mockClock), lease.WithReceiveWait(0)}, opts...)

		return lo.Must(lease.New(ctx, channel, testhelpers.NewLogger(), opts...))
	}

	BeforeEach(func() {
		mockClock = clock.NewMock()
		channel = testhelpers.NewMemChannel(mockClock, visibility)
	})

	Describe("New", func() {
		It("defaults the renewal interval to half of the visibility timeout", func(ctx SpecContext) {
			Expect(newLease(ctx).RenewalInterval()).To(Equal(15 * time.Second))
		})

		It("rejects renewal intervals above half of the visibility timeout", func(ctx SpecContext) {
			_, err := lease.New(ctx, channel, testhelpers.NewLogger(), lease.WithRenewalInterval(20*time.Second))

			Expect(err).To(MatchError(core.ErrInvalidConfig))
		})
	})

	Describe("Acquire", func() {
		It("holds a signal", func(ctx SpecContext) {
			l := newLease(ctx)

			Expect(l.Acquire(ctx)).To(Succeed())

			handle := l.Handle()
			Expect(handle).ToNot(BeNil())
			Expect(handle.Lease).To(Equal(l.ID()))
			Expect(handle.ExpiresAt).To(Equal(mockClock.Now().Add(visibility)))

			Expect(channel.Demand(ctx)).To(Equal(1))
		})

		It("is idempotent", func(ctx SpecContext) {
			l := newLease(ctx)

			Expect(l.Acquire(ctx)).To(Succeed())
			Expect(l.Acquire(ctx)).To(Succeed())

			Expect(channel.Sent()).To(Equal(1))
			Expect(channel.Demand(ctx)).To(Equal(1))
		})

		Context("when other clients acquire concurrently", func() {
			It("never errors and produces one signal per client", func(ctx SpecContext) {
				leases := []*lease.Lease{
					newLease(ctx, lease.WithAcquireAttempts(100)),
					newLease(ctx, lease.WithAcquireAttempts(100)),
				}
				errs := make([]error, len(leases))

				var wg sync.WaitGroup

				for i, l := range leases {
					wg.Add(1)

					go func() {
						defer GinkgoRecover()
						defer wg.Done()

						errs[i] = l.Acquire(ctx)
					}()
				}

				wg.Wait()

				Expect(errs).To(HaveEach(BeNil()))
				Expect(channel.Sent()).To(Equal(2))
				Expect(channel.Demand(ctx)).To(Equal(2))
			})
		})

		Context("when another client's signal is visible", func() {
			BeforeEach(func(ctx SpecContext) {
				body := lo.Must(json.Marshal(core.Signal{Lease: "someone-else", CreatedAt: mockClock.Now()}))
				lo.Must(channel.Send(ctx, body, "someone-else-1", "someone-else"))
			})

			It("does not claim it", func(ctx SpecContext) {
				l := newLease(ctx)

				Expect(l.Acquire(ctx)).To(Succeed())

				Expect(channel.Demand(ctx)).To(Equal(1))
				Expect(channel.Len()).To(Equal(2))
			})
		})

		Context("when more abandoned signals than a receive batch are visible", func() {
			BeforeEach(func(ctx SpecContext) {
				sendSignals(ctx, channel, mockClock.Now(), lease.DefaultReceiveBatch+2)

				mockClock.Add(time.Minute)
			})

			It("deletes them and claims its own signal", func(ctx SpecContext) {
				l := newLease(ctx)

				Expect(l.Acquire(ctx)).To(Succeed())

				Expect(channel.Sent()).To(Equal(lease.DefaultReceiveBatch + 3))
				Expect(channel.Len()).To(Equal(1))
				Expect(channel.Demand(ctx)).To(Equal(1))
			})
		})

		Context("when crashed clients left their signals behind", func() {
			BeforeEach(func(ctx SpecContext) {
				sendSignals(ctx, channel, mockClock.Now(), lease.DefaultReceiveBatch)

				held := lo.Must(channel.Receive(ctx, lease.DefaultReceiveBatch, 0))
				Expect(held).To(HaveLen(lease.DefaultReceiveBatch))

				mockClock.Add(time.Minute)
			})

			It("acquires", func(ctx SpecContext) {
				l := newLease(ctx)

				Expect(l.Acquire(ctx)).To(Succeed())
				Expect(channel.Len()).To(Equal(1))
			})
		})

		Context("when more live signals than a receive batch are visible", func() {
			BeforeEach(func(ctx SpecContext) {
				sendSignals(ctx, channel, mockClock.Now(), lease.DefaultReceiveBatch+2)
			})

			It("claims its own signal and leaves the others visible", func(ctx SpecContext) {
				l := newLease(ctx, lease.WithAcquireAttempts(2))

				Expect(l.Acquire(ctx)).To(Succeed())

				Expect(channel.Len()).To(Equal(lease.DefaultReceiveBatch + 3))
				Expect(channel.Demand(ctx)).To(Equal(1))

				other := lo.Must(channel.Receive(ctx, 2*lease.DefaultReceiveBatch, 0))
				Expect(other).To(HaveLen(lease.DefaultReceiveBatch + 2))
			})
		})

		Context("when sending fails", func() {
			It("returns an error", func(ctx SpecContext) {
				l := newLease(ctx)
				channel.Fail("Send", 1)

				Expect(l.Acquire(ctx)).To(MatchError(core.ErrChannel))
				Expect(l.Handle()).To(BeNil())
			})
		})
	})

	Describe("Renew", func() {
		var l *lease.Lease

		BeforeEach(func(ctx SpecContext) {
			l = newLease(ctx, lease.WithRenewalInterval(15*time.Second))
			lo.Must0(l.Acquire(ctx))
		})

		Context("when the renewal is delayed but still within the visibility timeout", func() {
			It("keeps the lease valid", func(ctx SpecContext) {
				mockClock.Add(20 * time.Second)

				Expect(l.Handle().Valid(mockClock.Now())).To(BeTrue())
				Expect(channel.Demand(ctx)).To(Equal(1))

				Expect(l.Renew(ctx)).To(Succeed())

				mockClock.Add(20 * time.Second)

				Expect(channel.Demand(ctx)).To(Equal(1))
				Expect(l.Handle().ExpiresAt).To(Equal(mockClock.Now().Add(10 * time.Second)))
			})
		})

		Context("when a single renewal fails", func() {
			It("recovers on the next renewal", func(ctx SpecContext) {
				handle := l.Handle()
				channel.Fail("ExtendVisibility", 1)

				mockClock.Add(15 * time.Second)
				Expect(l.Renew(ctx)).To(MatchError(core.ErrChannel))

				mockClock.Add(10 * time.Second)
				Expect(l.Renew(ctx)).To(Succeed())

				Expect(l.Handle().MessageID).To(Equal(handle.MessageID))
				Expect(channel.Demand(ctx)).To(Equal(1))
			})
		})

		Context("when the hold was lost", func() {
			It("acquires again", func(ctx SpecContext) {
				mockClock.Add(visibility + time.Second)

				Expect(channel.Demand(ctx)).To(Equal(0))

				Expect(l.Renew(ctx)).To(Succeed())

				Expect(l.Handle().Valid(mockClock.Now())).To(BeTrue())
				Expect(channel.Demand(ctx)).To(Equal(1))
				Expect(channel.Len()).To(Equal(1))
			})
		})
	})

	Describe("Release", func() {
		It("deletes only the held signal", func(ctx SpecContext) {
			mine := newLease(ctx)
			theirs := newLease(ctx)

			lo.Must0(mine.Acquire(ctx))
			lo.Must0(theirs.Acquire(ctx))

			Expect(mine.Release(ctx)).To(Succeed())

			Expect(mine.Handle()).To(BeNil())
			Expect(channel.Demand(ctx)).To(Equal(1))
			Expect(theirs.Renew(ctx)).To(Succeed())
		})

		It("is idempotent", func(ctx SpecContext) {
			l := newLease(ctx)
			lo.Must0(l.Acquire(ctx))

			Expect(l.Release(ctx)).To(Succeed())
			Expect(l.Release(ctx)).To(Succeed())

			Expect(channel.Len()).To(Equal(0))
		})

		Context("when nothing is held", func() {
			It("does nothing", func(ctx SpecContext) {
				Expect(newLease(ctx).Release(ctx)).To(Succeed())
			})
		})
	})

	Describe("Start", func() {
		var l *lease.Lease

		BeforeEach(func(ctx SpecContext) {
			l = newLease(ctx)
			lo.Must0(l.Acquire(ctx))
		})

		It("keeps the signal held past the visibility timeout", func(ctx SpecContext) {
			leakOpts := goleak.IgnoreCurrent()

			l.Start(ctx)

			for range 4 {
				mockClock.Add(15 * time.Second)

				Eventually(func() time.Time { return l.Handle().RenewedAt }).Should(Equal(mockClock.Now()))
			}

			Expect(channel.Demand(ctx)).To(Equal(1))

			l.Stop()

			goleak.VerifyNone(GinkgoT(), leakOpts)
		})

		Context("when stopped without release", func() {
			It("lets the signal expire", func(ctx SpecContext) {
				l.Start(ctx)
				l.Stop()

				mockClock.Add(visibility + time.Second)

				Expect(channel.Demand(ctx)).To(Equal(0))
			})
		})

		Context("when the initial acquire failed", func() {
			It("acquires on the next tick", func(ctx SpecContext) {
				other := newLease(ctx)
				channel.Fail("Send", 1)

				Expect(other.Acquire(ctx)).ToNot(Succeed())

				other.Start(ctx)
				DeferCleanup(other.Stop)

				mockClock.Add(15 * time.Second)

				Eventually(other.Handle).ShouldNot(BeNil())
			})
		})
	})

	Describe("Stop", func() {
		It("is idempotent", func(ctx SpecContext) {
			l := newLease(ctx)
			l.Start(ctx)

			l.Stop()
			l.Stop()
		})

		Context("when a renewal is blocked on the channel", func() {
			It("cancels it and returns", func(ctx SpecContext) {
				stalling := &stallingChannel{
					MemChannel: channel,
					stalled:    make(chan struct{}),
				}

				l := lo.Must(lease.New(ctx, stalling, testhelpers.NewLogger(),
					lease.WithClock(mockClock), lease.WithReceiveWait(0)))
				lo.Must0(l.Acquire(ctx))

				stalling.stalling.Store(true)
				l.Start(context.Background())

				mockClock.Add(15 * time.Second)
				Eventually(stalling.stalled).Should(BeClosed())

				stopped := make(chan struct{})

				go func() {
					defer close(stopped)

					l.Stop()
				}()

				Eventually(stopped).Should(BeClosed())

				Expect(l.Release(ctx)).To(Succeed())
				Expect(channel.Len()).To(Equal(0))
			})
		})

		It("is safe before Start", func(ctx SpecContext) {
			newLease(ctx).Stop()
		})

		It("is safe to call concurrently", func(ctx SpecContext) {
			l := newLease(ctx)
			l.Start(ctx)

			var wg sync.WaitGroup

			for range 3 {
				wg.Add(1)

				go func() {
					defer wg.Done()

					l.Stop()
				}()
			}

			wg.Wait()
		})
	})
})
