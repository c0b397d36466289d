package lease

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/pkg/json"
	"go.uber.org/atomic"
)

// Lease keeps a demand signal held on a SignalChannel using hold-and-extend: the client claims its own
// signal, keeps it invisible to other consumers by extending the visibility hold every RenewalInterval
// and deletes it on Release. If the process dies the hold expires and the signal stops counting as
// demand.
type Lease struct {
	channel core.SignalChannel
	config  Config

	visibility time.Duration

	// mu serializes operations on the channel, handle is readable without it.
	mu         sync.Mutex
	handle     atomic.Pointer[Handle]
	generation int

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	logger logrus.FieldLogger
}

func New(ctx context.Context, channel core.SignalChannel, logger logrus.FieldLogger, opts ...Option) (*Lease, error) {
	config := Config{
		ID:              uuid.NewString(),
		AcquireAttempts: DefaultAcquireAttempts,
		ReceiveWait:     DefaultReceiveWait,
		Clock:           clock.New(),
	}

	for _, opt := range opts {
		opt(&config)
	}

	logger = logger.WithFields(logrus.Fields{
		"component": "lease.Lease",
		"lease":     config.ID,
	})

	visibility, err := channel.VisibilityTimeout(ctx)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			return nil, err
		}

		logger.WithError(err).Warnf("Failed to read visibility timeout, assuming %s", core.DefaultVisibilityTimeout)

		visibility = core.DefaultVisibilityTimeout
	}

	if config.RenewalInterval == 0 {
		config.RenewalInterval = visibility / 2 //nolint:mnd
	}

	if config.RenewalInterval > visibility/2 {
		return nil, fmt.Errorf("%w: renewal interval %s must be at most half of the visibility timeout %s",
			core.ErrInvalidConfig, config.RenewalInterval, visibility)
	}

	if config.AcquireAttempts < 1 {
		config.AcquireAttempts = 1
	}

	return &Lease{
		channel:    channel,
		config:     config,
		visibility: visibility,
		done:       make(chan struct{}),
		logger:     logger,
	}, nil
}

func (l *Lease) ID() string {
	return l.config.ID
}

func (l *Lease) RenewalInterval() time.Duration {
	return l.config.RenewalInterval
}

// Handle returns a copy of the current handle or nil if no signal is held.
func (l *Lease) Handle() *Handle {
	handle := l.handle.Load()
	if handle == nil {
		return nil
	}

	copied := *handle

	return &copied
}

// Acquire publishes this lease's signal and claims it. Signals of other clients are never claimed.
// Those still in use are only hidden while Acquire runs, abandoned ones are deleted, so Acquire
// succeeds regardless of how many signals other clients left behind.
func (l *Lease) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle.Load() != nil {
		return nil
	}

	return l.acquire(ctx)
}

// Renew extends the visibility hold of the held signal. Without a held signal, or once the hold was
// lost, it acquires a new one.
func (l *Lease) Renew(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	handle := l.handle.Load()
	now := l.config.Clock.Now()

	if handle == nil {
		return l.acquire(ctx)
	}

	if !handle.Valid(now) {
		l.logger.WithField("expiredAt", handle.ExpiresAt).Warn("Visibility hold lost, reacquiring")
		l.handle.Store(nil)

		err := l.channel.Delete(ctx, handle.message)
		if err != nil {
			l.logger.WithError(err).Debug("Failed to delete lost signal")
		}

		return l.acquire(ctx)
	}

	err := l.channel.ExtendVisibility(ctx, handle.message, l.visibility)
	if err != nil {
		return fmt.Errorf("failed to extend visibility: %w", err)
	}

	renewed := *handle
	renewed.RenewedAt = now
	renewed.ExpiresAt = now.Add(l.visibility)

	l.handle.Store(&renewed)

	l.logger.WithField("expiresAt", renewed.ExpiresAt).Debug("Lease renewed")

	return nil
}

// Release deletes the held signal. It only ever touches the receipt this lease holds.
func (l *Lease) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	handle := l.handle.Swap(nil)
	if handle == nil {
		return nil
	}

	err := l.channel.Delete(ctx, handle.message)
	if err != nil {
		return fmt.Errorf("failed to delete signal: %w", err)
	}

	l.logger.Info("Lease released")

	return nil
}

// Start runs the renewal loop in the background until Stop is called or ctx is cancelled.
func (l *Lease) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		ctx, l.cancel = context.WithCancel(ctx)
		ticker := l.config.Clock.Ticker(l.config.RenewalInterval)

		go l.run(ctx, ticker)
	})
}

// Stop cancels the renewal loop, including a renewal in flight, and waits for it to exit.
// It is safe to call multiple times, and before Start.
func (l *Lease) Stop() {
	started := true

	l.startOnce.Do(func() {
		started = false

		close(l.done)
	})

	if started {
		l.cancel()
		<-l.done
	}
}

func (l *Lease) run(ctx context.Context, ticker *clock.Ticker) {
	defer close(l.done)
	defer ticker.Stop()

	l.logger.WithField("interval", l.config.RenewalInterval).Debug("Renewal loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Renewal loop stopped")

			return
		case <-ticker.C:
			err := l.Renew(ctx)
			if err != nil {
				l.logger.WithError(err).Warn("Failed to renew lease, retrying on next tick")
			}
		}
	}
}

func (l *Lease) acquire(ctx context.Context) error {
	body, err := json.Marshal(core.Signal{
		Lease:     l.config.ID,
		CreatedAt: l.config.Clock.Now().UTC(),
	})
	if err != nil {
		return err
	}

	l.generation++

	dedupKey := fmt.Sprintf("%s-%d", l.config.ID, l.generation)

	messageID, err := l.channel.Send(ctx, body, dedupKey, l.config.ID)
	if err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	l.logger.WithField("messageId", messageID).Debug("Signal sent")

	var hidden []core.Message

	defer func() {
		l.unhide(ctx, hidden)
	}()

	for attempt := range l.config.AcquireAttempts {
		messages, err := l.channel.Receive(ctx, DefaultReceiveBatch, l.config.ReceiveWait)
		if err != nil {
			return fmt.Errorf("failed to receive signal: %w", err)
		}

		handle, foreign := l.claim(ctx, messages)
		hidden = append(hidden, foreign...)

		if handle != nil {
			l.handle.Store(handle)

			l.logger.WithFields(logrus.Fields{
				"messageId": handle.MessageID,
				"expiresAt": handle.ExpiresAt,
			}).Info("Lease acquired")

			return nil
		}

		l.logger.WithField("attempt", attempt+1).Debug("Own signal not received yet")
	}

	return core.ErrNoSignal
}

// claim takes the first own message from messages and extends its hold to the full visibility window.
// Extra own messages and abandoned ones are deleted. Foreign messages still in use are returned
// without touching their hold, so the next receive moves past them.
func (l *Lease) claim(ctx context.Context, messages []core.Message) (*Handle, []core.Message) {
	var (
		handle  *Handle
		foreign []core.Message
	)

	now := l.config.Clock.Now()

	for _, msg := range messages {
		logger := l.logger.WithField("messageId", msg.ID())

		signal, err := json.Unmarshal[core.Signal](msg.Body())
		own := err == nil && signal.Lease == l.config.ID

		switch {
		case !own && l.abandoned(signal, now):
			err := l.channel.Delete(ctx, msg)
			if err != nil {
				logger.WithError(err).Debug("Failed to delete abandoned signal")

				foreign = append(foreign, msg)

				continue
			}

			logger.WithField("createdAt", signal.CreatedAt).Debug("Abandoned signal deleted")
		case !own:
			foreign = append(foreign, msg)
		case handle != nil:
			err := l.channel.Delete(ctx, msg)
			if err != nil {
				logger.WithError(err).Debug("Failed to delete extra signal")
			}
		default:
			err := l.channel.ExtendVisibility(ctx, msg, l.visibility)
			if err != nil {
				logger.WithError(err).Warn("Failed to hold own signal")

				continue
			}

			handle = &Handle{
				Lease:      l.config.ID,
				MessageID:  msg.ID(),
				AcquiredAt: now,
				RenewedAt:  now,
				ExpiresAt:  now.Add(l.visibility),
				message:    msg,
			}
		}
	}

	return handle, foreign
}

// abandoned reports whether a receivable signal outlived the visibility window. A live client keeps
// its signal hidden, so such a signal belongs to a client that is gone or lost its hold. Messages that
// are not signals at all have a zero CreatedAt and count as abandoned too.
func (l *Lease) abandoned(signal core.Signal, now time.Time) bool {
	return now.Sub(signal.CreatedAt) > l.visibility
}

// unhide makes foreign messages received during an acquire visible to other consumers again.
func (l *Lease) unhide(ctx context.Context, messages []core.Message) {
	for _, msg := range messages {
		err := l.channel.ExtendVisibility(ctx, msg, 0)
		if err != nil {
			l.logger.WithError(err).WithField("messageId", msg.ID()).Debug("Failed to release foreign signal")
		}
	}
}
