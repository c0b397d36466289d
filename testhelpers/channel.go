package testhelpers

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/zhulik/tps/internal/core"
)

type memMessage struct {
	id        string
	dedupKey  string
	groupKey  string
	body      []byte
	receipt   string
	sentAt    time.Time
	visibleAt time.Time
}

func (m memMessage) ID() string       { return m.id }
func (m memMessage) DedupKey() string { return m.dedupKey }
func (m memMessage) Body() []byte     { return m.body }
func (m memMessage) Receipt() string  { return m.receipt }

// MemChannel is an in-memory core.SignalChannel with FIFO group locking, deduplication,
// retention and visibility holds driven by clock.
type MemChannel struct {
	clock       clock.Clock
	visibility  time.Duration
	retention   time.Duration
	dedupWindow time.Duration

	mu       sync.Mutex
	seq      int
	receipts int
	messages []*memMessage
	dedup    map[string]*memMessage
	failures map[string]int
	sent     int
}

func NewMemChannel(clk clock.Clock, visibility time.Duration) *MemChannel {
	return &MemChannel{
		clock:       clk,
		visibility:  visibility,
		retention:   core.DefaultRetention,
		dedupWindow: core.DefaultDedupWindow,
		dedup:       map[string]*memMessage{},
		failures:    map[string]int{},
	}
}

// Fail makes the next n calls of op fail with core.ErrChannel.
func (c *MemChannel) Fail(op string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures[op] = n
}

// Sent returns the number of messages actually stored, deduplicated sends are not counted.
func (c *MemChannel) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sent
}

// Len returns the number of messages not yet deleted or expired.
func (c *MemChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expire()

	return len(c.messages)
}

func (c *MemChannel) Send(_ context.Context, body []byte, dedupKey, groupKey string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failure("Send"); err != nil {
		return "", err
	}

	now := c.clock.Now()

	if existing, ok := c.dedup[dedupKey]; ok && now.Before(existing.sentAt.Add(c.dedupWindow)) {
		return existing.id, nil
	}

	c.seq++
	c.sent++

	msg := &memMessage{
		id:        strconv.Itoa(c.seq),
		dedupKey:  dedupKey,
		groupKey:  groupKey,
		body:      body,
		sentAt:    now,
		visibleAt: now,
	}

	c.messages = append(c.messages, msg)
	c.dedup[dedupKey] = msg

	return msg.id, nil
}

func (c *MemChannel) Receive(_ context.Context, maxMessages int, _ time.Duration) ([]core.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failure("Receive"); err != nil {
		return nil, err
	}

	c.expire()

	now := c.clock.Now()

	lockedGroups := map[string]bool{}

	for _, msg := range c.messages {
		if now.Before(msg.visibleAt) {
			lockedGroups[msg.groupKey] = true
		}
	}

	result := []core.Message{}

	for _, msg := range c.messages {
		if len(result) >= maxMessages {
			break
		}

		if lockedGroups[msg.groupKey] {
			continue
		}

		c.receipts++

		msg.receipt = "receipt-" + strconv.Itoa(c.receipts)
		msg.visibleAt = now.Add(c.visibility)
		lockedGroups[msg.groupKey] = true

		result = append(result, *msg)
	}

	return result, nil
}

func (c *MemChannel) ExtendVisibility(_ context.Context, msg core.Message, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failure("ExtendVisibility"); err != nil {
		return err
	}

	stored, ok := c.held(msg.Receipt())
	if !ok {
		return core.ErrNotHeld
	}

	stored.visibleAt = c.clock.Now().Add(d)

	return nil
}

func (c *MemChannel) Delete(_ context.Context, msg core.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failure("Delete"); err != nil {
		return err
	}

	for i, stored := range c.messages {
		if stored.receipt != "" && stored.receipt == msg.Receipt() {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)

			return nil
		}
	}

	return core.ErrNotHeld
}

func (c *MemChannel) VisibilityTimeout(_ context.Context) (time.Duration, error) {
	return c.visibility, nil
}

// Demand returns the number of held messages.
func (c *MemChannel) Demand(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expire()

	now := c.clock.Now()
	count := 0

	for _, msg := range c.messages {
		if now.Before(msg.visibleAt) {
			count++
		}
	}

	return count, nil
}

func (c *MemChannel) HealthCheck() error {
	return nil
}

func (c *MemChannel) Shutdown() error {
	return nil
}

func (c *MemChannel) held(receipt string) (*memMessage, bool) {
	now := c.clock.Now()

	for _, msg := range c.messages {
		if msg.receipt != "" && msg.receipt == receipt && now.Before(msg.visibleAt) {
			return msg, true
		}
	}

	return nil, false
}

func (c *MemChannel) expire() {
	now := c.clock.Now()

	kept := c.messages[:0]

	for _, msg := range c.messages {
		if now.Before(msg.sentAt.Add(c.retention)) {
			kept = append(kept, msg)
		}
	}

	c.messages = kept
}

func (c *MemChannel) failure(op string) error {
	if c.failures[op] == 0 {
		return nil
	}

	c.failures[op]--

	return core.ErrChannel
}
