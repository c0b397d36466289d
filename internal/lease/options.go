package lease

import (
	"time"

	"github.com/benbjohnson/clock"
)

const (
	DefaultAcquireAttempts = 5
	DefaultReceiveWait     = 2 * time.Second
	DefaultReceiveBatch    = 10
)

type Option func(*Config)

type Config struct {
	ID string
	// RenewalInterval 0 means half of the visibility timeout.
	RenewalInterval time.Duration
	AcquireAttempts int
	ReceiveWait     time.Duration
	Clock           clock.Clock
}

func WithID(id string) Option {
	return func(c *Config) {
		c.ID = id
	}
}

func WithRenewalInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.RenewalInterval = interval
	}
}

func WithAcquireAttempts(attempts int) Option {
	return func(c *Config) {
		c.AcquireAttempts = attempts
	}
}

func WithReceiveWait(wait time.Duration) Option {
	return func(c *Config) {
		c.ReceiveWait = wait
	}
}

func WithClock(clk clock.Clock) Option {
	return func(c *Config) {
		c.Clock = clk
	}
}
