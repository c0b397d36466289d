package lease

import (
	"time"

	"github.com/zhulik/tps/internal/core"
)

// Handle is the client side view of a held demand signal.
type Handle struct {
	Lease      string    `json:"lease"`
	MessageID  string    `json:"messageId"`
	AcquiredAt time.Time `json:"acquiredAt"`
	RenewedAt  time.Time `json:"renewedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`

	message core.Message
}

// Valid reports whether the visibility hold is still in effect at now.
func (h *Handle) Valid(now time.Time) bool {
	return h != nil && now.Before(h.ExpiresAt)
}
