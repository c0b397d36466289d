package core

import (
	"fmt"
	"time"
)

// Fleet is the resolved identity of a task family inside a cluster.
type Fleet struct {
	ClusterID string
	Family    string
}

type WorkerTask struct {
	ID           string
	Status       TaskStatus
	AttachmentID string
}

func (t WorkerTask) Running() bool {
	return t.Status == TaskStatusRunning
}

type Attachment struct {
	ID      string
	Address string
}

type Endpoint struct {
	TaskID  string `json:"taskId"`
	Address string `json:"address"`
	User    string `json:"user"`
}

// Target renders the endpoint the way the proxy tool expects it: user@address.
func (e Endpoint) Target() string {
	return fmt.Sprintf("%s@%s", e.User, e.Address)
}

func (e Endpoint) String() string {
	return e.Target()
}

// Signal is the body of a demand signal.
type Signal struct {
	Lease     string    `json:"lease"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProxyTarget struct {
	User          string
	KeyPath       string
	ListenAddress string
	Port          int
	BasePort      int
	Endpoints     []Endpoint
}

type ProvisionParams struct {
	Profile    string
	ProxyCount int
}

// RunParams is everything the run entry point needs.
type RunParams struct {
	Cluster string
	Family  string

	PollInterval    time.Duration
	MaxPollInterval time.Duration
	MaxWait         time.Duration
	RenewalInterval time.Duration
	ReleaseTimeout  time.Duration

	User          string
	KeyPath       string
	ListenAddress string
	Port          int
	BasePort      int
}

// LeaseStatus is a point in time view of the demand lease.
type LeaseStatus struct {
	ID         string    `json:"id"`
	Held       bool      `json:"held"`
	MessageID  string    `json:"messageId,omitempty"`
	AcquiredAt time.Time `json:"acquiredAt"`
	RenewedAt  time.Time `json:"renewedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type RunStatus struct {
	Phase     RunPhase    `json:"phase"`
	StartedAt time.Time   `json:"startedAt"`
	Lease     LeaseStatus `json:"lease"`
	Endpoints []Endpoint  `json:"endpoints"`
}
