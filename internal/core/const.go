package core

import (
	"time"
)

const (
	BackendAWS    = "aws"
	BackendDocker = "docker"

	DefaultQueueName = "proxy-intents.fifo"
	DefaultCluster   = "proxy-cluster"
	DefaultFamily    = "proxy-def"

	DefaultStreamName   = "proxy-intents"
	DefaultConsumerName = "proxy-intents"
	SignalSubjectBase   = "tps.intents"

	DefaultVisibilityTimeout = 30 * time.Second
	DefaultRetention         = 1 * time.Hour
	DefaultDedupWindow       = 5 * time.Minute

	DefaultPollInterval    = 10 * time.Second
	DefaultMaxPollInterval = 1 * time.Minute
	DefaultMaxWait         = 15 * time.Minute
	DefaultReleaseTimeout  = 5 * time.Second

	DefaultKeyPath       = "~/.ssh/trevorproxy"
	DefaultListenAddress = "127.0.0.1"
	DefaultPort          = 1080
	DefaultBasePort      = 32482
	DefaultUser          = "root"
	DefaultProxyCommand  = "trevorproxy"

	// Docker containers of a fleet carry these labels.
	LabelNameFleet   = "wtf.zhulik.tps.fleet"
	LabelNameCluster = "wtf.zhulik.tps.cluster"

	EnvNameNatsURL = "NATS_URL"
)
