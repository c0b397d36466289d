package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/zhulik/tps/internal/core"
)

var validate = validator.New() //nolint:gochecknoglobals

type Config struct {
	Backend  string `env:"TPS_BACKEND"   envDefault:"aws"  validate:"required,oneof=aws docker"`
	LogLevel string `env:"LOG_LEVEL"     envDefault:"info" validate:"required"`
	InfoPort int    `env:"TPS_INFO_PORT" envDefault:"0"    validate:"gte=0,lte=65535"`

	// AWS backend.
	Profile   string `env:"AWS_PROFILE"    envDefault:"tps"`
	Region    string `env:"AWS_REGION"`
	QueueName string `env:"TPS_QUEUE_NAME" envDefault:"proxy-intents.fifo"`

	// Docker backend.
	NATSURL           string        `env:"NATS_URL"`
	StreamName        string        `env:"TPS_STREAM_NAME"        envDefault:"proxy-intents"`
	ConsumerName      string        `env:"TPS_CONSUMER_NAME"      envDefault:"proxy-intents"`
	DockerHost        string        `env:"DOCKER_HOST"`
	VisibilityTimeout time.Duration `env:"TPS_VISIBILITY_TIMEOUT" envDefault:"30s" validate:"gte=1s"`
	Retention         time.Duration `env:"TPS_RETENTION"          envDefault:"1h"  validate:"gte=1m"`
	DedupWindow       time.Duration `env:"TPS_DEDUP_WINDOW"       envDefault:"5m"  validate:"gte=0"`

	// Fleet.
	Cluster         string        `env:"TPS_CLUSTER"           envDefault:"proxy-cluster" validate:"required"`
	Family          string        `env:"TPS_FAMILY"            envDefault:"proxy-def"     validate:"required"`
	PollInterval    time.Duration `env:"TPS_POLL_INTERVAL"     envDefault:"10s"           validate:"gte=100ms"`
	MaxPollInterval time.Duration `env:"TPS_MAX_POLL_INTERVAL" envDefault:"1m"            validate:"gtefield=PollInterval"`
	MaxWait         time.Duration `env:"TPS_MAX_WAIT"          envDefault:"15m"           validate:"gte=0"`

	// Lease. RenewalInterval 0 means half of the channel visibility timeout.
	RenewalInterval time.Duration `env:"TPS_RENEWAL_INTERVAL" envDefault:"0"  validate:"gte=0"`
	ReleaseTimeout  time.Duration `env:"TPS_RELEASE_TIMEOUT"  envDefault:"5s" validate:"gte=100ms"`

	// Proxy tool.
	ProxyCommand  string `env:"TPS_PROXY_COMMAND"  envDefault:"trevorproxy"        validate:"required"`
	KeyPath       string `env:"TPS_KEY"            envDefault:"~/.ssh/trevorproxy" validate:"required"`
	ListenAddress string `env:"TPS_LISTEN_ADDRESS" envDefault:"127.0.0.1"          validate:"required,ip"`
	Port          int    `env:"TPS_PORT"           envDefault:"1080"               validate:"gt=0,lte=65535"`
	BasePort      int    `env:"TPS_BASE_PORT"      envDefault:"32482"              validate:"gt=0,lte=65535"`
	User          string `env:"TPS_USER"           envDefault:"root"               validate:"required"`

	// Provisioning.
	TerraformDir string `env:"TPS_TERRAFORM_DIR" envDefault:"infra"`
	ProxyCount   int    `env:"TPS_PROXY_COUNT"   validate:"gte=0"`
}

// Load reads the configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %w", core.ErrInvalidConfig, validationErrors)
		}

		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}

	return nil
}

func (c *Config) NatsURL() string {
	if c.NATSURL == "" {
		return nats.DefaultURL
	}

	return c.NATSURL
}

func (c *Config) RunParams() core.RunParams {
	return core.RunParams{
		Cluster:         c.Cluster,
		Family:          c.Family,
		PollInterval:    c.PollInterval,
		MaxPollInterval: c.MaxPollInterval,
		MaxWait:         c.MaxWait,
		RenewalInterval: c.RenewalInterval,
		ReleaseTimeout:  c.ReleaseTimeout,
		User:            c.User,
		KeyPath:         c.KeyPath,
		ListenAddress:   c.ListenAddress,
		Port:            c.Port,
		BasePort:        c.BasePort,
	}
}
