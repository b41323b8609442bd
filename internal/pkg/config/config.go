package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session backends understood by SESSION_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	ShellAddr string `env:"SHELL_ADDR, default=127.0.0.1:8088"`

	API     APIConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig configures the backend REST client.
type APIConfig struct {
	BaseURL            string        `env:"API_BASE_URL,             default=http://localhost:8000/api/v1"`
	Timeout            time.Duration `env:"API_TIMEOUT,              default=10s"`
	RatePerSecond      float64       `env:"API_RATE_PER_SECOND,      default=10"`
	RetryMaxElapsed    time.Duration `env:"API_RETRY_MAX_ELAPSED,    default=2s"`
	BreakerMaxFailures uint32        `env:"API_BREAKER_MAX_FAILURES, default=5"`
	BreakerOpenTimeout time.Duration `env:"API_BREAKER_OPEN_TIMEOUT, default=30s"`
}

// SessionConfig selects where the session token and user record live.
type SessionConfig struct {
	Backend       string        `env:"SESSION_BACKEND,        default=file"`
	File          string        `env:"SESSION_FILE,           default=.medlink-session"`
	EncryptionKey string        `env:"SESSION_ENCRYPTION_KEY"`
	DeviceID      string        `env:"SESSION_DEVICE_ID,      default=default"`
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL,       default=720h"`
	SubmissionTTL time.Duration `env:"SUBMISSION_TTL,         default=30s"`
	RosterWorkers int           `env:"ROSTER_WORKERS,         default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=medlink"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.Session.RosterWorkers < 1 {
		return fmt.Errorf("ROSTER_WORKERS must be at least 1")
	}
	return nil
}
