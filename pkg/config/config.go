package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPWAVE_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SHOPWAVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPWAVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the commerce backend. Timeout applies to every
// request; there is no retry on top of it.
type APIConfig struct {
	BaseURL string        `envconfig:"SHOPWAVE_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"SHOPWAVE_API_TIMEOUT" default:"10s"`
}

// StorageConfig locates the on-device key-value database.
type StorageConfig struct {
	Path string `envconfig:"SHOPWAVE_STORAGE_PATH" default:"shopwave.db"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"SHOPWAVE_METRICS_ENABLED" default:"false"`
}
