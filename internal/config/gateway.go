package config

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GatewayConfig holds the FBR gateway connection settings. Sandbox and
// production use distinct hosts and tokens, selected per tenant.
type GatewayConfig struct {
	Environments map[string]GatewayEnvironment `mapstructure:"environments"`

	RequestTimeout time.Duration `mapstructure:"requestTimeout"`

	TokenMaxAttempts int           `mapstructure:"tokenMaxAttempts"`
	TokenBackoffUnit time.Duration `mapstructure:"tokenBackoffUnit"`
	TokenCacheTTL    time.Duration `mapstructure:"tokenCacheTTL"`
}

type GatewayEnvironment struct {
	BaseURL      string `mapstructure:"baseUrl"`
	ValidatePath string `mapstructure:"validatePath"`
	SubmitPath   string `mapstructure:"submitPath"`
	TokenPath    string `mapstructure:"tokenPath"`
}

func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Environments: map[string]GatewayEnvironment{
			"sandbox": {
				BaseURL:      "https://gw.fbr.gov.pk/di_data/v1/di",
				ValidatePath: "/validateinvoicedata_sb",
				SubmitPath:   "/postinvoicedata_sb",
				TokenPath:    "/token",
			},
			"production": {
				BaseURL:      "https://gw.fbr.gov.pk/di_data/v1/di",
				ValidatePath: "/validateinvoicedata",
				SubmitPath:   "/postinvoicedata",
				TokenPath:    "/token",
			},
		},
		RequestTimeout:   30 * time.Second,
		TokenMaxAttempts: 3,
		TokenBackoffUnit: time.Second,
		TokenCacheTTL:    50 * time.Minute,
	}
}

func (c GatewayConfig) Environment(name string) (GatewayEnvironment, bool) {
	env, ok := c.Environments[strings.ToLower(strings.TrimSpace(name))]
	return env, ok
}

// GatewayConfigHolder exposes the current gateway settings and hot-reloads
// them when gateway.yml changes on disk.
type GatewayConfigHolder struct {
	current atomic.Value // holds GatewayConfig
}

func NewGatewayConfigHolder(log *zap.Logger) (*GatewayConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("gateway")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fbrgate/config")
	v.AddConfigPath("/etc/fbrgate")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FBRGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &GatewayConfigHolder{}

	load := func() GatewayConfig {
		cfg := DefaultGatewayConfig()
		if err := v.UnmarshalKey("gateway", &cfg); err != nil {
			log.Warn("gateway config unmarshal failed, keeping defaults", zap.Error(err))
			return DefaultGatewayConfig()
		}
		if cfg.TokenMaxAttempts <= 0 {
			cfg.TokenMaxAttempts = 3
		}
		if cfg.TokenBackoffUnit <= 0 {
			cfg.TokenBackoffUnit = time.Second
		}
		if cfg.RequestTimeout <= 0 {
			cfg.RequestTimeout = 30 * time.Second
		}
		return cfg
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// no config file: defaults only
		holder.current.Store(DefaultGatewayConfig())
	} else {
		holder.current.Store(load())
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("gateway config reloaded", zap.String("file", e.Name))
		holder.current.Store(load())
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticGatewayConfigHolder wraps a fixed config, bypassing file
// watching. Used by tests and one-shot tools.
func NewStaticGatewayConfigHolder(cfg GatewayConfig) *GatewayConfigHolder {
	holder := &GatewayConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *GatewayConfigHolder) Current() GatewayConfig {
	if cfg, ok := h.current.Load().(GatewayConfig); ok {
		return cfg
	}
	return DefaultGatewayConfig()
}
