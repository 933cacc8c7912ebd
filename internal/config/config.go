// Package config loads server configuration via viper and exposes it to
// modules through the nil-safe module.Config view.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aldenmeer/gridline/pkg/module"
)

// Compile-time interface guard.
var _ module.Config = (*viperConfig)(nil)

// New wraps a viper instance in the module.Config view. A nil viper yields
// a config that returns zero values for every key.
func New(v *viper.Viper) module.Config {
	return &viperConfig{v: v}
}

// Load reads configuration with precedence: defaults, then the optional
// config file at path (or ./gridline.yaml when path is empty), then
// GRIDLINE_* environment variables.
func Load(path string) (module.Config, error) {
	v := viper.New()

	// Defaults.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("store.path", "gridline.db")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.secret", "")
	v.SetDefault("modules.inventory.enabled", true)
	v.SetDefault("modules.inventory.page_size", 50)
	v.SetDefault("modules.authn.enabled", true)
	v.SetDefault("modules.live.enabled", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gridline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/gridline")
	}

	v.SetEnvPrefix("GRIDLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit path is not.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return New(v), nil
}

// viperConfig adapts *viper.Viper to module.Config with nil safety.
type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *viperConfig) GetInt(key string) int {
	if c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *viperConfig) GetBool(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *viperConfig) GetDuration(key string) time.Duration {
	if c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *viperConfig) IsSet(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

func (c *viperConfig) Sub(key string) module.Config {
	if c.v == nil {
		return New(nil)
	}
	return New(c.v.Sub(key))
}

func (c *viperConfig) Unmarshal(target any) error {
	if c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}
