// Package config loads service settings from configs/config.yml, the
// environment (MICROWAVE_ prefix) and built-in defaults, in that order of
// precedence: env over file over defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MICROWAVE"

type Config struct {
	Port string     `mapstructure:"port"`
	DB   DBConfig   `mapstructure:"db"`
	Log  LogConfig  `mapstructure:"log"`
	Oven OvenConfig `mapstructure:"oven"`
	Auth AuthConfig `mapstructure:"auth"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty disables the rotating file sink
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type OvenConfig struct {
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	RotationInterval time.Duration `mapstructure:"rotation_interval"`
	RotationStep     int           `mapstructure:"rotation_step"`
	Foods            []string      `mapstructure:"foods"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "microwave.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("oven.tick_interval", time.Second)
	v.SetDefault("oven.rotation_interval", 100*time.Millisecond)
	v.SetDefault("oven.rotation_step", 5)
	v.SetDefault("oven.foods", []string{"Chicken", "Pizza", "Soup"})

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", time.Hour)
}

// Load reads configuration. An empty path looks for config.yml under
// ./configs; a missing file there is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the oven controller cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Oven.TickInterval <= 0:
		return fmt.Errorf("oven.tick_interval must be positive, got %s", c.Oven.TickInterval)
	case c.Oven.RotationInterval <= 0:
		return fmt.Errorf("oven.rotation_interval must be positive, got %s", c.Oven.RotationInterval)
	case c.Oven.RotationStep <= 0 || c.Oven.RotationStep >= 360:
		return fmt.Errorf("oven.rotation_step must be in (0, 360), got %d", c.Oven.RotationStep)
	case len(c.Oven.Foods) == 0:
		return errors.New("oven.foods must list at least one food")
	case strings.TrimSpace(c.Auth.SigningKey) == "":
		return errors.New("auth.signing_key must not be empty")
	case c.Auth.TokenTTL <= 0:
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
