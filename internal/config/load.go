package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, so
// CHARFORGE_SERVER_PORT maps to server.port.
const envPrefix = "CHARFORGE"

// Load reads configuration from an optional config.yaml and environment
// variables; environment variables take precedence. Returns a populated
// Config struct or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from env.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so bind the known keys explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"providers.gemini.api_key",
		"providers.gemini.endpoint",
		"providers.openai.api_key",
		"providers.openai.endpoint",
		"generation.retry_delay_seconds",
		"generation.fallback_delay_seconds",
		"generation.invoke_timeout_seconds",
		"generation.requests_per_minute",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the fallback values used when neither the config
// file nor the environment provides a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("generation.retry_delay_seconds", 5)
	v.SetDefault("generation.fallback_delay_seconds", 3)
	v.SetDefault("generation.invoke_timeout_seconds", 60)
	v.SetDefault("generation.requests_per_minute", 30)
}
