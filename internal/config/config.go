package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the cache store connection settings. An empty
// URL is valid: the service then runs without a cache and every cache
// operation degrades to a logged warning.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// ProvidersConfig groups the two independently configured provider
// families. A family with an empty API key is unusable for the whole
// process lifetime; the other family and cache reads keep working.
type ProvidersConfig struct {
	Gemini ProviderConfig `mapstructure:"gemini"`
	OpenAI ProviderConfig `mapstructure:"openai"`
}

// ProviderConfig contains one provider family's credential and endpoint.
// Endpoint overrides exist for tests and proxies; empty means the
// provider's public API.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// GenerationConfig contains the orchestration policy settings.
type GenerationConfig struct {
	// RetryDelaySeconds is the fixed wait before retrying the same model
	// after a quota failure.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`

	// FallbackDelaySeconds is the wait before switching to the fallback
	// family after a transient primary exhaustion.
	FallbackDelaySeconds int `mapstructure:"fallback_delay_seconds" validate:"gte=0"`

	// InvokeTimeoutSeconds bounds each single provider call.
	InvokeTimeoutSeconds int `mapstructure:"invoke_timeout_seconds" validate:"gte=0"`

	// RequestsPerMinute caps outbound calls per provider credential.
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=0"`
}
