package config

import "time"

// Config represents the scrape engine's configuration.
type Config struct {
	Backends BackendsConfig `mapstructure:"backends"`
	Cache    CacheConfig    `mapstructure:"cache"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// BackendsConfig holds per-backend settings. Availability is computed from
// these at construction time: a backend missing required credentials is
// excluded from the strategy order.
type BackendsConfig struct {
	Direct    DirectConfig    `mapstructure:"direct"`
	Rendering RenderingConfig `mapstructure:"rendering"`
	Bypass    BypassConfig    `mapstructure:"bypass"`
}

// DirectConfig configures the plain HTTP backend. It never needs
// credentials, so it is always available.
type DirectConfig struct {
	UserAgent string `mapstructure:"user_agent"`
}

// RenderingConfig configures the headless-Chrome backend.
type RenderingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BrowserPath string        `mapstructure:"browser_path"`
	JSTimeout   time.Duration `mapstructure:"js_timeout"`
	ScrollToEnd bool          `mapstructure:"scroll_to_end"`
	PoolSize    int           `mapstructure:"pool_size"`
}

// BypassConfig configures the anti-fingerprint/protection-bypass backend.
// It requires a configured proxy endpoint to be considered available.
type BypassConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProxyURL  string `mapstructure:"proxy_url"`
	TLSClient string `mapstructure:"tls_client_profile"`
}

// CacheConfig configures the Resource Store's embedded KV backend.
type CacheConfig struct {
	Directory string `mapstructure:"directory"`
}

// LLMConfig configures the Extraction Adapter's provider selection.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate normalizes out-of-range values to their defaults. It never
// returns an error for the current field set but keeps the signature the
// loader expects so future additions can fail validation.
func (c *Config) Validate() error {
	if c.Backends.Rendering.JSTimeout < time.Second {
		c.Backends.Rendering.JSTimeout = DefaultJSTimeout
	}
	if c.Backends.Rendering.PoolSize < 1 {
		c.Backends.Rendering.PoolSize = DefaultRenderPoolSize
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = DefaultLLMMaxTokens
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = DefaultLLMTemperature
	}
	if c.LLM.Timeout < time.Second {
		c.LLM.Timeout = DefaultLLMTimeout
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = DefaultLLMMaxRetries
	}
	return nil
}

// ExtractionEnabled reports whether the LLM provider is configured well
// enough for the orchestrator to offer the extract_query option.
func (c *Config) ExtractionEnabled() bool {
	if c.LLM.Provider == "" || c.LLM.Model == "" {
		return false
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return false
	}
	return true
}
