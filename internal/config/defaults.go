package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Rendering defaults
	DefaultJSTimeout      = 60 * time.Second
	DefaultScrollToEnd    = true
	DefaultRenderPoolSize = 2

	// LLM defaults
	DefaultLLMMaxTokens   = 4096
	DefaultLLMTemperature = 0.3
	DefaultLLMTimeout     = 60 * time.Second
	DefaultLLMMaxRetries  = 3

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scrape"
	}
	return filepath.Join(home, ".scrape")
}

// CacheDir returns the default Resource Store directory path.
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the default config file path.
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backends: BackendsConfig{
			Direct: DirectConfig{},
			Rendering: RenderingConfig{
				Enabled:     true,
				JSTimeout:   DefaultJSTimeout,
				ScrollToEnd: DefaultScrollToEnd,
				PoolSize:    DefaultRenderPoolSize,
			},
			Bypass: BypassConfig{
				Enabled: false,
			},
		},
		Cache: CacheConfig{
			Directory: CacheDir(),
		},
		LLM: LLMConfig{
			MaxTokens:   DefaultLLMMaxTokens,
			Temperature: DefaultLLMTemperature,
			Timeout:     DefaultLLMTimeout,
			MaxRetries:  DefaultLLMMaxRetries,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
