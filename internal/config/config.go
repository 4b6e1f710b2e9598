// Package config loads the service configuration from a YAML file, a .env
// file and MUSICKLY_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Flows     FlowsConfig     `yaml:"flows"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP API server configuration
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // websocket origins; empty allows same host only
}

// ProviderConfig selects a registered plugin and passes options to its factory.
type ProviderConfig struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options"`
}

// ProvidersConfig names one provider per kind.
type ProvidersConfig struct {
	LLM   ProviderConfig `yaml:"llm"`
	TTS   ProviderConfig `yaml:"tts"`
	STT   ProviderConfig `yaml:"stt"`
	Image ProviderConfig `yaml:"image"`
}

// FlowsConfig tunes flow execution.
type FlowsConfig struct {
	Timeout          time.Duration `yaml:"timeout"`            // per flow run
	MaxUploadSeconds int           `yaml:"max_upload_seconds"` // 0 disables the check
	Voice            string        `yaml:"voice"`              // TTS voice; empty uses the provider default
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console or text
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			MaxBodyBytes:    32 << 20,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Providers: ProvidersConfig{
			LLM:   ProviderConfig{Name: "openai"},
			TTS:   ProviderConfig{Name: "openai"},
			STT:   ProviderConfig{Name: "openai"},
			Image: ProviderConfig{Name: "openai"},
		},
		Flows: FlowsConfig{
			Timeout:          2 * time.Minute,
			MaxUploadSeconds: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. path may be empty. A .env file in the
// working directory is loaded first if present; it never overrides
// variables already set in the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) applyEnv() {
	c.Server.Address = envStr("MUSICKLY_ADDR", c.Server.Address)
	c.Server.MaxBodyBytes = int64(envInt("MUSICKLY_MAX_BODY_BYTES", int(c.Server.MaxBodyBytes)))
	if origins := os.Getenv("MUSICKLY_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	c.Providers.LLM.Name = envStr("MUSICKLY_LLM_PROVIDER", c.Providers.LLM.Name)
	c.Providers.TTS.Name = envStr("MUSICKLY_TTS_PROVIDER", c.Providers.TTS.Name)
	c.Providers.STT.Name = envStr("MUSICKLY_STT_PROVIDER", c.Providers.STT.Name)
	c.Providers.Image.Name = envStr("MUSICKLY_IMAGE_PROVIDER", c.Providers.Image.Name)

	c.Flows.Timeout = envDuration("MUSICKLY_FLOW_TIMEOUT", c.Flows.Timeout)
	c.Flows.MaxUploadSeconds = envInt("MUSICKLY_MAX_UPLOAD_SECONDS", c.Flows.MaxUploadSeconds)
	c.Flows.Voice = envStr("MUSICKLY_VOICE", c.Flows.Voice)

	c.Logging.Level = envStr("MUSICKLY_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = envStr("MUSICKLY_LOG_FORMAT", c.Logging.Format)
}

// Validate performs validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Providers.Validate(); err != nil {
		return fmt.Errorf("providers config: %w", err)
	}
	if err := c.Flows.Validate(); err != nil {
		return fmt.Errorf("flows config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if s.MaxBodyBytes < 1024 {
		return fmt.Errorf("max_body_bytes must be at least 1024, got %d", s.MaxBodyBytes)
	}
	if s.ReadTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

// Validate checks that every kind names a provider.
func (p *ProvidersConfig) Validate() error {
	for kind, pc := range map[string]ProviderConfig{
		"llm":   p.LLM,
		"tts":   p.TTS,
		"stt":   p.STT,
		"image": p.Image,
	} {
		if pc.Name == "" {
			return fmt.Errorf("%s provider name cannot be empty", kind)
		}
	}
	return nil
}

// Validate validates flow configuration
func (f *FlowsConfig) Validate() error {
	if f.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", f.Timeout)
	}
	if f.MaxUploadSeconds < 0 {
		return fmt.Errorf("max_upload_seconds cannot be negative, got %d", f.MaxUploadSeconds)
	}
	return nil
}

// MaxUpload is MaxUploadSeconds as a duration.
func (f *FlowsConfig) MaxUpload() time.Duration {
	return time.Duration(f.MaxUploadSeconds) * time.Second
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "json", "console", "text":
	default:
		return fmt.Errorf("invalid log format %q (must be json, console or text)", l.Format)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration syntax or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
