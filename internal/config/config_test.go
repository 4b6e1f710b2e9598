package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

var envKeys = []string{
	"MUSICKLY_ADDR", "MUSICKLY_MAX_BODY_BYTES", "MUSICKLY_ALLOWED_ORIGINS",
	"MUSICKLY_LLM_PROVIDER", "MUSICKLY_TTS_PROVIDER", "MUSICKLY_STT_PROVIDER", "MUSICKLY_IMAGE_PROVIDER",
	"MUSICKLY_FLOW_TIMEOUT", "MUSICKLY_MAX_UPLOAD_SECONDS", "MUSICKLY_VOICE",
	"MUSICKLY_LOG_LEVEL", "MUSICKLY_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "musickly.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	cfg, err := Load("")
	is.NoErr(err)
	is.Equal(cfg.Server.Address, ":8080")
	is.Equal(cfg.Providers.LLM.Name, "openai")
	is.Equal(cfg.Flows.Timeout, 2*time.Minute)
	is.Equal(cfg.Flows.MaxUpload(), 10*time.Minute)
	is.Equal(cfg.Logging.Format, "json")
}

func TestLoad_File(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	path := writeConfig(t, `
server:
  address: "127.0.0.1:9000"
providers:
  llm:
    name: fake
    options:
      responses: ["one", "two"]
  tts:
    name: openai
    options:
      voice: nova
flows:
  timeout: 45s
  max_upload_seconds: 120
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	is.NoErr(err)
	is.Equal(cfg.Server.Address, "127.0.0.1:9000")
	is.Equal(cfg.Server.MaxBodyBytes, int64(32<<20)) // untouched default
	is.Equal(cfg.Providers.LLM.Name, "fake")
	is.Equal(cfg.Providers.LLM.Options["responses"], []any{"one", "two"})
	is.Equal(cfg.Providers.TTS.Options["voice"], "nova")
	is.Equal(cfg.Providers.STT.Name, "openai")
	is.Equal(cfg.Flows.Timeout, 45*time.Second)
	is.Equal(cfg.Flows.MaxUploadSeconds, 120)
	is.Equal(cfg.Logging.Level, "debug")
}

func TestLoad_EnvOverrides(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	path := writeConfig(t, "server:\n  address: \":7000\"\n")
	t.Setenv("MUSICKLY_ADDR", ":9999")
	t.Setenv("MUSICKLY_TTS_PROVIDER", "fake")
	t.Setenv("MUSICKLY_FLOW_TIMEOUT", "30")
	t.Setenv("MUSICKLY_MAX_UPLOAD_SECONDS", "not-a-number")
	t.Setenv("MUSICKLY_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	is.NoErr(err)
	is.Equal(cfg.Server.Address, ":9999")
	is.Equal(cfg.Providers.TTS.Name, "fake")
	is.Equal(cfg.Flows.Timeout, 30*time.Second)
	is.Equal(cfg.Flows.MaxUploadSeconds, 600) // unparsable value falls back
	is.Equal(len(cfg.Server.AllowedOrigins), 2)
}

func TestLoad_Errors(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "failed to read config file"))

	_, err = Load(writeConfig(t, "server: [not, a, map"))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "failed to parse config file"))

	_, err = Load(writeConfig(t, "logging:\n  level: loud\n"))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "logging config"))
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"valid configuration", func(*Config) {}, ""},
		{"empty address", func(c *Config) { c.Server.Address = "" }, "address cannot be empty"},
		{"tiny body limit", func(c *Config) { c.Server.MaxBodyBytes = 10 }, "max_body_bytes"},
		{"missing provider", func(c *Config) { c.Providers.Image.Name = "" }, "image provider name"},
		{"zero timeout", func(c *Config) { c.Flows.Timeout = 0 }, "timeout must be positive"},
		{"negative upload limit", func(c *Config) { c.Flows.MaxUploadSeconds = -1 }, "max_upload_seconds"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				is.NoErr(err)
				return
			}
			is.True(err != nil)
			is.True(strings.Contains(err.Error(), tt.errorMsg))
		})
	}
}
