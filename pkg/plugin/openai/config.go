// Package openai provides OpenAI-based AI providers (LLM, TTS, STT, image).
// Every provider talks to the same API through github.com/sashabaranov/go-openai.
package openai

import (
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds the settings shared by every OpenAI provider.
type Config struct {
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"` // optional; proxies and tests
	Model    string `json:"model"`
	Voice    string `json:"voice"`    // TTS only
	Language string `json:"language"` // STT only; empty means auto-detect
	Size     string `json:"size"`     // image only
}

// configFromMap reads a registry config map. A missing api_key falls back to
// the OPENAI_API_KEY environment variable.
func configFromMap(cfg map[string]any) Config {
	var c Config
	if key, ok := cfg["api_key"].(string); ok && key != "" {
		c.APIKey = key
	} else {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	c.BaseURL, _ = cfg["base_url"].(string)
	c.Model, _ = cfg["model"].(string)
	c.Voice, _ = cfg["voice"].(string)
	c.Language, _ = cfg["language"].(string)
	c.Size, _ = cfg["size"].(string)
	return c
}

func newClient(cfg Config) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY environment variable or provide api_key in config)")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
