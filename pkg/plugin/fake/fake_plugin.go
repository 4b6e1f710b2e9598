// Package fake registers deterministic providers of every kind. They back
// the test suite and let the server run without network access.
package fake

import (
	imagefake "github.com/chriscow/musickly/pkg/ai/image/fake"
	llmfake "github.com/chriscow/musickly/pkg/ai/llm/fake"
	sttfake "github.com/chriscow/musickly/pkg/ai/stt/fake"
	ttsfake "github.com/chriscow/musickly/pkg/ai/tts/fake"
	"github.com/chriscow/musickly/pkg/plugin"
)

// newFakeSTT creates a new fake STT provider from configuration.
func newFakeSTT(cfg map[string]any) (any, error) {
	transcript := sttfake.DefaultTranscript
	if t, ok := cfg["transcript"].(string); ok {
		transcript = t
	}
	return sttfake.NewFakeSTT(transcript), nil
}

// newFakeTTS creates a new fake TTS provider from configuration.
func newFakeTTS(cfg map[string]any) (any, error) {
	return ttsfake.NewFakeTTS(), nil
}

// newFakeLLM creates a new fake LLM provider from configuration.
func newFakeLLM(cfg map[string]any) (any, error) {
	responses := []string{
		"This is a fake LLM response",
		"Neon lights over an empty highway",
		"Breathe in slowly and let the forest hold you",
	}

	switch r := cfg["responses"].(type) {
	case []string:
		responses = r
	case []any:
		// YAML decodes sequences as []any
		responses = responses[:0:0]
		for _, v := range r {
			if s, ok := v.(string); ok {
				responses = append(responses, s)
			}
		}
	}

	return llmfake.NewFakeLLM(responses...), nil
}

func newFakeImage(cfg map[string]any) (any, error) {
	return imagefake.NewFakeGenerator(), nil
}

func init() {
	plugin.RegisterWithMetadata(&plugin.Plugin{
		Kind:        plugin.KindSTT,
		Name:        "fake",
		Factory:     newFakeSTT,
		Description: "Fake STT provider for testing and development",
		Version:     "1.0.0",
		Config: map[string]any{
			"transcript": "Customizable transcript text",
		},
	})

	plugin.RegisterWithMetadata(&plugin.Plugin{
		Kind:        plugin.KindTTS,
		Name:        "fake",
		Factory:     newFakeTTS,
		Description: "Fake TTS provider rendering a sine tone",
		Version:     "1.0.0",
		Config:      map[string]any{},
	})

	plugin.RegisterWithMetadata(&plugin.Plugin{
		Kind:        plugin.KindLLM,
		Name:        "fake",
		Factory:     newFakeLLM,
		Description: "Fake LLM provider for testing and development",
		Version:     "1.0.0",
		Config: map[string]any{
			"responses": []string{"List of predefined responses"},
		},
	})

	plugin.RegisterWithMetadata(&plugin.Plugin{
		Kind:        plugin.KindImage,
		Name:        "fake",
		Factory:     newFakeImage,
		Description: "Fake image generator producing small solid-color PNGs",
		Version:     "1.0.0",
		Config:      map[string]any{},
	})
}
