package tts

import (
	"context"

	"github.com/chriscow/musickly/pkg/audio/wav"
)

// SynthesizeRequest contains parameters for text-to-speech synthesis.
type SynthesizeRequest struct {
	Text  string
	Voice string
	Speed float32
}

// Speech is raw linear PCM returned by a provider together with its layout.
type Speech struct {
	PCM    []byte
	Params wav.Params
}

// TTSCapabilities describes the capabilities of a TTS provider.
type TTSCapabilities struct {
	SupportedVoices      []string
	SampleRate           int
	SupportsSpeedControl bool
}

// TTS is the main interface for text-to-speech providers.
type TTS interface {
	// Synthesize converts text to a complete PCM buffer.
	Synthesize(ctx context.Context, req SynthesizeRequest) (Speech, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() TTSCapabilities
}
