package openai

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/tts"
	"github.com/chriscow/musickly/pkg/audio/wav"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAITTS implements the TTS interface using OpenAI's speech endpoint.
// Audio is requested as raw PCM, which the API returns as 24 kHz signed
// 16-bit little-endian mono.
type OpenAITTS struct {
	client *openai.Client
	model  string
	voice  string
}

// NewOpenAITTS creates a speech provider.
func NewOpenAITTS(cfg Config) (*OpenAITTS, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAITTS{
		client: client,
		model:  orDefault(cfg.Model, string(openai.TTSModel1)),
		voice:  orDefault(cfg.Voice, string(openai.VoiceAlloy)),
	}, nil
}

func newOpenAITTS(cfg map[string]any) (any, error) {
	return NewOpenAITTS(configFromMap(cfg))
}

// Synthesize converts text to a complete PCM buffer.
func (o *OpenAITTS) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (tts.Speech, error) {
	start := time.Now()
	voice := o.getVoice(req.Voice)

	speechReq := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	}
	if req.Speed > 0 {
		speechReq.Speed = float64(req.Speed)
	}

	resp, err := o.client.CreateSpeech(ctx, speechReq)
	if err != nil {
		slog.Error("openai speech failed", "model", o.model, "voice", voice, "error", err)
		return tts.Speech{}, classify("speech", err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(resp)
	if err != nil {
		return tts.Speech{}, classify("speech", err)
	}
	if len(pcm) == 0 {
		return tts.Speech{}, ai.NewFatalError(nil, "openai speech: empty audio returned")
	}

	slog.Debug("openai speech synthesized",
		"model", o.model,
		"voice", voice,
		"bytes", len(pcm),
		"duration", time.Since(start))

	return tts.Speech{PCM: pcm, Params: wav.DefaultParams}, nil
}

// getVoice returns the voice to use, preferring request voice over default
func (o *OpenAITTS) getVoice(requestVoice string) string {
	if requestVoice != "" {
		return requestVoice
	}
	return o.voice
}

// Capabilities returns the OpenAI TTS provider's capabilities
func (o *OpenAITTS) Capabilities() tts.TTSCapabilities {
	return tts.TTSCapabilities{
		SupportedVoices:      []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"},
		SampleRate:           wav.DefaultParams.SampleRate,
		SupportsSpeedControl: true,
	}
}
