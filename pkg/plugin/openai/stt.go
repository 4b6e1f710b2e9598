package openai

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/stt"
	openai "github.com/sashabaranov/go-openai"
)

// maxWhisperUpload is the API's per-file limit.
const maxWhisperUpload = 25 << 20

// WhisperSTT implements STT using OpenAI's Whisper API.
type WhisperSTT struct {
	client   *openai.Client
	model    string
	language string
}

// NewWhisperSTT creates a new OpenAI Whisper STT provider.
func NewWhisperSTT(cfg Config) (*WhisperSTT, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &WhisperSTT{
		client:   client,
		model:    orDefault(cfg.Model, openai.Whisper1),
		language: cfg.Language,
	}, nil
}

func newOpenAISTT(cfg map[string]any) (any, error) {
	return NewWhisperSTT(configFromMap(cfg))
}

// Transcribe uploads the whole recording in one request.
func (w *WhisperSTT) Transcribe(ctx context.Context, req stt.TranscribeRequest) (stt.Transcript, error) {
	if len(req.Audio) == 0 {
		return stt.Transcript{}, ai.InvalidInput("recording is empty")
	}
	if len(req.Audio) > maxWhisperUpload {
		return stt.Transcript{}, ai.InvalidInput("recording is %d bytes, limit is %d", len(req.Audio), maxWhisperUpload)
	}

	start := time.Now()
	lang := orDefault(req.Language, w.language)

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: uploadName(req.MediaType),
		Reader:   bytes.NewReader(req.Audio),
		Prompt:   req.Prompt,
		Language: lang,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		slog.Error("whisper transcription failed", "model", w.model, "bytes", len(req.Audio), "error", err)
		return stt.Transcript{}, classify("transcription", err)
	}

	text := strings.TrimSpace(resp.Text)
	if resp.Language != "" {
		lang = resp.Language
	}

	slog.Debug("whisper transcription",
		"model", w.model,
		"bytes", len(req.Audio),
		"language", lang,
		"duration", time.Since(start))

	return stt.Transcript{Text: text, Language: lang}, nil
}

// uploadName picks a file name whose extension tells the API how to decode
// the upload.
func uploadName(mediaType string) string {
	mediaType = strings.ToLower(mediaType)
	switch {
	case strings.Contains(mediaType, "wav"):
		return "recording.wav"
	case strings.Contains(mediaType, "mpeg"), strings.Contains(mediaType, "mp3"):
		return "recording.mp3"
	case strings.Contains(mediaType, "ogg"):
		return "recording.ogg"
	case strings.Contains(mediaType, "mp4"), strings.Contains(mediaType, "m4a"), strings.Contains(mediaType, "aac"):
		return "recording.m4a"
	case strings.Contains(mediaType, "flac"):
		return "recording.flac"
	default:
		return "recording.webm"
	}
}

// Capabilities returns the STT capabilities.
func (w *WhisperSTT) Capabilities() stt.STTCapabilities {
	return stt.STTCapabilities{
		SupportedLanguages: []string{
			"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt", "tr", "pl", "ca", "nl",
			"ar", "sv", "it", "id", "hi", "fi", "vi", "he", "uk", "el", "ms", "cs", "ro",
			"da", "hu", "ta", "no", "th", "ur", "hr", "bg", "lt", "la", "mi", "ml", "cy",
			"sk", "te", "fa", "lv", "bn", "sr", "az", "sl", "kn", "et", "mk", "br", "eu",
			"is", "hy", "ne", "mn", "bs", "kk", "sq", "sw", "gl", "mr", "pa", "si", "km",
			"sn", "yo", "so", "af", "oc", "ka", "be", "tg", "sd", "gu", "am", "yi", "lo",
			"uz", "fo", "ht", "ps", "tk", "nn", "mt", "sa", "lb", "my", "bo", "tl", "mg",
			"as", "tt", "haw", "ln", "ha", "ba", "jw", "su",
		},
		SupportedMediaTypes: []string{
			"audio/webm", "audio/wav", "audio/mpeg", "audio/ogg", "audio/mp4", "audio/flac",
		},
		MaxUploadBytes: maxWhisperUpload,
	}
}
