package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/chriscow/musickly/pkg/ai/stt"
)

const (
	// DefaultTranscript is used when no transcript is provided
	DefaultTranscript = "This is a fake transcript from the fake STT provider."
)

// FakeSTT is a fake STT implementation for testing.
type FakeSTT struct {
	// Err, when set, is returned from every Transcribe call.
	Err error

	transcript string

	mu       sync.Mutex
	requests []stt.TranscribeRequest
}

// NewFakeSTT creates a new fake STT provider with a fixed transcript.
// Pass a single space to simulate silence.
func NewFakeSTT(transcript string) *FakeSTT {
	if transcript == "" {
		transcript = DefaultTranscript
	}
	return &FakeSTT{transcript: transcript}
}

// Transcribe returns the fixed transcript for any non-empty recording.
func (f *FakeSTT) Transcribe(ctx context.Context, req stt.TranscribeRequest) (stt.Transcript, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return stt.Transcript{}, f.Err
	}
	if err := ctx.Err(); err != nil {
		return stt.Transcript{}, err
	}
	if len(req.Audio) == 0 {
		return stt.Transcript{}, fmt.Errorf("empty recording")
	}

	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	return stt.Transcript{Text: f.transcript, Language: lang}, nil
}

// Requests returns a copy of every request seen so far.
func (f *FakeSTT) Requests() []stt.TranscribeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stt.TranscribeRequest(nil), f.requests...)
}

// Capabilities returns the fake STT capabilities.
func (f *FakeSTT) Capabilities() stt.STTCapabilities {
	return stt.STTCapabilities{
		SupportedLanguages:  []string{"en", "es", "fr"},
		SupportedMediaTypes: []string{"audio/wav", "audio/webm", "audio/mpeg", "audio/ogg"},
		MaxUploadBytes:      25 << 20,
	}
}
