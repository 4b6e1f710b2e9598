// Package stt provides interfaces and types for speech-to-text providers.
// Recordings are transcribed in a single batch request; the whole upload
// is in memory before transcription starts.
package stt

import "context"

// TranscribeRequest carries one complete recording.
type TranscribeRequest struct {
	Audio     []byte
	MediaType string // e.g. audio/webm, audio/wav
	Language  string // optional ISO-639-1 hint
	Prompt    string // optional vocabulary hint
}

// Transcript is the recognized text of a recording.
type Transcript struct {
	Text     string
	Language string // detected or configured language code
}

// STTCapabilities describes the capabilities of an STT provider.
type STTCapabilities struct {
	SupportedLanguages  []string
	SupportedMediaTypes []string
	MaxUploadBytes      int
}

// STT is the main interface for speech-to-text providers.
type STT interface {
	// Transcribe converts a recording to text.
	Transcribe(ctx context.Context, req TranscribeRequest) (Transcript, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() STTCapabilities
}
