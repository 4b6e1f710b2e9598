package flow

import (
	"context"
	"strings"

	"github.com/chriscow/musickly/internal/media"
	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/image"
	"github.com/chriscow/musickly/pkg/ai/llm"
	"github.com/chriscow/musickly/pkg/ai/stt"
	"github.com/chriscow/musickly/pkg/ai/tts"
	"github.com/chriscow/musickly/pkg/audio/wav"
	"github.com/chriscow/musickly/pkg/datauri"
)

func (s *Service) record(kind string, err error) {
	s.metrics.RecordProviderCall(kind, outcome(err))
}

func missing(kind string) error {
	return ai.NewFatalError(nil, "no "+kind+" provider configured")
}

// chat returns the trimmed reply text. An empty reply is a fatal upstream
// failure.
func (s *Service) chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	if s.providers.LLM == nil {
		return "", missing("llm")
	}
	resp, err := s.providers.LLM.Chat(ctx, req)
	if err == nil && strings.TrimSpace(resp.Message.Content) == "" {
		err = ai.NewFatalError(nil, "model returned no text")
	}
	s.record("llm", err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// speak synthesizes text and wraps the PCM in a WAV data URI.
func (s *Service) speak(ctx context.Context, text, emptyMsg string) (string, error) {
	if s.providers.TTS == nil {
		return "", missing("tts")
	}
	speech, err := s.providers.TTS.Synthesize(ctx, tts.SynthesizeRequest{Text: text, Voice: s.opts.Voice})
	if err == nil && len(speech.PCM) == 0 {
		err = ai.NewFatalError(nil, emptyMsg)
	}
	s.record("tts", err)
	if err != nil {
		return "", err
	}

	uri, err := wav.EncodeDataURI(speech.PCM, speech.Params.WithDefaults())
	if err != nil {
		// the provider handed back PCM that does not fit its own layout
		return "", ai.NewFatalError(err, "speech provider returned malformed audio")
	}
	s.metrics.RecordMedia("tts", len(uri))
	return uri, nil
}

// transcribe probes the recording, enforces the upload limit and returns the
// transcript, which may be empty.
func (s *Service) transcribe(ctx context.Context, rec datauri.DataURI) (string, media.Info, error) {
	info, err := media.Probe(rec.Data, rec.MediaType)
	if err != nil {
		return "", info, ai.InvalidInput("%v", err)
	}
	if err := media.CheckDuration(info, s.opts.MaxUpload); err != nil {
		return "", info, ai.InvalidInput("%v", err)
	}

	if s.providers.STT == nil {
		return "", info, missing("stt")
	}
	tr, err := s.providers.STT.Transcribe(ctx, stt.TranscribeRequest{
		Audio:     rec.Data,
		MediaType: rec.MediaType,
	})
	s.record("stt", err)
	if err != nil {
		return "", info, err
	}
	return strings.TrimSpace(tr.Text), info, nil
}

// render generates an image and returns it as a data URI.
func (s *Service) render(ctx context.Context, prompt string) (string, error) {
	if s.providers.Image == nil {
		return "", missing("image")
	}
	img, err := s.providers.Image.Generate(ctx, image.GenerateRequest{Prompt: prompt})
	if err == nil && len(img.Data) == 0 {
		err = ai.NewFatalError(nil, "image generation failed")
	}
	s.record("image", err)
	if err != nil {
		return "", err
	}

	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "image/png"
	}
	uri := datauri.Encode(mediaType, img.Data)
	s.metrics.RecordMedia("image", len(uri))
	return uri, nil
}
