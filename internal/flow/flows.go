package flow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/llm"
)

// Lyrics writes song lyrics.
func (s *Service) Lyrics(ctx context.Context, in LyricsInput) (LyricsOutput, error) {
	return run(ctx, s, "lyrics", &in, func(ctx context.Context) (LyricsOutput, error) {
		text, err := s.chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{llm.UserMessage(lyricsPrompt(in))},
		})
		if err != nil {
			return LyricsOutput{}, err
		}
		return LyricsOutput{Lyrics: text}, nil
	})
}

// SongIdea proposes a style, theme and name for a new song.
func (s *Service) SongIdea(ctx context.Context, in SongIdeaInput) (SongIdeaOutput, error) {
	return run(ctx, s, "song-idea", &in, func(ctx context.Context) (SongIdeaOutput, error) {
		text, err := s.chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{llm.UserMessage(songIdeaPrompt)},
			JSON:     true,
		})
		if err != nil {
			return SongIdeaOutput{}, err
		}

		var out SongIdeaOutput
		if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil {
			return SongIdeaOutput{}, ai.NewFatalError(err, "model returned a malformed song idea")
		}
		if out.Style == "" || out.Theme == "" || out.Name == "" {
			return SongIdeaOutput{}, ai.NewFatalError(nil, "model returned an incomplete song idea")
		}
		return out, nil
	})
}

// AlbumArt renders a square cover image.
func (s *Service) AlbumArt(ctx context.Context, in AlbumArtInput) (AlbumArtOutput, error) {
	return run(ctx, s, "album-art", &in, func(ctx context.Context) (AlbumArtOutput, error) {
		uri, err := s.render(ctx, albumArtPrompt(in))
		if err != nil {
			return AlbumArtOutput{}, err
		}
		return AlbumArtOutput{AlbumArtDataURI: uri}, nil
	})
}

// ThemeMusic describes a soundtrack that matches a photo.
func (s *Service) ThemeMusic(ctx context.Context, in ThemeMusicInput) (ThemeMusicOutput, error) {
	return run(ctx, s, "camera-to-theme", &in, func(ctx context.Context) (ThemeMusicOutput, error) {
		text, err := s.chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{llm.UserMessage(themeMusicPrompt, in.PhotoDataURI)},
		})
		if err != nil {
			return ThemeMusicOutput{}, err
		}
		return ThemeMusicOutput{Soundtrack: text}, nil
	})
}

// Mindfulness writes a meditation phrase and voices it.
func (s *Service) Mindfulness(ctx context.Context, in MindfulnessInput) (MindfulnessOutput, error) {
	return run(ctx, s, "mindfulness", &in, func(ctx context.Context) (MindfulnessOutput, error) {
		phrase, err := s.chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{llm.UserMessage(mindfulnessPrompt(in))},
		})
		if err != nil {
			return MindfulnessOutput{}, err
		}
		uri, err := s.speak(ctx, phrase, "no media returned")
		if err != nil {
			return MindfulnessOutput{}, err
		}
		return MindfulnessOutput{Media: uri, Phrase: phrase}, nil
	})
}

// VoiceToMusic transcribes a sung or hummed recording and renders a track
// from it.
func (s *Service) VoiceToMusic(ctx context.Context, in VoiceToMusicInput) (VoiceToMusicOutput, error) {
	return run(ctx, s, "voice-to-music", &in, func(ctx context.Context) (VoiceToMusicOutput, error) {
		text, _, err := s.transcribe(ctx, in.voice)
		if err != nil {
			return VoiceToMusicOutput{}, err
		}
		if text == "" {
			return VoiceToMusicOutput{}, ai.NewFatalError(nil, "could not convert voice data to text")
		}
		uri, err := s.speak(ctx, voiceToMusicPrompt(text), "could not generate musical track")
		if err != nil {
			return VoiceToMusicOutput{}, err
		}
		return VoiceToMusicOutput{MusicDataURI: uri, Transcript: text}, nil
	})
}

// NeuralRemix re-imagines an uploaded track in another genre.
func (s *Service) NeuralRemix(ctx context.Context, in NeuralRemixInput) (NeuralRemixOutput, error) {
	return run(ctx, s, "neural-remix", &in, func(ctx context.Context) (NeuralRemixOutput, error) {
		text, info, err := s.transcribe(ctx, in.track)
		if err != nil {
			return NeuralRemixOutput{}, err
		}
		arrangement, err := s.chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{llm.UserMessage(remixPrompt(in.Genre, text, info))},
		})
		if err != nil {
			return NeuralRemixOutput{}, err
		}
		uri, err := s.speak(ctx, arrangement, "could not generate remixed track")
		if err != nil {
			return NeuralRemixOutput{}, err
		}
		return NeuralRemixOutput{RemixedTrackDataURI: uri, Arrangement: arrangement}, nil
	})
}

// extractJSON trims prose or code fences around the first JSON object.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
