package flow

import (
	"strings"
	"unicode/utf8"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/datauri"
)

// minTextLen is the shortest accepted free-text field.
const minTextLen = 2

// Mindfulness defaults and bounds.
const (
	DefaultDurationMinutes    = 10
	MaxDurationMinutes        = 60
	DefaultEnvironmentSetting = "forest"
)

func requireText(field, v string) error {
	if utf8.RuneCountInString(strings.TrimSpace(v)) < minTextLen {
		return ai.InvalidInput("%s must be at least %d characters", field, minTextLen)
	}
	return nil
}

func parseMedia(field, uri string, kinds ...string) (datauri.DataURI, error) {
	if strings.TrimSpace(uri) == "" {
		return datauri.DataURI{}, ai.InvalidInput("%s is required", field)
	}
	d, err := datauri.Parse(uri)
	if err != nil {
		return datauri.DataURI{}, ai.InvalidInput("%s: %v", field, err)
	}
	if len(d.Data) == 0 {
		return datauri.DataURI{}, ai.InvalidInput("%s is empty", field)
	}
	for _, k := range kinds {
		if d.Is(k) || d.MediaType == k {
			return d, nil
		}
	}
	return datauri.DataURI{}, ai.InvalidInput("%s has unsupported media type %q", field, d.MediaType)
}

// LyricsInput describes the song to write lyrics for.
type LyricsInput struct {
	Title string `json:"title"`
	Genre string `json:"genre"`
	Mood  string `json:"mood"`
	Theme string `json:"theme"`
}

func (in *LyricsInput) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"title", in.Title}, {"genre", in.Genre}, {"mood", in.Mood}, {"theme", in.Theme},
	} {
		if err := requireText(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

type LyricsOutput struct {
	Lyrics string `json:"lyrics"`
}

// SongIdeaInput is empty; the idea is the model's choice.
type SongIdeaInput struct{}

func (in *SongIdeaInput) Validate() error { return nil }

type SongIdeaOutput struct {
	Style string `json:"style"`
	Theme string `json:"theme"`
	Name  string `json:"name"`
}

type AlbumArtInput struct {
	Title string `json:"title"`
	Mood  string `json:"mood"`
	Style string `json:"style"`
}

func (in *AlbumArtInput) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"title", in.Title}, {"mood", in.Mood}, {"style", in.Style},
	} {
		if err := requireText(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

type AlbumArtOutput struct {
	AlbumArtDataURI string `json:"albumArtDataUri"`
}

// ThemeMusicInput carries a camera photo.
type ThemeMusicInput struct {
	PhotoDataURI string `json:"photoDataUri"`
}

func (in *ThemeMusicInput) Validate() error {
	_, err := parseMedia("photoDataUri", in.PhotoDataURI, "image")
	return err
}

type ThemeMusicOutput struct {
	Soundtrack string `json:"soundtrack"`
}

// MindfulnessInput. Zero DurationMinutes and empty EnvironmentDescription
// take their defaults during validation.
type MindfulnessInput struct {
	MeditationType         string `json:"meditationType"`
	DurationMinutes        int    `json:"durationMinutes"`
	EnvironmentDescription string `json:"environmentDescription"`
}

func (in *MindfulnessInput) Validate() error {
	if in.DurationMinutes == 0 {
		in.DurationMinutes = DefaultDurationMinutes
	}
	if strings.TrimSpace(in.EnvironmentDescription) == "" {
		in.EnvironmentDescription = DefaultEnvironmentSetting
	}
	if err := requireText("meditationType", in.MeditationType); err != nil {
		return err
	}
	if in.DurationMinutes < 1 || in.DurationMinutes > MaxDurationMinutes {
		return ai.InvalidInput("durationMinutes must be between 1 and %d, got %d", MaxDurationMinutes, in.DurationMinutes)
	}
	return requireText("environmentDescription", in.EnvironmentDescription)
}

type MindfulnessOutput struct {
	Media  string `json:"media"`
	Phrase string `json:"phrase"`
}

// VoiceToMusicInput carries a microphone recording.
type VoiceToMusicInput struct {
	VoiceDataURI string `json:"voiceDataUri"`

	voice datauri.DataURI
}

func (in *VoiceToMusicInput) Validate() error {
	var err error
	in.voice, err = parseMedia("voiceDataUri", in.VoiceDataURI, "audio", "video/webm")
	return err
}

type VoiceToMusicOutput struct {
	MusicDataURI string `json:"musicDataUri"`
	Transcript   string `json:"transcript"`
}

type NeuralRemixInput struct {
	TrackDataURI string `json:"trackDataUri"`
	Genre        string `json:"genre"`

	track datauri.DataURI
}

func (in *NeuralRemixInput) Validate() error {
	if err := requireText("genre", in.Genre); err != nil {
		return err
	}
	var err error
	in.track, err = parseMedia("trackDataUri", in.TrackDataURI, "audio", "video/webm")
	return err
}

type NeuralRemixOutput struct {
	RemixedTrackDataURI string `json:"remixedTrackDataUri"`
	Arrangement         string `json:"arrangement"`
}
