package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chriscow/musickly/pkg/ai"
)

// ErrUnknownFlow is returned by Run for an unregistered flow name.
var ErrUnknownFlow = errors.New("unknown flow")

// Definition describes a flow that can be invoked by name with a JSON input.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	invoke func(ctx context.Context, s *Service, raw json.RawMessage) (any, error)
}

func define[In, Out any](name, description string, fn func(*Service, context.Context, In) (Out, error)) Definition {
	return Definition{
		Name:        name,
		Description: description,
		invoke: func(ctx context.Context, s *Service, raw json.RawMessage) (any, error) {
			var in In
			if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				if err := json.Unmarshal(raw, &in); err != nil {
					return nil, s.reject(s.flowLogger(ctx, name), name,
						ai.InvalidInput("malformed %s input: %v", name, err), time.Now())
				}
			}
			return fn(s, ctx, in)
		},
	}
}

var definitions = map[string]Definition{}

func init() {
	for _, d := range []Definition{
		define("lyrics", "Write lyrics for a song from its title, genre, mood and theme", (*Service).Lyrics),
		define("song-idea", "Suggest a style, theme and name for today's song", (*Service).SongIdea),
		define("album-art", "Render a square album cover", (*Service).AlbumArt),
		define("camera-to-theme", "Describe a soundtrack that matches a photo", (*Service).ThemeMusic),
		define("mindfulness", "Voice a meditation phrase as a WAV soundscape", (*Service).Mindfulness),
		define("voice-to-music", "Turn a voice recording into a musical track", (*Service).VoiceToMusic),
		define("neural-remix", "Remix an uploaded track into another genre", (*Service).NeuralRemix),
	} {
		definitions[d.Name] = d
	}
}

// Definitions lists every flow sorted by name.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a flow by name.
func Lookup(name string) (Definition, bool) {
	d, ok := definitions[name]
	return d, ok
}

// Run invokes the named flow with a JSON-encoded input. The result is one
// of the flow's output structs.
func (s *Service) Run(ctx context.Context, name string, input json.RawMessage) (any, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, name)
	}
	return d.invoke(ctx, s, input)
}
