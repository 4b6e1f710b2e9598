package fake

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/chriscow/musickly/pkg/ai/tts"
	"github.com/chriscow/musickly/pkg/audio/wav"
)

// FakeTTS is a fake TTS implementation for testing. It renders a 440 Hz
// tone whose length grows with the input text.
type FakeTTS struct {
	// Err, when set, is returned from every Synthesize call.
	Err error
	// Empty makes Synthesize succeed with no audio.
	Empty bool

	mu       sync.Mutex
	requests []tts.SynthesizeRequest
}

// NewFakeTTS creates a new fake TTS provider.
func NewFakeTTS() *FakeTTS {
	return &FakeTTS{}
}

// Synthesize generates a sine wave for the given text.
func (f *FakeTTS) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (tts.Speech, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return tts.Speech{}, f.Err
	}
	if err := ctx.Err(); err != nil {
		return tts.Speech{}, err
	}

	p := wav.DefaultParams
	if f.Empty {
		return tts.Speech{Params: p}, nil
	}

	// 10ms of audio per character, capped at five seconds
	duration := time.Duration(len(req.Text)) * 10 * time.Millisecond
	if duration > 5*time.Second {
		duration = 5 * time.Second
	}
	if duration < 10*time.Millisecond {
		duration = 10 * time.Millisecond
	}

	return tts.Speech{PCM: Tone(440, duration, p.SampleRate), Params: p}, nil
}

// Requests returns a copy of every request seen so far.
func (f *FakeTTS) Requests() []tts.SynthesizeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tts.SynthesizeRequest(nil), f.requests...)
}

// Capabilities returns the fake TTS capabilities.
func (f *FakeTTS) Capabilities() tts.TTSCapabilities {
	return tts.TTSCapabilities{
		SupportedVoices:      []string{"fake-voice-1", "fake-voice-2"},
		SampleRate:           wav.DefaultParams.SampleRate,
		SupportsSpeedControl: true,
	}
}

// Tone renders a mono 16-bit little-endian sine wave at 30% amplitude.
func Tone(frequency float64, duration time.Duration, sampleRate int) []byte {
	n := int(int64(duration) * int64(sampleRate) / int64(time.Second))
	data := make([]byte, n*2)
	for i := 0; i < n; i++ {
		sample := math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)) * 0.3
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(sample*32767)))
	}
	return data
}
