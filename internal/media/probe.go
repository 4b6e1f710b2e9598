// Package media identifies uploaded audio and measures it before it is sent
// to a speech model.
//
// WAV, MP3 and Ogg Vorbis are decoded far enough to learn their layout and
// length. Other containers a browser may record (WebM/Opus, MP4) are passed
// through unprobed.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	gowav "github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// Format is a detected container.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOgg     Format = "ogg"
	FormatUnknown Format = "unknown"
)

var (
	// ErrCorrupt is returned when a recognised container fails to decode.
	ErrCorrupt = errors.New("media: corrupt audio")

	// ErrTooLong is returned by CheckDuration.
	ErrTooLong = errors.New("media: recording too long")
)

// Info describes an upload.
type Info struct {
	Format     Format
	MediaType  string
	SampleRate int
	Channels   int
	Duration   time.Duration
	// Probed is false when the container was not decoded and the other
	// measurements are unknown.
	Probed bool
}

// Detect sniffs the container from magic bytes, falling back to the declared
// media type.
func Detect(data []byte, mediaType string) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		// Ogg can also carry Opus; only Vorbis is decoded, so let the
		// declared type break the tie.
		if strings.Contains(strings.ToLower(mediaType), "opus") {
			return FormatUnknown
		}
		return FormatOgg
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return FormatMP3
	}

	switch strings.ToLower(mediaType) {
	case "audio/mpeg", "audio/mp3":
		return FormatMP3
	}
	return FormatUnknown
}

// Probe decodes enough of data to fill Info.
func Probe(data []byte, mediaType string) (Info, error) {
	info := Info{Format: Detect(data, mediaType), MediaType: mediaType}

	var err error
	switch info.Format {
	case FormatWAV:
		err = probeWAV(data, &info)
	case FormatMP3:
		err = probeMP3(data, &info)
	case FormatOgg:
		err = probeOgg(data, &info)
	default:
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("%w: %s: %v", ErrCorrupt, info.Format, err)
	}
	info.Probed = true
	return info, nil
}

// CheckDuration rejects probed media longer than max. Unprobed media and a
// zero max always pass.
func CheckDuration(info Info, max time.Duration) error {
	if !info.Probed || max <= 0 || info.Duration <= max {
		return nil
	}
	return fmt.Errorf("%w: %s exceeds %s", ErrTooLong, info.Duration.Round(time.Second), max)
}

func probeWAV(data []byte, info *Info) error {
	dec := gowav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return errors.New("invalid RIFF/WAVE header")
	}
	if err := dec.FwdToPCM(); err != nil {
		return err
	}
	info.SampleRate = int(dec.SampleRate)
	info.Channels = int(dec.NumChans)
	if bytesPerSec := int64(dec.SampleRate) * int64(dec.NumChans) * int64(dec.BitDepth) / 8; bytesPerSec > 0 {
		info.Duration = time.Duration(dec.PCMLen()) * time.Second / time.Duration(bytesPerSec)
	}
	if info.MediaType == "" {
		info.MediaType = "audio/wav"
	}
	return nil
}

func probeMP3(data []byte, info *Info) error {
	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return err
	}
	info.SampleRate = dec.SampleRate()
	// go-mp3 always decodes to 16-bit stereo
	info.Channels = 2
	if n := dec.Length(); n > 0 && info.SampleRate > 0 {
		frames := n / 4
		info.Duration = time.Duration(frames) * time.Second / time.Duration(info.SampleRate)
	}
	if info.MediaType == "" {
		info.MediaType = "audio/mpeg"
	}
	return nil
}

func probeOgg(data []byte, info *Info) error {
	r, err := oggvorbis.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	info.SampleRate = r.SampleRate()
	info.Channels = r.Channels()
	if n := r.Length(); n > 0 && info.SampleRate > 0 {
		info.Duration = time.Duration(n) * time.Second / time.Duration(info.SampleRate)
	}
	if info.MediaType == "" {
		info.MediaType = "audio/ogg"
	}
	return nil
}
