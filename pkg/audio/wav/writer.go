// Package wav wraps raw linear PCM in a canonical RIFF/WAVE container and
// reads such headers back.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/chriscow/musickly/pkg/datauri"
)

// HeaderSize is the length of the canonical PCM header written by Encode.
const HeaderSize = 44

// MediaType is the MIME type used for encoded WAV data URIs.
const MediaType = "audio/wav"

// ErrInvalidInput is returned when the PCM buffer or parameters cannot
// produce a well-formed file.
var ErrInvalidInput = errors.New("invalid wav input")

// Params describes the layout of a PCM buffer.
type Params struct {
	Channels   int
	SampleRate int // samples per second
	BitDepth   int // 8, 16, 24 or 32
}

// DefaultParams matches the speech models' raw output: mono, 24 kHz, 16-bit.
var DefaultParams = Params{
	Channels:   1,
	SampleRate: 24000,
	BitDepth:   16,
}

// WithDefaults fills zero fields from DefaultParams.
func (p Params) WithDefaults() Params {
	if p.Channels == 0 {
		p.Channels = DefaultParams.Channels
	}
	if p.SampleRate == 0 {
		p.SampleRate = DefaultParams.SampleRate
	}
	if p.BitDepth == 0 {
		p.BitDepth = DefaultParams.BitDepth
	}
	return p
}

// BlockAlign is the size in bytes of one interleaved sample frame.
func (p Params) BlockAlign() int {
	return p.Channels * p.BitDepth / 8
}

// ByteRate is the number of bytes per second of audio.
func (p Params) ByteRate() int {
	return p.SampleRate * p.BlockAlign()
}

// Validate reports whether p can be written into a fmt chunk.
func (p Params) Validate() error {
	if p.Channels <= 0 || p.Channels > math.MaxUint16 {
		return fmt.Errorf("%w: channel count %d out of range", ErrInvalidInput, p.Channels)
	}
	if p.SampleRate <= 0 || int64(p.SampleRate) > math.MaxUint32 {
		return fmt.Errorf("%w: sample rate %d out of range", ErrInvalidInput, p.SampleRate)
	}
	switch p.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidInput, p.BitDepth)
	}
	if int64(p.ByteRate()) > math.MaxUint32 {
		return fmt.Errorf("%w: byte rate overflows header field", ErrInvalidInput)
	}
	return nil
}

// Encode returns a WAV file containing pcm verbatim behind a 44-byte header.
// The same inputs always produce the same bytes.
func Encode(pcm []byte, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty pcm buffer", ErrInvalidInput)
	}
	if len(pcm)%p.BlockAlign() != 0 {
		return nil, fmt.Errorf("%w: pcm length %d is not a multiple of block align %d",
			ErrInvalidInput, len(pcm), p.BlockAlign())
	}
	if uint64(len(pcm)) > math.MaxUint32-(HeaderSize-8) {
		return nil, fmt.Errorf("%w: pcm buffer of %d bytes exceeds RIFF size limit", ErrInvalidInput, len(pcm))
	}

	dataSize := uint32(len(pcm))
	out := make([]byte, HeaderSize+len(pcm))

	// RIFF header
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataSize)
	copy(out[8:12], "WAVE")

	// fmt chunk
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], formatPCM)
	binary.LittleEndian.PutUint16(out[22:24], uint16(p.Channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(p.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(p.ByteRate()))
	binary.LittleEndian.PutUint16(out[32:34], uint16(p.BlockAlign()))
	binary.LittleEndian.PutUint16(out[34:36], uint16(p.BitDepth))

	// data chunk
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataSize)
	copy(out[HeaderSize:], pcm)

	return out, nil
}

// EncodeDataURI encodes pcm as WAV and embeds it in a data:audio/wav URI.
func EncodeDataURI(pcm []byte, p Params) (string, error) {
	b, err := Encode(pcm, p)
	if err != nil {
		return "", err
	}
	return datauri.Encode(MediaType, b), nil
}
