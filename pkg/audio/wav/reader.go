package wav

import (
	"encoding/binary"
	"fmt"
	"time"
)

const formatPCM = 1

// Header is the parsed fmt and data chunk information of a WAV file.
type Header struct {
	ChunkSize     uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
	DataOffset    int // offset of the first PCM byte
}

// Params returns the PCM layout described by the header.
func (h Header) Params() Params {
	return Params{
		Channels:   int(h.NumChannels),
		SampleRate: int(h.SampleRate),
		BitDepth:   int(h.BitsPerSample),
	}
}

// Duration is the playback length of the data chunk.
func (h Header) Duration() time.Duration {
	if h.ByteRate == 0 {
		return 0
	}
	return time.Duration(float64(h.DataSize) / float64(h.ByteRate) * float64(time.Second))
}

// ParseHeader reads the RIFF, fmt and data chunk headers from b. Unknown
// chunks between fmt and data are skipped.
func ParseHeader(b []byte) (Header, error) {
	var h Header

	if len(b) < 12 {
		return h, fmt.Errorf("%w: %d bytes is too short for a RIFF header", ErrInvalidInput, len(b))
	}
	if string(b[0:4]) != "RIFF" {
		return h, fmt.Errorf("%w: not a valid RIFF file", ErrInvalidInput)
	}
	if string(b[8:12]) != "WAVE" {
		return h, fmt.Errorf("%w: not a valid WAVE file", ErrInvalidInput)
	}
	h.ChunkSize = binary.LittleEndian.Uint32(b[4:8])

	var haveFmt bool
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := binary.LittleEndian.Uint32(b[off+4 : off+8])
		body := off + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(b) {
				return h, fmt.Errorf("%w: fmt chunk too small: %d bytes", ErrInvalidInput, size)
			}
			f := b[body : body+16]
			h.AudioFormat = binary.LittleEndian.Uint16(f[0:2])
			h.NumChannels = binary.LittleEndian.Uint16(f[2:4])
			h.SampleRate = binary.LittleEndian.Uint32(f[4:8])
			h.ByteRate = binary.LittleEndian.Uint32(f[8:12])
			h.BlockAlign = binary.LittleEndian.Uint16(f[12:14])
			h.BitsPerSample = binary.LittleEndian.Uint16(f[14:16])
			haveFmt = true
		case "data":
			if !haveFmt {
				return h, fmt.Errorf("%w: data chunk before fmt chunk", ErrInvalidInput)
			}
			h.DataSize = size
			h.DataOffset = body
			return h, nil
		}

		// chunks are word aligned
		next := uint64(body) + uint64(size) + uint64(size&1)
		if next > uint64(len(b)) {
			break
		}
		off = int(next)
	}

	if !haveFmt {
		return h, fmt.Errorf("%w: missing fmt chunk", ErrInvalidInput)
	}
	return h, fmt.Errorf("%w: missing data chunk", ErrInvalidInput)
}

// PCM returns the data chunk payload of a parsed file, clipped to the
// bytes actually present.
func PCM(b []byte, h Header) []byte {
	end := uint64(h.DataOffset) + uint64(h.DataSize)
	if end > uint64(len(b)) {
		end = uint64(len(b))
	}
	return b[h.DataOffset:int(end)]
}
