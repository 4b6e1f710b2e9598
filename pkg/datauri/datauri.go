// Package datauri parses and builds base64 data URIs of the form
// data:<mediatype>;base64,<payload>.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned by Parse for anything that is not a base64 data URI.
var ErrMalformed = errors.New("malformed data URI")

// DataURI is a decoded data URI.
type DataURI struct {
	MediaType string // e.g. "audio/wav", parameters stripped
	Data      []byte
}

// Encode builds a base64 data URI.
func Encode(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// String returns the URI form of d.
func (d DataURI) String() string {
	return Encode(d.MediaType, d.Data)
}

// Parse decodes a base64 data URI. Media type parameters other than base64
// (for example ";codecs=opus") are accepted and dropped.
func Parse(s string) (DataURI, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing data: scheme", ErrMalformed)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing payload separator", ErrMalformed)
	}

	params := strings.Split(meta, ";")
	if params[len(params)-1] != "base64" {
		return DataURI{}, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformed)
	}

	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType == "" {
		mediaType = "text/plain"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// browsers occasionally emit unpadded payloads
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return DataURI{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	return DataURI{MediaType: mediaType, Data: data}, nil
}

// Is reports whether the media type's top-level type matches kind, for
// example Is("image") for image/png.
func (d DataURI) Is(kind string) bool {
	top, _, _ := strings.Cut(d.MediaType, "/")
	return top == kind
}
