package datauri

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestParse(t *testing.T) {
	is := is.New(t)

	d, err := Parse("data:image/PNG;base64,aGVsbG8=")
	is.NoErr(err)
	is.Equal(d.MediaType, "image/png")
	is.Equal(string(d.Data), "hello")
	is.True(d.Is("image"))
	is.True(!d.Is("audio"))
}

func TestParse_MediaTypeParameters(t *testing.T) {
	is := is.New(t)

	d, err := Parse("data:audio/webm;codecs=opus;base64,aGk=")
	is.NoErr(err)
	is.Equal(d.MediaType, "audio/webm")
	is.Equal(string(d.Data), "hi")
}

func TestParse_Unpadded(t *testing.T) {
	is := is.New(t)

	d, err := Parse("data:text/plain;base64,aGk")
	is.NoErr(err)
	is.Equal(string(d.Data), "hi")
}

func TestParse_DefaultMediaType(t *testing.T) {
	is := is.New(t)

	d, err := Parse("data:;base64,aGk=")
	is.NoErr(err)
	is.Equal(d.MediaType, "text/plain")
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"no scheme":     "image/png;base64,aGk=",
		"no separator":  "data:image/png;base64",
		"not base64":    "data:text/plain,hello",
		"bad payload":   "data:image/png;base64,!!!",
		"http url":      "https://example.com/a.png",
		"empty":         "",
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			_, err := Parse(in)
			is.True(errors.Is(err, ErrMalformed))
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	is := is.New(t)

	payload := []byte{0, 1, 2, 250, 255}
	s := Encode("audio/wav", payload)
	is.Equal(s[:22], "data:audio/wav;base64,")

	d, err := Parse(s)
	is.NoErr(err)
	is.Equal(d.Data, payload)
	is.Equal(d.String(), s)
}
