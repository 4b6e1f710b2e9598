package fake

import (
	"bytes"
	"context"
	"hash/fnv"
	goimage "image"
	"image/color"
	"image/png"
	"sync"

	"github.com/chriscow/musickly/pkg/ai/image"
)

// FakeGenerator renders a small solid-color PNG derived from the prompt.
type FakeGenerator struct {
	// Err, when set, is returned from every Generate call.
	Err error
	// Empty makes Generate succeed with no image data.
	Empty bool

	mu       sync.Mutex
	requests []image.GenerateRequest
}

// NewFakeGenerator creates a new fake image provider.
func NewFakeGenerator() *FakeGenerator {
	return &FakeGenerator{}
}

// Generate returns an 8x8 PNG whose color is a hash of the prompt.
func (f *FakeGenerator) Generate(ctx context.Context, req image.GenerateRequest) (image.Image, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return image.Image{}, f.Err
	}
	if err := ctx.Err(); err != nil {
		return image.Image{}, err
	}
	if f.Empty {
		return image.Image{MediaType: "image/png"}, nil
	}

	h := fnv.New32a()
	h.Write([]byte(req.Prompt))
	sum := h.Sum32()
	c := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	img := goimage.NewRGBA(goimage.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return image.Image{}, err
	}
	return image.Image{Data: buf.Bytes(), MediaType: "image/png", RevisedPrompt: req.Prompt}, nil
}

// Requests returns a copy of every request seen so far.
func (f *FakeGenerator) Requests() []image.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]image.GenerateRequest(nil), f.requests...)
}
