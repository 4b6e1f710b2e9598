// Package image provides the interface for text-to-image providers.
package image

import "context"

// GenerateRequest describes one image to generate.
type GenerateRequest struct {
	Prompt string
	Size   string // e.g. "1024x1024"; empty uses the provider default
}

// Image is a generated picture.
type Image struct {
	Data          []byte
	MediaType     string
	RevisedPrompt string // prompt as rewritten by the provider, if any
}

// Generator is the main interface for image generation providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Image, error)
}
