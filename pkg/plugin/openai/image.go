package openai

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/image"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIImage implements image.Generator with the images endpoint. Results
// are requested as base64 so no second download is needed.
type OpenAIImage struct {
	client *openai.Client
	model  string
	size   string
}

// NewOpenAIImage creates an image provider.
func NewOpenAIImage(cfg Config) (*OpenAIImage, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAIImage{
		client: client,
		model:  orDefault(cfg.Model, openai.CreateImageModelDallE3),
		size:   orDefault(cfg.Size, openai.CreateImageSize1024x1024),
	}, nil
}

func newOpenAIImage(cfg map[string]any) (any, error) {
	return NewOpenAIImage(configFromMap(cfg))
}

// Generate renders one PNG for the prompt.
func (o *OpenAIImage) Generate(ctx context.Context, req image.GenerateRequest) (image.Image, error) {
	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          o.model,
		Size:           orDefault(req.Size, o.size),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		slog.Error("openai image generation failed", "model", o.model, "error", err)
		return image.Image{}, classify("image", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return image.Image{}, ai.NewFatalError(nil, "openai image: no image returned")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return image.Image{}, ai.NewFatalError(err, "openai image: malformed base64 payload")
	}

	return image.Image{
		Data:          data,
		MediaType:     "image/png",
		RevisedPrompt: resp.Data[0].RevisedPrompt,
	}, nil
}
