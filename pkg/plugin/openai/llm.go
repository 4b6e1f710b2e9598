package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/llm"
	openai "github.com/sashabaranov/go-openai"
)

const defaultChatModel = openai.GPT4oMini

// OpenAILLM implements the LLM interface using OpenAI chat models.
type OpenAILLM struct {
	client *openai.Client
	model  string
}

// NewOpenAILLM creates a chat provider.
func NewOpenAILLM(cfg Config) (*OpenAILLM, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAILLM{client: client, model: orDefault(cfg.Model, defaultChatModel)}, nil
}

func newOpenAILLM(cfg map[string]any) (any, error) {
	return NewOpenAILLM(configFromMap(cfg))
}

// Chat performs one chat completion. Messages carrying images are sent as
// multi-part content so vision models can see them.
func (o *OpenAILLM) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	start := time.Now()

	completionReq := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		completionReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, completionReq)
	if err != nil {
		slog.Error("openai chat completion failed", "model", o.model, "error", err)
		return llm.ChatResponse{}, classify("chat", err)
	}
	if len(resp.Choices) == 0 {
		return llm.ChatResponse{}, ai.NewFatalError(nil, "openai chat: no completion choices returned")
	}

	choice := resp.Choices[0]
	slog.Debug("openai chat completion",
		"model", o.model,
		"messages", len(req.Messages),
		"tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start))

	return llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.MessageRole(choice.Message.Role),
			Content: choice.Message.Content,
		},
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(choice.FinishReason),
	}, nil
}

func toOpenAIMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		if len(msg.Images) == 0 {
			out[i] = openai.ChatCompletionMessage{Role: string(msg.Role), Content: msg.Content}
			continue
		}
		parts := make([]openai.ChatMessagePart, 0, len(msg.Images)+1)
		if msg.Content != "" {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: msg.Content,
			})
		}
		for _, img := range msg.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    img,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		out[i] = openai.ChatCompletionMessage{Role: string(msg.Role), MultiContent: parts}
	}
	return out
}

// Capabilities returns the OpenAI provider's capabilities
func (o *OpenAILLM) Capabilities() llm.LLMCapabilities {
	return llm.LLMCapabilities{
		SupportsVision:     true,
		SupportsJSON:       true,
		MaxTokens:          128000,
		SupportedModels:    []string{openai.GPT4oMini, openai.GPT4o, openai.GPT4Turbo},
		SupportsSystemRole: true,
	}
}
