package fake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/llm"
)

func TestFakeLLMCapabilities(t *testing.T) {
	provider := NewFakeLLM()
	caps := provider.Capabilities()

	if !caps.SupportsVision {
		t.Error("Expected SupportsVision to be true")
	}

	if caps.MaxTokens <= 0 {
		t.Error("Expected MaxTokens to be positive")
	}

	if len(caps.SupportedModels) == 0 {
		t.Error("Expected SupportedModels to be non-empty")
	}
}

func TestFakeLLMChat(t *testing.T) {
	provider := NewFakeLLM("Test response 1", "Test response 2")
	ctx := context.Background()

	req := llm.ChatRequest{
		Messages:    []llm.Message{llm.UserMessage("Hello")},
		MaxTokens:   100,
		Temperature: 0.7,
	}

	resp, err := provider.Chat(ctx, req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if resp.Message.Role != llm.RoleAssistant {
		t.Errorf("Expected assistant role, got %v", resp.Message.Role)
	}

	if resp.Message.Content != "Test response 1" {
		t.Errorf("Expected first predefined response, got %q", resp.Message.Content)
	}

	if resp.TokensUsed <= 0 {
		t.Error("Expected TokensUsed to be positive")
	}

	if resp.FinishReason == "" {
		t.Error("Expected FinishReason to be set")
	}
}

func TestFakeLLMResponseCycling(t *testing.T) {
	responses := []string{"Response A", "Response B", "Response C"}
	provider := NewFakeLLM(responses...)
	ctx := context.Background()

	req := llm.ChatRequest{Messages: []llm.Message{llm.UserMessage("Test")}}

	for i := 0; i < len(responses)*2; i++ {
		resp, err := provider.Chat(ctx, req)
		if err != nil {
			t.Fatalf("Chat() iteration %d error = %v", i, err)
		}

		expected := responses[i%len(responses)]
		if resp.Message.Content != expected {
			t.Errorf("Iteration %d: expected %q, got %q", i, expected, resp.Message.Content)
		}
	}

	if got := len(provider.Requests()); got != len(responses)*2 {
		t.Errorf("Expected %d recorded requests, got %d", len(responses)*2, got)
	}
}

func TestFakeLLMLastPrompt(t *testing.T) {
	provider := NewFakeLLM("ok")

	if provider.LastPrompt() != "" {
		t.Error("Expected empty prompt before any call")
	}

	_, err := provider.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{
			llm.SystemMessage("You are a lyricist"),
			llm.UserMessage("Title: Night Drive"),
		},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	prompt := provider.LastPrompt()
	if !strings.Contains(prompt, "You are a lyricist") || !strings.Contains(prompt, "Night Drive") {
		t.Errorf("Expected prompt to contain both messages, got %q", prompt)
	}
}

func TestFakeLLMError(t *testing.T) {
	provider := NewFakeLLM()
	provider.Err = ai.ErrRecoverable

	_, err := provider.Chat(context.Background(), llm.ChatRequest{})
	if !errors.Is(err, ai.ErrRecoverable) {
		t.Errorf("Expected configured error, got %v", err)
	}
}
