package fake

import (
	"context"
	"strings"
	"sync"

	"github.com/chriscow/musickly/pkg/ai/llm"
)

// FakeLLM is a fake LLM implementation for testing.
type FakeLLM struct {
	// Err, when set, is returned from every Chat call.
	Err error

	mu        sync.Mutex
	responses []string
	callCount int
	requests  []llm.ChatRequest
}

// NewFakeLLM creates a new fake LLM provider with predefined responses.
func NewFakeLLM(responses ...string) *FakeLLM {
	if len(responses) == 0 {
		responses = []string{
			"This is a fake response from the fake LLM provider.",
			"Another fake response for testing purposes.",
		}
	}
	return &FakeLLM{responses: responses}
}

// Chat records the request and returns the next predefined response.
func (f *FakeLLM) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.Err != nil {
		return llm.ChatResponse{}, f.Err
	}
	if err := ctx.Err(); err != nil {
		return llm.ChatResponse{}, err
	}

	// Simple response selection based on call count
	response := f.responses[f.callCount%len(f.responses)]
	f.callCount++

	return llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: response,
		},
		TokensUsed:   len(strings.Fields(response)) + 10,
		FinishReason: "stop",
	}, nil
}

// Requests returns a copy of every request seen so far.
func (f *FakeLLM) Requests() []llm.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.ChatRequest(nil), f.requests...)
}

// LastPrompt returns the concatenated content of the most recent request.
func (f *FakeLLM) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, m := range f.requests[len(f.requests)-1].Messages {
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Capabilities returns the fake LLM capabilities.
func (f *FakeLLM) Capabilities() llm.LLMCapabilities {
	return llm.LLMCapabilities{
		SupportsVision:     true,
		SupportsJSON:       true,
		MaxTokens:          4096,
		SupportedModels:    []string{"fake-model-1", "fake-model-2"},
		SupportsSystemRole: true,
	}
}
