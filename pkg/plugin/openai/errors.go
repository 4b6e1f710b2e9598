package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/chriscow/musickly/pkg/ai"
	openai "github.com/sashabaranov/go-openai"
)

// classify maps a go-openai error onto the ai error taxonomy. Rate limits,
// server errors, timeouts and transport failures are recoverable; everything
// else (bad key, policy rejection, bad request) is fatal.
func classify(op string, err error) error {
	msg := fmt.Sprintf("openai %s: %v", op, err)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ai.NewRecoverableError(err, msg)
	}

	if status := statusCode(err); status != 0 {
		if status == http.StatusTooManyRequests || status >= 500 {
			return ai.NewRecoverableError(err, msg)
		}
		return ai.NewFatalError(err, msg)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ai.NewRecoverableError(err, msg)
	}

	return ai.NewFatalError(err, msg)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
