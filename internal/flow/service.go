// Package flow implements the song-creation flows. Every flow has the same
// shape: validate the input, build a prompt, call one or more providers and
// reshape the result (raw PCM is wrapped in a WAV data URI).
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chriscow/musickly/internal/config"
	"github.com/chriscow/musickly/internal/metrics"
	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/image"
	"github.com/chriscow/musickly/pkg/ai/llm"
	"github.com/chriscow/musickly/pkg/ai/stt"
	"github.com/chriscow/musickly/pkg/ai/tts"
	"github.com/chriscow/musickly/pkg/plugin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Providers are the model backends the flows call. A nil provider makes the
// flows that need it fail with a fatal error.
type Providers struct {
	LLM   llm.LLM
	TTS   tts.TTS
	STT   stt.STT
	Image image.Generator
}

// ProvidersFromConfig instantiates each configured provider from the plugin
// registry. Plugin packages must be imported for their side effects first.
func ProvidersFromConfig(cfg config.ProvidersConfig) (Providers, error) {
	var (
		p   Providers
		err error
	)
	if p.LLM, err = plugin.Create[llm.LLM](plugin.KindLLM, cfg.LLM.Name, cfg.LLM.Options); err != nil {
		return Providers{}, err
	}
	if p.TTS, err = plugin.Create[tts.TTS](plugin.KindTTS, cfg.TTS.Name, cfg.TTS.Options); err != nil {
		return Providers{}, err
	}
	if p.STT, err = plugin.Create[stt.STT](plugin.KindSTT, cfg.STT.Name, cfg.STT.Options); err != nil {
		return Providers{}, err
	}
	if p.Image, err = plugin.Create[image.Generator](plugin.KindImage, cfg.Image.Name, cfg.Image.Options); err != nil {
		return Providers{}, err
	}
	return p, nil
}

// Options tune flow execution.
type Options struct {
	Timeout   time.Duration // per run; zero means no deadline beyond the caller's
	MaxUpload time.Duration // longest accepted recording; zero disables the check
	Voice     string        // TTS voice; empty uses the provider default
}

// OptionsFromConfig maps the flows config section onto Options.
func OptionsFromConfig(cfg config.FlowsConfig) Options {
	return Options{
		Timeout:   cfg.Timeout,
		MaxUpload: cfg.MaxUpload(),
		Voice:     cfg.Voice,
	}
}

// Service runs flows against a fixed set of providers. It is safe for
// concurrent use.
type Service struct {
	providers Providers
	opts      Options
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService creates a Service. A nil logger discards logs and nil metrics
// register on a private registry.
func NewService(p Providers, opts Options, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	return &Service{providers: p, opts: opts, logger: logger, metrics: m}
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that run will log instead of minting one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ID attached by WithRequestID or run.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type validator interface {
	Validate() error
}

// run is the one generic invocation path: validate, call, classify, record.
// No partial result is returned on failure.
func run[Out any](ctx context.Context, s *Service, name string, in validator, call func(context.Context) (Out, error)) (Out, error) {
	var zero Out

	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithRequestID(ctx, id)
	}
	logger := s.flowLogger(ctx, name)
	start := time.Now()

	if err := in.Validate(); err != nil {
		return zero, s.reject(logger, name, err, start)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	done := s.metrics.FlowStarted()
	defer done()

	out, err := call(ctx)
	duration := time.Since(start)
	if err != nil {
		err = classify(err)
		logger.Error("Flow failed",
			slog.String("error", err.Error()),
			slog.String("outcome", outcome(err)),
			slog.Duration("duration", duration))
		s.metrics.RecordFlow(name, outcome(err), duration.Seconds())
		return zero, fmt.Errorf("%s: %w", name, err)
	}

	logger.Info("Flow completed", slog.Duration("duration", duration))
	s.metrics.RecordFlow(name, "ok", duration.Seconds())
	return out, nil
}

func (s *Service) flowLogger(ctx context.Context, name string) *slog.Logger {
	return s.logger.With(slog.String("flow", name), slog.String("request_id", RequestID(ctx)))
}

// reject logs and counts an input that failed before any provider call.
// The returned error always wraps ai.ErrInvalidInput.
func (s *Service) reject(logger *slog.Logger, name string, err error, start time.Time) error {
	if !ai.IsInvalidInput(err) {
		err = fmt.Errorf("%w: %v", ai.ErrInvalidInput, err)
	}
	logger.Warn("Flow input rejected", slog.String("error", err.Error()))
	s.metrics.RecordFlow(name, outcome(err), time.Since(start).Seconds())
	return err
}

// classify makes sure every error leaving a flow carries exactly one class.
func classify(err error) error {
	switch {
	case ai.IsInvalidInput(err), ai.IsRecoverable(err), ai.IsFatal(err):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ai.NewRecoverableError(err, "model request timed out")
	default:
		return ai.NewFatalError(err, "")
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case ai.IsInvalidInput(err):
		return "invalid_input"
	case ai.IsRecoverable(err):
		return "recoverable"
	default:
		return "fatal"
	}
}
