package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chriscow/musickly/internal/flow"
	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/audio/wav"
	"github.com/chriscow/musickly/pkg/version"
	"github.com/google/uuid"
)

// Upstream failures are reported with fixed messages; provider details stay
// in the logs.
const (
	msgRecoverable = "The music service is busy or timed out. Please try again."
	msgFatal       = "The music service could not complete this request."
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor maps a flow error onto an HTTP status and a user-facing message.
func statusFor(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, flow.ErrUnknownFlow):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case ai.IsInvalidInput(err), errors.Is(err, wav.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case ai.IsRecoverable(err):
		return http.StatusServiceUnavailable, msgRecoverable
	default:
		return http.StatusBadGateway, msgFatal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, requestID string) {
	status, msg := statusFor(err)
	writeJSON(w, status, errorResponse{Error: msg, RequestID: requestID})
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// handleHealth implements the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"version":   version.Get(),
		"flows":     len(flow.Definitions()),
	})
}

func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"flows": flow.Definitions()})
}

func (s *Server) handleRunFlow(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	id := requestID(r)
	w.Header().Set("X-Request-ID", id)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		writeError(w, err, id)
		return
	}

	ctx := flow.WithRequestID(r.Context(), id)
	out, err := s.flows.Run(ctx, name, body)
	if err != nil {
		status, _ := statusFor(err)
		s.logger.Debug("Flow request failed",
			slog.String("flow", name),
			slog.String("request_id", id),
			slog.Int("status", status))
		writeError(w, err, id)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// handleEncodeWav wraps a raw PCM body in a WAV container. Missing layout
// parameters take the defaults.
func (s *Server) handleEncodeWav(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p wav.Params
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"channels", &p.Channels},
		{"sampleRate", &p.SampleRate},
		{"bitDepth", &p.BitDepth},
	} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: f.key + " must be an integer"})
			return
		}
		*f.dst = n
	}

	pcm, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		writeError(w, err, "")
		return
	}

	out, err := wav.Encode(pcm, p.WithDefaults())
	if err != nil {
		writeError(w, err, "")
		return
	}
	s.metrics.RecordWavEncode(len(pcm))

	w.Header().Set("Content-Type", wav.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
