package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chriscow/musickly/internal/flow"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Signal and command type constants
const (
	SignalTypePing   = "ping"
	SignalTypePong   = "pong"
	SignalTypeRun    = "run"
	SignalTypeResult = "result"
	SignalTypeError  = "error"
)

const (
	maxRunsPerConn = 4
	writeTimeout   = 10 * time.Second
)

// Signal is a client-to-server message.
type Signal struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Command is a server-to-client message.
type Command struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// RunRequest is the data of a run signal. ID is echoed back so clients can
// match results to requests; one is minted if empty.
type RunRequest struct {
	ID    string          `json:"id"`
	Flow  string          `json:"flow"`
	Input json.RawMessage `json:"input"`
}

// RunResult is the data of a result command.
type RunResult struct {
	ID     string `json:"id"`
	Flow   string `json:"flow"`
	Output any    `json:"output"`
}

// RunError is the data of an error command. Status uses the HTTP codes of
// the JSON API.
type RunError struct {
	ID     string `json:"id,omitempty"`
	Flow   string `json:"flow,omitempty"`
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "server is shutting down"})
		return
	}
	s.sessions.Add(1)
	s.mu.Unlock()
	defer s.sessions.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		s.logger.Warn("WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	s.metrics.WebSocketClients.Inc()
	defer s.metrics.WebSocketClients.Dec()

	sess := &session{
		conn:   conn,
		server: s,
		logger: s.logger.With(slog.String("remote", r.RemoteAddr)),
		out:    make(chan *Command, 16),
		slots:  make(chan struct{}, maxRunsPerConn),
	}
	sess.serve(s.sessionCtx)
}

// session runs one WebSocket connection: a reader, a single writer and one
// goroutine per flow run. At most maxRunsPerConn runs are in flight; further
// run signals are answered with a 503 error.
type session struct {
	conn   *websocket.Conn
	server *Server
	logger *slog.Logger
	out    chan *Command
	slots  chan struct{}
	runs   sync.WaitGroup
}

func (c *session) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.logger.Info("WebSocket connected")
	c.conn.SetReadLimit(c.server.cfg.MaxBodyBytes)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeCommands(ctx, cancel)
	}()

	c.readSignals(ctx)

	cancel()
	c.runs.Wait()
	<-writerDone

	c.conn.Close()
	c.logger.Info("WebSocket disconnected")
}

func (c *session) readSignals(ctx context.Context) {
	for {
		var signal Signal
		if err := c.conn.ReadJSON(&signal); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("WebSocket read ended", slog.String("error", err.Error()))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.handleSignal(ctx, &signal)
	}
}

func (c *session) writeCommands(ctx context.Context, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			// unblock the reader when the server is shutting down
			c.conn.Close()
			return
		case cmd := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(cmd); err != nil {
				c.logger.Warn("WebSocket write failed", slog.String("error", err.Error()))
				cancel()
				// unblock the reader
				c.conn.Close()
				return
			}
		}
	}
}

func (c *session) send(ctx context.Context, cmd *Command) {
	select {
	case c.out <- cmd:
	case <-ctx.Done():
	}
}

func (c *session) handleSignal(ctx context.Context, signal *Signal) {
	c.logger.Debug("Processing signal", slog.String("type", signal.Type))

	switch signal.Type {
	case SignalTypePing:
		var data any
		if len(signal.Data) > 0 {
			data = signal.Data
		}
		c.send(ctx, &Command{Type: SignalTypePong, Data: data})

	case SignalTypeRun:
		var req RunRequest
		if err := json.Unmarshal(signal.Data, &req); err != nil || req.Flow == "" {
			c.send(ctx, &Command{Type: SignalTypeError, Data: RunError{
				ID:     req.ID,
				Error:  "run requires data with a flow name",
				Status: http.StatusBadRequest,
			}})
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		select {
		case c.slots <- struct{}{}:
		default:
			c.send(ctx, &Command{Type: SignalTypeError, Data: RunError{
				ID:     req.ID,
				Flow:   req.Flow,
				Error:  "too many runs in progress on this connection",
				Status: http.StatusServiceUnavailable,
			}})
			return
		}

		c.runs.Add(1)
		go func() {
			defer func() {
				<-c.slots
				c.runs.Done()
			}()
			c.run(ctx, req)
		}()

	default:
		c.logger.Warn("Unknown signal type", slog.String("type", signal.Type))
		c.send(ctx, &Command{Type: SignalTypeError, Data: RunError{
			Error:  "unknown message type " + signal.Type,
			Status: http.StatusBadRequest,
		}})
	}
}

func (c *session) run(ctx context.Context, req RunRequest) {
	out, err := c.server.flows.Run(flow.WithRequestID(ctx, req.ID), req.Flow, req.Input)
	if err != nil {
		status, msg := statusFor(err)
		c.send(ctx, &Command{Type: SignalTypeError, Data: RunError{
			ID: req.ID, Flow: req.Flow, Error: msg, Status: status,
		}})
		return
	}
	c.send(ctx, &Command{Type: SignalTypeResult, Data: RunResult{
		ID: req.ID, Flow: req.Flow, Output: out,
	}})
}
