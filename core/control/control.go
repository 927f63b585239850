// Package control exposes the session's command surface as a
// loopback-only HTTP server: push-to-talk gestures, the transcript
// mailbox, speech enqueueing, and presenter hints.
package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	session "github.com/voxline/vox-core/core"
	"github.com/voxline/vox-core/core/addressing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Presenter receives the presenter hints forwarded by the control
// protocol. All hints are advisory; a session runs fine without one.
type Presenter interface {
	BindTTY(identity string) error
	StartCountdown(preview string)
	CancelCountdown()
	CompleteCountdown()
	ShowReady()
}

type Server struct {
	session   *session.SessionController
	presenter Presenter
	port      int

	httpServer *http.Server
	listener   net.Listener
}

type ServerOption func(*Server)

// WithPresenter wires a presenter to receive the /tty, /countdown/* and
// /state/ready hints.
func WithPresenter(presenter Presenter) ServerOption {
	return func(s *Server) { s.presenter = presenter }
}

// WithPort overrides the listen port. Without it the port is derived
// from the session's terminal identity.
func WithPort(port int) ServerOption {
	return func(s *Server) { s.port = port }
}

func NewServer(controller *session.SessionController, opts ...ServerOption) *Server {
	s := &Server{session: controller}
	for _, opt := range opts {
		opt(s)
	}
	if s.port == 0 {
		s.port = addressing.PortFromIdentity(controller.Identity())
	}
	return s
}

// Port returns the port the server listens on.
func (s *Server) Port() int { return s.port }

// Start binds the loopback listener and serves until Shutdown. It
// returns once the listener is bound; serving continues in the
// background.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", addressing.LoopbackAddr(s.port))
	if err != nil {
		return fmt.Errorf("failed to bind control listener: %w", err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:     otelhttp.NewHandler(s.Handler(), "control"),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("control server stopped", "error", err)
		}
	}()

	logger.Info("control server listening", "addr", listener.Addr().String())
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down control server: %w", err)
	}
	return nil
}

// Handler returns the route table without the listener wiring, which is
// what tests exercise.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ptt/start", s.handlePTTStart)
	mux.HandleFunc("POST /ptt/stop", s.handlePTTStop)
	mux.HandleFunc("POST /ptt/toggle", s.handlePTTToggle)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /transcription", s.handleTranscription)
	mux.HandleFunc("POST /speak", s.handleSpeak)
	mux.HandleFunc("POST /tty", s.handleTTY)
	mux.HandleFunc("POST /countdown/start", s.handleCountdownStart)
	mux.HandleFunc("POST /countdown/cancel", s.handleCountdownCancel)
	mux.HandleFunc("POST /countdown/send", s.handleCountdownSend)
	mux.HandleFunc("POST /state/ready", s.handleStateReady)
	return mux
}
