package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Server owns the HTTP listener. Start and Stop are idempotent: calling
// either in the state it would produce is a no-op that reports false.
type Server struct {
	addr    string
	handler http.Handler
	logger  *zap.Logger

	mu   sync.Mutex
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

// NewServer creates a stopped Server that will listen on addr.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
	}
}

// Start binds the listener and serves in the background.
// It returns false without error when the server is already running.
func (s *Server) Start() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		return false, nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return false, fmt.Errorf("listen %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", zap.Error(err))
		}
	}()

	s.srv, s.ln, s.done = srv, ln, done

	s.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
	return true, nil
}

// Stop gracefully shuts the server down.
// It returns false without error when the server is not running.
func (s *Server) Stop(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningLocked() {
		s.reset()
		return false, nil
	}

	err := s.srv.Shutdown(ctx)
	<-s.done
	s.reset()

	if err != nil {
		return true, fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http server stopped")
	return true, nil
}

// Running reports whether the server is serving.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

// Addr returns the bound address while running, the configured one otherwise.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

func (s *Server) runningLocked() bool {
	if s.srv == nil {
		return false
	}

	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Server) reset() {
	s.srv, s.ln, s.done = nil, nil, nil
}
