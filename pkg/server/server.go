// Package server assembles the gateway's HTTP surface and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/PrathameshJoshi123/doc-generator/internal/version"
	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/oauth"
	"github.com/PrathameshJoshi123/doc-generator/pkg/config"
	"github.com/PrathameshJoshi123/doc-generator/pkg/proxy"
)

// Service is the main gateway HTTP service.
type Service interface {
	// Start runs the HTTP server until the context is cancelled.
	Start(ctx context.Context) error
	// Stop gracefully shuts down the server.
	Stop() error
}

// service implements the Service interface.
type service struct {
	log        logrus.FieldLogger
	cfg        config.ServerConfig
	oauth      *oauth.Server
	proxy      *proxy.Server
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// NewService creates a new gateway service.
func NewService(
	log logrus.FieldLogger,
	cfg config.ServerConfig,
	oauthSrv *oauth.Server,
	proxySrv *proxy.Server,
) Service {
	return &service{
		log:   log.WithField("component", "server"),
		cfg:   cfg,
		oauth: oauthSrv,
		proxy: proxySrv,
	}
}

// Start runs the HTTP server until the context is cancelled or the listener
// fails.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()

		return errors.New("server already running")
	}

	s.running = true
	s.mu.Unlock()

	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(requestLogger(s.log))

	router.Get("/health", s.healthHandler)
	router.Get("/ready", s.readyHandler)

	s.oauth.MountRoutes(router)
	s.proxy.MountRoutes(router)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Unlock()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.WithFields(logrus.Fields{
		"address": addr,
		"version": version.Version,
	}).Info("Starting gateway server")

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}

		return nil
	}
}

// Stop gracefully shuts down the server.
func (s *service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false

	s.log.Info("Stopping gateway server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
	}

	s.log.Info("Gateway server stopped")

	return nil
}

// healthHandler returns a simple health check response.
func (s *service) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readyHandler returns a readiness check response.
func (s *service) readyHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

// Compile-time interface compliance check.
var _ Service = (*service)(nil)
