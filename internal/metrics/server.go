package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server serves Prometheus metrics on a dedicated address.
type Server struct {
	httpServer *http.Server
	addr       string
}

// NewServer creates a metrics server exposing /metrics on addr.
func NewServer(addr string, reg *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Handler returns the HTTP handler serving /metrics.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start binds the listen address and serves metrics in the background.
// Bind failures are returned to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", s.httpServer.Addr, err)
	}
	s.addr = ln.Addr().String()
	log.Info().Str("addr", s.addr).Msg("starting metrics server")

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string { return s.addr }

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
