package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/storyposter/internal/config"
	"git.home.luguber.info/inful/storyposter/internal/journal"
	"git.home.luguber.info/inful/storyposter/internal/version"
)

// HTTPServer serves the liveness, health, status and metrics endpoints.
// It runs on its own goroutine and never touches the posting state file;
// the uptime monitor pinging GET / is what keeps the process scheduled on
// free hosting tiers.
type HTTPServer struct {
	config *config.Config
	daemon *Daemon
	server *http.Server
}

// NewHTTPServer creates an HTTP server for the daemon.
func NewHTTPServer(cfg *config.Config, d *Daemon) *HTTPServer {
	return &HTTPServer{config: cfg, daemon: d}
}

// Start pre-binds the listener so port conflicts surface immediately,
// then serves in the background.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.HTTP.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind port %d: %w", s.config.HTTP.Port, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleLiveness)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(s.daemon.Registry(), promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	slog.Info("HTTP server started", "port", s.config.HTTP.Port)
	return nil
}

// Stop gracefully shuts down the server.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleLiveness answers the uptime monitor with a fixed 200. Anything
// but the root path is a 404 so typos don't look alive.
func (s *HTTPServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("storyposter is alive"))
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := s.daemon.PerformHealthChecks()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if health.Status == HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// statusResponse summarizes posting progress for operators.
type statusResponse struct {
	Status          Status           `json:"status"`
	Uptime          string           `json:"uptime"`
	Version         string           `json:"version"`
	LastPostedIndex int              `json:"last_posted_index"`
	PendingImages   int              `json:"pending_images"`
	NextRun         string           `json:"next_run,omitempty"`
	LastRunError    string           `json:"last_run_error,omitempty"`
	RecentPosts     []journal.Record `json:"recent_posts,omitempty"`
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:          s.daemon.GetStatus(),
		Uptime:          time.Since(s.daemon.GetStartTime()).Round(time.Second).String(),
		Version:         version.Version,
		LastPostedIndex: s.daemon.Poster().LastPosted(),
		LastRunError:    s.daemon.LastRunError(),
	}
	if pending, err := s.daemon.Poster().Pending(); err == nil {
		resp.PendingImages = pending
	}
	if next, ok := s.daemon.NextRun(); ok {
		resp.NextRun = next.Format(time.RFC3339)
	}
	if j := s.daemon.Journal(); j != nil {
		if recent, err := j.Recent(r.Context(), 5); err == nil {
			resp.RecentPosts = recent
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode status response", "error", err)
	}
}
