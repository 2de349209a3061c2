// Package daemon runs the recurring posting service: a daily scheduler
// and an HTTP liveness/status server sharing one process lifetime.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/storyposter/internal/config"
	"git.home.luguber.info/inful/storyposter/internal/facebook"
	"git.home.luguber.info/inful/storyposter/internal/journal"
	"git.home.luguber.info/inful/storyposter/internal/metrics"
	"git.home.luguber.info/inful/storyposter/internal/notify"
	"git.home.luguber.info/inful/storyposter/internal/poster"
	"git.home.luguber.info/inful/storyposter/internal/state"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// Daemon owns the scheduler goroutine and the HTTP server goroutine.
// They communicate only through the daemon's lifetime; the posting state
// file is touched exclusively by the serialized posting sequence.
type Daemon struct {
	config    *config.Config
	status    atomic.Value // Status
	startTime time.Time

	poster     *poster.Service
	store      *state.Store
	journal    *journal.Journal
	notifier   *notify.NATSNotifier
	scheduler  *Scheduler
	httpServer *HTTPServer
	watcher    *LibraryWatcher
	registry   *prometheus.Registry

	lastRunErr atomic.Value // string; last RunOnce failure message, empty when fine
}

// New assembles the daemon from configuration. Missing Facebook
// credentials are not fatal here: the liveness endpoint must come up
// regardless, and the publish path reports the missing credentials on
// each attempt instead.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}
	d.status.Store(StatusStopped)
	d.lastRunErr.Store("")

	recorder := metrics.NewPrometheusRecorder(d.registry)
	d.store = state.NewStore(cfg.State.Path())

	client := facebook.NewClient(cfg.Facebook.PageID, cfg.Facebook.AccessToken,
		facebookOptions(cfg.Facebook)...)
	if !client.HasCredentials() {
		slog.Warn("Facebook credentials not configured; publish attempts will fail until FACEBOOK_PAGE_ID and FACEBOOK_ACCESS_TOKEN are set")
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open post journal: %w", err)
	}
	d.journal = j

	posterOpts := []poster.Option{
		poster.WithRecorder(recorder),
		poster.WithJournal(j),
	}
	if cfg.Notify.Enabled() {
		notifier, err := notify.NewNATSNotifier(cfg.Notify)
		if err != nil {
			_ = j.Close()
			return nil, fmt.Errorf("failed to create NATS notifier: %w", err)
		}
		d.notifier = notifier
		posterOpts = append(posterOpts, poster.WithNotifier(notifier))
	}
	d.poster = poster.NewService(cfg.Images.Directory, cfg.Images.CaptionTemplate,
		d.store, client, posterOpts...)

	loc, err := cfg.Schedule.Location()
	if err != nil {
		d.closeResources()
		return nil, err
	}
	scheduler, err := NewScheduler(loc)
	if err != nil {
		d.closeResources()
		return nil, err
	}
	d.scheduler = scheduler

	d.httpServer = NewHTTPServer(cfg, d)
	d.watcher = NewLibraryWatcher(cfg.Images.Directory, recorder, d.store)

	return d, nil
}

func facebookOptions(cfg config.FacebookConfig) []facebook.Option {
	var opts []facebook.Option
	if cfg.BaseURL != "" {
		opts = append(opts, facebook.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, facebook.WithTimeout(cfg.Timeout))
	}
	return opts
}

// Start brings up the scheduler, the image-directory watcher and the HTTP
// server, then blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.status.Store(StatusStarting)
	d.startTime = time.Now()

	hour, minute, err := d.config.Schedule.AtTime()
	if err != nil {
		return err
	}
	if _, err := d.scheduler.ScheduleDailyPost(hour, minute, func() {
		d.runScheduledPost()
	}); err != nil {
		return err
	}

	if err := d.watcher.Start(ctx); err != nil {
		// The watcher only keeps gauges fresh; run without it.
		slog.Warn("Image directory watcher unavailable", "error", err)
	}

	if err := d.httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	d.scheduler.Start()
	d.status.Store(StatusRunning)

	if next, ok := d.scheduler.NextRun(); ok {
		slog.Info("Daemon running",
			"schedule", d.config.Schedule.At,
			"timezone", d.config.Schedule.Timezone,
			"next_run", next.Format(time.RFC3339),
			"port", d.config.HTTP.Port)
	}

	<-ctx.Done()
	return nil
}

// runScheduledPost executes one posting sequence on the scheduler
// goroutine. Failures are logged and recorded, never propagated: the
// scheduler and the HTTP server keep running and the same image is
// retried on the next daily tick.
func (d *Daemon) runScheduledPost() {
	ctx := context.Background()
	slog.Info("Scheduled post firing")
	if err := d.poster.RunOnce(ctx); err != nil {
		slog.Error("Scheduled post failed", "error", err)
		d.lastRunErr.Store(err.Error())
		return
	}
	d.lastRunErr.Store("")
}

// Stop shuts everything down gracefully.
func (d *Daemon) Stop(ctx context.Context) error {
	d.status.Store(StatusStopping)

	var errs []error
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
		}
	}
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	d.closeResources()

	d.status.Store(StatusStopped)
	if len(errs) > 0 {
		return fmt.Errorf("daemon shutdown: %v", errs)
	}
	slog.Info("Daemon stopped")
	return nil
}

func (d *Daemon) closeResources() {
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			slog.Warn("Failed to close journal", "error", err)
		}
		d.journal = nil
	}
	if d.notifier != nil {
		d.notifier.Close()
		d.notifier = nil
	}
}

// GetStatus returns the daemon lifecycle status.
func (d *Daemon) GetStatus() Status {
	return d.status.Load().(Status)
}

// GetStartTime returns when the daemon started.
func (d *Daemon) GetStartTime() time.Time {
	return d.startTime
}

// LastRunError returns the failure message of the most recent posting
// run, or empty when the last run succeeded (or none ran yet).
func (d *Daemon) LastRunError() string {
	return d.lastRunErr.Load().(string)
}

// Poster exposes the posting service for the status handlers.
func (d *Daemon) Poster() *poster.Service {
	return d.poster
}

// Journal exposes the post history for the status handlers.
func (d *Daemon) Journal() *journal.Journal {
	return d.journal
}

// NextRun reports the next scheduled posting time.
func (d *Daemon) NextRun() (time.Time, bool) {
	if d.scheduler == nil {
		return time.Time{}, false
	}
	return d.scheduler.NextRun()
}

// Registry exposes the metrics registry for the /metrics endpoint.
func (d *Daemon) Registry() *prometheus.Registry {
	return d.registry
}
