package daemon

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/storyposter/internal/library"
	"git.home.luguber.info/inful/storyposter/internal/version"
)

// HealthStatus represents the overall health of the daemon.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a single health check.
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthResponse represents the complete health check response.
type HealthResponse struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Checks    []HealthCheck `json:"checks"`
}

// PerformHealthChecks executes all health checks and returns the overall
// status. A degraded image library or missing credentials never makes the
// daemon unhealthy: the liveness contract is "the process is up", and a
// publish problem only surfaces on the next scheduled attempt anyway.
func (d *Daemon) PerformHealthChecks() *HealthResponse {
	checks := []HealthCheck{
		d.checkDaemonStatus(),
		d.checkImageLibrary(),
		d.checkPostingState(),
		d.checkScheduler(),
	}

	overall := HealthStatusHealthy
	for _, c := range checks {
		if c.Status != HealthStatusHealthy && overall == HealthStatusHealthy {
			overall = HealthStatusDegraded
		}
	}

	return &HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Uptime:    time.Since(d.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Checks:    checks,
	}
}

func (d *Daemon) checkDaemonStatus() HealthCheck {
	check := HealthCheck{Name: "daemon_status"}
	switch status := d.GetStatus(); status {
	case StatusRunning:
		check.Status = HealthStatusHealthy
		check.Message = "Daemon is running normally"
	default:
		check.Status = HealthStatusDegraded
		check.Message = fmt.Sprintf("Daemon is %s", status)
	}
	return check
}

func (d *Daemon) checkImageLibrary() HealthCheck {
	check := HealthCheck{Name: "image_library"}
	entries, err := library.Scan(d.config.Images.Directory)
	if err != nil {
		check.Status = HealthStatusDegraded
		check.Message = err.Error()
		return check
	}
	check.Status = HealthStatusHealthy
	check.Message = fmt.Sprintf("%d images available", len(entries))
	return check
}

func (d *Daemon) checkPostingState() HealthCheck {
	check := HealthCheck{Name: "posting_state", Status: HealthStatusHealthy}
	check.Message = fmt.Sprintf("last posted index %d", d.store.Load())
	return check
}

func (d *Daemon) checkScheduler() HealthCheck {
	check := HealthCheck{Name: "scheduler"}
	next, ok := d.NextRun()
	if !ok {
		check.Status = HealthStatusDegraded
		check.Message = "No posting job scheduled"
		return check
	}
	check.Status = HealthStatusHealthy
	check.Message = fmt.Sprintf("next post at %s", next.Format(time.RFC3339))
	return check
}
