package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/storyposter/internal/config"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	imagesDir := t.TempDir()
	for _, name := range []string{"story1.png", "story2.png"} {
		if err := os.WriteFile(filepath.Join(imagesDir, name), []byte("img"), 0o600); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	stateDir := t.TempDir()
	cfg := &config.Config{
		Images:   config.ImagesConfig{Directory: imagesDir, CaptionTemplate: "{date}"},
		State:    config.StateConfig{Directory: stateDir, File: "last_posted.txt"},
		Schedule: config.ScheduleConfig{At: "09:00", Timezone: "UTC"},
		HTTP:     config.HTTPConfig{Port: 0},
		Journal:  config.JournalConfig{Path: filepath.Join(stateDir, "posts.db")},
	}

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New daemon failed: %v", err)
	}
	t.Cleanup(func() { d.closeResources() })
	return d
}

func TestLivenessEndpoint(t *testing.T) {
	d := newTestDaemon(t)
	server := NewHTTPServer(d.config, d)

	rec := httptest.NewRecorder()
	server.handleLiveness(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected a plaintext body")
	}
}

func TestLivenessRejectsOtherPaths(t *testing.T) {
	d := newTestDaemon(t)
	server := NewHTTPServer(d.config, d)

	rec := httptest.NewRecorder()
	server.handleLiveness(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	d := newTestDaemon(t)
	server := NewHTTPServer(d.config, d)

	rec := httptest.NewRecorder()
	server.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	// No job scheduled yet and the daemon is not running, so degraded is
	// expected; unhealthy is not.
	if health.Status == HealthStatusUnhealthy {
		t.Errorf("expected non-unhealthy status, got %s", health.Status)
	}
	if len(health.Checks) != 4 {
		t.Errorf("expected 4 checks, got %d", len(health.Checks))
	}
}

func TestStatusEndpoint(t *testing.T) {
	d := newTestDaemon(t)
	server := NewHTTPServer(d.config, d)

	rec := httptest.NewRecorder()
	server.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.LastPostedIndex != -1 {
		t.Errorf("expected last posted index -1, got %d", status.LastPostedIndex)
	}
	if status.PendingImages != 2 {
		t.Errorf("expected 2 pending images, got %d", status.PendingImages)
	}
}

func TestHealthChecksReportMissingImages(t *testing.T) {
	d := newTestDaemon(t)
	d.config.Images.Directory = filepath.Join(t.TempDir(), "gone")

	health := d.PerformHealthChecks()
	if health.Status != HealthStatusDegraded {
		t.Fatalf("expected degraded, got %s", health.Status)
	}

	found := false
	for _, c := range health.Checks {
		if c.Name == "image_library" && c.Status == HealthStatusDegraded {
			found = true
		}
	}
	if !found {
		t.Error("expected image_library check to be degraded")
	}
}
