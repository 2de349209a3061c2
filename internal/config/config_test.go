package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Images.Directory != "images" {
		t.Errorf("expected default images dir, got %q", cfg.Images.Directory)
	}
	if cfg.HTTP.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.HTTP.Port)
	}
	if cfg.Schedule.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %q", cfg.Schedule.Timezone)
	}
	if cfg.State.Path() != filepath.Join(".", "last_posted.txt") {
		t.Errorf("unexpected default state path %q", cfg.State.Path())
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
images:
  directory: /srv/stories
  caption_template: "Story time - {date}"
schedule:
  at: "18:30"
  timezone: Europe/Stockholm
http:
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Images.Directory != "/srv/stories" {
		t.Errorf("unexpected images dir %q", cfg.Images.Directory)
	}
	hour, minute, err := cfg.Schedule.AtTime()
	if err != nil {
		t.Fatalf("AtTime failed: %v", err)
	}
	if hour != 18 || minute != 30 {
		t.Errorf("expected 18:30, got %02d:%02d", hour, minute)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
}

func TestLoadRejectsBadScheduleTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("schedule:\n  at: \"25:99\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid schedule time, got nil")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FACEBOOK_PAGE_ID", "page-1")
	t.Setenv("FACEBOOK_ACCESS_TOKEN", "tok-1")
	t.Setenv("STORYPOSTER_STATE_DIR", "/var/lib/storyposter")
	t.Setenv("PORT", "9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Facebook.PageID != "page-1" || cfg.Facebook.AccessToken != "tok-1" {
		t.Errorf("credentials not taken from env: %+v", cfg.Facebook)
	}
	if cfg.State.Directory != "/var/lib/storyposter" {
		t.Errorf("state dir override ignored: %q", cfg.State.Directory)
	}
	if cfg.Journal.Path != filepath.Join("/var/lib/storyposter", "posts.db") {
		t.Errorf("journal path should follow state dir, got %q", cfg.Journal.Path)
	}
	if cfg.HTTP.Port != 9999 {
		t.Errorf("port override ignored: %d", cfg.HTTP.Port)
	}
}

func TestNotifyDisabledByDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Notify.Enabled() {
		t.Error("notify should be disabled without a URL")
	}
	if cfg.Notify.Subject != "storyposter.posts" {
		t.Errorf("unexpected default subject %q", cfg.Notify.Subject)
	}
}
