// Package config loads the storyposter configuration from YAML and the
// process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. It is constructed once
// at startup and passed into each component; nothing reads configuration
// from globals after that.
type Config struct {
	Images   ImagesConfig   `yaml:"images"`
	Facebook FacebookConfig `yaml:"facebook"`
	State    StateConfig    `yaml:"state"`
	Schedule ScheduleConfig `yaml:"schedule"`
	HTTP     HTTPConfig     `yaml:"http"`
	Journal  JournalConfig  `yaml:"journal"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ImagesConfig describes the image source directory and caption template.
type ImagesConfig struct {
	Directory string `yaml:"directory"`
	// CaptionTemplate is the caption applied to each post; the {date}
	// placeholder is replaced with the current date.
	CaptionTemplate string `yaml:"caption_template"`
}

// FacebookConfig holds Graph API settings. PageID and AccessToken are
// secrets and come from the environment, never from the YAML file.
type FacebookConfig struct {
	PageID      string        `yaml:"-"`
	AccessToken string        `yaml:"-"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// StateConfig locates the posting-state file.
type StateConfig struct {
	Directory string `yaml:"directory"`
	File      string `yaml:"file"`
}

// Path returns the full path of the state file.
func (s StateConfig) Path() string {
	return filepath.Join(s.Directory, s.File)
}

// ScheduleConfig describes when the daily post fires.
type ScheduleConfig struct {
	// At is the time of day in "15:04" form.
	At string `yaml:"at"`
	// Timezone is an IANA zone name the schedule is evaluated in.
	Timezone string `yaml:"timezone"`
}

// AtTime parses the configured time of day.
func (s ScheduleConfig) AtTime() (hour, minute int, err error) {
	t, err := time.Parse("15:04", s.At)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time %q (want HH:MM): %w", s.At, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Location resolves the configured timezone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// HTTPConfig configures the daemon's HTTP listener.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// JournalConfig locates the post-history database.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig configures the optional NATS event publisher. Notification
// is disabled when URL is empty.
type NotifyConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether event notification is configured.
func (n NotifyConfig) Enabled() bool { return n.URL != "" }

// Load loads configuration from the specified file, then applies defaults
// and environment overrides. A missing config file is not an error: the
// defaults describe a complete working setup and secrets come from the
// environment anyway.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand environment variables in the YAML content.
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if _, _, err := cfg.Schedule.AtTime(); err != nil {
		return nil, err
	}
	if _, err := cfg.Schedule.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Images.Directory == "" {
		c.Images.Directory = "images"
	}
	if c.Images.CaptionTemplate == "" {
		c.Images.CaptionTemplate = "📖 Bible Story - {date}"
	}
	if c.State.Directory == "" {
		c.State.Directory = "."
	}
	if c.State.File == "" {
		c.State.File = "last_posted.txt"
	}
	if c.Schedule.At == "" {
		c.Schedule.At = "09:00"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "UTC"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(c.State.Directory, "posts.db")
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "storyposter.posts"
	}
	if c.Facebook.Timeout == 0 {
		c.Facebook.Timeout = 300 * time.Second
	}
}

// applyEnvOverrides reads the environment-sourced settings. Secrets are
// env-only; the rest are optional operational overrides.
func (c *Config) applyEnvOverrides() {
	c.Facebook.PageID = os.Getenv("FACEBOOK_PAGE_ID")
	c.Facebook.AccessToken = os.Getenv("FACEBOOK_ACCESS_TOKEN")

	if dir := os.Getenv("STORYPOSTER_STATE_DIR"); dir != "" {
		c.State.Directory = dir
		c.Journal.Path = filepath.Join(dir, "posts.db")
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.HTTP.Port = p
		}
	}
}
