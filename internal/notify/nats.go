// Package notify publishes post-published events to NATS when configured.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/storyposter/internal/config"
)

// PostEvent is the payload published after each successful post.
type PostEvent struct {
	RunID    string    `json:"run_id"`
	Image    string    `json:"image"`
	Index    int       `json:"index"`
	PostID   string    `json:"post_id"`
	Caption  string    `json:"caption"`
	PostedAt time.Time `json:"posted_at"`
}

// NATSNotifier publishes post events to a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to the configured NATS server. Callers should
// only construct one when cfg.Enabled() is true.
func NewNATSNotifier(cfg config.NotifyConfig) (*NATSNotifier, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("storyposter"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS notifier initialized", "url", cfg.URL, "subject", cfg.Subject)
	return &NATSNotifier{conn: conn, subject: cfg.Subject}, nil
}

// PublishPost publishes a post event. Failures are returned to the caller
// for logging; a broken notifier never blocks the posting sequence.
func (n *NATSNotifier) PublishPost(event PostEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal post event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish post event: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (n *NATSNotifier) Close() {
	if n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		slog.Warn("NATS drain failed", "error", err)
		n.conn.Close()
	}
}
