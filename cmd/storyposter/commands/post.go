package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/storyposter/internal/config"
	"git.home.luguber.info/inful/storyposter/internal/facebook"
	"git.home.luguber.info/inful/storyposter/internal/journal"
	"git.home.luguber.info/inful/storyposter/internal/notify"
	"git.home.luguber.info/inful/storyposter/internal/poster"
	"git.home.luguber.info/inful/storyposter/internal/state"
)

// PostCmd implements the 'post' command: one posting sequence, then exit.
type PostCmd struct{}

func (p *PostCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open post journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	client := facebook.NewClient(cfg.Facebook.PageID, cfg.Facebook.AccessToken,
		facebookOptions(cfg.Facebook)...)
	store := state.NewStore(cfg.State.Path())

	opts := []poster.Option{poster.WithJournal(j)}
	if cfg.Notify.Enabled() {
		notifier, err := notify.NewNATSNotifier(cfg.Notify)
		if err != nil {
			return fmt.Errorf("create NATS notifier: %w", err)
		}
		defer notifier.Close()
		opts = append(opts, poster.WithNotifier(notifier))
	}
	service := poster.NewService(cfg.Images.Directory, cfg.Images.CaptionTemplate,
		store, client, opts...)

	// One-shot mode always exits cleanly: a failed publish is logged,
	// state is untouched and the next invocation retries the same image.
	if err := service.RunOnce(ctx); err != nil {
		slog.Error("Post failed", "error", err)
	}
	return nil
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
