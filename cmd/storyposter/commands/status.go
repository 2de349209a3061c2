package commands

import (
	"context"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/storyposter/internal/config"
	"git.home.luguber.info/inful/storyposter/internal/journal"
	"git.home.luguber.info/inful/storyposter/internal/library"
	"git.home.luguber.info/inful/storyposter/internal/state"
)

// StatusCmd implements the 'status' command: a quick look at where the
// posting sequence stands without touching the network.
type StatusCmd struct {
	Recent int `help:"Number of recent posts to show" default:"5"`
}

func (s *StatusCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := state.NewStore(cfg.State.Path())
	lastPosted := store.Load()
	fmt.Printf("State file:        %s\n", store.Path())
	fmt.Printf("Last posted index: %d\n", lastPosted)

	entries, err := library.Scan(cfg.Images.Directory)
	switch {
	case errors.Is(err, library.ErrDirectoryNotFound), errors.Is(err, library.ErrNoImages):
		fmt.Printf("Images:            none (%v)\n", err)
	case err != nil:
		return fmt.Errorf("scan images: %w", err)
	default:
		pending := len(entries) - (lastPosted + 1)
		if pending < 0 {
			pending = 0
		}
		fmt.Printf("Images:            %d total, %d pending\n", len(entries), pending)
		if pending > 0 {
			fmt.Printf("Next to post:      %s (index %d)\n", entries[lastPosted+1].Name, lastPosted+1)
		}
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open post journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	records, err := j.Recent(context.Background(), s.Recent)
	if err != nil {
		return fmt.Errorf("read post journal: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("Recent posts:      none")
		return nil
	}
	fmt.Println("Recent posts:")
	for _, rec := range records {
		fmt.Printf("  %s  %-20s index %-3d post %s\n",
			rec.PostedAt.Format("2006-01-02 15:04"), rec.Image, rec.Index, rec.PostID)
	}
	return nil
}
