package daemon

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"git.home.luguber.info/inful/storyposter/internal/metrics"
	"git.home.luguber.info/inful/storyposter/internal/state"
)

type gaugeRecorder struct {
	mu         sync.Mutex
	pending    int
	lastPosted int
}

func (g *gaugeRecorder) IncPostOutcome(metrics.Outcome)       {}
func (g *gaugeRecorder) ObservePostDuration(time.Duration)    {}
func (g *gaugeRecorder) SetPendingImages(n int)               { g.mu.Lock(); g.pending = n; g.mu.Unlock() }
func (g *gaugeRecorder) SetLastPostedIndex(i int)             { g.mu.Lock(); g.lastPosted = i; g.mu.Unlock() }
func (g *gaugeRecorder) snapshot() (pending, lastPosted int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending, g.lastPosted
}

func TestLibraryWatcherRefreshUpdatesGauges(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"story1.png", "story2.png", "story3.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o600); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	store := state.NewStore(filepath.Join(t.TempDir(), "last_posted.txt"))
	if err := store.Save(0); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	rec := &gaugeRecorder{}
	lw := NewLibraryWatcher(dir, rec, store)
	lw.refresh()

	pending, lastPosted := rec.snapshot()
	if pending != 2 {
		t.Errorf("expected 2 pending, got %d", pending)
	}
	if lastPosted != 0 {
		t.Errorf("expected last posted 0, got %d", lastPosted)
	}
}

func TestLibraryWatcherRefreshOnEmptyDirectory(t *testing.T) {
	rec := &gaugeRecorder{}
	store := state.NewStore(filepath.Join(t.TempDir(), "last_posted.txt"))
	lw := NewLibraryWatcher(t.TempDir(), rec, store)
	lw.refresh()

	pending, _ := rec.snapshot()
	if pending != 0 {
		t.Errorf("expected 0 pending on empty directory, got %d", pending)
	}
}
