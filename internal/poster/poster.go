// Package poster implements next-image selection and the one-shot posting
// sequence: select, publish, then advance state only on confirmed success.
package poster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/storyposter/internal/journal"
	"git.home.luguber.info/inful/storyposter/internal/library"
	"git.home.luguber.info/inful/storyposter/internal/metrics"
	"git.home.luguber.info/inful/storyposter/internal/notify"
	"git.home.luguber.info/inful/storyposter/internal/state"
)

// Publisher publishes a single photo and returns the remote post ID.
type Publisher interface {
	PublishPhoto(ctx context.Context, imagePath, caption string) (string, error)
}

// PostJournal records successfully published posts.
type PostJournal interface {
	Append(ctx context.Context, rec journal.Record) error
}

// Notifier broadcasts post-published events.
type Notifier interface {
	PublishPost(event notify.PostEvent) error
}

// Selection is the image chosen for the next publish attempt, paired with
// its position in the current ordered listing.
type Selection struct {
	Entry library.Entry
	Index int
}

// Service wires the image library, posting state and publisher together.
type Service struct {
	imagesDir       string
	captionTemplate string
	store           *state.Store
	publisher       Publisher
	journal         PostJournal
	notifier        Notifier
	recorder        metrics.Recorder
	now             func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithJournal attaches a post-history journal.
func WithJournal(j PostJournal) Option {
	return func(s *Service) { s.journal = j }
}

// WithNotifier attaches an event notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the posting service.
func NewService(imagesDir, captionTemplate string, store *state.Store, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		imagesDir:       imagesDir,
		captionTemplate: captionTemplate,
		store:           store,
		publisher:       publisher,
		recorder:        metrics.NoopRecorder{},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next computes the next image to post: the entry following the last
// successfully posted index in the current listing. It returns nil when
// every listed image has been posted. The listing is recomputed from the
// live directory, so entries shifting between runs is possible and
// accepted (see package library).
func (s *Service) Next() (*Selection, error) {
	entries, err := library.Scan(s.imagesDir)
	if err != nil {
		return nil, err
	}

	lastPosted := s.store.Load()
	s.recorder.SetLastPostedIndex(lastPosted)

	index := lastPosted + 1
	if index >= len(entries) {
		s.recorder.SetPendingImages(0)
		return nil, nil
	}
	s.recorder.SetPendingImages(len(entries) - index)
	return &Selection{Entry: entries[index], Index: index}, nil
}

// Pending reports how many images remain unposted. Used by the status
// surfaces; selection itself always goes through Next.
func (s *Service) Pending() (int, error) {
	entries, err := library.Scan(s.imagesDir)
	if err != nil {
		return 0, err
	}
	pending := len(entries) - (s.store.Load() + 1)
	if pending < 0 {
		pending = 0
	}
	return pending, nil
}

// LastPosted returns the persisted posting-state index.
func (s *Service) LastPosted() int {
	return s.store.Load()
}

// RunOnce executes one full posting sequence. State is advanced only
// after the publisher confirms success; on any failure the state file is
// left untouched, so the same image is selected again next time.
func (s *Service) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	selection, err := s.Next()
	if err != nil {
		s.recorder.IncPostOutcome(metrics.OutcomeFailure)
		return fmt.Errorf("select next image: %w", err)
	}
	if selection == nil {
		log.Info("All images have been posted, nothing new to post")
		s.recorder.IncPostOutcome(metrics.OutcomeNothingToPost)
		return nil
	}

	caption := Caption(s.captionTemplate, s.now())
	log.Info("Publishing image",
		"image", selection.Entry.Name,
		"index", selection.Index,
		"caption", caption)

	start := s.now()
	postID, err := s.publisher.PublishPhoto(ctx, selection.Entry.Path, caption)
	s.recorder.ObservePostDuration(time.Since(start))
	if err != nil {
		s.recorder.IncPostOutcome(metrics.OutcomeFailure)
		return fmt.Errorf("publish %s: %w", selection.Entry.Name, err)
	}

	// Confirmed success: advance state before anything else so a crash
	// in the best-effort steps below cannot cause a duplicate post.
	if err := s.store.Save(selection.Index); err != nil {
		s.recorder.IncPostOutcome(metrics.OutcomeFailure)
		return fmt.Errorf("post %s published (post id %s) but state save failed, next run may repost it: %w",
			selection.Entry.Name, postID, err)
	}

	s.recorder.IncPostOutcome(metrics.OutcomeSuccess)
	s.recorder.SetLastPostedIndex(selection.Index)
	log.Info("Image posted", "image", selection.Entry.Name, "post_id", postID)

	postedAt := s.now()
	if s.journal != nil {
		rec := journal.Record{
			RunID:    runID,
			Image:    selection.Entry.Name,
			Index:    selection.Index,
			PostID:   postID,
			Caption:  caption,
			PostedAt: postedAt,
		}
		if err := s.journal.Append(ctx, rec); err != nil {
			log.Warn("Failed to journal post", "error", err)
		}
	}
	if s.notifier != nil {
		event := notify.PostEvent{
			RunID:    runID,
			Image:    selection.Entry.Name,
			Index:    selection.Index,
			PostID:   postID,
			Caption:  caption,
			PostedAt: postedAt,
		}
		if err := s.notifier.PublishPost(event); err != nil {
			log.Warn("Failed to notify post event", "error", err)
		}
	}

	if pending, err := s.Pending(); err == nil {
		s.recorder.SetPendingImages(pending)
	}
	return nil
}
