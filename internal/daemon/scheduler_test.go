package daemon

import (
	"testing"
	"time"
)

func TestSchedulerDailyJobNextRun(t *testing.T) {
	s, err := NewScheduler(time.UTC)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	defer func() { _ = s.Stop() }()

	if _, err := s.ScheduleDailyPost(9, 30, func() {}); err != nil {
		t.Fatalf("ScheduleDailyPost failed: %v", err)
	}
	s.Start()

	next, ok := s.NextRun()
	if !ok {
		t.Fatal("expected a next run time")
	}
	next = next.In(time.UTC)
	if next.Hour() != 9 || next.Minute() != 30 {
		t.Errorf("expected next run at 09:30 UTC, got %s", next.Format(time.RFC3339))
	}
	if !next.After(time.Now().Add(-time.Minute)) {
		t.Errorf("next run should be in the future, got %s", next)
	}
}

func TestSchedulerNextRunWithoutJobs(t *testing.T) {
	s, err := NewScheduler(time.UTC)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	defer func() { _ = s.Stop() }()

	if _, ok := s.NextRun(); ok {
		t.Fatal("expected no next run without jobs")
	}
}
