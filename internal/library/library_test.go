package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeImages(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestScanNumericOrdering(t *testing.T) {
	dir := t.TempDir()
	// Lexicographic order would put story10 before story2.
	writeImages(t, dir, "story10.png", "story1.png", "story2.png")

	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"story1.png", "story2.png", "story10.png"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, entries[i].Name)
		}
	}
}

func TestScanKeysStrictlyAscending(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, "img_7.jpeg", "img_3.jpg", "img_25.png", "img_1.png")

	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key >= entries[i].Key {
			t.Errorf("keys not strictly ascending at %d: %d then %d", i, entries[i-1].Key, entries[i].Key)
		}
	}
}

func TestScanFiltersNonImages(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, "story1.png", "story2.JPG", "notes1.txt", "video3.mp4")
	if err := os.Mkdir(filepath.Join(dir, "sub4"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "story1.png" || entries[1].Name != "story2.JPG" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	_, err := Scan(t.TempDir())
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestScanFilenameWithoutDigits(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, "story1.png", "cover.png")

	_, err := Scan(dir)
	var orderingErr *OrderingError
	if !errors.As(err, &orderingErr) {
		t.Fatalf("expected OrderingError, got %v", err)
	}
	if orderingErr.Name != "cover.png" {
		t.Errorf("expected offending name cover.png, got %s", orderingErr.Name)
	}
}

func TestSequenceKeyConcatenatesDigits(t *testing.T) {
	cases := map[string]int{
		"story10.png":  10,
		"img_2_v3.jpg": 23,
		"005.jpeg":     5,
	}
	for name, want := range cases {
		key, err := sequenceKey(name)
		if err != nil {
			t.Fatalf("sequenceKey(%q) failed: %v", name, err)
		}
		if key != want {
			t.Errorf("sequenceKey(%q) = %d, want %d", name, key, want)
		}
	}
}
