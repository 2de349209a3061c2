// Package state persists the index of the last successfully posted image.
package state

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NonePosted is the sentinel index meaning no image has been posted yet.
const NonePosted = -1

// Store persists a single integer: the position, within the ordered image
// listing, of the last image that was successfully posted. The value is
// advanced only after a confirmed successful post.
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path. The file is not
// created until the first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the last successfully posted index. An absent, unreadable
// or non-integer file yields NonePosted rather than an error: corrupt
// state is deliberately treated as "nothing posted yet" so a damaged file
// restarts the sequence instead of wedging the poster.
func (s *Store) Load() int {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("State file unreadable, treating as nothing posted",
				"path", s.path, "error", err)
		}
		return NonePosted
	}

	index, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		slog.Warn("State file corrupt, treating as nothing posted",
			"path", s.path, "content", string(data))
		return NonePosted
	}
	return index
}

// Save overwrites the persisted index. The value is written to a temp
// file in the same directory and renamed into place, so a crash mid-write
// leaves the previous value intact rather than a truncated file.
func (s *Store) Save(index int) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.Itoa(index)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace state file %s: %w", s.path, err)
	}
	return nil
}
