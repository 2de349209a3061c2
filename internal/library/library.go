// Package library scans the local image directory and orders candidate
// images by the numeric sequence embedded in their filenames.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Recognized image extensions, matched case-insensitively.
var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// Sentinel errors for the two "nothing to work with" conditions.
var (
	ErrDirectoryNotFound = errors.New("image directory not found")
	ErrNoImages          = errors.New("no images found in directory")
)

// OrderingError indicates an image filename carries no digits, so no
// sequence position can be derived for it.
type OrderingError struct {
	Name string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("cannot order image %q: filename contains no digits", e.Name)
}

// Entry is one candidate image together with its derived ordering key.
type Entry struct {
	// Name is the bare filename, e.g. "story12.png".
	Name string
	// Key is the integer formed by concatenating all digit characters in
	// the filename, e.g. 12 for "story12.png".
	Key int
	// Path is the full filesystem path to the image.
	Path string
}

// Scan lists dir and returns image entries sorted ascending by Key.
// The listing is recomputed from live directory contents on every call;
// nothing is cached or persisted, so adding or removing files between
// calls shifts which entry sits at a given position.
func Scan(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("read image directory %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !hasImageExtension(de.Name()) {
			continue
		}
		key, err := sequenceKey(de.Name())
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name: de.Name(),
			Key:  key,
			Path: filepath.Join(dir, de.Name()),
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImages, dir)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key != entries[j].Key {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

func hasImageExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// sequenceKey concatenates every digit in name and parses the result,
// so "story10.png" yields 10 and "img_2_v3.jpg" yields 23.
func sequenceKey(name string) (int, error) {
	var digits strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, &OrderingError{Name: name}
	}
	key, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, fmt.Errorf("parse sequence key for %q: %w", name, err)
	}
	return key, nil
}
