// Package history keeps a bounded in-memory buffer of accepted clipboard
// events. It is the only retention this process does; nothing is persisted.
package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/clipmind/clipmind/internal/bus"
	"github.com/clipmind/clipmind/internal/event"
)

// DefaultSize is the number of events retained when Store is built with a
// non-positive size.
const DefaultSize = 100

// PreviewLength is the maximum byte length of Entry previews.
const PreviewLength = 100

// Entry is one retained event with a display-safe content preview.
type Entry struct {
	Event   event.ChangeEvent `json:"event"`
	Preview string            `json:"preview"`
}

// Store is a fixed-capacity ring of the most recent entries, newest first.
// Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// NewStore returns an empty Store retaining up to size entries.
func NewStore(size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{max: size}
}

// Add retains ev, evicting the oldest entry when the store is full.
func (s *Store) Add(ev event.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{
		Event:   ev,
		Preview: Preview(ev.Content, PreviewLength),
	})
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
}

// Recent returns up to n entries, most recent first. n <= 0 returns all.
func (s *Store) Recent(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = s.entries[len(s.entries)-1-i]
	}
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Record consumes sub into the store until the stream closes or ctx ends.
// Lag is survivable: skipped events are logged and recording continues.
func (s *Store) Record(ctx context.Context, sub *bus.Subscription) {
	for {
		c, err := sub.Recv(ctx)
		if err != nil {
			var lagged *bus.LaggedError
			if errors.As(err, &lagged) {
				slog.Warn("history recorder lagged", "skipped", lagged.Skipped)
				continue
			}
			if !errors.Is(err, bus.ErrClosed) && !errors.Is(err, context.Canceled) {
				slog.Debug("history recorder stopped", "err", err)
			}
			return
		}
		s.Add(c.Event)
	}
}

// Preview truncates content to at most maxBytes without splitting a UTF-8
// sequence, appending an ellipsis when anything was cut.
func Preview(content string, maxBytes int) string {
	if len(content) <= maxBytes {
		return content
	}
	end := maxBytes
	for end > 0 && !utf8.RuneStart(content[end]) {
		end--
	}
	return content[:end] + "…"
}
