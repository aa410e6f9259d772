package monitor

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clipmind/clipmind/internal/bus"
	"github.com/clipmind/clipmind/internal/classify"
	"github.com/clipmind/clipmind/internal/clip"
	"github.com/clipmind/clipmind/internal/event"
)

// maxRetryDelay caps the exponential backoff between read attempts.
const maxRetryDelay = 200 * time.Millisecond

// runWorker is the exclusive clipboard worker: the only goroutine that reads
// the clipboard for the lifetime of the session. It waits for pulses,
// debounces bursts, reads with retry, filters, classifies, and publishes.
// It exits when the pulse channel closes and closes the bus on the way out,
// signalling end of stream to all subscribers.
func (m *Monitor) runWorker(pulse chan struct{}, reader clip.Reader, b *bus.Bus, c *counters) {
	defer b.Close()

	slog.Debug("clipboard worker started")

	// Dedup state is private to this goroutine; a fresh session starts with
	// no previous content.
	var lastContent string
	var haveLast bool

	lastRead := time.Now().Add(-m.cfg.Debounce)
	closed := false

	for !closed {
		if _, ok := <-pulse; !ok {
			break
		}
		c.pulses.Add(1)

		// Debounce: enforce minimum spacing since the previous read, then
		// discard whatever pulses piled up during the wait so a burst of
		// notifications collapses into one read.
		if since := time.Since(lastRead); since < m.cfg.Debounce {
			time.Sleep(m.cfg.Debounce - since)
			closed = !drain(pulse)
		}

		start := time.Now()
		content, err := readWithRetry(reader, m.cfg.RetryMax, m.cfg.RetryInitialDelay)
		lastRead = time.Now()
		if err != nil {
			c.readFailures.Add(1)
			slog.Debug("skipping cycle", "err", err)
			continue
		}

		if reason := filterReason(m.cfg, content, lastContent, haveLast); reason != "" {
			c.filtered.Add(1)
			slog.Debug("content filtered", "reason", reason, "bytes", len(content))
			continue
		}

		ev := classify.NewEvent(content, "")
		lastContent = content
		haveLast = true

		change := &event.Change{
			Event:           ev,
			DetectionTimeMS: time.Since(start).Milliseconds(),
		}
		b.Publish(change)
		c.emitted.Add(1)

		slog.Info("clipboard change accepted",
			"type", ev.ContentType,
			"bytes", ev.ContentLength,
			"detection_ms", change.DetectionTimeMS,
		)
	}

	slog.Debug("clipboard worker stopped")
}

// drain discards buffered pulses without blocking. It reports false once the
// channel is observed closed.
func drain(pulse <-chan struct{}) bool {
	for {
		select {
		case _, ok := <-pulse:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// filterReason applies the acceptance filters in their fixed order and
// returns the name of the first one that rejects content, or "" when the
// content is accepted. Filtered input is a normal drop, not an error.
func filterReason(cfg Config, content, lastContent string, haveLast bool) string {
	if len(content) < cfg.MinContentLength {
		return "too short"
	}
	if len(content) > cfg.MaxContentLength {
		return "too long"
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "empty"
	}
	if cfg.IgnoreDuplicates && haveLast && content == lastContent {
		return "duplicate"
	}
	if cfg.IgnoreShortContent && len(trimmed) <= 1 {
		return "short"
	}
	return ""
}

// readWithRetry reads the clipboard, retrying transient failures with
// exponential backoff from initialDelay up to maxRetryDelay, for at most
// retryMax attempts. The clipboard is only touched for the duration of each
// attempt; no lock is held across the sleeps.
func readWithRetry(r clip.Reader, retryMax int, initialDelay time.Duration) (string, error) {
	delay := max(initialDelay, time.Millisecond)
	for attempt := 1; attempt <= retryMax; attempt++ {
		content, err := r.ReadText()
		if err == nil {
			return content, nil
		}
		slog.Debug("clipboard read failed",
			"attempt", attempt,
			"retry_max", retryMax,
			"err", err,
		)
		time.Sleep(delay)
		delay = min(delay*2, maxRetryDelay)
	}
	return "", fmt.Errorf("clipboard read failed after %d attempts", retryMax)
}
