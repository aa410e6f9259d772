// Package clip provides the two platform capabilities the monitor is built
// on: an Observer that turns native clipboard-change notifications into
// content-free pulses, and a Reader that returns the clipboard text.
//
// Build constraints select the Observer implementation:
//
//	clip_windows.go  — hidden listener window + AddClipboardFormatListener
//	clip_darwin.go   — NSPasteboard changeCount poll via cgo
//	clip_linux.go    — golang.design/x/clipboard watch (X11/Wayland)
//	clip_stub.go     — unsupported platforms; registration always fails
//
// The Observer never hands clipboard contents to anyone: it only signals
// that a change may have happened. All reads go through the Reader, whose
// sole user is the monitor's worker goroutine.
package clip

import "errors"

// ErrUnavailable reports that no text content could be obtained from the
// clipboard. It is the transient condition the worker's retry loop absorbs:
// the clipboard may be empty, hold only non-text data, or be locked by the
// application that is writing to it.
var ErrUnavailable = errors.New("clip: no text content available")

// ErrUnsupported reports that no Observer exists for this platform.
var ErrUnsupported = errors.New("clip: clipboard observation not supported on this platform")

// Observer bridges OS-level clipboard-change notifications into pulses.
type Observer interface {
	// Name returns a human-readable name for the platform mechanism.
	Name() string

	// Start registers with the OS and begins delivering pulses on a
	// dedicated goroutine. It does not block. Each native notification
	// causes one non-blocking send on pulse; a full channel drops the
	// pulse, which the worker's debounce tolerates. A non-nil error means
	// registration failed and no pulse will ever be sent.
	Start(pulse chan<- struct{}) error

	// Stop unregisters the OS listener and does not return until the
	// event loop goroutine has exited. Stop after a failed Start is a
	// no-op. The pulse channel is never closed by the Observer.
	Stop()
}

// Reader is the capability to read the clipboard's text content. Exactly one
// goroutine owns a Reader for the lifetime of a monitoring session.
type Reader interface {
	// ReadText returns the current clipboard text, or ErrUnavailable when
	// no text content can be obtained right now.
	ReadText() (string, error)
}
