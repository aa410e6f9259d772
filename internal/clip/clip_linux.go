//go:build linux

package clip

import (
	"context"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// linuxObserver rides golang.design/x/clipboard's change watch (X11/Wayland).
// The watch yields the changed text, but the observer deliberately discards
// it and emits a bare pulse: the worker performs the authoritative read so
// that filtering, retry, and dedup all see the same snapshot.
type linuxObserver struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewObserver returns the Linux clipboard observer. Registration fails on
// headless systems with no display environment.
func NewObserver() Observer {
	return &linuxObserver{}
}

func (o *linuxObserver) Name() string { return "Linux clipboard watch" }

func (o *linuxObserver) Start(pulse chan<- struct{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		return fmt.Errorf("observer already started")
	}

	if err := initClipboard(); err != nil {
		return fmt.Errorf("clipboard listener registration failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	watch := clipboard.Watch(ctx, clipboard.FmtText)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for range watch {
			select {
			case pulse <- struct{}{}:
			default:
			}
		}
	}()

	o.cancel = cancel
	o.stopped = stopped
	return nil
}

func (o *linuxObserver) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	stopped := o.stopped
	o.cancel = nil
	o.stopped = nil
	o.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}
