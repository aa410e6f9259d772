//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// NSInteger clipmind_change_count() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
import "C"

import (
	"fmt"
	"sync"
	"time"
)

const darwinPollInterval = 100 * time.Millisecond

// darwinObserver polls NSPasteboard's changeCount, which increments on every
// clipboard write. Comparing counters touches no clipboard content.
type darwinObserver struct {
	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewObserver returns the macOS clipboard observer.
func NewObserver() Observer {
	return &darwinObserver{}
}

func (o *darwinObserver) Name() string { return "macOS NSPasteboard changeCount" }

func (o *darwinObserver) Start(pulse chan<- struct{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done != nil {
		return fmt.Errorf("observer already started")
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	last := C.clipmind_change_count()

	go func() {
		defer close(stopped)
		t := time.NewTicker(darwinPollInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				cc := C.clipmind_change_count()
				if cc != last {
					last = cc
					select {
					case pulse <- struct{}{}:
					default:
					}
				}
			}
		}
	}()

	o.done = done
	o.stopped = stopped
	return nil
}

func (o *darwinObserver) Stop() {
	o.mu.Lock()
	done := o.done
	stopped := o.stopped
	o.done = nil
	o.stopped = nil
	o.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped
}
