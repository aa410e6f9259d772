//go:build windows

package clip

// #cgo LDFLAGS: -luser32
//
// #include <windows.h>
//
// #define CLIPMIND_WM_PULSE (WM_USER + 1)
//
// static LRESULT CALLBACK clipmind_wnd_proc(HWND hwnd, UINT msg, WPARAM wp, LPARAM lp) {
//     switch (msg) {
//     case WM_CLIPBOARDUPDATE:
//         PostMessage(hwnd, CLIPMIND_WM_PULSE, 0, 0);
//         return 0;
//     case WM_DESTROY:
//         RemoveClipboardFormatListener(hwnd);
//         PostQuitMessage(0);
//         return 0;
//     }
//     return DefWindowProc(hwnd, msg, wp, lp);
// }
//
// static HWND clipmind_create_listener_window() {
//     WNDCLASS wc = {0};
//     wc.lpfnWndProc   = clipmind_wnd_proc;
//     wc.hInstance     = GetModuleHandle(NULL);
//     wc.lpszClassName = "ClipmindMonitor";
//     RegisterClass(&wc);
//     HWND hwnd = CreateWindowEx(0, "ClipmindMonitor", NULL, 0,
//         0, 0, 0, 0, HWND_MESSAGE, NULL, GetModuleHandle(NULL), NULL);
//     if (hwnd == NULL) {
//         return NULL;
//     }
//     if (!AddClipboardFormatListener(hwnd)) {
//         DestroyWindow(hwnd);
//         return NULL;
//     }
//     return hwnd;
// }
//
// // Blocks on GetMessage. Returns 0 on WM_QUIT, 1 when a clipboard update
// // was posted by the window procedure, 2 for anything else (dispatched).
// static int clipmind_next_message(HWND hwnd) {
//     MSG msg;
//     if (GetMessage(&msg, NULL, 0, 0) <= 0) {
//         return 0;
//     }
//     if (msg.message == CLIPMIND_WM_PULSE) {
//         return 1;
//     }
//     TranslateMessage(&msg);
//     DispatchMessage(&msg);
//     return 2;
// }
//
// static void clipmind_post_close(HWND hwnd) {
//     PostMessage(hwnd, WM_CLOSE, 0, 0);
// }
import "C"

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

// windowsObserver registers a hidden message-only window with
// AddClipboardFormatListener and drains its message queue on a dedicated
// OS thread. WM_CLIPBOARDUPDATE is converted to a pulse; the window is
// never handed any clipboard content.
type windowsObserver struct {
	mu      sync.Mutex
	hwnd    C.HWND
	stopped chan struct{}
}

// NewObserver returns the Windows clipboard observer.
func NewObserver() Observer {
	return &windowsObserver{}
}

func (o *windowsObserver) Name() string { return "Windows clipboard listener" }

func (o *windowsObserver) Start(pulse chan<- struct{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hwnd != nil {
		return fmt.Errorf("observer already started")
	}

	// The window must be created on the same thread that pumps its
	// messages, so registration happens inside the loop goroutine and the
	// handle is reported back before Start returns. The goroutine never
	// takes o.mu; Start holds it and records the handle itself.
	reg := make(chan C.HWND, 1)
	stopped := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(stopped)

		hwnd := C.clipmind_create_listener_window()
		reg <- hwnd
		if hwnd == nil {
			return
		}

		for {
			switch C.clipmind_next_message(hwnd) {
			case 0:
				slog.Debug("clipboard message loop ended")
				return
			case 1:
				select {
				case pulse <- struct{}{}:
				default:
				}
			}
		}
	}()

	hwnd := <-reg
	if hwnd == nil {
		<-stopped
		return fmt.Errorf("clipboard listener registration failed")
	}
	o.hwnd = hwnd
	o.stopped = stopped
	slog.Debug("clipboard listener registered")
	return nil
}

// Stop closes the listener window from its own thread (WM_CLOSE → WM_DESTROY
// → PostQuitMessage) and waits for the message loop to exit. The destroy
// path unregisters the format listener before the loop winds down.
func (o *windowsObserver) Stop() {
	o.mu.Lock()
	hwnd := o.hwnd
	stopped := o.stopped
	o.hwnd = nil
	o.stopped = nil
	o.mu.Unlock()

	if hwnd == nil {
		return
	}
	C.clipmind_post_close(hwnd)
	<-stopped
}
