package clip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// initClipboard initialises golang.design/x/clipboard once per process.
// Init is called lazily here rather than in init() so that CLI sub-commands
// that never touch the clipboard (classify, status) work on headless systems.
func initClipboard() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

type systemReader struct{}

// NewReader returns the system clipboard Reader. It fails when the display
// environment is unavailable (e.g. a headless server without X11 or Wayland).
func NewReader() (Reader, error) {
	if err := initClipboard(); err != nil {
		return nil, fmt.Errorf("clipboard init: %w", err)
	}
	return systemReader{}, nil
}

func (systemReader) ReadText() (string, error) {
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", ErrUnavailable
	}
	return string(data), nil
}
