// Package ipc provides the local Unix-socket channel through which CLI
// sub-commands (watch/recent/status) and external collaborators — suggestion
// engines, popup UIs — talk to a running clipmind daemon. The socket speaks
// the newline-delimited JSON envelope from internal/message.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the socket location: $CLIPMIND_SOCKET if set, else
// $XDG_RUNTIME_DIR/clipmind.sock, else a temp-dir fallback.
func SocketPath() string {
	if s := os.Getenv("CLIPMIND_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipmind.sock")
	}
	return filepath.Join(os.TempDir(), "clipmind.sock")
}

// IsRunning reports whether a daemon appears to be listening on the socket.
// It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the socket path, removing any stale socket
// left by a previous (crashed) run.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the daemon's socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
