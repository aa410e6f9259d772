package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipmind/clipmind/internal/bus"
	"github.com/clipmind/clipmind/internal/history"
	"github.com/clipmind/clipmind/internal/ipc"
	"github.com/clipmind/clipmind/internal/message"
	"github.com/clipmind/clipmind/internal/monitor"
	"github.com/clipmind/clipmind/internal/wire"
)

func newRunCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clipboard monitor daemon",
		Long: `Run starts the clipboard monitor: a platform observer signals every
clipboard change, a single worker debounces, reads, filters and classifies it,
and accepted changes fan out to subscribers. The daemon keeps a bounded
in-memory history and serves watch/recent/status clients over a local socket.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindViper(cmd, v)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDaemon(v)
		},
	}
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	addMonitorFlags(cmd)
	cmd.Flags().Int("history-size", history.DefaultSize, "number of recent events retained in memory")
	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)

	m := monitor.New(monitorConfig(v))
	sub, err := m.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := history.NewStore(v.GetInt("history-size"))
	go store.Record(ctx, sub)

	ln, err := ipc.Listen()
	if err != nil {
		slog.Warn("ipc unavailable, running without local clients", "err", err)
	} else {
		slog.Info("listening", "socket", ipc.SocketPath())
		defer os.Remove(ipc.SocketPath())
		defer ln.Close()
		go serveIPC(ctx, ln, m, store)
	}

	<-ctx.Done()
	slog.Info("shutting down")
	return m.Stop()
}

// serveIPC accepts local client connections until the listener closes.
func serveIPC(ctx context.Context, ln net.Listener, m *monitor.Monitor, store *history.Store) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("ipc accept", "err", err)
			}
			return
		}
		go handleIPC(ctx, wire.New(conn), m, store)
	}
}

// handleIPC serves one client connection. Requests are handled in order; a
// WATCH request takes over the connection for streaming.
func handleIPC(ctx context.Context, c *wire.Conn, m *monitor.Monitor, store *history.Store) {
	defer c.Close()
	for {
		msg, err := c.ReadMsg()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Debug("ipc read", "err", err)
			}
			return
		}

		switch msg.Type {
		case message.TypeStatus:
			stats := m.Stats()
			hostname, _ := os.Hostname()
			err = c.WriteMsg(&message.Message{
				Type:    message.TypeStatusResponse,
				Stats:   &stats,
				Source:  hostname,
				Version: Version,
			})
		case message.TypeRecent:
			err = c.WriteMsg(&message.Message{
				Type:    message.TypeRecentResponse,
				Entries: store.Recent(msg.Limit),
			})
		case message.TypeWatch:
			streamChanges(ctx, c, m)
			return
		default:
			err = c.WriteMsg(&message.Message{
				Type:  message.TypeError,
				Error: fmt.Sprintf("unexpected message type %q", msg.Type),
			})
		}
		if err != nil {
			slog.Debug("ipc write", "err", err)
			return
		}
	}
}

// streamChanges forwards the live change stream to one client until the
// client disconnects, the daemon stops, or ctx ends.
func streamChanges(ctx context.Context, c *wire.Conn, m *monitor.Monitor) {
	sub, err := m.Subscribe()
	if err != nil {
		_ = c.WriteMsg(&message.Message{Type: message.TypeError, Error: err.Error()})
		return
	}
	defer sub.Close()

	// Client disconnect is only visible through a failed read.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		_, _ = c.ReadMsg()
		cancel()
	}()

	for {
		change, err := sub.Recv(ctx)
		if err != nil {
			var lagged *bus.LaggedError
			if errors.As(err, &lagged) {
				if werr := c.WriteMsg(&message.Message{
					Type:    message.TypeLagged,
					Skipped: lagged.Skipped,
				}); werr != nil {
					return
				}
				continue
			}
			return
		}
		if err := c.WriteMsg(&message.Message{
			Type:   message.TypeChange,
			Change: change,
		}); err != nil {
			return
		}
	}
}
