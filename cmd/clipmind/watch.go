package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipmind/clipmind/internal/history"
	"github.com/clipmind/clipmind/internal/ipc"
	"github.com/clipmind/clipmind/internal/message"
	"github.com/clipmind/clipmind/internal/wire"
)

func newWatchCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream classified clipboard changes from the daemon",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runWatch(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON message per line")
	return cmd
}

func runWatch(asJSON bool) error {
	c, err := dialDaemon()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}

	for {
		msg, err := c.ReadMsg()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil // daemon stopped
			}
			return fmt.Errorf("reading stream: %w", err)
		}

		switch msg.Type {
		case message.TypeChange:
			if msg.Change == nil {
				continue
			}
			if asJSON {
				raw, _ := json.Marshal(msg.Change)
				fmt.Println(string(raw))
				continue
			}
			ev := msg.Change.Event
			fmt.Printf("%s  %-10s  %s\n",
				ev.Timestamp.Format("15:04:05"),
				ev.ContentType,
				history.Preview(ev.Content, 80),
			)
		case message.TypeLagged:
			fmt.Fprintf(os.Stderr, "warning: fell behind, %d changes skipped\n", msg.Skipped)
		case message.TypeError:
			return errors.New(msg.Error)
		}
	}
}

// dialDaemon connects to the running daemon's socket, with a helpful error
// when no daemon is listening.
func dialDaemon() (*wire.Conn, error) {
	if !ipc.IsRunning() {
		return nil, fmt.Errorf("no daemon listening on %s (start one with \"clipmind run\")", ipc.SocketPath())
	}
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}
	return wire.New(conn), nil
}
