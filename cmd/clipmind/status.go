package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipmind/clipmind/internal/ipc"
	"github.com/clipmind/clipmind/internal/message"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and session counters",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	return cmd
}

func runStatus(asJSON bool) error {
	c, err := dialDaemon()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.WriteMsg(&message.Message{Type: message.TypeStatus}); err != nil {
		return fmt.Errorf("requesting status: %w", err)
	}
	resp, err := c.ReadMsg()
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.Type == message.TypeError {
		return errors.New(resp.Error)
	}
	if resp.Type != message.TypeStatusResponse || resp.Stats == nil {
		return fmt.Errorf("unexpected response type %q", resp.Type)
	}

	if asJSON {
		raw, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}

	s := resp.Stats
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Running:\t%v\n", s.Running)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s ago)\n",
			s.StartedAt.Format(time.RFC3339), fmtAge(time.Since(s.StartedAt)))
	}
	fmt.Fprintf(w, "Pulses:\t%d\n", s.Pulses)
	fmt.Fprintf(w, "Emitted:\t%d\n", s.Emitted)
	fmt.Fprintf(w, "Filtered:\t%d\n", s.Filtered)
	fmt.Fprintf(w, "Read failures:\t%d\n", s.ReadFailures)
	fmt.Fprintf(w, "Subscribers:\t%d\n", s.Subscribers)
	if resp.Source != "" {
		fmt.Fprintf(w, "Host:\t%s\n", resp.Source)
	}
	fmt.Fprintf(w, "Version:\t%s\n", resp.Version)
	fmt.Fprintf(w, "Socket:\t%s\n", ipc.SocketPath())
	return w.Flush()
}

// fmtAge renders a duration in the largest sensible unit.
func fmtAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1fh", d.Hours())
	default:
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
}
