package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clipmind/clipmind/internal/message"
)

func newRecentCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recently captured clipboard events",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRecent(limit, asJSON)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum entries to show (0 = all retained)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func runRecent(limit int, asJSON bool) error {
	c, err := dialDaemon()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.WriteMsg(&message.Message{Type: message.TypeRecent, Limit: limit}); err != nil {
		return fmt.Errorf("requesting history: %w", err)
	}
	resp, err := c.ReadMsg()
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.Type == message.TypeError {
		return errors.New(resp.Error)
	}
	if resp.Type != message.TypeRecentResponse {
		return fmt.Errorf("unexpected response type %q", resp.Type)
	}

	if asJSON {
		raw, err := json.MarshalIndent(resp.Entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}

	if len(resp.Entries) == 0 {
		fmt.Println("no events retained")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tBYTES\tPREVIEW")
	for _, e := range resp.Entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			e.Event.Timestamp.Format("15:04:05"),
			e.Event.ContentType,
			e.Event.ContentLength,
			e.Preview,
		)
	}
	return w.Flush()
}
