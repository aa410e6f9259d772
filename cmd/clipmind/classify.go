package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipmind/clipmind/internal/classify"
)

func newClassifyCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify text without a daemon",
		Long: `Classify runs the content classifier on the given text (or stdin when no
argument is supplied) and prints the detected type. No daemon is required.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var content string
			if len(args) == 1 {
				content = args[0]
			} else {
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				content = string(raw)
			}
			if strings.TrimSpace(content) == "" {
				return fmt.Errorf("nothing to classify")
			}

			ev := classify.NewEvent(content, "")
			if asJSON {
				raw, err := json.MarshalIndent(ev, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(raw))
				return nil
			}
			fmt.Println(ev.ContentType)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full classified event as JSON")
	return cmd
}
