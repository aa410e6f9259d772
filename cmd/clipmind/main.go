// clipmind: clipboard monitoring and classification daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipmind/clipmind/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipmind",
		Short: "Clipboard monitoring and classification",
		Long: `clipmind watches the system clipboard, classifies every change (URL,
email, phone, financial, datetime, code, address, plain text), and fans the
resulting events out to consumers over a local socket.

Run "clipmind run" to start the monitor daemon. Use "clipmind watch",
"clipmind recent" and "clipmind status" to talk to it, and
"clipmind classify" to classify text without a daemon.

Config file search order (first found wins):
  /etc/clipmind/clipmind.toml
  $HOME/.config/clipmind/clipmind.toml
  path supplied via --config

All flags can be set via CLIPMIND_<FLAG> env vars or config-file keys.
See "clipmind run --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newWatchCmd(),
		newRecentCmd(),
		newStatusCmd(),
		newClassifyCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipmind %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
