package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipmind/clipmind/internal/logging"
	"github.com/clipmind/clipmind/internal/monitor"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPMIND_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPMIND_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipmind")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipmind/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipmind", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPMIND")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addMonitorFlags adds the monitoring-policy flags to a command. Defaults
// mirror monitor.DefaultConfig.
func addMonitorFlags(cmd *cobra.Command) {
	def := monitor.DefaultConfig()
	f := cmd.Flags()
	f.Int("min-length", def.MinContentLength, "minimum accepted content length in bytes")
	f.Int("max-length", def.MaxContentLength, "maximum accepted content length in bytes")
	f.Bool("ignore-duplicates", def.IgnoreDuplicates, "drop content identical to the previous accepted content")
	f.Bool("ignore-short", def.IgnoreShortContent, "drop content whose trimmed length is one byte or less")
	f.Int("debounce-ms", int(def.Debounce/time.Millisecond), "minimum spacing between clipboard reads in milliseconds")
	f.Int("retry-max", def.RetryMax, "maximum clipboard read attempts per change")
	f.Int("retry-initial-delay-ms", int(def.RetryInitialDelay/time.Millisecond), "initial read-retry backoff in milliseconds")
	f.Int("bus-capacity", def.BusCapacity, "per-subscriber event buffer size")
}

// monitorConfig converts resolved viper values into the immutable monitor
// configuration. The core never re-reads configuration after this.
func monitorConfig(v *viper.Viper) monitor.Config {
	return monitor.Config{
		MinContentLength:   v.GetInt("min-length"),
		MaxContentLength:   v.GetInt("max-length"),
		IgnoreDuplicates:   v.GetBool("ignore-duplicates"),
		IgnoreShortContent: v.GetBool("ignore-short"),
		Debounce:           time.Duration(v.GetInt("debounce-ms")) * time.Millisecond,
		RetryMax:           v.GetInt("retry-max"),
		RetryInitialDelay:  time.Duration(v.GetInt("retry-initial-delay-ms")) * time.Millisecond,
		BusCapacity:        v.GetInt("bus-capacity"),
	}
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}
