// Rokuctl discovers and controls Roku streaming devices on the local network.
//
// It speaks Roku's External Control Protocol (ECP) over HTTP on port 8060 and
// finds devices with SSDP. Besides one-shot commands it offers an interactive
// terminal remote and a WebSocket bridge for phones and browsers.
//
// Usage:
//
//	rokuctl [command] [flags]
//
// Running without arguments in a terminal launches the interactive remote.
// See 'rokuctl --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/rokuctl/internal/config"
	"github.com/muurk/rokuctl/internal/discovery"
	"github.com/muurk/rokuctl/internal/ecp"
	"github.com/muurk/rokuctl/internal/logging"
	"github.com/muurk/rokuctl/internal/tui"
	"github.com/muurk/rokuctl/internal/urls"
	"github.com/muurk/rokuctl/internal/version"
)

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	hostFlag       string
	portFlag       int
	autoDiscover   bool
	timeoutSeconds int
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "rokuctl",
	Short: "Roku discovery and remote control",
	Long: `Discover and control Roku streaming devices on your network.

The device is chosen from, in order: --host, the ROKU_HOST or ROKU_DEV_TARGET
environment variables, the address remembered from the last session, and
finally SSDP discovery when --auto is given.

If no command is specified and the terminal is interactive, the remote
screen launches.

Protocol reference:
  ` + urls.ExternalControl,
	Version:       version.Get().Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsInteractive() {
			return cmd.Help()
		}
		return runRemote(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Roku host or IP (overrides ROKU_HOST and the saved address)")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", ecp.DefaultPort, "ECP port")
	rootCmd.PersistentFlags().BoolVar(&autoDiscover, "auto", false, "Discover a device with SSDP when no host is known")
	rootCmd.PersistentFlags().IntVar(&timeoutSeconds, "timeout", int(discovery.DefaultTimeout/time.Second), "Discovery timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rokuctl %s\n", version.Full())
	},
}

// discoverTimeout returns --timeout when given, otherwise the saved preference
func discoverTimeout(cmd *cobra.Command, registry *config.Registry) time.Duration {
	if cmd.Flags().Changed("timeout") || registry == nil {
		if timeoutSeconds <= 0 {
			return discovery.DefaultTimeout
		}
		return time.Duration(timeoutSeconds) * time.Second
	}
	return registry.Preferences.DiscoverTimeoutDuration()
}
