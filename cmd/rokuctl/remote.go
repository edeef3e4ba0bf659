package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/rokuctl/internal/bridge"
	"github.com/muurk/rokuctl/internal/tui"
)

var listenAddr string

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", bridge.DefaultAddr, "Address the bridge listens on")

	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(serveCmd)
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Interactive terminal remote",
	Long: `Open a full-screen remote: a directional pad and media keys on the
left, the channel list on the right and a status line at the bottom.

Press ? inside the remote for key bindings. The address you set or
discover is remembered for the next session.`,
	Args: cobra.NoArgs,
	RunE: runRemote,
}

func runRemote(cmd *cobra.Command, args []string) error {
	if !tui.IsInteractive() {
		return fmt.Errorf("the remote needs an interactive terminal; use the one-shot commands instead")
	}

	s := newSession(cmd)
	defer s.controller.Wait()

	return tui.Run(cmd.Context(), s.controller, tui.Options{
		DiscoverTimeout: s.timeout,
		AutoDiscover:    autoDiscover || s.registry.Preferences.AutoDiscover,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WebSocket remote bridge",
	Long: `Serve the remote over HTTP so phones and browsers on the LAN can drive
the device.

  GET /api/state   current address, status and channel list as JSON
  GET /ws          WebSocket; send {"op": "key", "key": "Home"} and receive
                   state updates as they happen

Stop with Ctrl+C.`,
	Example: `  rokuctl serve --host 192.168.1.42
  rokuctl serve --auto --listen 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(cmd)
		defer s.controller.Wait()

		if s.controller.Address() != "" {
			s.controller.Go(func() { s.controller.RefreshCatalog(ctx) })
		} else if autoDiscover {
			s.controller.DiscoverAndAdopt(ctx, s.timeout)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Bridge listening on %s (Ctrl+C to stop)\n", listenAddr)
		return bridge.New(s.controller, bridge.Config{
			Addr:            listenAddr,
			DiscoverTimeout: s.timeout,
		}).Start(ctx)
	},
}
