package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/rokuctl/internal/discovery"
	"github.com/muurk/rokuctl/internal/ecp"
	"github.com/muurk/rokuctl/internal/urls"
)

// Command-specific flags
var (
	discoverMDNS bool
	infoRaw      bool
)

func init() {
	discoverCmd.Flags().BoolVar(&discoverMDNS, "mdns", false, "Also browse mDNS (AirPlay) advertisements")
	infoCmd.Flags().BoolVar(&infoRaw, "raw", false, "Print the device-info XML as returned by the device")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(keypressCmd)
	rootCmd.AddCommand(keydownCmd)
	rootCmd.AddCommand(keyupCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(typeCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find Roku devices on the local network",
	Long: `Send an SSDP M-SEARCH for roku:ecp and list every device that answers
within the timeout. Each device is printed once, in the order it replied.

Use --mdns to also browse AirPlay advertisements. Hosts found only through
mDNS are listed after the SSDP results.`,
	Example: `  # Scan for 3 seconds (default)
  rokuctl discover

  # Scan longer on a busy network
  rokuctl discover --timeout 10

  # Include mDNS results
  rokuctl discover --mdns`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	timeout := discoverTimeout(cmd, loadRegistry())

	fmt.Fprintf(out, "Scanning for Roku devices (timeout: %s)...\n", timeout)

	ssdp := &ssdpRecorder{scanner: discovery.NewScanner()}
	var extra []discovery.Finder
	if discoverMDNS {
		extra = append(extra, discovery.NewMDNSScanner())
	}

	if reportDevices(cmd.Context(), out, timeout, ssdp, extra...) == 0 {
		fmt.Fprintln(out, "\nNo Roku devices found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Make sure this computer is on the same network as the Roku")
		fmt.Fprintln(out, "  - Some routers block multicast between wired and wireless clients")
		fmt.Fprintln(out, "  - Try a longer scan with --timeout")
		return errors.New("no Roku devices found")
	}
	return nil
}

// ssdpRecorder is a Finder that keeps the full SSDP responses for display
type ssdpRecorder struct {
	scanner   *discovery.Scanner
	responses []discovery.Response
}

func (r *ssdpRecorder) Discover(ctx context.Context, timeout time.Duration) []string {
	r.responses = r.scanner.DiscoverResponses(ctx, timeout)
	hosts := make([]string, 0, len(r.responses))
	for _, resp := range r.responses {
		hosts = append(hosts, resp.Host)
	}
	return hosts
}

// reportDevices runs SSDP alongside the extra finders over one window and
// prints each device once. SSDP answers come first with their headers, then
// hosts only the extra finders saw. It returns the number of devices.
func reportDevices(ctx context.Context, out io.Writer, timeout time.Duration, ssdp *ssdpRecorder, extra ...discovery.Finder) int {
	finders := append([]discovery.Finder{ssdp}, extra...)
	hosts := discovery.All(finders...).Discover(ctx, timeout)

	for _, resp := range ssdp.responses {
		fmt.Fprintf(out, "\nFrom:     %s\n", resp.From)
		fmt.Fprintf(out, "Location: %s\n", resp.Location)
		if resp.USN != "" {
			fmt.Fprintf(out, "USN:      %s\n", resp.USN)
		}
		if resp.Server != "" {
			fmt.Fprintf(out, "Server:   %s\n", resp.Server)
		}
	}
	for _, host := range hosts[len(ssdp.responses):] {
		fmt.Fprintf(out, "\nmDNS:     %s\n", host)
	}

	if len(hosts) > 0 {
		fmt.Fprintf(out, "\n%d device(s) found.\n", len(hosts))
	}
	return len(hosts)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device information",
	Long: `Query /query/device-info and print the device name, model, serial
number, software version and network details.`,
	Example: `  rokuctl info --host 192.168.1.42
  rokuctl info --raw`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		s := newSession(cmd)

		host, err := s.requireHost(ctx, printer(cmd))
		if err != nil {
			return err
		}

		if infoRaw {
			body, err := s.client.Fetch(ctx, host, ecp.DeviceInfoPath)
			if err != nil {
				return fmt.Errorf("device info failed: %s", ecp.ShortMessage(err))
			}
			fmt.Fprintln(out, strings.TrimSpace(string(body)))
			return nil
		}

		info := s.controller.DeviceInfo(ctx)
		if info == nil {
			return fmt.Errorf("%s", s.controller.Snapshot().Status)
		}

		for _, field := range info.Fields() {
			fmt.Fprintf(out, "%-22s %s\n", field[0]+":", field[1])
		}
		if info.FriendlyName != "" {
			if err := s.registry.SetDeviceName(info.FriendlyName); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save device name: %v\n", err)
			}
		}
		return nil
	},
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List installed channels",
	Long: `Fetch /query/apps and print one channel per line as "<id><TAB><name>",
in the order the device lists them.`,
	Example: `  rokuctl apps
  rokuctl apps | grep -i netflix`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(cmd)

		if _, err := s.requireHost(ctx, printer(cmd)); err != nil {
			return err
		}
		if !s.controller.RefreshCatalog(ctx) {
			return fmt.Errorf("%s", s.controller.Snapshot().Status)
		}

		for _, app := range s.controller.Snapshot().Apps {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", app.ID, app.Name)
		}
		return nil
	},
}

var keypressCmd = &cobra.Command{
	Use:   "keypress <key>",
	Short: "Press and release a remote key",
	Long: `Send a single keypress. Common keys are Home, Back, Select, Up, Down,
Left, Right, Play, Rev, Fwd, InstantReplay, Info, VolumeUp, VolumeDown and
VolumeMute.

Full list of key values:
  ` + urls.KeyValues,
	Example: `  rokuctl keypress Home
  rokuctl keypress VolumeUp --host 192.168.1.42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(cmd)
		if _, err := s.requireHost(ctx, printer(cmd)); err != nil {
			return err
		}
		return s.outcome(cmd, s.controller.SendKey(ctx, args[0]))
	},
}

var keydownCmd = &cobra.Command{
	Use:   "keydown <key>",
	Short: "Hold a remote key down",
	Long: `Send a key-down event. The key stays held until a matching keyup.

Key values:
  ` + urls.KeyValues,
	Example: `  rokuctl keydown Right && sleep 2 && rokuctl keyup Right`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(cmd)
		if _, err := s.requireHost(ctx, printer(cmd)); err != nil {
			return err
		}
		return s.outcome(cmd, s.controller.KeyDown(ctx, args[0]))
	},
}

var keyupCmd = &cobra.Command{
	Use:   "keyup <key>",
	Short: "Release a held remote key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(cmd)
		if _, err := s.requireHost(ctx, printer(cmd)); err != nil {
			return err
		}
		return s.outcome(cmd, s.controller.KeyUp(ctx, args[0]))
	},
}

var launchCmd = &cobra.Command{
	Use:   "launch <name-or-id>",
	Short: "Launch a channel",
	Long: `Launch a channel by its display name (case-insensitive) or by its id.
Names are looked up in the device's channel list; anything that does not
match a name is sent as an id.`,
	Example: `  rokuctl launch Netflix
  rokuctl launch 12`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(cmd)
		if _, err := s.requireHost(ctx, printer(cmd)); err != nil {
			return err
		}

		target := strings.Join(args, " ")
		// A failed refresh still allows launching by id
		s.controller.RefreshCatalog(ctx)
		return s.outcome(cmd, s.controller.LaunchApp(ctx, target, target))
	},
}

var typeCmd = &cobra.Command{
	Use:   "type <text>",
	Short: "Type text into the focused field",
	Long: `Send each character as a literal keypress, pausing briefly between
characters. Arguments are joined with single spaces.`,
	Example: `  rokuctl type "stranger things"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(cmd)
		if _, err := s.requireHost(ctx, printer(cmd)); err != nil {
			return err
		}

		s.controller.TypeText(ctx, strings.Join(args, " "))
		fmt.Fprintln(cmd.OutOrStdout(), s.controller.Snapshot().Status)
		return nil
	},
}

// printer writes progress lines to the command's output
func printer(cmd *cobra.Command) func(format string, a ...any) {
	return func(format string, a ...any) {
		fmt.Fprintf(cmd.OutOrStdout(), format, a...)
	}
}
