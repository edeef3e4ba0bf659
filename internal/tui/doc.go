// Package tui implements the interactive terminal remote for rokuctl.
//
// The remote is a single full-screen Bubble Tea program. It follows the Elm
// architecture: key presses become tea.Cmds that call the remote controller
// off the UI goroutine, and controller state changes come back as messages
// that trigger a redraw.
//
// # Layout
//
// The screen is split into a navigation pad on the left and the installed
// channel list on the right, framed by a header with the device address and
// a footer with context-sensitive help. Tab moves focus between the pad and
// the channel list.
//
// # Framework Components
//
//   - bubbles/spinner: shown while an operation is in flight
//   - bubbles/textinput: address and text entry
//   - bubbles/list: installed channels
//   - bubbles/help and bubbles/key: key bindings and footer
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	ctrl := remote.New(ecp.NewClient(), discovery.NewScanner(), registry)
//	if err := tui.Run(ctx, ctrl, tui.Options{AutoDiscover: true}); err != nil {
//	    log.Fatal(err)
//	}
package tui
