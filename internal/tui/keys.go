package tui

import "github.com/charmbracelet/bubbles/key"

// padKey binds terminal keys to an ECP key name
type padKey struct {
	Binding key.Binding
	ECP     string
}

// keyMap defines the bindings of the remote screen
type keyMap struct {
	Pad []padKey

	Address  key.Binding
	Discover key.Binding
	Refresh  key.Binding
	Type     key.Binding
	Info     key.Binding
	Focus    key.Binding
	Launch   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newPadKey(ecp, help string, keys ...string) padKey {
	return padKey{
		Binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help)),
		ECP:     ecp,
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Pad: []padKey{
			newPadKey("Up", "up", "up", "k"),
			newPadKey("Down", "down", "down", "j"),
			newPadKey("Left", "left", "left"),
			newPadKey("Right", "right", "right", "l"),
			newPadKey("Select", "ok", "enter"),
			newPadKey("Back", "back", "backspace", "esc"),
			newPadKey("Home", "home", "h"),
			newPadKey("Play", "play/pause", " ", "p"),
			newPadKey("Rev", "rewind", "<", ","),
			newPadKey("Fwd", "fast forward", ">", "."),
			newPadKey("InstantReplay", "replay", "z"),
			newPadKey("Info", "options", "*", "o"),
			newPadKey("VolumeUp", "volume up", "+", "="),
			newPadKey("VolumeDown", "volume down", "-"),
			newPadKey("VolumeMute", "mute", "m"),
		},
		Address: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "address"),
		),
		Discover: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discover"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh apps"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "type text"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "device info"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "apps/pad"),
		),
		Launch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "launch"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Address, k.Discover, k.Refresh, k.Type, k.Focus, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	var nav, media []key.Binding
	for i, p := range k.Pad {
		if i < 8 {
			nav = append(nav, p.Binding)
		} else {
			media = append(media, p.Binding)
		}
	}
	return [][]key.Binding{
		nav,
		media,
		{k.Address, k.Discover, k.Refresh, k.Type, k.Info},
		{k.Focus, k.Launch, k.Help, k.Quit},
	}
}

// padKeyFor returns the ECP key bound to msg, if any
func (k keyMap) padKeyFor(msg string) (string, bool) {
	for _, p := range k.Pad {
		for _, bound := range p.Binding.Keys() {
			if bound == msg {
				return p.ECP, true
			}
		}
	}
	return "", false
}

// inputKeyMap is shown while a text field is active
type inputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func newInputKeyMap() inputKeyMap {
	return inputKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}
