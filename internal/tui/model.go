package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/rokuctl/internal/catalog"
	"github.com/muurk/rokuctl/internal/ecp"
	"github.com/muurk/rokuctl/internal/remote"
)

// Remote is the part of remote.Controller the screen drives
type Remote interface {
	Snapshot() remote.Snapshot
	OnChange(fn func(remote.Snapshot))
	SetAddress(ctx context.Context, input string) bool
	DiscoverAndAdopt(ctx context.Context, timeout time.Duration) <-chan struct{}
	SendKey(ctx context.Context, key string) bool
	LaunchApp(ctx context.Context, displayName, fallbackID string) bool
	RefreshCatalog(ctx context.Context) bool
	TypeText(ctx context.Context, text string) int
	DeviceInfo(ctx context.Context) *ecp.DeviceInfo
}

// Options configures the remote screen
type Options struct {
	// DiscoverTimeout bounds discovery started from the screen (default: 3s)
	DiscoverTimeout time.Duration

	// AutoDiscover starts discovery on launch when no address is set
	AutoDiscover bool
}

// Mode is the input mode of the screen
type Mode int

const (
	ModeRemote Mode = iota
	ModeAddress
	ModeType
)

// Messages
type snapshotMsg remote.Snapshot
type deviceInfoMsg struct{ info *ecp.DeviceInfo }

// appItem wraps a catalog entry for bubbles/list
type appItem struct{ app catalog.App }

func (i appItem) FilterValue() string { return i.app.Name }
func (i appItem) Title() string       { return i.app.Name }
func (i appItem) Description() string { return "id " + i.app.ID }

// Model is the remote screen
type Model struct {
	ctx     context.Context
	remote  Remote
	opts    Options
	changes chan struct{}

	// Latest controller state
	State remote.Snapshot
	Info  *ecp.DeviceInfo

	Mode      Mode
	AppsFocus bool

	Width  int
	Height int

	Apps      list.Model
	Input     textinput.Model
	Spinner   spinner.Model
	Help      help.Model
	Keys      keyMap
	InputKeys inputKeyMap

	// lastKey highlights the pad button pressed most recently
	lastKey string
}

// New creates the remote screen for r. It subscribes to r's state changes.
func New(ctx context.Context, r Remote, opts Options) Model {
	if opts.DiscoverTimeout <= 0 {
		opts.DiscoverTimeout = 3 * time.Second
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.CharLimit = 256
	input.Width = 40

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(HighlightColor).BorderForeground(HighlightColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.BorderForeground(HighlightColor)
	apps := list.New(nil, delegate, 30, 10)
	apps.Title = "Channels"
	apps.Styles.Title = TitleStyle
	apps.SetShowStatusBar(false)
	apps.SetShowHelp(false)
	apps.SetFilteringEnabled(false)
	apps.DisableQuitKeybindings()

	width, height := TerminalSize()

	// Coalesce change notifications; the latest snapshot is read on delivery
	changes := make(chan struct{}, 1)
	r.OnChange(func(remote.Snapshot) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := Model{
		ctx:       ctx,
		remote:    r,
		opts:      opts,
		changes:   changes,
		State:     r.Snapshot(),
		Width:     width,
		Height:    height,
		Apps:      apps,
		Input:     input,
		Spinner:   s,
		Help:      help.New(),
		Keys:      newKeyMap(),
		InputKeys: newInputKeyMap(),
	}
	m.setApps(m.State.Apps)
	m.resize()
	return m
}

// Init starts the spinner, the change subscription and the initial load
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.Spinner.Tick, m.waitForChange()}

	switch {
	case m.State.Address != "":
		cmds = append(cmds, m.refresh())
	case m.opts.AutoDiscover:
		cmds = append(cmds, m.discover())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.State = remote.Snapshot(msg)
		m.setApps(m.State.Apps)
		return m, m.waitForChange()

	case deviceInfoMsg:
		m.Info = msg.info
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Mode != ModeRemote {
			return m.updateInput(msg)
		}
		if m.AppsFocus {
			return m.updateApps(msg)
		}
		return m.updateRemote(msg)
	}

	return m, nil
}

func (m Model) updateRemote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	case key.Matches(msg, m.Keys.Focus):
		m.AppsFocus = true
		return m, nil
	case key.Matches(msg, m.Keys.Address):
		return m.startInput(ModeAddress, "192.168.1.42", m.State.Address)
	case key.Matches(msg, m.Keys.Type):
		return m.startInput(ModeType, "text to send", "")
	case key.Matches(msg, m.Keys.Discover):
		return m, m.discover()
	case key.Matches(msg, m.Keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.Keys.Info):
		return m, m.deviceInfo()
	}

	if ecpKey, ok := m.Keys.padKeyFor(msg.String()); ok {
		m.lastKey = ecpKey
		return m, m.sendKey(ecpKey)
	}
	return m, nil
}

func (m Model) updateApps(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Focus), msg.String() == "esc":
		m.AppsFocus = false
		return m, nil
	case key.Matches(msg, m.Keys.Launch):
		if item, ok := m.Apps.SelectedItem().(appItem); ok {
			return m, m.launch(item.app)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Apps, cmd = m.Apps.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.InputKeys.Cancel):
		m.stopInput()
		return m, nil

	case key.Matches(msg, m.InputKeys.Confirm):
		value := m.Input.Value()
		mode := m.Mode
		m.stopInput()
		if mode == ModeAddress {
			return m, m.setAddress(value)
		}
		return m, m.typeText(value)
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) startInput(mode Mode, placeholder, value string) (tea.Model, tea.Cmd) {
	m.Mode = mode
	m.Input.Placeholder = placeholder
	m.Input.SetValue(value)
	m.Input.CursorEnd()
	return m, m.Input.Focus()
}

func (m *Model) stopInput() {
	m.Mode = ModeRemote
	m.Input.Blur()
	m.Input.Reset()
}

func (m *Model) setApps(apps []catalog.App) {
	items := make([]list.Item, len(apps))
	for i, app := range apps {
		items[i] = appItem{app: app}
	}
	m.Apps.SetItems(items)
}

func (m *Model) resize() {
	width := clampWidth(m.Width)
	m.Apps.SetSize(width-padWidth-12, max(m.Height-12, 6))
	m.Help.Width = width - 6
}

// waitForChange delivers the next controller snapshot as a message
func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return snapshotMsg(m.remote.Snapshot())
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Commands run on Bubble Tea's goroutines; results arrive through OnChange

func (m Model) sendKey(k string) tea.Cmd {
	return func() tea.Msg {
		m.remote.SendKey(m.ctx, k)
		return nil
	}
}

func (m Model) launch(app catalog.App) tea.Cmd {
	return func() tea.Msg {
		m.remote.LaunchApp(m.ctx, app.Name, app.ID)
		return nil
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		m.remote.RefreshCatalog(m.ctx)
		return nil
	}
}

func (m Model) discover() tea.Cmd {
	return func() tea.Msg {
		<-m.remote.DiscoverAndAdopt(m.ctx, m.opts.DiscoverTimeout)
		return nil
	}
}

func (m Model) setAddress(input string) tea.Cmd {
	return func() tea.Msg {
		m.remote.SetAddress(m.ctx, input)
		return nil
	}
}

func (m Model) typeText(text string) tea.Cmd {
	return func() tea.Msg {
		m.remote.TypeText(m.ctx, text)
		return nil
	}
}

func (m Model) deviceInfo() tea.Cmd {
	return func() tea.Msg {
		return deviceInfoMsg{info: m.remote.DeviceInfo(m.ctx)}
	}
}

const padWidth = 34

// View renders the screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if m.Mode != ModeRemote {
		label := "Device address"
		if m.Mode == ModeType {
			label = "Send text"
		}
		b.WriteString(InputLabelStyle.Render(label) + "  " + m.Input.View())
		b.WriteString("\n")
	}

	pad := m.renderPad()
	apps := m.renderApps()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pad, " ", apps))

	if m.Info != nil {
		b.WriteString("\n")
		b.WriteString(m.renderInfo())
	}

	footer := m.Help.View(m.Keys)
	if m.Mode != ModeRemote {
		footer = m.Help.View(m.InputKeys)
	}

	return RenderApplicationContainer(m.State.Address, b.String(), footer, m.Width, m.Height)
}

func (m Model) renderStatusLine() string {
	status := m.State.Status
	if status == "" {
		if m.State.Address == "" {
			status = "no device - press a to enter an address or d to discover"
		} else {
			status = "ready"
		}
	}

	prefix := "  "
	if m.State.Busy {
		prefix = m.Spinner.View() + " "
	}
	return prefix + renderStatus(status, strings.Contains(status, "failed"))
}

func (m Model) renderPad() string {
	button := func(label, ecpKey string) string {
		if m.lastKey == ecpKey {
			return ActiveButtonStyle.Render(label)
		}
		return ButtonStyle.Render(label)
	}

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, button("Back", "Back"), " ", button("Home", "Home")),
		lipgloss.PlaceHorizontal(padWidth-4, lipgloss.Center, button(" ▲ ", "Up")),
		lipgloss.PlaceHorizontal(padWidth-4, lipgloss.Center,
			lipgloss.JoinHorizontal(lipgloss.Center, button("◀", "Left"), " ", button(" OK ", "Select"), " ", button("▶", "Right"))),
		lipgloss.PlaceHorizontal(padWidth-4, lipgloss.Center, button(" ▼ ", "Down")),
		lipgloss.JoinHorizontal(lipgloss.Top, button("◀◀", "Rev"), " ", button("▶‖", "Play"), " ", button("▶▶", "Fwd")),
	}

	style := FocusedPanelStyle
	if m.AppsFocus {
		style = PanelStyle
	}
	return style.Width(padWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderApps() string {
	style := PanelStyle
	if m.AppsFocus {
		style = FocusedPanelStyle
	}

	if len(m.State.Apps) == 0 {
		msg := SubtitleStyle.Render("No channels loaded (r to refresh)")
		return style.Render(TitleStyle.Render("Channels") + "\n\n" + msg)
	}
	return style.Render(m.Apps.View())
}

func (m Model) renderInfo() string {
	var b strings.Builder
	for _, f := range m.Info.Fields() {
		b.WriteString(fmt.Sprintf("%s %s\n", InfoKeyStyle.Render(f[0]), f[1]))
	}
	return PanelStyle.Render(TitleStyle.Render("Device") + "\n" + strings.TrimRight(b.String(), "\n"))
}

// Run starts the remote screen and blocks until the user quits
func Run(ctx context.Context, r Remote, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(New(ctx, r, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("remote screen failed: %w", err)
	}
	return nil
}
