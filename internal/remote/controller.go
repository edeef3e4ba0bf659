package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/rokuctl/internal/catalog"
	"github.com/muurk/rokuctl/internal/ecp"
	"github.com/muurk/rokuctl/internal/logging"
)

// Status lines that callers and tests match on
const (
	StatusMissingAddress = "missing address"
	StatusNoAddress      = "no address configured"
	StatusNotFound       = "no Roku devices found"
	StatusDiscovering    = "discovering..."
)

// DefaultTypeDelay is the pause between characters sent by TypeText
const DefaultTypeDelay = 50 * time.Millisecond

// Transport issues ECP requests. *ecp.Client satisfies it.
type Transport interface {
	Fetch(ctx context.Context, host, path string) ([]byte, error)
	Command(ctx context.Context, host, path string) (int, error)
	DeviceInfo(ctx context.Context, host string) (*ecp.DeviceInfo, error)
}

// Discoverer finds device hosts. *discovery.Scanner satisfies it.
type Discoverer interface {
	Discover(ctx context.Context, timeout time.Duration) []string
}

// AddressStore persists the last used device address
type AddressStore interface {
	LoadAddress() string
	SaveAddress(address string) error
}

// Snapshot is an immutable copy of the controller state
type Snapshot struct {
	Address string        `json:"address"`
	Status  string        `json:"status"`
	Apps    []catalog.App `json:"apps"`
	Busy    bool          `json:"busy"`
}

// Option configures a Controller
type Option func(*Controller)

// WithTypeDelay sets the pause between characters sent by TypeText
func WithTypeDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.typeDelay = d
		}
	}
}

// WithSleep replaces the function used to pause between typed characters
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(c *Controller) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// Controller holds the device state and sequences calls to the transport,
// discovery and catalog parser.
type Controller struct {
	transport Transport
	finder    Discoverer
	store     AddressStore
	typeDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration)

	mu        sync.Mutex
	address   string
	status    string
	apps      []catalog.App
	pending   int
	listeners []func(Snapshot)

	wg sync.WaitGroup
}

// New creates a controller. The initial address is read from store when one
// is given; finder and store may be nil.
func New(transport Transport, finder Discoverer, store AddressStore, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		finder:    finder,
		store:     store,
		typeDelay: DefaultTypeDelay,
		sleep:     sleepContext,
		apps:      []catalog.App{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if store != nil {
		c.address = strings.TrimSpace(store.LoadAddress())
	}
	return c
}

// OnChange registers fn to receive a snapshot after every state change.
// Listeners run on the goroutine that made the change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Address returns the current device address
func (c *Controller) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// Go runs fn on its own goroutine. Wait blocks until every such goroutine
// has returned.
func (c *Controller) Go(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// Wait blocks until all operations started with Go or DiscoverAndAdopt finish
func (c *Controller) Wait() {
	c.wg.Wait()
}

// SetAddress adopts input as the device address, persists it and refreshes
// the catalog. It reports false when input is blank or the refresh fails.
func (c *Controller) SetAddress(ctx context.Context, input string) bool {
	address := strings.TrimSpace(input)
	if address == "" {
		c.setStatus(StatusMissingAddress)
		return false
	}

	c.adopt(address)
	return c.RefreshCatalog(ctx)
}

// DiscoverAndAdopt searches the network on a new goroutine and adopts the
// first device found. The returned channel is closed once the search and the
// follow-up refresh have finished. When nothing answers, only the status
// changes.
func (c *Controller) DiscoverAndAdopt(ctx context.Context, timeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		c.discoverAndAdopt(ctx, timeout)
	}()
	return done
}

func (c *Controller) discoverAndAdopt(ctx context.Context, timeout time.Duration) {
	if c.finder == nil {
		c.setStatus(StatusNotFound)
		return
	}

	end := c.begin(StatusDiscovering)
	hosts := c.finder.Discover(ctx, timeout)
	end()

	if len(hosts) == 0 {
		logging.Info("Discovery finished without results", zap.Duration("timeout", timeout))
		c.setStatus(StatusNotFound)
		return
	}

	logging.Info("Adopting discovered device",
		zap.String("host", hosts[0]),
		zap.Int("found", len(hosts)),
	)
	c.adopt(hosts[0])
	c.RefreshCatalog(ctx)
}

// SendKey presses and releases key on the device
func (c *Controller) SendKey(ctx context.Context, key string) bool {
	return c.command(ctx, ecp.KeypressPath(key), "sent "+key, key)
}

// KeyDown holds key down until KeyUp is sent
func (c *Controller) KeyDown(ctx context.Context, key string) bool {
	return c.command(ctx, ecp.KeydownPath(key), "key down "+key, key)
}

// KeyUp releases a key held with KeyDown
func (c *Controller) KeyUp(ctx context.Context, key string) bool {
	return c.command(ctx, ecp.KeyupPath(key), "key up "+key, key)
}

// LaunchApp launches the catalog app named displayName, compared
// case-insensitively, or fallbackID when no entry has that name.
func (c *Controller) LaunchApp(ctx context.Context, displayName, fallbackID string) bool {
	c.mu.Lock()
	app, ok := catalog.Find(c.apps, displayName)
	c.mu.Unlock()

	id, label := fallbackID, displayName
	if ok {
		id, label = app.ID, app.Name
	}
	if label == "" {
		label = id
	}
	if strings.TrimSpace(id) == "" {
		c.setStatus(fmt.Sprintf("launch %s: unknown app", label))
		return false
	}

	return c.command(ctx, ecp.LaunchPath(id), "launched "+label, "launch "+label)
}

// RefreshCatalog reloads the app list. On any failure the previous catalog
// is kept.
func (c *Controller) RefreshCatalog(ctx context.Context) bool {
	address := c.Address()
	if address == "" {
		c.setStatus(StatusNoAddress)
		return false
	}

	end := c.begin("")
	defer end()

	body, err := c.transport.Fetch(ctx, address, ecp.AppsPath)
	if err != nil {
		logging.Warn("Failed to fetch app catalog", zap.String("host", address), zap.Error(err))
		c.setStatus("refresh failed: " + ecp.ShortMessage(err))
		return false
	}

	apps := catalog.Parse(body)
	if apps == nil {
		logging.Warn("Device returned a malformed app catalog", zap.String("host", address), zap.Int("bytes", len(body)))
		c.setStatus("refresh failed: " + ecp.ShortMessage(ecp.NewParseError("malformed app catalog", nil)))
		return false
	}

	c.apply(func() {
		c.apps = apps
		c.status = fmt.Sprintf("loaded %d apps from %s", len(apps), address)
	})
	return true
}

// TypeText sends text one character at a time, pausing between characters.
// Individual failures are ignored so the rest of the text is still sent. It
// returns the number of characters attempted.
func (c *Controller) TypeText(ctx context.Context, text string) int {
	address := c.Address()
	if address == "" || text == "" {
		return 0
	}

	end := c.begin("typing...")
	defer end()

	typed := 0
	for i, r := range []rune(text) {
		if i > 0 {
			c.sleep(ctx, c.typeDelay)
		}
		if ctx.Err() != nil {
			break
		}

		if _, err := c.transport.Command(ctx, address, ecp.LiteralPath(r)); err != nil {
			logging.Debug("Dropped literal keystroke", zap.String("char", string(r)), zap.Error(err))
		}
		typed++
	}

	c.setStatus(fmt.Sprintf("typed %d chars", typed))
	return typed
}

// DeviceInfo fetches the device description. It returns nil on failure.
func (c *Controller) DeviceInfo(ctx context.Context) *ecp.DeviceInfo {
	address := c.Address()
	if address == "" {
		c.setStatus(StatusNoAddress)
		return nil
	}

	end := c.begin("")
	defer end()

	info, err := c.transport.DeviceInfo(ctx, address)
	if err == nil {
		c.setStatus(info.String())
		return info
	}

	logging.Warn("Failed to query device info", zap.String("host", address), zap.Error(err))
	c.setStatus("device info failed: " + ecp.ShortMessage(err))
	return nil
}

func (c *Controller) command(ctx context.Context, path, success, label string) bool {
	address := c.Address()
	if address == "" {
		c.setStatus(StatusNoAddress)
		return false
	}

	end := c.begin("")
	defer end()

	if _, err := c.transport.Command(ctx, address, path); err != nil {
		logging.Warn("Command failed", zap.String("host", address), zap.String("path", path), zap.Error(err))
		c.setStatus(fmt.Sprintf("%s failed: %s", label, ecp.ShortMessage(err)))
		return false
	}

	c.setStatus(success)
	return true
}

func (c *Controller) adopt(address string) {
	c.apply(func() {
		c.address = address
		c.status = "using " + address
	})

	if c.store == nil {
		return
	}
	if err := c.store.SaveAddress(address); err != nil {
		logging.Warn("Failed to persist device address", zap.String("address", address), zap.Error(err))
	}
}

// begin marks an operation in flight and returns the function that ends it.
// A non-empty status is published immediately.
func (c *Controller) begin(status string) func() {
	c.apply(func() {
		c.pending++
		if status != "" {
			c.status = status
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.apply(func() { c.pending-- })
		})
	}
}

func (c *Controller) setStatus(status string) {
	c.apply(func() { c.status = status })
}

// apply runs mutate under the lock and then notifies listeners
func (c *Controller) apply(mutate func()) {
	c.mu.Lock()
	mutate()
	snap := c.snapshotLocked()
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Address: c.address,
		Status:  c.status,
		Apps:    append([]catalog.App{}, c.apps...),
		Busy:    c.pending > 0,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
