package config

import "time"

const (
	currentVersion = 1

	defaultDiscoverTimeout = 3
	defaultTypeDelayMS     = 50
)

// Registry represents the entire user configuration file
type Registry struct {
	Version     int          `yaml:"version"`
	Device      *Device      `yaml:"device,omitempty"`
	Preferences *Preferences `yaml:"preferences,omitempty"`

	// path is where Save writes; empty means the default config path
	path string
}

// Device is the last device the user controlled
type Device struct {
	Address  string    `yaml:"address,omitempty"`   // Host or IP of the ECP endpoint
	Name     string    `yaml:"name,omitempty"`      // Friendly device name, when known
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last time the address was adopted
}

// Preferences represents application-wide user preferences
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Discover on startup when no address is stored
	DiscoverTimeout int  `yaml:"discover_timeout"` // SSDP discovery window in seconds
	TypeDelayMS     int  `yaml:"type_delay_ms"`    // Pause between typed characters
}

// NewRegistry creates a new Registry with default values
func NewRegistry() *Registry {
	return &Registry{
		Version:     currentVersion,
		Device:      &Device{},
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: defaultDiscoverTimeout,
		TypeDelayMS:     defaultTypeDelayMS,
	}
}

// DiscoverTimeoutDuration returns the discovery window, falling back to the
// default for unset or negative values.
func (p *Preferences) DiscoverTimeoutDuration() time.Duration {
	if p == nil || p.DiscoverTimeout <= 0 {
		return defaultDiscoverTimeout * time.Second
	}
	return time.Duration(p.DiscoverTimeout) * time.Second
}

// TypeDelay returns the pause between typed characters
func (p *Preferences) TypeDelay() time.Duration {
	if p == nil || p.TypeDelayMS < 0 {
		return defaultTypeDelayMS * time.Millisecond
	}
	return time.Duration(p.TypeDelayMS) * time.Millisecond
}
