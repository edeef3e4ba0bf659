package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "rokuctl"
	configFile = "config.yaml"
)

// Environment variables that name a device explicitly
const (
	EnvHost      = "ROKU_HOST"
	EnvDevTarget = "ROKU_DEV_TARGET"
)

var (
	// Global registry instance (loaded lazily)
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
	globalRegistryErr  error

	// Guards registry state and file writes
	fileMutex sync.Mutex
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/rokuctl or $HOME/.config/rokuctl
//   - macOS: $HOME/.config/rokuctl (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\rokuctl
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// LoadRegistry loads the configuration registry from disk.
// If the file doesn't exist, returns a new default registry.
// Thread-safe - multiple calls will return the same instance.
func LoadRegistry() (*Registry, error) {
	globalRegistryOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			globalRegistryErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		globalRegistry, globalRegistryErr = LoadFile(path)
	})
	return globalRegistry, globalRegistryErr
}

// ReloadRegistry reloads the registry from disk, discarding any in-memory changes.
func ReloadRegistry() (*Registry, error) {
	globalRegistryOnce = sync.Once{}
	return LoadRegistry()
}

// LoadFile reads the registry stored at path. A missing file yields a
// default registry that will be saved to path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		registry := NewRegistry()
		registry.path = path
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if registry.Version != currentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", registry.Version, currentVersion)
	}

	if registry.Device == nil {
		registry.Device = &Device{}
	}
	if registry.Preferences == nil {
		registry.Preferences = defaultPreferences()
	}
	registry.path = path

	return &registry, nil
}

// Path returns the file Save writes to
func (r *Registry) Path() (string, error) {
	if r.path != "" {
		return r.path, nil
	}
	return GetConfigPath()
}

// Save saves the registry to disk.
// Performs an atomic write to prevent corruption on crash.
func (r *Registry) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()
	return r.saveLocked()
}

func (r *Registry) saveLocked() error {
	configPath, err := r.Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := marshalRegistry(r, configPath)
	if err != nil {
		return err
	}

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

func marshalRegistry(r *Registry, location string) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# rokuctl configuration file
# Stores the last Roku device address and user preferences.
#
# Location: ` + location + `

`)
	return append(header, data...), nil
}

// LoadAddress returns the stored device address
func (r *Registry) LoadAddress() string {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if r.Device == nil {
		return ""
	}
	return strings.TrimSpace(r.Device.Address)
}

// SaveAddress records address as the current device and writes the file.
// The stored name is cleared when the address changes.
func (r *Registry) SaveAddress(address string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if r.Device == nil {
		r.Device = &Device{}
	}
	if r.Device.Address != address {
		r.Device.Name = ""
	}
	r.Device.Address = address
	r.Device.LastSeen = time.Now()

	return r.saveLocked()
}

// SetDeviceName records a friendly name for the current device
func (r *Registry) SetDeviceName(name string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if r.Device == nil {
		r.Device = &Device{}
	}
	r.Device.Name = name
	return r.saveLocked()
}

// EnvAddress returns the device named by ROKU_HOST or ROKU_DEV_TARGET
func EnvAddress() string {
	if host := strings.TrimSpace(os.Getenv(EnvHost)); host != "" {
		return host
	}
	return strings.TrimSpace(os.Getenv(EnvDevTarget))
}

// Source describes where a resolved address came from
type Source string

const (
	SourceFlag   Source = "flag"
	SourceEnv    Source = "environment"
	SourceConfig Source = "config"
	SourceNone   Source = ""
)

// ResolveAddress picks the device address in precedence order: the explicit
// flag value, the environment, then the stored address.
func (r *Registry) ResolveAddress(flag string) (string, Source) {
	if host := strings.TrimSpace(flag); host != "" {
		return host, SourceFlag
	}
	if host := EnvAddress(); host != "" {
		return host, SourceEnv
	}
	if host := r.LoadAddress(); host != "" {
		return host, SourceConfig
	}
	return "", SourceNone
}
