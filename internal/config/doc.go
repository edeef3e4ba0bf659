// Package config provides user configuration management for rokuctl.
//
// This package manages a small YAML file that remembers the last Roku device
// the user controlled and a handful of preferences. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/rokuctl/config.yaml or $HOME/.config/rokuctl/config.yaml
//   - macOS: $HOME/.config/rokuctl/config.yaml
//   - Windows: %LOCALAPPDATA%\rokuctl\config.yaml
//
// # Environment
//
// ROKU_HOST, or failing that ROKU_DEV_TARGET, names a device explicitly and
// takes precedence over the stored address. See ResolveAddress.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Registry satisfies remote.AddressStore
//	ctrl := remote.New(ecp.NewClient(), discovery.NewScanner(), registry)
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// Registry methods lock the registry and file writes are serialized by a
// package mutex.
package config
