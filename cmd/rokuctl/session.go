package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/rokuctl/internal/config"
	"github.com/muurk/rokuctl/internal/discovery"
	"github.com/muurk/rokuctl/internal/ecp"
	"github.com/muurk/rokuctl/internal/logging"
	"github.com/muurk/rokuctl/internal/remote"
)

var errNoHost = errors.New("no Roku host set. Use --host or set ROKU_HOST, or pass --auto")

// hostStore pins the controller to a host chosen on the command line while
// still remembering discovered devices in the registry.
type hostStore struct {
	host     string
	registry *config.Registry
}

func (s hostStore) LoadAddress() string { return s.host }

func (s hostStore) SaveAddress(address string) error {
	if s.registry == nil {
		return nil
	}
	return s.registry.SaveAddress(address)
}

// session bundles what a command needs to talk to a device
type session struct {
	client     *ecp.Client
	registry   *config.Registry
	controller *remote.Controller
	timeout    time.Duration
}

// loadRegistry reads the config file fresh for the command. A broken file is
// reported and replaced by defaults so one-shot commands keep working.
func loadRegistry() *config.Registry {
	registry, err := config.ReloadRegistry()
	if err != nil {
		logging.Warn("Ignoring unreadable config file", zap.Error(err))
		return config.NewRegistry()
	}
	return registry
}

// newSession builds the controller with the host resolved from flags,
// environment and config.
func newSession(cmd *cobra.Command) *session {
	registry := loadRegistry()

	client := ecp.NewClient()
	client.Port = portFlag

	host, source := registry.ResolveAddress(hostFlag)
	logging.Debug("Resolved device address", zap.String("host", host), zap.String("source", string(source)))

	store := remote.AddressStore(registry)
	if source == config.SourceFlag || source == config.SourceEnv {
		store = hostStore{host: host, registry: registry}
	}

	return &session{
		client:   client,
		registry: registry,
		controller: remote.New(client, discovery.NewScanner(), store,
			remote.WithTypeDelay(registry.Preferences.TypeDelay()),
		),
		timeout: discoverTimeout(cmd, registry),
	}
}

// requireHost returns the device address, discovering one when --auto is set
func (s *session) requireHost(ctx context.Context, out func(format string, a ...any)) (string, error) {
	if host := s.controller.Address(); host != "" {
		return host, nil
	}
	if !autoDiscover {
		return "", errNoHost
	}

	out("Discovering Roku devices (timeout: %s)...\n", s.timeout)
	<-s.controller.DiscoverAndAdopt(ctx, s.timeout)

	host := s.controller.Address()
	if host == "" {
		return "", fmt.Errorf("%s", s.controller.Snapshot().Status)
	}
	out("Using %s\n", host)
	return host, nil
}

// outcome turns the controller's last status into a command result
func (s *session) outcome(cmd *cobra.Command, ok bool) error {
	status := s.controller.Snapshot().Status
	if !ok {
		return errors.New(status)
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}
