package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/rokuctl/internal/logging"
)

const (
	// AirPlayService is the mDNS service type Roku TVs with AirPlay advertise
	AirPlayService = "_airplay._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	rokuManufacturer = "roku"
)

// MDNSScanner browses mDNS advertisements for Roku devices
type MDNSScanner struct {
	// Service is the service type to browse (default: "_airplay._tcp")
	Service string
}

// NewMDNSScanner creates a new mDNS scanner with default settings
func NewMDNSScanner() *MDNSScanner {
	return &MDNSScanner{Service: AirPlayService}
}

// Discover browses for timeout and returns the IPv4 hosts of Roku entries.
// Resolver failures yield an empty slice.
func (s *MDNSScanner) Discover(ctx context.Context, timeout time.Duration) []string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		logging.Warn("mDNS discovery unavailable", zap.Error(err))
		return []string{}
	}

	var (
		mu    sync.Mutex
		hosts []string
		seen  = make(map[string]bool)
	)

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for entry := range entries {
			host, ok := parseServiceEntry(entry)
			if !ok {
				continue
			}
			mu.Lock()
			if !seen[host] {
				seen[host] = true
				hosts = append(hosts, host)
				logging.Info("Discovered Roku device via mDNS",
					zap.String("host", host),
					zap.String("instance", entry.Instance),
				)
			}
			mu.Unlock()
		}
	}()

	service := s.Service
	if service == "" {
		service = AirPlayService
	}
	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		logging.Warn("mDNS browse failed", zap.String("service", service), zap.Error(err))
		return []string{}
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]string{}, hosts...)
}

// parseServiceEntry returns the device host for a Roku entry.
// Entries from other manufacturers are rejected.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (string, bool) {
	if entry == nil || !isRoku(entry) {
		return "", false
	}

	if len(entry.AddrIPv4) > 0 {
		return entry.AddrIPv4[0].String(), true
	}
	if len(entry.AddrIPv6) > 0 {
		return entry.AddrIPv6[0].String(), true
	}
	return "", false
}

func isRoku(entry *zeroconf.ServiceEntry) bool {
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if strings.EqualFold(key, "manufacturer") && strings.Contains(strings.ToLower(value), rokuManufacturer) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(entry.Instance), rokuManufacturer)
}

type multiFinder []Finder

// All returns a Finder that runs every finder concurrently over the same
// window and merges their hosts, keeping the order of finders and then of
// discovery within each finder.
func All(finders ...Finder) Finder {
	return multiFinder(finders)
}

func (m multiFinder) Discover(ctx context.Context, timeout time.Duration) []string {
	results := make([][]string, len(m))

	var wg sync.WaitGroup
	for i, f := range m {
		wg.Add(1)
		go func(i int, f Finder) {
			defer wg.Done()
			results[i] = f.Discover(ctx, timeout)
		}(i, f)
	}
	wg.Wait()

	return Merge(results...)
}

// Merge concatenates host lists dropping duplicates by exact string match
func Merge(lists ...[]string) []string {
	merged := make([]string, 0)
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, host := range list {
			if host == "" || seen[host] {
				continue
			}
			seen[host] = true
			merged = append(merged, host)
		}
	}
	return merged
}

// String describes the scanner for log output
func (s *MDNSScanner) String() string {
	return fmt.Sprintf("mDNS %s.%s", s.Service, ServiceDomain)
}
