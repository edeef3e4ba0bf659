package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/muurk/rokuctl/internal/logging"
)

const (
	// MulticastAddr is the SSDP multicast group and port
	MulticastAddr = "239.255.255.250:1900"

	// SearchTarget is the ST value Roku devices answer to
	SearchTarget = "roku:ecp"

	// DefaultTimeout is the overall discovery window used by the CLI
	DefaultTimeout = 3 * time.Second

	// DefaultReceiveTimeout bounds each individual read so the loop notices
	// the overall deadline promptly
	DefaultReceiveTimeout = 1 * time.Second

	// multicastTTL keeps the probe on the local network
	multicastTTL = 2

	maxDatagramSize = 65535
)

// Finder is anything that can produce a list of device hosts
type Finder interface {
	Discover(ctx context.Context, timeout time.Duration) []string
}

// Scanner handles SSDP device discovery
type Scanner struct {
	// Target is the address the M-SEARCH is sent to (default: MulticastAddr)
	Target string

	// SearchTarget is the ST header value (default: "roku:ecp")
	SearchTarget string

	// ReceiveTimeout is the per-read deadline (default: 1s)
	ReceiveTimeout time.Duration
}

// NewScanner creates a new SSDP scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Target:         MulticastAddr,
		SearchTarget:   SearchTarget,
		ReceiveTimeout: DefaultReceiveTimeout,
	}
}

// SearchMessage returns the M-SEARCH datagram sent to Target
func (s *Scanner) SearchMessage() []byte {
	return []byte("M-SEARCH * HTTP/1.1\r\n" +
		"HOST: " + MulticastAddr + "\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"ST: " + s.searchTarget() + "\r\n" +
		"MX: 2\r\n" +
		"\r\n")
}

// Discover returns the unique hosts that answered within timeout, in the
// order they were first seen. Failures to open the socket or send the probe
// produce an empty slice.
func (s *Scanner) Discover(ctx context.Context, timeout time.Duration) []string {
	responses := s.DiscoverResponses(ctx, timeout)
	hosts := make([]string, 0, len(responses))
	for _, resp := range responses {
		hosts = append(hosts, resp.Host)
	}
	return hosts
}

// DiscoverResponses is like Discover but returns the parsed responses,
// one per unique host.
func (s *Scanner) DiscoverResponses(ctx context.Context, timeout time.Duration) []Response {
	responses := make([]Response, 0)

	conn, err := s.open()
	if err != nil {
		logging.Warn("SSDP discovery unavailable", zap.Error(err))
		return responses
	}
	defer func() { _ = conn.Close() }()

	if err := s.send(conn); err != nil {
		logging.Warn("Failed to send M-SEARCH", zap.String("target", s.target()), zap.Error(err))
		return responses
	}

	return s.receive(ctx, conn, timeout)
}

// receive collects responses on conn until timeout elapses, ctx is done or
// the socket is closed. Other read errors only end the current poll.
func (s *Scanner) receive(ctx context.Context, conn *net.UDPConn, timeout time.Duration) []Response {
	responses := make([]Response, 0)

	// Interrupt a pending read as soon as the caller gives up
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	seen := make(map[string]bool)
	buf := make([]byte, maxDatagramSize)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) && ctx.Err() == nil {
		readDeadline := time.Now().Add(s.receiveTimeout())
		if readDeadline.After(deadline) {
			readDeadline = deadline
		}
		if err := conn.SetReadDeadline(readDeadline); err != nil {
			break
		}

		n, from, err := conn.ReadFromUDP(buf)
		if errors.Is(err, net.ErrClosed) {
			break
		}
		if err != nil {
			if !errors.Is(err, os.ErrDeadlineExceeded) {
				logging.Debug("SSDP read error", zap.Error(err))
				waitUntil(ctx, readDeadline)
			}
			continue
		}

		logging.LogDatagram("SSDP response", from.String(), buf[:n])

		resp, ok := ParseResponse(buf[:n], from.String())
		if !ok {
			logging.Debug("Ignoring SSDP response without LOCATION", zap.String("from", from.String()))
			continue
		}
		if seen[resp.Host] {
			continue
		}
		seen[resp.Host] = true
		responses = append(responses, resp)

		logging.Info("Discovered Roku device",
			zap.String("host", resp.Host),
			zap.String("location", resp.Location),
			zap.String("usn", resp.USN),
		)
	}

	return responses
}

// waitUntil blocks until t or until ctx is done
func waitUntil(ctx context.Context, t time.Time) {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *Scanner) open() (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastTTL(multicastTTL); err != nil {
		logging.Debug("Failed to set multicast TTL", zap.Error(err))
	}
	if err := pc.SetMulticastLoopback(true); err != nil {
		logging.Debug("Failed to enable multicast loopback", zap.Error(err))
	}

	return conn, nil
}

func (s *Scanner) send(conn *net.UDPConn) error {
	addr, err := net.ResolveUDPAddr("udp4", s.target())
	if err != nil {
		return fmt.Errorf("invalid SSDP target %s: %w", s.target(), err)
	}

	msg := s.SearchMessage()
	logging.LogDatagram("M-SEARCH", addr.String(), msg)

	if _, err := conn.WriteToUDP(msg, addr); err != nil {
		return fmt.Errorf("failed to send M-SEARCH: %w", err)
	}
	return nil
}

func (s *Scanner) target() string {
	if s.Target == "" {
		return MulticastAddr
	}
	return s.Target
}

func (s *Scanner) searchTarget() string {
	if s.SearchTarget == "" {
		return SearchTarget
	}
	return s.SearchTarget
}

func (s *Scanner) receiveTimeout() time.Duration {
	if s.ReceiveTimeout <= 0 {
		return DefaultReceiveTimeout
	}
	return s.ReceiveTimeout
}
