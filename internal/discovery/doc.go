// Package discovery finds Roku devices on the local network.
//
// The primary mechanism is SSDP: a single M-SEARCH datagram is multicast to
// 239.255.255.250:1900 with search target "roku:ecp", and every device that
// answers includes a LOCATION header such as
//
//	LOCATION: http://192.168.1.42:8060/
//
// whose host identifies the device's ECP endpoint.
//
// # Discovery Process
//
//  1. Opens a UDP socket and sends one M-SEARCH (MX: 2)
//  2. Polls for responses with a 1-second read deadline
//  3. Extracts the host from each LOCATION header
//  4. Deduplicates hosts, preserving first-seen order
//  5. Returns when the overall timeout elapses or the context is cancelled
//
// Discovery is best-effort: a socket that cannot be opened or a send that
// fails yields an empty result rather than an error, and lost datagrams are
// simply not collected.
//
// # Usage Example
//
//	hosts := discovery.NewScanner().Discover(ctx, 3*time.Second)
//	for _, host := range hosts {
//	    fmt.Println("found", host)
//	}
//
// # mDNS
//
// MDNSScanner is a secondary source that browses AirPlay advertisements
// published by Roku TVs. Combine sources with All.
//
// # Blocking
//
// Discover blocks for up to the given timeout. Interactive callers should run
// it on its own goroutine.
package discovery
