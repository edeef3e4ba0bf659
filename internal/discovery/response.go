package discovery

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"strings"
)

// Response is a parsed SSDP answer from a single device
type Response struct {
	// From is the UDP source address of the datagram
	From string

	// Location is the raw LOCATION header (e.g., "http://192.168.1.42:8060/")
	Location string

	// USN is the unique service name (e.g., "uuid:roku:ecp:X00400ABCDEF")
	USN string

	// Server is the SERVER header (e.g., "Roku/12.5.0 UPnP/1.0 Roku/12.5.0")
	Server string

	// Host is the host component of Location
	Host string
}

// String returns a human-readable representation of the response
func (r Response) String() string {
	return fmt.Sprintf("Roku at %s (location %s)", r.Host, r.Location)
}

// ParseResponse parses an SSDP datagram. It reports false when the datagram
// carries no LOCATION header with a usable host.
func ParseResponse(data []byte, from string) (Response, bool) {
	resp := Response{From: from}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "location":
			if resp.Location == "" {
				resp.Location = value
			}
		case "usn":
			resp.USN = value
		case "server":
			resp.Server = value
		}
	}

	resp.Host = hostFromLocation(resp.Location)
	return resp, resp.Host != ""
}

func hostFromLocation(location string) string {
	if location == "" {
		return ""
	}
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
