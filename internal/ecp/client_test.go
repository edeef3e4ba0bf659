package ecp

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

const mockDeviceInfo = `<?xml version="1.0" encoding="UTF-8" ?>
<device-info>
	<udn>28001240-0000-1000-8000-d83134a7b2e1</udn>
	<serial-number>X00400ABCDEF</serial-number>
	<model-name>Roku Ultra</model-name>
	<model-number>4800X</model-number>
	<wifi-mac>d8:31:34:a7:b2:e2</wifi-mac>
	<network-type>wifi</network-type>
	<friendly-device-name>Living Room</friendly-device-name>
	<software-version>12.5.0</software-version>
	<software-build>4178</software-build>
</device-info>`

// newTestClient points a client at an httptest server and returns the host to use.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("url.Parse(%s) error = %v", server.URL, err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("invalid port %q: %v", u.Port(), err)
	}

	client := NewClient()
	client.Port = port
	return client, u.Hostname()
}

func TestNewClient(t *testing.T) {
	client := NewClient()

	if client.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", client.Port, DefaultPort)
	}

	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}

	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.HTTPClient.Timeout)
	}
}

func TestURL(t *testing.T) {
	client := NewClient()

	tests := []struct {
		name    string
		host    string
		path    string
		want    string
		wantErr bool
	}{
		{
			name: "ipv4 host",
			host: "192.168.1.42",
			path: "/query/apps",
			want: "http://192.168.1.42:8060/query/apps",
		},
		{
			name: "host is trimmed",
			host: "  192.168.1.42\n",
			path: "/keypress/Home",
			want: "http://192.168.1.42:8060/keypress/Home",
		},
		{
			name: "hostname",
			host: "roku.local",
			path: "/launch/12",
			want: "http://roku.local:8060/launch/12",
		},
		{
			name: "ipv6 host is bracketed",
			host: "fe80::1",
			path: "/query/apps",
			want: "http://[fe80::1]:8060/query/apps",
		},
		{
			name:    "empty host",
			host:    "",
			path:    "/query/apps",
			wantErr: true,
		},
		{
			name:    "whitespace host",
			host:    "   ",
			path:    "/query/apps",
			wantErr: true,
		},
		{
			name:    "host with embedded space",
			host:    "192.168 .1.42",
			path:    "/query/apps",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.URL(tt.host, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("URL(%q) = %q, want error", tt.host, got)
				}
				if !IsInvalidAddress(err) {
					t.Errorf("URL(%q) error = %v, want invalid address error", tt.host, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("URL(%q) error = %v", tt.host, err)
			}
			if got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"keypress", KeypressPath("Home"), "/keypress/Home"},
		{"keypress escaped", KeypressPath("Volume Up"), "/keypress/Volume%20Up"},
		{"keydown", KeydownPath("Left"), "/keydown/Left"},
		{"keyup", KeyupPath("Left"), "/keyup/Left"},
		{"literal", LiteralPath('a'), "/keypress/Lit_a"},
		{"literal space", LiteralPath(' '), "/keypress/Lit_%20"},
		{"literal slash", LiteralPath('/'), "/keypress/Lit_%2F"},
		{"literal unicode", LiteralPath('é'), "/keypress/Lit_%C3%A9"},
		{"launch", LaunchPath("12"), "/launch/12"},
		{"launch escaped", LaunchPath("dev?x"), "/launch/dev%3Fx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("path = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestFetch_Success(t *testing.T) {
	client, host := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Request method = %s, want GET", r.Method)
		}
		if r.URL.Path != AppsPath {
			t.Errorf("Request path = %s, want %s", r.URL.Path, AppsPath)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<apps><app id="12">Netflix</app></apps>`))
	})

	body, err := client.Fetch(context.Background(), host, AppsPath)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}

	if string(body) != `<apps><app id="12">Netflix</app></apps>` {
		t.Errorf("Fetch() body = %q", body)
	}
}

func TestFetch_UnexpectedStatus(t *testing.T) {
	client, host := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	body, err := client.Fetch(context.Background(), host, AppsPath)
	if err == nil {
		t.Fatalf("Fetch() = %q, want error", body)
	}

	if !IsHTTPError(err) {
		t.Errorf("Fetch() error should be HTTP error, got %T: %v", err, err)
	}
	if got := StatusCode(err); got != http.StatusForbidden {
		t.Errorf("StatusCode() = %d, want 403", got)
	}
	if IsTimeout(err) {
		t.Error("403 must not be reported as a timeout")
	}
}

func TestFetch_InvalidAddress(t *testing.T) {
	client := NewClient()

	_, err := client.Fetch(context.Background(), "  ", AppsPath)
	if !IsInvalidAddress(err) {
		t.Errorf("Fetch() error = %v, want invalid address", err)
	}
}

func TestCommand_Success(t *testing.T) {
	var gotPath string
	client, host := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Request method = %s, want POST", r.Method)
		}
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte("ignored"))
	})

	code, err := client.Command(context.Background(), host, KeypressPath("Volume Up"))
	if err != nil {
		t.Fatalf("Command() error = %v, want nil", err)
	}
	if code != http.StatusOK {
		t.Errorf("Command() = %d, want 200", code)
	}
	if gotPath != "/keypress/Volume%20Up" {
		t.Errorf("server saw path %q, want /keypress/Volume%%20Up", gotPath)
	}
}

func TestCommand_Forbidden(t *testing.T) {
	client, host := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	code, err := client.Command(context.Background(), host, LaunchPath("12"))
	if err == nil {
		t.Fatal("Command() should fail on 403")
	}
	if code != http.StatusForbidden {
		t.Errorf("Command() code = %d, want 403", code)
	}
	if StatusCode(err) != http.StatusForbidden {
		t.Errorf("StatusCode() = %d, want 403", StatusCode(err))
	}
}

func TestCommand_Timeout(t *testing.T) {
	release := make(chan struct{})
	client, host := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	client.SetTimeout(50 * time.Millisecond)

	_, err := client.Command(context.Background(), host, KeypressPath("Home"))
	if err == nil {
		t.Fatal("Command() should time out")
	}
	if !IsTimeout(err) {
		t.Errorf("Command() error = %v, want timeout", err)
	}
	if IsHTTPError(err) {
		t.Error("timeout must not be reported as an HTTP error")
	}
}

func TestCommand_ConnectionRefused(t *testing.T) {
	// Grab a free port and close it so nothing is listening there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	client := NewClient()
	client.Port = port
	client.SetTimeout(time.Second)

	_, err = client.Command(context.Background(), "127.0.0.1", KeypressPath("Home"))
	if err == nil {
		t.Fatal("Command() should fail with nothing listening")
	}
	if !IsNetworkError(err) {
		t.Errorf("Command() error = %v, want network error", err)
	}
}

func TestDeviceInfo(t *testing.T) {
	client, host := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DeviceInfoPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(mockDeviceInfo))
	})

	info, err := client.DeviceInfo(context.Background(), host)
	if err != nil {
		t.Fatalf("DeviceInfo() error = %v", err)
	}

	if info.FriendlyName != "Living Room" {
		t.Errorf("FriendlyName = %q, want Living Room", info.FriendlyName)
	}
	if info.ModelNumber != "4800X" {
		t.Errorf("ModelNumber = %q, want 4800X", info.ModelNumber)
	}

	fields := info.Fields()
	if len(fields) != 8 {
		t.Fatalf("Fields() returned %d entries, want 8 (ethernet-mac is absent)", len(fields))
	}
	if fields[0][0] != "friendly-device-name" {
		t.Errorf("first field = %q, want friendly-device-name", fields[0][0])
	}

	if got, want := info.String(), "Living Room (4800X, OS 12.5.0)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseDeviceInfo_Malformed(t *testing.T) {
	_, err := ParseDeviceInfo([]byte("<device-info><model-name>Roku"))
	if !IsParseError(err) {
		t.Errorf("ParseDeviceInfo() error = %v, want parse error", err)
	}
}
