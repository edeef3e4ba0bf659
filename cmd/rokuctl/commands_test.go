package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/muurk/rokuctl/internal/config"
	"github.com/muurk/rokuctl/internal/discovery"
)

const testCatalog = `<apps><app id="12">Netflix</app><app id="837">YouTube</app></apps>`

// fakeDevice records ECP requests and serves a fixed catalog
type fakeDevice struct {
	mu       sync.Mutex
	requests []string
	status   int
}

func (d *fakeDevice) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.requests = append(d.requests, r.Method+" "+r.URL.EscapedPath())
	status := d.status
	d.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	switch r.URL.Path {
	case "/query/apps":
		_, _ = w.Write([]byte(testCatalog))
	case "/query/device-info":
		_, _ = w.Write([]byte(`<device-info><friendly-device-name>Den</friendly-device-name><model-number>3930X</model-number><software-version>11.0</software-version></device-info>`))
	}
}

func (d *fakeDevice) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.requests...)
}

// startDevice returns a fake device plus the --host and --port flags for it
func startDevice(t *testing.T) (*fakeDevice, []string) {
	t.Helper()

	device := &fakeDevice{}
	server := httptest.NewServer(device)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("url.Parse(%s) error = %v", server.URL, err)
	}
	return device, []string{"--host", u.Hostname(), "--port", u.Port()}
}

// execute runs the root command with args in a fresh config directory and
// returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	useConfigDir(t)
	return run(t, args...)
}

// useConfigDir points the config file at a temporary directory and returns
// the file path
func useConfigDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("LOCALAPPDATA", dir)
	t.Setenv("ROKU_HOST", "")
	t.Setenv("ROKU_DEV_TARGET", "")

	path, err := config.GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default so earlier runs do not leak
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestCommands_ReadConfigPerRun(t *testing.T) {
	device, flags := startDevice(t)
	port := flags[3]

	// An earlier run in another config directory must not be reused
	if _, err := execute(t, "version"); err != nil {
		t.Fatalf("version error = %v", err)
	}

	path := useConfigDir(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	data := "version: 1\ndevice:\n  address: 127.0.0.1\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := run(t, "keypress", "Home", "--port", port)
	if err != nil {
		t.Fatalf("keypress error = %v", err)
	}
	if strings.TrimSpace(out) != "sent Home" {
		t.Errorf("output = %q, want sent Home", out)
	}
	if got := device.seen(); len(got) != 1 || got[0] != "POST /keypress/Home" {
		t.Errorf("device saw %v, want [POST /keypress/Home]", got)
	}
}

func TestResetFlags(t *testing.T) {
	if _, err := execute(t, "version", "--timeout", "9", "--log-level", "error"); err != nil {
		t.Fatalf("version error = %v", err)
	}
	discoverMDNS, infoRaw = true, true

	resetFlags(rootCmd)

	if timeoutSeconds != 3 || logLevel != "" || hostFlag != "" {
		t.Errorf("persistent flags not reset: timeout=%d log-level=%q host=%q", timeoutSeconds, logLevel, hostFlag)
	}
	if discoverMDNS || infoRaw {
		t.Errorf("command flags not reset: mdns=%v raw=%v", discoverMDNS, infoRaw)
	}
	if rootCmd.PersistentFlags().Changed("timeout") {
		t.Error("timeout should not be marked changed after reset")
	}
}

func TestKeypressCommand(t *testing.T) {
	device, flags := startDevice(t)

	out, err := execute(t, append([]string{"keypress", "Home"}, flags...)...)
	if err != nil {
		t.Fatalf("keypress error = %v", err)
	}
	if strings.TrimSpace(out) != "sent Home" {
		t.Errorf("output = %q, want sent Home", out)
	}

	got := device.seen()
	if len(got) != 1 || got[0] != "POST /keypress/Home" {
		t.Errorf("device saw %v, want [POST /keypress/Home]", got)
	}
}

func TestKeypressCommand_Forbidden(t *testing.T) {
	device, flags := startDevice(t)
	device.status = http.StatusForbidden

	_, err := execute(t, append([]string{"keypress", "Home"}, flags...)...)
	if err == nil {
		t.Fatal("keypress should fail on 403")
	}
	if !strings.Contains(err.Error(), "Control by mobile apps") {
		t.Errorf("error = %v, want the mobile apps hint", err)
	}
}

func TestKeyDownUpCommands(t *testing.T) {
	device, flags := startDevice(t)

	if _, err := execute(t, append([]string{"keydown", "Right"}, flags...)...); err != nil {
		t.Fatalf("keydown error = %v", err)
	}
	if _, err := execute(t, append([]string{"keyup", "Right"}, flags...)...); err != nil {
		t.Fatalf("keyup error = %v", err)
	}

	got := device.seen()
	want := []string{"POST /keydown/Right", "POST /keyup/Right"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("device saw %v, want %v", got, want)
	}
}

func TestAppsCommand(t *testing.T) {
	_, flags := startDevice(t)

	out, err := execute(t, append([]string{"apps"}, flags...)...)
	if err != nil {
		t.Fatalf("apps error = %v", err)
	}
	if out != "12\tNetflix\n837\tYouTube\n" {
		t.Errorf("output = %q", out)
	}
}

func TestLaunchCommand(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"by name", "youtube", "POST /launch/837"},
		{"by id", "2213", "POST /launch/2213"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, flags := startDevice(t)

			if _, err := execute(t, append([]string{"launch", tt.arg}, flags...)...); err != nil {
				t.Fatalf("launch error = %v", err)
			}

			got := device.seen()
			if len(got) == 0 || got[len(got)-1] != tt.want {
				t.Errorf("device saw %v, want last %q", got, tt.want)
			}
		})
	}
}

func TestTypeCommand(t *testing.T) {
	device, flags := startDevice(t)

	out, err := execute(t, append([]string{"type", "a", "b"}, flags...)...)
	if err != nil {
		t.Fatalf("type error = %v", err)
	}
	if strings.TrimSpace(out) != "typed 3 chars" {
		t.Errorf("output = %q, want typed 3 chars", out)
	}

	want := []string{"POST /keypress/Lit_a", "POST /keypress/Lit_%20", "POST /keypress/Lit_b"}
	if got := device.seen(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("device saw %v, want %v", got, want)
	}
}

func TestInfoCommand(t *testing.T) {
	_, flags := startDevice(t)

	out, err := execute(t, append([]string{"info"}, flags...)...)
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	if !strings.Contains(out, "Den") || !strings.Contains(out, "3930X") {
		t.Errorf("output = %q, want name and model", out)
	}
}

func TestInfoCommand_Raw(t *testing.T) {
	_, flags := startDevice(t)

	out, err := execute(t, append([]string{"info", "--raw"}, flags...)...)
	if err != nil {
		t.Fatalf("info --raw error = %v", err)
	}
	if !strings.HasPrefix(out, "<device-info>") {
		t.Errorf("output = %q, want raw XML", out)
	}
}

func TestCommands_NoHost(t *testing.T) {
	_, err := execute(t, "keypress", "Home")
	if err == nil {
		t.Fatal("keypress without a host should fail")
	}
	if err != errNoHost {
		t.Errorf("error = %v, want %v", err, errNoHost)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "rokuctl ") {
		t.Errorf("output = %q, want rokuctl prefix", out)
	}
}

func TestHostStore(t *testing.T) {
	s := hostStore{host: "10.0.0.9"}
	if got := s.LoadAddress(); got != "10.0.0.9" {
		t.Errorf("LoadAddress() = %q, want 10.0.0.9", got)
	}
	if err := s.SaveAddress("10.0.0.10"); err != nil {
		t.Errorf("SaveAddress() without registry error = %v", err)
	}
}

type staticFinder []string

func (f staticFinder) Discover(ctx context.Context, timeout time.Duration) []string {
	return append([]string{}, f...)
}

// startResponder answers every M-SEARCH on a loopback socket with reply
func startResponder(t *testing.T, reply string) string {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("net.ListenUDP() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 2048)
		for {
			_, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			_, _ = conn.WriteToUDP([]byte(reply), from)
		}
	}()
	return conn.LocalAddr().String()
}

func TestReportDevices(t *testing.T) {
	target := startResponder(t, "HTTP/1.1 200 OK\r\n"+
		"LOCATION: http://192.168.1.42:8060/\r\n"+
		"USN: uuid:roku:ecp:X00400ABCDEF\r\n"+
		"SERVER: Roku/12.5.0 UPnP/1.0\r\n\r\n")

	scanner := discovery.NewScanner()
	scanner.Target = target
	scanner.ReceiveTimeout = 50 * time.Millisecond
	ssdp := &ssdpRecorder{scanner: scanner}

	var out bytes.Buffer
	found := reportDevices(context.Background(), &out, 300*time.Millisecond, ssdp,
		staticFinder{"192.168.1.42", "10.0.0.7"})

	if found != 2 {
		t.Errorf("reportDevices() = %d, want 2", found)
	}
	text := out.String()
	for _, want := range []string{
		"Location: http://192.168.1.42:8060/",
		"USN:      uuid:roku:ecp:X00400ABCDEF",
		"mDNS:     10.0.0.7",
		"2 device(s) found.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "mDNS:     192.168.1.42") {
		t.Errorf("host seen by SSDP listed again:\n%s", text)
	}
}

func TestReportDevices_NoneFound(t *testing.T) {
	scanner := discovery.NewScanner()
	scanner.Target = "invalid target"
	ssdp := &ssdpRecorder{scanner: scanner}

	var out bytes.Buffer
	if found := reportDevices(context.Background(), &out, 100*time.Millisecond, ssdp); found != 0 {
		t.Errorf("reportDevices() = %d, want 0", found)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
}
