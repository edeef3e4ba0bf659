package discovery

import "testing"

const rokuResponse = "HTTP/1.1 200 OK\r\n" +
	"Cache-Control: max-age=3600\r\n" +
	"ST: roku:ecp\r\n" +
	"LOCATION: http://192.168.1.42:8060/\r\n" +
	"USN: uuid:roku:ecp:X00400ABCDEF\r\n" +
	"Ext: \r\n" +
	"Server: Roku/12.5.0 UPnP/1.0 Roku/12.5.0\r\n" +
	"\r\n"

func TestParseResponse(t *testing.T) {
	resp, ok := ParseResponse([]byte(rokuResponse), "192.168.1.42:1900")
	if !ok {
		t.Fatal("ParseResponse() ok = false, want true")
	}

	if resp.Host != "192.168.1.42" {
		t.Errorf("Host = %q, want 192.168.1.42", resp.Host)
	}
	if resp.Location != "http://192.168.1.42:8060/" {
		t.Errorf("Location = %q", resp.Location)
	}
	if resp.USN != "uuid:roku:ecp:X00400ABCDEF" {
		t.Errorf("USN = %q", resp.USN)
	}
	if resp.Server != "Roku/12.5.0 UPnP/1.0 Roku/12.5.0" {
		t.Errorf("Server = %q", resp.Server)
	}
	if resp.From != "192.168.1.42:1900" {
		t.Errorf("From = %q", resp.From)
	}
}

func TestParseResponse_HeaderVariants(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantOK   bool
		wantHost string
	}{
		{"lowercase header", "HTTP/1.1 200 OK\r\nlocation: http://10.0.0.7:8060/\r\n\r\n", true, "10.0.0.7"},
		{"mixed case header", "HTTP/1.1 200 OK\r\nLocation:http://10.0.0.8:8060\r\n", true, "10.0.0.8"},
		{"bare newlines", "HTTP/1.1 200 OK\nLOCATION: http://roku.lan:8060/\n", true, "roku.lan"},
		{"padded key", "HTTP/1.1 200 OK\r\n  LOCATION  : http://10.0.0.9:8060/\r\n", true, "10.0.0.9"},
		{"missing location", "HTTP/1.1 200 OK\r\nST: roku:ecp\r\n\r\n", false, ""},
		{"location without host", "HTTP/1.1 200 OK\r\nLOCATION: /desc.xml\r\n", false, ""},
		{"garbage", "\x00\x01\x02", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, ok := ParseResponse([]byte(tt.data), "")
			if ok != tt.wantOK {
				t.Fatalf("ParseResponse() ok = %v, want %v", ok, tt.wantOK)
			}
			if resp.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", resp.Host, tt.wantHost)
			}
		})
	}
}

func TestResponse_String(t *testing.T) {
	resp := Response{Host: "10.0.0.7", Location: "http://10.0.0.7:8060/"}
	if got, want := resp.String(), "Roku at 10.0.0.7 (location http://10.0.0.7:8060/)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
