package ecp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeInvalidAddress, "Invalid Address"},
		{ErrTypeHTTP, "Unexpected Status"},
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeConnectionRefused, "Connection Refused"},
		{ErrTypeDNS, "DNS Error"},
		{ErrTypeParse, "Parse Error"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", int(tt.et), got, tt.want)
		}
	}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{
			name:     "deadline exceeded",
			err:      os.ErrDeadlineExceeded,
			wantType: ErrTypeTimeout,
		},
		{
			name:     "context deadline inside url.Error",
			err:      &url.Error{Op: "Post", URL: "http://x:8060/", Err: context.DeadlineExceeded},
			wantType: ErrTypeTimeout,
		},
		{
			name:     "dns failure",
			err:      &net.DNSError{Name: "roku.invalid", Err: "no such host"},
			wantType: ErrTypeDNS,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Get", URL: "http://x:8060/", Err: &net.OpError{
				Op:  "dial",
				Net: "tcp",
				Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
			}},
			wantType: ErrTypeConnectionRefused,
		},
		{
			name:     "generic",
			err:      errors.New("boom"),
			wantType: ErrTypeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err, "10.0.0.2")
			if got == nil {
				t.Fatal("ClassifyNetworkError() = nil")
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Host != "10.0.0.2" {
				t.Errorf("Host = %q, want 10.0.0.2", got.Host)
			}
		})
	}

	if ClassifyNetworkError(nil, "") != nil {
		t.Error("ClassifyNetworkError(nil) should return nil")
	}
}

func TestPredicates_WrappedErrors(t *testing.T) {
	base := NewHTTPError("10.0.0.2", 403)
	wrapped := fmt.Errorf("launch: %w", base)

	if !IsHTTPError(wrapped) {
		t.Error("IsHTTPError should see through fmt.Errorf wrapping")
	}
	if StatusCode(wrapped) != 403 {
		t.Errorf("StatusCode() = %d, want 403", StatusCode(wrapped))
	}
	if IsNetworkError(wrapped) || IsTimeout(wrapped) || IsParseError(wrapped) || IsInvalidAddress(wrapped) {
		t.Error("HTTP error matched an unrelated predicate")
	}
	if StatusCode(errors.New("plain")) != 0 {
		t.Error("StatusCode() of a plain error should be 0")
	}
}

func TestDeviceError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewNetworkError("10.0.0.2", "GET request failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the underlying cause")
	}
	if !strings.Contains(err.Error(), "GET request failed") || !strings.Contains(err.Error(), "socket closed") {
		t.Errorf("Error() = %q, should mention message and cause", err.Error())
	}
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"forbidden", NewHTTPError("h", 403), "HTTP 403 - enable \"Control by mobile apps\" on the device"},
		{"not found", NewHTTPError("h", 404), "Device error (HTTP 404)"},
		{"timeout", &DeviceError{Type: ErrTypeTimeout}, "Device not responding (timeout)"},
		{"refused", &DeviceError{Type: ErrTypeConnectionRefused}, "Device refused connection - is ECP enabled?"},
		{"invalid", NewInvalidAddressError("", nil), "Invalid device address"},
		{"parse", NewParseError("bad", nil), "Failed to parse device response"},
		{"plain", errors.New("plain failure"), "plain failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortMessage(tt.err); got != tt.want {
				t.Errorf("ShortMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
