package ecp

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeInvalidAddress indicates an empty or unusable device host
	ErrTypeInvalidAddress ErrorType = iota
	// ErrTypeHTTP indicates the device answered with a non-200 status code
	ErrTypeHTTP
	// ErrTypeNetwork indicates a network-level failure not covered below
	ErrTypeNetwork
	// ErrTypeTimeout indicates the device did not answer within the request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening on the ECP port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the device hostname could not be resolved
	ErrTypeDNS
	// ErrTypeParse indicates a malformed response document
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidAddress:
		return "Invalid Address"
	case ErrTypeHTTP:
		return "Unexpected Status"
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a Roku device
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (ErrTypeHTTP only)
	Host       string    // Device host the request was aimed at
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport error onto the error taxonomy.
func ClassifyNetworkError(err error, host string) *DeviceError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &DeviceError{
			Type:    ErrTypeTimeout,
			Message: "request timed out",
			Host:    host,
			Err:     err,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DeviceError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Host:    host,
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &DeviceError{
			Type:    ErrTypeConnectionRefused,
			Message: "device refused connection",
			Host:    host,
			Err:     err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: "network error occurred",
		Host:    host,
		Err:     err,
	}
}

// NewNetworkError creates a transport error with automatic classification
func NewNetworkError(host, message string, err error) *DeviceError {
	classified := ClassifyNetworkError(err, host)
	if classified == nil {
		return &DeviceError{Type: ErrTypeNetwork, Message: message, Host: host}
	}
	classified.Message = message
	return classified
}

// NewInvalidAddressError creates an error for an empty or malformed host
func NewInvalidAddressError(host string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeInvalidAddress,
		Message: fmt.Sprintf("invalid device address %q", host),
		Host:    host,
		Err:     err,
	}
}

// NewHTTPError creates an UnexpectedStatus error
func NewHTTPError(host string, statusCode int) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
		Host:       host,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

func errorType(err error) (ErrorType, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type, true
	}
	return 0, false
}

// IsInvalidAddress checks if an error was caused by an unusable host
func IsInvalidAddress(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeInvalidAddress
}

// IsHTTPError checks if an error is an UnexpectedStatus error
func IsHTTPError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeHTTP
}

// IsTimeout checks if an error is a request timeout
func IsTimeout(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeTimeout
}

// IsNetworkError checks if an error is any transport-level failure
// (timeout, connection refused, DNS, or generic network error)
func IsNetworkError(err error) bool {
	t, ok := errorType(err)
	if !ok {
		return false
	}
	switch t {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeParse
}

// StatusCode returns the HTTP status carried by an UnexpectedStatus error, or 0.
func StatusCode(err error) int {
	var devErr *DeviceError
	if errors.As(err, &devErr) && devErr.Type == ErrTypeHTTP {
		return devErr.StatusCode
	}
	return 0
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeInvalidAddress:
		return "Invalid device address"
	case ErrTypeTimeout:
		return "Device not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Device refused connection - is ECP enabled?"
	case ErrTypeDNS:
		return "Cannot resolve device hostname"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		if devErr.StatusCode == http.StatusForbidden {
			return "HTTP 403 - enable \"Control by mobile apps\" on the device"
		}
		return fmt.Sprintf("Device error (HTTP %d)", devErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse device response"
	default:
		return devErr.Message
	}
}
