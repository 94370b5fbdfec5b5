// Package resilience classifies transport failures and retries operations
// whose failure an operator or a remote service is expected to clear.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// IsTimeout returns true if the error (or any error in its chain) is a
// deadline expiry or a network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// http.Client wraps its own timeout in a *url.Error whose text is the
	// only stable signal once the error has been re-wrapped.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"i/o timeout",
		"tls handshake timeout",
		"client.timeout exceeded",
		"deadline exceeded",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsUnreachable returns true if the error means the remote host could not be
// reached at all: refused or reset connections, DNS failures, dropped
// transports.
func IsUnreachable(err error) bool {
	if err == nil || IsTimeout(err) {
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"connection refused",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"server closed idle connection",
		"transport connection broken",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransient returns true if the error is a timeout or a connectivity
// failure, i.e. something that may succeed when attempted again.
func IsTransient(err error) bool {
	return IsTimeout(err) || IsUnreachable(err)
}
