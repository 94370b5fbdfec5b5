package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestIsTimeout_DeadlineExceeded(t *testing.T) {
	err := fmt.Errorf("geocode: request: %w", context.DeadlineExceeded)
	if !IsTimeout(err) {
		t.Error("expected wrapped deadline to be a timeout")
	}
}

func TestIsTimeout_NetworkTimeout(t *testing.T) {
	err := &net.DNSError{IsTimeout: true, Err: "timeout"}
	if !IsTimeout(err) {
		t.Error("expected network timeout to be a timeout")
	}
}

func TestIsTimeout_ClientTimeoutText(t *testing.T) {
	err := errors.New(`Get "https://example.test": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`)
	if !IsTimeout(err) {
		t.Error("expected http client timeout text to be a timeout")
	}
}

func TestIsTimeout_Nil(t *testing.T) {
	if IsTimeout(nil) {
		t.Error("nil error should not be a timeout")
	}
}

func TestIsUnreachable_ConnectionRefused(t *testing.T) {
	err := fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)
	if !IsUnreachable(err) {
		t.Error("ECONNREFUSED should be unreachable")
	}
}

func TestIsUnreachable_ConnectionReset(t *testing.T) {
	err := fmt.Errorf("read tcp: %w", syscall.ECONNRESET)
	if !IsUnreachable(err) {
		t.Error("ECONNRESET should be unreachable")
	}
}

func TestIsUnreachable_DNSFailure(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "nominatim.invalid", IsNotFound: true}
	if !IsUnreachable(err) {
		t.Error("DNS failure should be unreachable")
	}
}

func TestIsUnreachable_TimeoutIsNotUnreachable(t *testing.T) {
	err := &net.DNSError{IsTimeout: true, Err: "timeout"}
	if IsUnreachable(err) {
		t.Error("a timeout must be reported as a timeout, not unreachable")
	}
}

func TestIsUnreachable_StringPatterns(t *testing.T) {
	patterns := []string{
		"connection reset by peer",
		"broken pipe",
		"server closed idle connection",
		"Temporary failure in name resolution",
	}
	for _, p := range patterns {
		if !IsUnreachable(errors.New(p)) {
			t.Errorf("expected %q to be unreachable", p)
		}
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("deadline should be transient")
	}
	if !IsTransient(syscall.ECONNREFUSED) {
		t.Error("refused connection should be transient")
	}
	if IsTransient(errors.New("invalid input: missing field")) {
		t.Error("regular error should not be transient")
	}
	if IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
}
