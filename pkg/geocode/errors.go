package geocode

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sells-group/incident-cli/internal/resilience"
)

// Kind is the category of a failed lookup.
type Kind int

const (
	// KindServiceError is any failure not covered by a more specific kind:
	// rejected queries, auth problems, malformed responses.
	KindServiceError Kind = iota
	// KindTimeout means the request or the service timed out.
	KindTimeout
	// KindQuotaExceeded means the account or instance quota is used up.
	KindQuotaExceeded
	// KindRateLimited means the service throttled this client.
	KindRateLimited
	// KindUnavailable means the service could not be reached or is down.
	KindUnavailable
)

// Kinds lists every Kind in declaration order.
var Kinds = []Kind{KindServiceError, KindTimeout, KindQuotaExceeded, KindRateLimited, KindUnavailable}

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	default:
		return "service_error"
	}
}

// Error is a failed lookup.
type Error struct {
	Kind       Kind
	StatusCode int    // HTTP status, 0 when no response was received
	Detail     string // optional human-readable context
	Err        error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := "geocode: " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify turns any error into a *Error. An *Error already in the chain is
// returned as is; transport errors are sorted into KindTimeout or
// KindUnavailable; everything else is KindServiceError.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}

	switch {
	case resilience.IsTimeout(err):
		return &Error{Kind: KindTimeout, Err: err}
	case resilience.IsUnreachable(err):
		return &Error{Kind: KindUnavailable, Err: err}
	default:
		return &Error{Kind: KindServiceError, Err: err}
	}
}

// kindForStatus maps a non-200 HTTP status to a Kind.
func kindForStatus(code int) Kind {
	switch code {
	case http.StatusPaymentRequired, 509: // 509: bandwidth limit exceeded
		return KindQuotaExceeded
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return KindUnavailable
	default:
		return KindServiceError
	}
}
