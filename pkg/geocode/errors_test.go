package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	want := []string{"service_error", "timeout", "quota_exceeded", "rate_limited", "unavailable"}
	require.Len(t, Kinds, len(want))
	for i, k := range Kinds {
		assert.Equal(t, want[i], k.String())
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Kind: KindRateLimited, StatusCode: 429, Detail: "retry after 30"}
	assert.Equal(t, "geocode: rate_limited (status 429): retry after 30", e.Error())

	cause := errors.New("boom")
	e = &Error{Kind: KindServiceError, Err: cause}
	assert.Equal(t, "geocode: service_error: boom", e.Error())
	assert.ErrorIs(t, e, cause)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"wrapped deadline", eris.Wrap(context.DeadlineExceeded, "geocode: request"), KindTimeout},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, KindUnavailable},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), KindUnavailable},
		{"dns", &net.DNSError{Err: "no such host", Name: "nominatim.invalid", IsNotFound: true}, KindUnavailable},
		{"other", errors.New("unexpected EOF in json"), KindServiceError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestClassify_KeepsExisting(t *testing.T) {
	orig := &Error{Kind: KindQuotaExceeded, StatusCode: 402}
	got := Classify(eris.Wrap(orig, "batch: row 3"))
	assert.Same(t, orig, got)
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestKindForStatus_Unlisted(t *testing.T) {
	assert.Equal(t, KindServiceError, kindForStatus(418))
	assert.Equal(t, KindServiceError, kindForStatus(401))
}
