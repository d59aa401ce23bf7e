package classify_test

import (
	"crypto/x509"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
)

func TestFromHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		want   classify.ErrorKind
	}{
		{200, classify.Unknown},
		{404, classify.HTTP4xx},
		{408, classify.HTTP4xx},
		{429, classify.RateLimited},
		{500, classify.HTTP5xx},
		{503, classify.HTTP5xx},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("status=%d", c.status), func(t *testing.T) {
			assert.Equal(t, c.want, classify.FromHTTPStatus(c.status))
		})
	}
}

func TestFromTransportError_CertExpired(t *testing.T) {
	err := x509.CertificateInvalidError{Reason: x509.Expired}
	assert.Equal(t, classify.SSLCertExpired, classify.FromTransportError(err))
}

func TestFromTransportError_SelfSigned(t *testing.T) {
	err := x509.UnknownAuthorityError{}
	assert.Equal(t, classify.SSLSelfSigned, classify.FromTransportError(err))
}

func TestFromTransportError_ConnectionRefused(t *testing.T) {
	err := errors.New("dial tcp 127.0.0.1:443: connect: connection refused")
	assert.Equal(t, classify.ConnectionRefused, classify.FromTransportError(err))
}

// Every kind in the closed taxonomy must resolve to a policy with a
// non-empty user message — the classifier must be total.
func TestPolicyFor_Totality(t *testing.T) {
	kinds := []classify.ErrorKind{
		classify.SSLCertExpired, classify.SSLCertInvalid, classify.SSLSelfSigned,
		classify.SSLOther, classify.Timeout, classify.ConnectionRefused,
		classify.DNSError, classify.RateLimited, classify.HTTP4xx,
		classify.HTTP5xx, classify.InvalidURL, classify.Unknown,
	}
	for _, k := range kinds {
		p := classify.PolicyFor(k)
		assert.NotEmpty(t, p.UserMessage, "kind %s must have a user message", k)
	}
}

func TestRetryablePolicy_ClosedList(t *testing.T) {
	nonRetryable := []classify.ErrorKind{
		classify.DNSError, classify.InvalidURL, classify.ConnectionRefused,
		classify.SSLCertExpired, classify.HTTP4xx,
	}
	for _, k := range nonRetryable {
		assert.False(t, classify.PolicyFor(k).Retryable, "%s should not be retryable", k)
	}
	assert.True(t, classify.PolicyFor(classify.RateLimited).Retryable)
}

func TestIsSSLFamily(t *testing.T) {
	assert.True(t, classify.IsSSLFamily(classify.SSLCertExpired))
	assert.True(t, classify.IsSSLFamily(classify.SSLOther))
	assert.False(t, classify.IsSSLFamily(classify.Timeout))
	assert.False(t, classify.IsSSLFamily(classify.HTTP4xx))
}
