/*
Package classify maps raw failures — network errors, TLS handshake errors,
HTTP status codes — onto a single closed taxonomy of ErrorKind values.

Responsibilities
- Own the canonical, ordered list of ErrorKinds
- Own the policy table (severity, retryability, user-facing message) per kind
- Expose pure classification functions; never perform I/O

Unlike internal/metadata's ErrorCause table (observational only, never
consulted for control flow), ErrorKind here IS the control-flow signal the
static fetcher and orchestrator branch on — a deliberate departure from a
purely observational error table, since retry and fallback decisions need
a closed, branchable taxonomy rather than a free-form log field.
*/
package classify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/rohmanhakim/hybridcrawl/pkg/failure"
)

type ErrorKind string

// Closed taxonomy, ordered; Classify returns the first match.
const (
	SSLCertExpired    ErrorKind = "SSL_CERT_EXPIRED"
	SSLCertInvalid    ErrorKind = "SSL_CERT_INVALID"
	SSLSelfSigned     ErrorKind = "SSL_SELF_SIGNED"
	SSLOther          ErrorKind = "SSL_OTHER"
	Timeout           ErrorKind = "TIMEOUT"
	ConnectionRefused ErrorKind = "CONNECTION_REFUSED"
	DNSError          ErrorKind = "DNS_ERROR"
	RateLimited       ErrorKind = "RATE_LIMITED"
	HTTP4xx           ErrorKind = "HTTP_4xx"
	HTTP5xx           ErrorKind = "HTTP_5xx"
	InvalidURL        ErrorKind = "INVALID_URL"
	Unknown           ErrorKind = "UNKNOWN"
)

// Policy is the single source of truth for a kind's severity, retryability,
// and the message safe to surface to a caller. All other components consult
// this table rather than re-deriving retry/severity semantics.
type Policy struct {
	Severity    failure.Severity
	Retryable   bool
	UserMessage string
}

var policyTable = map[ErrorKind]Policy{
	SSLCertExpired:    {failure.SeverityCritical, false, "the site's TLS certificate has expired"},
	SSLCertInvalid:    {failure.SeverityCritical, false, "the site's TLS certificate is invalid"},
	SSLSelfSigned:     {failure.SeverityHigh, false, "the site presents a self-signed TLS certificate"},
	SSLOther:          {failure.SeverityHigh, false, "a TLS handshake error occurred"},
	Timeout:           {failure.SeverityMedium, true, "the request timed out"},
	ConnectionRefused: {failure.SeverityHigh, false, "the connection was refused"},
	DNSError:          {failure.SeverityHigh, false, "the hostname could not be resolved"},
	RateLimited:       {failure.SeverityMedium, true, "the site is rate-limiting requests"},
	HTTP4xx:           {failure.SeverityMedium, false, "the site returned a client error"},
	HTTP5xx:           {failure.SeverityMedium, true, "the site returned a server error"},
	InvalidURL:        {failure.SeverityLow, false, "the URL is invalid or uses a disallowed scheme"},
	Unknown:           {failure.SeverityMedium, true, "an unexpected error occurred"},
}

// PolicyFor looks up the policy for a kind, falling back to Unknown's
// policy for any value outside the closed taxonomy (should not happen for
// kinds produced by Classify, but keeps the lookup total).
func PolicyFor(kind ErrorKind) Policy {
	if p, ok := policyTable[kind]; ok {
		return p
	}
	return policyTable[Unknown]
}

// IsSSLFamily reports whether kind belongs to the SSL_* group that triggers
// the static fetcher's single-shot Legacy-TLS fallback.
func IsSSLFamily(kind ErrorKind) bool {
	switch kind {
	case SSLCertExpired, SSLCertInvalid, SSLSelfSigned, SSLOther:
		return true
	default:
		return false
	}
}

// FromHTTPStatus classifies a terminal HTTP response status. 429 is
// reported as RateLimited, not HTTP4xx, so it keeps a retryable policy of
// its own. Every other 4xx, 408 included, is reported as HTTP4xx and is
// not retried.
func FromHTTPStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return RateLimited
	case status >= 500:
		return HTTP5xx
	case status >= 400:
		return HTTP4xx
	default:
		return Unknown
	}
}

// FromTransportError classifies a raw transport-layer error (DNS failure,
// connection refused, timeout, TLS handshake failure) returned by an HTTP
// round trip. It never inspects response status codes.
func FromTransportError(err error) ErrorKind {
	if err == nil {
		return Unknown
	}

	if kind, ok := classifyTLS(err); ok {
		return kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNSError
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if strings.Contains(opErr.Err.Error(), "connection refused") {
			return ConnectionRefused
		}
	}
	if strings.Contains(err.Error(), "connection refused") {
		return ConnectionRefused
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return FromTransportError(urlErr.Err)
	}

	return Unknown
}

// classifyTLS narrows a TLS-family error to the SSL_* subgroup. Certificate
// expiry is distinguished from generic invalidity because only expiry is
// treated as definitively non-recoverable by the caller's clock.
func classifyTLS(err error) (ErrorKind, bool) {
	var certErr x509.CertificateInvalidError
	if errors.As(err, &certErr) {
		if certErr.Reason == x509.Expired {
			return SSLCertExpired, true
		}
		return SSLCertInvalid, true
	}

	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return SSLSelfSigned, true
	}

	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return SSLCertInvalid, true
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return SSLOther, true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "certificate has expired"):
		return SSLCertExpired, true
	case strings.Contains(msg, "self-signed"), strings.Contains(msg, "self signed"):
		return SSLSelfSigned, true
	case strings.Contains(msg, "certificate"), strings.Contains(msg, "x509"), strings.Contains(msg, "tls"):
		return SSLOther, true
	}

	return Unknown, false
}
