package fetchstatic

import "crypto/tls"

func tlsVersionName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return "unknown"
	}
}

// strictTLSConfig verifies certificates and negotiates only TLS 1.2/1.3.
func strictTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: false,
	}
}

// legacyTLSConfig is a targeted fallback for hosts with broken or
// outdated TLS setups: it disables verification, accepts TLS 1.0+, and
// turns on legacy renegotiation. Used only for the single-shot fallback
// attempt after an SSL-family classification, never as a default.
func legacyTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS10,
		InsecureSkipVerify: true,
		Renegotiation:      tls.RenegotiateOnceAsClient,
	}
}
