/*
Package urlnorm is the crawler's single choke point for turning arbitrary
strings and hrefs into validated, normalized URLs.

Responsibilities
- Parse and scheme-filter candidate URLs
- Resolve relative hrefs against a base
- Produce the deduplication key used by every visited set in the module
- Sanitize a raw link list: resolve, filter, dedupe, preserve first-seen order

It knows nothing about fetching, crawl state, or depth. Everything here is a
pure function over strings and url.URL values.

Grounded on pkg/urlutil.Canonicalize (scheme/host lowercasing, trailing-slash
stripping, query/fragment stripping) generalized to this package's key shape
— the key drops query and fragment, but validateAbsolute and the sanitizer
still return URLs with the query preserved for fetching — and on
internal/sanitizer's link-resolution pass for SanitizeLinks.
*/
package urlnorm

import (
	"fmt"
	"net/url"
	"strings"
)

// maliciousSchemes lists substrings rejected anywhere in the raw input,
// case-insensitive, regardless of where they appear (scheme position or
// embedded via an open-redirect-style payload).
var maliciousSchemes = []string{
	"javascript:", "data:", "file:", "vbscript:", "about:",
}

// InvalidURLError is returned for any string that fails validation; callers
// typically wrap it into a classify.Error with classify.InvalidURL.
type InvalidURLError struct {
	Input  string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}

// ValidateAbsolute parses s and requires it to be an absolute http(s) URL
// free of disallowed scheme substrings anywhere in the raw string.
func ValidateAbsolute(s string) (url.URL, error) {
	lower := strings.ToLower(s)
	for _, scheme := range maliciousSchemes {
		if strings.Contains(lower, scheme) {
			return url.URL{}, &InvalidURLError{Input: s, Reason: "disallowed scheme " + scheme}
		}
	}

	parsed, err := url.Parse(s)
	if err != nil {
		return url.URL{}, &InvalidURLError{Input: s, Reason: err.Error()}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return url.URL{}, &InvalidURLError{Input: s, Reason: "scheme must be http or https"}
	}
	if parsed.Host == "" {
		return url.URL{}, &InvalidURLError{Input: s, Reason: "missing host"}
	}

	return *parsed, nil
}

// ResolveRelative resolves href against base and validates the result.
func ResolveRelative(href string, base url.URL) (url.URL, error) {
	lower := strings.ToLower(href)
	for _, scheme := range maliciousSchemes {
		if strings.Contains(lower, scheme) {
			return url.URL{}, &InvalidURLError{Input: href, Reason: "disallowed scheme " + scheme}
		}
	}

	parsedHref, err := url.Parse(href)
	if err != nil {
		return url.URL{}, &InvalidURLError{Input: href, Reason: err.Error()}
	}

	resolved := base.ResolveReference(parsedHref)
	return ValidateAbsolute(resolved.String())
}

// NormalizeKey reduces u to scheme://host+path with the host lowercased,
// trailing slash stripped (unless path is exactly "/"), and fragment and
// query dropped. Two URLs differing only in trailing slash, fragment, or
// query map to the same key.
func NormalizeKey(u url.URL) string {
	host := strings.ToLower(u.Host)
	path := u.Path
	if path == "" {
		path = "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return fmt.Sprintf("%s://%s%s", strings.ToLower(u.Scheme), host, path)
}

// SanitizeLinks resolves every href against base, drops unparseable or
// disallowed-scheme results, and deduplicates by NormalizeKey while
// preserving the first-seen absolute form and document order.
func SanitizeLinks(hrefs []string, base url.URL) []url.URL {
	seen := make(map[string]struct{}, len(hrefs))
	out := make([]url.URL, 0, len(hrefs))

	for _, href := range hrefs {
		resolved, err := ResolveRelative(href, base)
		if err != nil {
			continue
		}
		key := NormalizeKey(resolved)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, resolved)
	}

	return out
}
