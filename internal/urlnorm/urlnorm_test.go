package urlnorm_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/hybridcrawl/internal/urlnorm"
)

func TestValidateAbsolute_RejectsMaliciousSchemes(t *testing.T) {
	cases := []string{
		"javascript:alert(1)",
		"data:text/html,<script>alert(1)</script>",
		"FILE:///etc/passwd",
		"vbscript:msgbox(1)",
		"about:blank",
		"http://example.com/?next=javascript:alert(1)",
	}
	for _, c := range cases {
		_, err := urlnorm.ValidateAbsolute(c)
		assert.Error(t, err, "expected rejection for %q", c)
	}
}

func TestValidateAbsolute_AcceptsHTTPS(t *testing.T) {
	u, err := urlnorm.ValidateAbsolute("https://Example.com/Path?q=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
}

func TestValidateAbsolute_RejectsNonHTTPScheme(t *testing.T) {
	_, err := urlnorm.ValidateAbsolute("ftp://example.com/file")
	assert.Error(t, err)
}

func TestResolveRelative(t *testing.T) {
	base, _ := url.Parse("https://example.com/docs/")
	resolved, err := urlnorm.ResolveRelative("../about", *base)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/about", resolved.String())
}

func TestNormalizeKey_TrailingSlashFragmentQueryIgnored(t *testing.T) {
	a, _ := urlnorm.ValidateAbsolute("https://Example.com/a/")
	b, _ := urlnorm.ValidateAbsolute("https://example.com/a#section")
	c, _ := urlnorm.ValidateAbsolute("https://example.com/a?x=1&y=2")

	keyA := urlnorm.NormalizeKey(a)
	keyB := urlnorm.NormalizeKey(b)
	keyC := urlnorm.NormalizeKey(c)

	assert.Equal(t, keyA, keyB)
	assert.Equal(t, keyA, keyC)
}

func TestNormalizeKey_RootPathKept(t *testing.T) {
	root, _ := urlnorm.ValidateAbsolute("https://example.com/")
	assert.Equal(t, "https://example.com/", urlnorm.NormalizeKey(root))
}

func TestNormalizeKey_QueryPreservedOnURLNotKey(t *testing.T) {
	u, err := urlnorm.ValidateAbsolute("https://example.com/a?x=1")
	require.NoError(t, err)
	assert.Equal(t, "x=1", u.RawQuery)
	assert.NotContains(t, urlnorm.NormalizeKey(u), "x=1")
}

func TestSanitizeLinks_DropsMaliciousAndDedupes(t *testing.T) {
	base, _ := url.Parse("http://example.com/")
	links := []string{"/a", "/b", "mailto:x@y", "/a/", "javascript:alert(1)", "/b?x=1"}

	sanitized := urlnorm.SanitizeLinks(links, *base)

	require.Len(t, sanitized, 2)
	assert.Equal(t, "http://example.com/a", sanitized[0].String())
	assert.Equal(t, "http://example.com/b", sanitized[1].String())
}

func TestSanitizeLinks_AllMaliciousYieldsEmptySet(t *testing.T) {
	base, _ := url.Parse("http://example.com/")
	links := []string{"javascript:void(0)", "mailto:a@b.com", "data:text/plain,x"}

	sanitized := urlnorm.SanitizeLinks(links, *base)
	assert.Empty(t, sanitized)
}
