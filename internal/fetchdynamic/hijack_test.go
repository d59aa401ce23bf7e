package fetchdynamic

import "testing"

func TestIsBlockedHost_ExactAndSubdomainMatch(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"google-analytics.com", true},
		{"www.google-analytics.com", true},
		{"doubleclick.net", true},
		{"example.com", false},
		{"notgoogle-analytics.com", false},
	}
	for _, c := range cases {
		if got := isBlockedHost(c.host); got != c.want {
			t.Errorf("isBlockedHost(%q) = %v, want %v", c.host, got, c.want)
		}
	}
}

func TestBlockedResourceTypes_CoversSpecList(t *testing.T) {
	for _, rt := range []string{"Image", "Stylesheet", "Font", "Media", "WebSocket"} {
		if !blockedResourceTypes[rt] {
			t.Errorf("expected resource type %q to be blocked", rt)
		}
	}
	if blockedResourceTypes["Document"] {
		t.Error("Document resource type must not be blocked")
	}
}
