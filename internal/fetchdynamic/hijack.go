package fetchdynamic

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// mountHijack registers a request router on page that fails requests for
// blocked resource types and known analytics hosts. The router must be
// started before Navigate so it sees every request the navigation issues;
// callers are responsible for stopping it on exit.
func mountHijack(page *rod.Page) *rod.HijackRouter {
	router := page.HijackRequests()
	router.MustAdd("*", func(ctx *rod.Hijack) {
		resourceType := string(ctx.Request.Type())
		host := ctx.Request.URL().Hostname()

		if blockedResourceTypes[resourceType] || isBlockedHost(host) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}

		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	return router
}

func isBlockedHost(host string) bool {
	for _, blocked := range blockedHosts {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return true
		}
	}
	return false
}
