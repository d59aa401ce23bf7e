package fetchstatic

import (
	"fmt"
	"net/http"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
)

// classifyTransportErr maps a raw transport-layer error from an HTTP round
// trip onto the closed taxonomy. All the branch logic already lives in
// classify.FromTransportError; this just wraps the result into a
// *classify.Error carrying the original error for logs.
func classifyTransportErr(err error) *classify.Error {
	kind := classify.FromTransportError(err)
	return classify.New(kind, err)
}

func classifyStatus(status int) *classify.Error {
	kind := classify.FromHTTPStatus(status)
	return classify.New(kind, fmt.Errorf("http status %d: %s", status, http.StatusText(status)))
}
