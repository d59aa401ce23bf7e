package fetchdynamic

import (
	"time"

	"github.com/go-rod/rod"
)

const (
	scrollStepPx  = 100
	scrollCadence = 100 * time.Millisecond
	scrollSettle  = time.Second
)

// autoScroll scrolls the page in small increments to trigger lazy-loaded
// content, stopping once the viewport reaches the bottom of the body or
// maxScrolls is reached, then idles to let the last batch of content
// settle.
func autoScroll(p *rod.Page, maxScrolls int) {
	for i := 0; i < maxScrolls; i++ {
		height := evalNumberOrZero(p, `() => document.body.scrollHeight`)
		covered := evalNumberOrZero(p, `() => window.scrollY + window.innerHeight`)
		if height > 0 && covered >= height {
			break
		}

		_, _ = p.Eval(`(step) => window.scrollBy(0, step)`, scrollStepPx)
		time.Sleep(scrollCadence)
	}

	time.Sleep(scrollSettle)
}

func evalNumberOrZero(p *rod.Page, js string) float64 {
	res, err := p.Eval(js)
	if err != nil {
		return 0
	}
	return res.Value.Num()
}
