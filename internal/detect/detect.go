// Package detect implements the additive heuristic scoring that decides
// whether a page needs a headless browser to render meaningfully, or
// whether the static fetch already carried enough signal.
//
// Grounded on internal/extractor's goquery-based DOM walking and its
// named-threshold scoring shape (ExtractParam), generalized from
// "extract main content" scoring to "needs-dynamic" scoring.
package detect

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Framework string

const (
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
	FrameworkAngular Framework = "angular"
	FrameworkNextJS  Framework = "nextjs"
	FrameworkNuxt    Framework = "nuxt"
	FrameworkNone    Framework = "none"
)

// dynamicThreshold is the confidence cutoff above which a page is judged
// to need the dynamic fetcher. The orchestrator applies its own,
// configurable detectionThreshold on top of this verdict's Confidence;
// this constant only governs the verdict's own NeedsDynamic flag.
const dynamicThreshold = 0.5

type Metrics struct {
	LinkCount            int
	ScriptCount          int
	TextLength           int
	ScriptToContentRatio float64
}

// Verdict is the outcome of scoring a page's rendered-or-static markup.
type Verdict struct {
	NeedsDynamic bool
	Confidence   float64
	Reason       string
	Framework    Framework
	Metrics      Metrics
}

type fingerprint struct {
	framework Framework
	pattern   *regexp.Regexp
}

var fingerprints = []fingerprint{
	{FrameworkNextJS, regexp.MustCompile(`(?i)__NEXT_DATA__|/_next/static`)},
	{FrameworkNuxt, regexp.MustCompile(`(?i)__NUXT__|/_nuxt/`)},
	{FrameworkReact, regexp.MustCompile(`(?i)data-reactroot|react-dom`)},
	{FrameworkVue, regexp.MustCompile(`(?i)data-v-app|__VUE__`)},
	{FrameworkAngular, regexp.MustCompile(`(?i)ng-version|\[ng-app\]`)},
}

// Detect scores already-obtained markup and a sanitized link set against
// the additive signal weights. It never fetches anything.
func Detect(markup string, links []string) Verdict {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Verdict{Reason: "unparseable markup", Framework: FrameworkNone}
	}

	textLength := len(strings.TrimSpace(doc.Find("body").Text()))
	scriptCount := doc.Find("script").Length()
	ratio := scriptToContentRatio(scriptCount, textLength)

	metrics := Metrics{
		LinkCount:            len(links),
		ScriptCount:          scriptCount,
		TextLength:           textLength,
		ScriptToContentRatio: ratio,
	}

	framework := matchFramework(markup, doc)

	var confidence float64
	var reasons []string

	if framework != FrameworkNone {
		confidence += 0.4
		reasons = append(reasons, "framework fingerprint matched ("+string(framework)+")")
	}
	if len(links) < 5 {
		confidence += 0.3
		reasons = append(reasons, "fewer than 5 links")
	}
	if ratio > 5 {
		confidence += 0.2
		reasons = append(reasons, "script-to-content ratio above 5")
	}
	if scriptCount > 10 && textLength < 1000 {
		confidence += 0.2
		reasons = append(reasons, "more than 10 script tags with under 1000 chars of visible text")
	}
	if textLength < 500 {
		confidence += 0.1
		reasons = append(reasons, "visible text length under 500 chars")
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	reason := "no dynamic-rendering signals found"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}

	return Verdict{
		NeedsDynamic: confidence > dynamicThreshold,
		Confidence:   confidence,
		Reason:       reason,
		Framework:    framework,
		Metrics:      metrics,
	}
}

// scriptToContentRatio is scripts per KB of visible text. A page with
// scripts but no visible text at all is treated as maximally
// script-heavy rather than dividing by zero.
func scriptToContentRatio(scriptCount, textLength int) float64 {
	if textLength == 0 {
		if scriptCount == 0 {
			return 0
		}
		return float64(scriptCount) * 1024
	}
	return float64(scriptCount) / (float64(textLength) / 1024)
}

func matchFramework(rawMarkup string, doc *goquery.Document) Framework {
	if generator, ok := doc.Find(`meta[name="generator"]`).Attr("content"); ok {
		lower := strings.ToLower(generator)
		switch {
		case strings.Contains(lower, "next.js"):
			return FrameworkNextJS
		case strings.Contains(lower, "nuxt"):
			return FrameworkNuxt
		case strings.Contains(lower, "gatsby"):
			return FrameworkReact
		case strings.Contains(lower, "vue"):
			return FrameworkVue
		case strings.Contains(lower, "angular"):
			return FrameworkAngular
		}
	}

	for _, fp := range fingerprints {
		if fp.pattern.MatchString(rawMarkup) {
			return fp.framework
		}
	}
	return FrameworkNone
}
