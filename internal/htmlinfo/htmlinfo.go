// Package htmlinfo extracts page metadata and outbound links from an
// HTML document, shared by the static and dynamic fetch paths.
package htmlinfo

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata mirrors the PageResult.metadata field group.
type Metadata struct {
	Description  string
	Keywords     []string
	Author       string
	OGTitle      string
	OGImage      string
	TwitterCard  string
	Favicon      string
	Language     string
	ContentType  string
}

// Info is everything htmlinfo can derive from a parsed document: the
// page title, its metadata, and the raw (unresolved, unsanitized) set
// of hrefs found on the page. Resolution and sanitization happen in
// urlnorm, one layer up.
type Info struct {
	Title    string
	Metadata Metadata
	RawLinks []string
}

// Parse reads HTML from r and extracts title, metadata, and raw link
// hrefs. contentType is the HTTP response's Content-Type header, which
// this package cannot observe on its own.
func Parse(r io.Reader, contentType string) (Info, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Info{}, err
	}
	return FromDocument(doc, contentType), nil
}

// FromDocument extracts page info from an already-parsed goquery
// document. Parse delegates to it after building the document from r.
func FromDocument(doc *goquery.Document, contentType string) Info {
	info := Info{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Metadata: Metadata{
			ContentType: contentType,
			Language:    strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		},
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}

		switch strings.ToLower(name) {
		case "description":
			info.Metadata.Description = content
		case "keywords":
			info.Metadata.Keywords = splitKeywords(content)
		case "author":
			info.Metadata.Author = content
		case "twitter:card":
			info.Metadata.TwitterCard = content
		}

		switch strings.ToLower(property) {
		case "og:image":
			info.Metadata.OGImage = content
		case "og:title":
			info.Metadata.OGTitle = content
		}
	})

	if favicon, exists := doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().Attr("href"); exists {
		info.Metadata.Favicon = strings.TrimSpace(favicon)
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		info.RawLinks = append(info.RawLinks, href)
	})

	return info
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ResolveFavicon resolves a possibly-relative favicon href against base.
func ResolveFavicon(favicon string, base url.URL) string {
	if favicon == "" {
		return ""
	}
	resolved, err := base.Parse(favicon)
	if err != nil {
		return favicon
	}
	return resolved.String()
}
