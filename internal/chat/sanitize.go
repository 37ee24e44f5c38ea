package chat

// sanitize.go cleans model output before it reaches the browser. The model
// is asked to answer in HTML, so the raw text is treated as untrusted markup:
// everything outside a small allow-list is stripped, and every surviving
// anchor is forced to open in a new tab with rel="noopener noreferrer"
// regardless of what the model emitted.

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sanitizer is safe for concurrent use and should be built once.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the allow-list policy for chat replies: links,
// paragraphs, emphasis, lists, headings h1-h4 and blockquotes. Scripts,
// styles, images and all event-handler attributes are removed.
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "ul", "ol", "li",
		"h1", "h2", "h3", "h4", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	return &Sanitizer{policy: p}
}

// Sanitize strips disallowed markup from raw model output and normalizes
// anchor attributes. The input is never trusted, including href values.
func (s *Sanitizer) Sanitize(raw string) string {
	cleaned := s.policy.Sanitize(raw)
	out, err := forceAnchorAttrs(cleaned)
	if err != nil {
		// The fragment parser is lenient; an error here means something
		// deeply malformed. The policy-cleaned text is still safe to serve.
		return cleaned
	}
	return out
}

// forceAnchorAttrs rewrites every <a> in the fragment to carry exactly
// target="_blank" and rel="noopener noreferrer".
func forceAnchorAttrs(fragment string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		rewriteAnchors(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteAnchors(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			if a.Key == "target" || a.Key == "rel" {
				continue
			}
			attrs = append(attrs, a)
		}
		attrs = append(attrs,
			html.Attribute{Key: "target", Val: "_blank"},
			html.Attribute{Key: "rel", Val: "noopener noreferrer"},
		)
		n.Attr = attrs
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteAnchors(c)
	}
}
