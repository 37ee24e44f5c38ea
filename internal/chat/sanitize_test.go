package chat

import (
	"strings"
	"testing"
)

func TestSanitize_StripsScripts(t *testing.T) {
	s := NewSanitizer()
	out := s.Sanitize(`<p>hi</p><script>alert("xss")</script>`)
	if strings.Contains(out, "<script") || strings.Contains(out, "alert") {
		t.Errorf("script survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<p>hi</p>") {
		t.Errorf("allowed paragraph was lost: %q", out)
	}
}

func TestSanitize_StripsDisallowedTagsAndAttrs(t *testing.T) {
	s := NewSanitizer()

	out := s.Sanitize(`<p onclick="evil()">text</p><img src="x"><iframe src="y"></iframe>`)
	for _, banned := range []string{"onclick", "<img", "<iframe"} {
		if strings.Contains(out, banned) {
			t.Errorf("sanitized output still contains %q: %q", banned, out)
		}
	}
	if !strings.Contains(out, "text") {
		t.Errorf("text content was lost: %q", out)
	}
}

func TestSanitize_PreservesAllowedTags(t *testing.T) {
	s := NewSanitizer()
	in := "<h2>Title</h2><ul><li><strong>bold</strong> and <em>italic</em></li></ul><blockquote>q</blockquote>"
	out := s.Sanitize(in)
	for _, tag := range []string{"<h2>", "<ul>", "<li>", "<strong>", "<em>", "<blockquote>"} {
		if !strings.Contains(out, tag) {
			t.Errorf("allowed tag %s missing from output: %q", tag, out)
		}
	}
}

func TestSanitize_ForcesAnchorAttributes(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name string
		in   string
	}{
		{"bare anchor", `<a href="https://example.com/returns">Returns</a>`},
		{"anchor with wrong target", `<a href="https://example.com" target="_self">x</a>`},
		{"anchor with wrong rel", `<a href="https://example.com" rel="nofollow">x</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Sanitize(tt.in)
			if !strings.Contains(out, `target="_blank"`) {
				t.Errorf("missing target=_blank: %q", out)
			}
			if !strings.Contains(out, `rel="noopener noreferrer"`) {
				t.Errorf("missing rel attributes: %q", out)
			}
			if strings.Contains(out, "_self") || strings.Contains(out, "nofollow") {
				t.Errorf("model-supplied attribute survived: %q", out)
			}
		})
	}
}

func TestSanitize_KeepsHref(t *testing.T) {
	s := NewSanitizer()
	out := s.Sanitize(`<a href="https://example.com/returns">Returns</a>`)
	if !strings.Contains(out, `href="https://example.com/returns"`) {
		t.Errorf("href was lost: %q", out)
	}
}

func TestSanitize_PlainTextPassesThrough(t *testing.T) {
	s := NewSanitizer()
	if out := s.Sanitize("just words"); !strings.Contains(out, "just words") {
		t.Errorf("plain text mangled: %q", out)
	}
}
