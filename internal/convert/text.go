package convert

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/encoding/charmap"
)

// DecodeText repairs legacy text: bytes that are not valid UTF-8 are read as
// Windows-1252 (what older Clientexec installs stored), then HTML entities
// are decoded and surrounding blanks trimmed.
func DecodeText(s string) string {
	if !utf8.ValidString(s) {
		if decoded, err := charmap.Windows1252.NewDecoder().String(s); err == nil {
			s = decoded
		}
	}
	return strings.TrimSpace(html.UnescapeString(s))
}

// FullName joins first and last name, skipping empty parts.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(DecodeText(first)+" "+DecodeText(last)), " "))
}

// Sanitizer cleans HTML bodies (ticket replies, KB articles) before they are
// written to the destination.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer allowing common formatting markup
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements("b", "strong", "i", "em", "u", "s", "strike", "del")
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr", "div", "span")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "code", "pre")

	p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")

	p.AllowElements("img")
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")

	p.AllowElements("a")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)

	return &Sanitizer{policy: p}
}

// HTML decodes legacy text and removes unsafe markup.
func (s *Sanitizer) HTML(body string) string {
	if !utf8.ValidString(body) {
		if decoded, err := charmap.Windows1252.NewDecoder().String(body); err == nil {
			body = decoded
		}
	}
	return strings.TrimSpace(s.policy.Sanitize(body))
}

// PlainText strips all markup and decodes entities, for fields that hold
// text only (ticket summaries, titles).
func PlainText(s string) string {
	return DecodeText(bluemonday.StrictPolicy().Sanitize(s))
}
