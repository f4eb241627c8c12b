// Package markup renders raw post text into the stored HTML form:
// escaped text with greentext spans, URL anchors and >>id quote links.
package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	reQuoteLink = regexp.MustCompile(`&gt;&gt;(\d+)`)
	reURL       = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "span", "br")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	return p
}

// EncodeBody escapes the text and applies board markup. The result is what
// gets persisted; rendering layers serve it as-is.
func EncodeBody(text string) string {
	escaped := html.EscapeString(text)

	lines := strings.Split(escaped, "\n")
	for i, ln := range lines {
		if strings.HasPrefix(ln, "&gt;") && !strings.HasPrefix(ln, "&gt;&gt;") {
			lines[i] = "<span>" + ln + "</span>"
		}
	}
	out := strings.Join(lines, "<br>")

	out = reURL.ReplaceAllString(out, `<a href="$0">$0</a>`)
	out = reQuoteLink.ReplaceAllString(out, `<a href="#p$1">&gt;&gt;$1</a>`)

	return policy.Sanitize(out)
}

// EncodeSubject is EncodeBody wrapped in bold, matching thread titles.
func EncodeSubject(subject string) string {
	return "<b>" + EncodeBody(subject) + "</b>"
}
