package engine

import (
	"html"
	"regexp"
	"strings"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoTranscript/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags, decodes entities, and trims whitespace.
// Caption lines arrive with markup like <i> and double-escaped entities
// (&amp;#39;), so decoding runs after tag removal.
func CleanHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(html.UnescapeString(s))
	return strings.TrimSpace(s)
}
