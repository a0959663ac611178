package engine

import (
	"regexp"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanCaption turns a raw caption line into plain text.
// Timedtext payloads are often double-escaped ("&amp;#39;"), so entities are
// decoded until stable, then tags are stripped and whitespace collapsed.
func CleanCaption(s string) string {
	for range 3 {
		u := html.UnescapeString(s)
		if u == s {
			break
		}
		s = u
	}
	return NormalizeText(htmlTagRe.ReplaceAllString(s, " "))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// Preview returns a short single-line excerpt of s for log attributes.
func Preview(s string) string {
	return TruncateRunes(NormalizeText(s), 80, "...")
}
