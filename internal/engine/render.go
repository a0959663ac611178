package engine

import (
	"fmt"
	"strings"
)

// RenderTimestamped formats a transcript as a markdown document:
// "# Timestamps and Text" with one [MM:SS] line per segment, then "# Full Text".
// Without usable segments only the full-text section is produced.
func RenderTimestamped(segs []Segment, fullText string) string {
	segs = NonEmptySegments(segs)
	if fullText == "" {
		fullText = JoinSegments(segs)
	}

	var sb strings.Builder
	if len(segs) > 0 {
		sb.WriteString("# Timestamps and Text\n\n")
		for i, s := range segs {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "[%s] %s", FormatTimestamp(s.Start), NormalizeText(s.Text))
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString("# Full Text\n\n")
	sb.WriteString(fullText)
	return sb.String()
}

// FormatTimestamp renders seconds as MM:SS; minutes are not wrapped into hours.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
