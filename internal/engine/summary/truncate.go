package summary

// ElisionMarker joins the kept head and tail of a truncated transcript.
const ElisionMarker = "\n...[content in the middle omitted for length]...\n"

// Truncate keeps the first 80% and the last 20% of a maxChars budget
// (counted in runes) when text is longer than maxChars.
func Truncate(text string, maxChars int) string {
	r := []rune(text)
	if maxChars <= 0 || len(r) <= maxChars {
		return text
	}
	head := maxChars * 8 / 10
	tail := maxChars * 2 / 10
	return string(r[:head]) + ElisionMarker + string(r[len(r)-tail:])
}
