package translation

import "strings"

// Encode joins segment texts into one string with each text wrapped in
// square brackets. The brackets are the only structure the translator is
// asked to preserve, so they carry the segmentation across the round trip.
func Encode(texts []string) string {
	var b strings.Builder
	for _, text := range texts {
		b.WriteByte('[')
		b.WriteString(text)
		b.WriteByte(']')
	}
	return b.String()
}

// Decode splits translated text back into per-segment strings. Every maximal
// run of characters that is not a bracket becomes one segment, so stray or
// unbalanced brackets degrade into extra segments instead of failing.
func Decode(encoded string) []string {
	var (
		segments []string
		current  strings.Builder
	)
	for _, r := range encoded {
		if r == '[' || r == ']' {
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}
