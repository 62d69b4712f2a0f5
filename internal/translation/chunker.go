package translation

import "strings"

// SplitChunks cuts an encoded transcript into chunks no longer than
// budgetChars, without ever splitting inside a bracketed span. Cuts prefer
// boundaries after a span that ends with a sentence terminator; when no
// sentence boundary fits the budget, any span boundary is used. A single
// span longer than the budget stays whole in its own chunk.
func SplitChunks(encoded string, budgetChars int) []string {
	if encoded == "" {
		return nil
	}
	if budgetChars <= 0 || len(encoded) <= budgetChars {
		return []string{encoded}
	}

	spans := splitSpans(encoded)
	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	pending := make([]string, 0, 8)
	pendingLen := 0
	flushPending := func() {
		for _, span := range pending {
			current.WriteString(span)
		}
		pending = pending[:0]
		pendingLen = 0
	}

	for _, span := range spans {
		if current.Len()+pendingLen+len(span) > budgetChars {
			if current.Len() == 0 {
				// No sentence boundary fits: cut at the span boundary instead.
				flushPending()
			}
			flush()
			if pendingLen+len(span) > budgetChars && pendingLen > 0 {
				flushPending()
				flush()
			}
		}
		pending = append(pending, span)
		pendingLen += len(span)
		if endsSentence(span) {
			flushPending()
		}
	}
	flushPending()
	flush()
	return chunks
}

// splitSpans breaks the encoded string into its bracketed spans, keeping the
// brackets attached. Text outside brackets is carried with the preceding span.
func splitSpans(encoded string) []string {
	var spans []string
	start := 0
	depth := 0
	for i, r := range encoded {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				spans = append(spans, encoded[start:i+1])
				start = i + 1
			}
		}
	}
	if start < len(encoded) {
		spans = append(spans, encoded[start:])
	}
	return spans
}

func endsSentence(span string) bool {
	trimmed := strings.TrimRight(span, "] ")
	return strings.HasSuffix(trimmed, ".")
}
