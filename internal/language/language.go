package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize validates a language identifier and returns its canonical base
// code ("uk", "de"). BCP 47 tags are accepted; region and script parts are
// dropped.
func Normalize(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("language is required")
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", trimmed, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("unrecognized language %q", trimmed)
	}
	return base.String(), nil
}

// DisplayName returns the English name for a language code, or the uppercased
// input when the code cannot be parsed.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}

// TitleCase renders a lowercase project title for display.
func TitleCase(value string) string {
	return cases.Title(language.English).String(value)
}
