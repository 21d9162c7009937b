package labeling

import (
	"strings"
	"unicode"
)

// maxPromptTextRunes bounds a single feedback line in the prompt
const maxPromptTextRunes = 500

// cleanText prepares a record text for a single prompt line: format characters
// such as zero-width spaces are dropped, runs of whitespace (including
// newlines) collapse to one space, and overly long texts are cut.
func cleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, text)
	text = strings.Join(strings.Fields(text), " ")

	if r := []rune(text); len(r) > maxPromptTextRunes {
		text = string(r[:maxPromptTextRunes]) + "..."
	}
	return text
}
