package labeling

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when the model reply holds no JSON string array
var ErrMalformedResponse = errors.New("model response is not a JSON list of strings")

// BuildPrompt asks for one 1-6 word name per group, returned as a JSON array.
// Each text is flattened onto one line.
func BuildPrompt(groups [][]string) string {
	var b strings.Builder
	b.WriteString("You will be asked to summarize the topics of the following groups of text. ")
	b.WriteString("Please provide a short name for each of the groups between 1-6 words based on the content.\n")
	fmt.Fprintf(&b, "You must return a single JSON formatted list of strings (Array<string>) with the same length as the number of groups. There are %d groups.\n\n", len(groups))
	for i, texts := range groups {
		fmt.Fprintf(&b, "Group %d:\n", i+1)
		for j, text := range texts {
			fmt.Fprintf(&b, "Feedback %d: %s\n", j+1, cleanText(text))
		}
		b.WriteString("\n")
	}
	b.WriteString("JSON Response:")
	return b.String()
}

// ParseLabels extracts the JSON string array from a model reply. Text before the
// first '[' and after the last ']' is ignored.
func ParseLabels(content string) ([]string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no array found", ErrMalformedResponse)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// Non-string entries become empty labels and fall back to the placeholder.
	labels := make([]string, len(raw))
	for i, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			labels[i] = strings.TrimSpace(s)
		}
	}
	return labels, nil
}
