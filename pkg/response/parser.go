package response

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExtractJSON locates the first balanced-looking JSON object in raw
// model output, tolerating prose before and after it. A greedy match
// from the first '{' to the last '}' is sufficient for single-object
// replies. When no braces are found, the trimmed text is returned so
// the decoder can have the final word.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// Parse decodes raw model text into a Response. An error return means
// "no result": the caller must substitute Fallback. Parse never panics
// and never partially populates state.
func Parse(text string) (*Response, error) {
	payload := ExtractJSON(text)
	if !strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var r Response
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}
	return &r, nil
}

// Fallback builds the fixed substitute response used when the model's
// output can't be parsed: time passes, nothing else changes, and the
// narration acknowledges the player's input.
func Fallback(playerAction string) *Response {
	return &Response{
		Narration: fmt.Sprintf("You attempt to %s. The world shimmers mysteriously as reality adjusts.", playerAction),
		Speeches:  []Speech{},
		Effect:    NewEffect(),
		SuggestedOptions: []string{
			"Look around",
			"Try something else",
			"Wait and observe",
		},
		Timestamp: time.Now(),
	}
}
