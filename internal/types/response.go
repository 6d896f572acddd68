package types

import "encoding/json"

// GeneratedResult is the structured output returned to the caller and the
// value stored in the cache. Failed results carry only Error and Details.
type GeneratedResult struct {
	Success  bool     `json:"success"`
	Content  string   `json:"content,omitempty"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Usage    *Usage   `json:"usage,omitempty"`
	Error    string   `json:"error,omitempty"`
	Details  []any    `json:"details,omitempty"`
}

// MarshalJSON always emits options when the slice is non-nil, so a poll
// with no parsed options encodes as [] and decodes back to the same shape.
func (r GeneratedResult) MarshalJSON() ([]byte, error) {
	type plain GeneratedResult
	out := struct {
		plain
		Options *[]string `json:"options,omitempty"`
	}{plain: plain(r)}
	if r.Options != nil {
		out.Options = &r.Options
	}
	return json.Marshal(out)
}

// Usage is token accounting echoed from the upstream provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Failure builds the error envelope.
func Failure(message string, details ...any) GeneratedResult {
	return GeneratedResult{Success: false, Error: message, Details: details}
}
