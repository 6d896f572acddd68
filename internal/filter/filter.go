// Package filter screens user-supplied request text before it is sent to a
// third-party provider.
package filter

import (
	"context"

	"github.com/af-corp/content-assistant/internal/types"
)

// Action represents the filter decision.
type Action string

const (
	ActionPass  Action = "pass"
	ActionFlag  Action = "flag"
	ActionBlock Action = "block"
)

// Result is returned by each filter.
type Result struct {
	Action     Action
	FilterName string
	Message    string
	Detections int
	Score      float64
	// Fields names the request fields that triggered the result.
	Fields []string
}

// Field is one user-supplied text value.
type Field struct {
	Name string
	Text string
}

// Input is what the filters see of a request.
type Input struct {
	Endpoint string
	Kind     types.Kind
	Fields   []Field
}

// TotalLength is the combined byte length of all fields.
func (in *Input) TotalLength() int {
	n := 0
	for _, f := range in.Fields {
		n += len(f.Text)
	}
	return n
}

// Filter is the interface all content filters implement.
type Filter interface {
	Name() string
	Enabled() bool
	ScanRequest(ctx context.Context, in *Input) Result
}

// Chain runs filters in order, stopping on the first Block.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Run executes all enabled filters in order. Returns all results and a pointer
// to the first blocking result (nil if no filter blocked).
func (c *Chain) Run(ctx context.Context, in *Input) ([]Result, *Result) {
	var results []Result
	for _, f := range c.filters {
		if !f.Enabled() {
			continue
		}
		r := f.ScanRequest(ctx, in)
		results = append(results, r)
		if r.Action == ActionBlock {
			return results, &r
		}
	}
	return results, nil
}

// ContentInput collects the free-text fields of a content request.
func ContentInput(endpoint string, req types.ContentRequest) *Input {
	in := &Input{
		Endpoint: endpoint,
		Kind:     req.Kind,
		Fields: []Field{
			{Name: "topic", Text: req.Topic},
			{Name: "audience", Text: req.Audience},
			{Name: "style", Text: req.Style},
			{Name: "guidelines", Text: req.Guidelines},
		},
	}
	if p := req.Preferences; p != nil {
		in.Fields = append(in.Fields,
			Field{Name: "preferences.tonePreference", Text: p.TonePreference},
			Field{Name: "preferences.contentLength", Text: p.ContentLength},
			Field{Name: "preferences.hashtagPreference", Text: p.HashtagPreference},
		)
	}
	return in
}

// ImageInput wraps an image prompt.
func ImageInput(endpoint string, req types.ImageRequest) *Input {
	return &Input{
		Endpoint: endpoint,
		Kind:     "image",
		Fields:   []Field{{Name: "prompt", Text: req.Prompt}},
	}
}

// NewsletterInput collects the free-text fields of a newsletter brief.
func NewsletterInput(endpoint string, req types.NewsletterRequest) *Input {
	return &Input{
		Endpoint: endpoint,
		Kind:     types.KindNewsletter,
		Fields: []Field{
			{Name: "topic", Text: req.Topic},
			{Name: "audience", Text: req.Audience},
			{Name: "style", Text: req.Style},
			{Name: "tone", Text: req.Tone},
			{Name: "guidelines", Text: req.Guidelines},
		},
	}
}
