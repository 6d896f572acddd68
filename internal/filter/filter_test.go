package filter

import (
	"context"
	"testing"

	"github.com/af-corp/content-assistant/internal/types"
)

type stubFilter struct {
	name    string
	enabled bool
	action  Action
	called  bool
}

func (s *stubFilter) Name() string  { return s.name }
func (s *stubFilter) Enabled() bool { return s.enabled }
func (s *stubFilter) ScanRequest(context.Context, *Input) Result {
	s.called = true
	return Result{Action: s.action, FilterName: s.name}
}

func TestChain_StopsOnFirstBlock(t *testing.T) {
	first := &stubFilter{name: "a", enabled: true, action: ActionFlag}
	second := &stubFilter{name: "b", enabled: true, action: ActionBlock}
	third := &stubFilter{name: "c", enabled: true, action: ActionPass}

	results, blocked := NewChain(first, second, third).Run(context.Background(), &Input{})

	if blocked == nil || blocked.FilterName != "b" {
		t.Fatalf("expected block from b, got %+v", blocked)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if third.called {
		t.Error("filters after a block must not run")
	}
}

func TestChain_SkipsDisabled(t *testing.T) {
	disabled := &stubFilter{name: "a", enabled: false, action: ActionBlock}
	enabled := &stubFilter{name: "b", enabled: true, action: ActionPass}

	results, blocked := NewChain(disabled, enabled).Run(context.Background(), &Input{})

	if blocked != nil {
		t.Fatalf("disabled filter must not block: %+v", blocked)
	}
	if disabled.called {
		t.Error("disabled filter was called")
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestContentInput(t *testing.T) {
	req := types.ContentRequest{
		Kind:       types.KindPoll,
		Topic:      "AI",
		Audience:   "devs",
		Style:      "fun",
		Guidelines: "none",
		Preferences: &types.Preferences{
			TonePreference: "casual",
		},
	}

	in := ContentInput("/api/generate", req)

	if in.Kind != types.KindPoll || in.Endpoint != "/api/generate" {
		t.Errorf("input = %+v", in)
	}
	if len(in.Fields) != 7 {
		t.Errorf("expected 7 fields, got %d", len(in.Fields))
	}
	if in.TotalLength() != len("AI")+len("devs")+len("fun")+len("none")+len("casual") {
		t.Errorf("total length = %d", in.TotalLength())
	}
}

func TestImageAndNewsletterInput(t *testing.T) {
	img := ImageInput("/api/generate-image", types.ImageRequest{Prompt: "a fox"})
	if len(img.Fields) != 1 || img.Fields[0].Name != "prompt" {
		t.Errorf("image input = %+v", img)
	}

	nl := NewsletterInput("/api/generate-newsletter", types.NewsletterRequest{Topic: "AI", Tone: "warm"})
	if nl.Kind != types.KindNewsletter || len(nl.Fields) != 5 {
		t.Errorf("newsletter input = %+v", nl)
	}
}
