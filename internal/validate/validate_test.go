package validate

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/af-corp/content-assistant/internal/types"
)

func TestValidateContent_AppliesDefaults(t *testing.T) {
	req, err := ValidateContent([]byte(`{"kind":"post","topic":"  remote work "}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := types.ContentRequest{
		Kind:       types.KindPost,
		Topic:      "remote work",
		Audience:   types.DefaultAudience,
		Style:      types.DefaultStyle,
		Guidelines: types.DefaultGuidelines,
	}
	if !reflect.DeepEqual(req, want) {
		t.Errorf("got %+v, want %+v", req, want)
	}
}

func TestValidateContent_KeepsSuppliedFields(t *testing.T) {
	body := `{
		"kind": "thread",
		"topic": "AI",
		"audience": "developers",
		"style": "technical",
		"guidelines": "no hype",
		"preferences": {
			"platforms": {"twitter": true, "linkedin": false},
			"tonePreference": "casual"
		}
	}`

	req, err := ValidateContent([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != types.KindThread || req.Audience != "developers" || req.Style != "technical" || req.Guidelines != "no hype" {
		t.Errorf("fields not carried over: %+v", req)
	}
	if req.Preferences == nil {
		t.Fatal("expected preferences")
	}
	if !req.Preferences.Platforms["twitter"] || req.Preferences.Platforms["linkedin"] {
		t.Errorf("platforms = %v", req.Preferences.Platforms)
	}
	if req.Preferences.TonePreference != "casual" {
		t.Errorf("tone = %q", req.Preferences.TonePreference)
	}
}

func TestValidateContent_EmptyPreferencesDropped(t *testing.T) {
	req, err := ValidateContent([]byte(`{"kind":"post","topic":"x","preferences":{"platforms":{}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Preferences != nil {
		t.Errorf("empty preferences should normalize to nil, got %+v", req.Preferences)
	}
}

func TestValidateContent_MissingTopic(t *testing.T) {
	_, err := ValidateContent([]byte(`{"kind":"post"}`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !reflect.DeepEqual(verr.Fields(), []string{"topic"}) {
		t.Errorf("fields = %v, want [topic]", verr.Fields())
	}
}

func TestValidateContent_BlankTopic(t *testing.T) {
	_, err := ValidateContent([]byte(`{"kind":"post","topic":"   "}`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Violations[0].Field != "topic" || verr.Violations[0].Rule != "notblank" {
		t.Errorf("violation = %+v", verr.Violations[0])
	}
}

func TestValidateContent_BadKind(t *testing.T) {
	for _, kind := range []string{"video", "newsletter", "POST", ""} {
		_, err := ValidateContent([]byte(`{"kind":"` + kind + `","topic":"AI"}`))

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("kind %q: expected *ValidationError, got %v", kind, err)
		}
		if verr.Violations[0].Field != "kind" {
			t.Errorf("kind %q: field = %q, want kind", kind, verr.Violations[0].Field)
		}
	}
}

func TestValidateContent_ReportsEveryViolation(t *testing.T) {
	body := `{"kind":"video","audience":42,"extra":"x","preferences":{"platforms":{"twitter":"yes"},"mood":"x"}}`

	_, err := ValidateContent([]byte(body))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	got := map[string]string{}
	for _, v := range verr.Violations {
		got[v.Field] = v.Rule
	}
	want := map[string]string{
		"audience":              "type",
		"preferences.platforms": "type",
		"kind":                  "oneof",
		"topic":                 "notblank",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("violations = %v, want %v", got, want)
	}
}

func TestValidateContent_TooLong(t *testing.T) {
	body := `{"kind":"post","topic":"` + strings.Repeat("a", 501) + `"}`

	_, err := ValidateContent([]byte(body))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Violations[0].Rule != "max" {
		t.Errorf("rule = %q, want max", verr.Violations[0].Rule)
	}
}

func TestValidateContent_NotAnObject(t *testing.T) {
	for _, body := range []string{`[]`, `"post"`, `{bad json`} {
		_, err := ValidateContent([]byte(body))

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected *ValidationError, got %v", body, err)
		}
		if verr.Violations[0].Field != "body" {
			t.Errorf("%s: field = %q, want body", body, verr.Violations[0].Field)
		}
	}
}

func TestValidateContent_NullOptionalFields(t *testing.T) {
	req, err := ValidateContent([]byte(`{"kind":"poll","topic":"x","audience":null,"preferences":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Audience != types.DefaultAudience {
		t.Errorf("audience = %q, want default", req.Audience)
	}
}

func TestValidatePoll(t *testing.T) {
	req, err := ValidatePoll([]byte(`{"topic":"remote work","style":"playful"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != types.KindPoll || req.Style != "playful" || req.Audience != types.DefaultAudience {
		t.Errorf("unexpected request: %+v", req)
	}

	_, err = ValidatePoll([]byte(`{"kind":"poll"}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !reflect.DeepEqual(verr.Fields(), []string{"topic"}) {
		t.Errorf("fields = %v, want [topic]", verr.Fields())
	}
}

func TestValidate_UnknownKeysDropped(t *testing.T) {
	poll, err := ValidatePoll([]byte(`{"topic":"remote work","kind":"poll"}`))
	if err != nil {
		t.Fatalf("poll with extra kind: unexpected error: %v", err)
	}
	if poll.Kind != types.KindPoll {
		t.Errorf("kind = %q, want poll", poll.Kind)
	}

	withExtra, err := ValidateContent([]byte(`{"kind":"post","topic":"remote work","draftId":7,"preferences":{"mood":"x"}}`))
	if err != nil {
		t.Fatalf("content with extra keys: unexpected error: %v", err)
	}
	plain, err := ValidateContent([]byte(`{"kind":"post","topic":"remote work"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(withExtra, plain) {
		t.Errorf("extra keys changed the request: %+v vs %+v", withExtra, plain)
	}
}

func TestValidateImage(t *testing.T) {
	req, err := ValidateImage([]byte(`{"prompt":" a red fox "}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Prompt != "a red fox" {
		t.Errorf("prompt = %q", req.Prompt)
	}

	_, err = ValidateImage([]byte(`{}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Violations[0].Field != "prompt" {
		t.Errorf("field = %q, want prompt", verr.Violations[0].Field)
	}
}

func TestValidateNewsletter(t *testing.T) {
	req, err := ValidateNewsletter([]byte(`{"topic":"AI in healthcare"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Length != types.LengthMedium || req.Tone != types.DefaultTone {
		t.Errorf("defaults not applied: %+v", req)
	}

	req, err = ValidateNewsletter([]byte(`{"topic":"AI","length":"long","tone":"warm"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Length != types.LengthLong || req.Tone != "warm" {
		t.Errorf("fields not carried over: %+v", req)
	}

	_, err = ValidateNewsletter([]byte(`{"topic":"AI","length":"epic"}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Violations[0].Field != "length" {
		t.Errorf("field = %q, want length", verr.Violations[0].Field)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Violations: []Violation{
		{Field: "topic", Rule: "notblank", Message: "is required"},
		{Field: "kind", Rule: "oneof", Message: "must be one of: post, thread, poll"},
	}}

	want := "invalid input: topic: is required; kind: must be one of: post, thread, poll"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if len(err.Details()) != 2 {
		t.Errorf("Details() len = %d, want 2", len(err.Details()))
	}
}
