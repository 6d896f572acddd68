// Package validate checks raw request bodies against the endpoint schemas,
// reports every violation at once, and applies defaults.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/af-corp/content-assistant/internal/types"
)

// Violation is one failed constraint.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a request body.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Fields lists the offending field names in report order.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Field
	}
	return out
}

// Details converts the violations into the response envelope's detail list.
func (e *ValidationError) Details() []any {
	out := make([]any, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v
	}
	return out
}

var rules = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank rejects strings that are empty after trimming.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

type contentInput struct {
	Kind        string           `json:"kind" validate:"required,oneof=post thread poll"`
	Topic       string           `json:"topic" validate:"notblank,max=500"`
	Audience    string           `json:"audience" validate:"max=1000"`
	Style       string           `json:"style" validate:"max=1000"`
	Guidelines  string           `json:"guidelines" validate:"max=1000"`
	Preferences *preferenceInput `json:"preferences" validate:"omitempty"`
}

type preferenceInput struct {
	Platforms         map[string]bool `json:"platforms" validate:"max=50"`
	TonePreference    string          `json:"tonePreference" validate:"max=1000"`
	ContentLength     string          `json:"contentLength" validate:"max=1000"`
	HashtagPreference string          `json:"hashtagPreference" validate:"max=1000"`
}

type pollInput struct {
	Topic      string `json:"topic" validate:"notblank,max=500"`
	Audience   string `json:"audience" validate:"max=1000"`
	Style      string `json:"style" validate:"max=1000"`
	Guidelines string `json:"guidelines" validate:"max=1000"`
}

type imageInput struct {
	Prompt string `json:"prompt" validate:"notblank,max=1000"`
}

type newsletterInput struct {
	Topic      string `json:"topic" validate:"notblank,max=500"`
	Audience   string `json:"audience" validate:"max=1000"`
	Style      string `json:"style" validate:"max=1000"`
	Tone       string `json:"tone" validate:"max=1000"`
	Length     string `json:"length" validate:"omitempty,oneof=short medium long"`
	Guidelines string `json:"guidelines" validate:"max=1000"`
}

var (
	preferenceSchema = schema{
		"platforms":         {typ: jsonBoolMap},
		"tonePreference":    {typ: jsonString},
		"contentLength":     {typ: jsonString},
		"hashtagPreference": {typ: jsonString},
	}
	contentSchema = schema{
		"kind":        {typ: jsonString},
		"topic":       {typ: jsonString},
		"audience":    {typ: jsonString},
		"style":       {typ: jsonString},
		"guidelines":  {typ: jsonString},
		"preferences": {typ: jsonObject, nested: preferenceSchema},
	}
	pollSchema = schema{
		"topic":      {typ: jsonString},
		"audience":   {typ: jsonString},
		"style":      {typ: jsonString},
		"guidelines": {typ: jsonString},
	}
	imageSchema = schema{
		"prompt": {typ: jsonString},
	}
	newsletterSchema = schema{
		"topic":      {typ: jsonString},
		"audience":   {typ: jsonString},
		"style":      {typ: jsonString},
		"tone":       {typ: jsonString},
		"length":     {typ: jsonString},
		"guidelines": {typ: jsonString},
	}
)

// ValidateContent validates a /api/generate body and returns the normalized
// request with defaults applied.
func ValidateContent(body []byte) (types.ContentRequest, error) {
	var in contentInput
	if err := check(body, contentSchema, &in); err != nil {
		return types.ContentRequest{}, err
	}

	req := types.ContentRequest{
		Kind:       types.Kind(in.Kind),
		Topic:      strings.TrimSpace(in.Topic),
		Audience:   orDefault(in.Audience, types.DefaultAudience),
		Style:      orDefault(in.Style, types.DefaultStyle),
		Guidelines: orDefault(in.Guidelines, types.DefaultGuidelines),
	}
	if in.Preferences != nil {
		p := &types.Preferences{
			TonePreference:    strings.TrimSpace(in.Preferences.TonePreference),
			ContentLength:     strings.TrimSpace(in.Preferences.ContentLength),
			HashtagPreference: strings.TrimSpace(in.Preferences.HashtagPreference),
		}
		if len(in.Preferences.Platforms) > 0 {
			p.Platforms = in.Preferences.Platforms
		}
		if !p.Empty() {
			req.Preferences = p
		}
	}
	return req, nil
}

// ValidatePoll validates a /api/generate-poll body. The result is a poll
// ContentRequest so polls share the content cache key space.
func ValidatePoll(body []byte) (types.ContentRequest, error) {
	var in pollInput
	if err := check(body, pollSchema, &in); err != nil {
		return types.ContentRequest{}, err
	}
	return types.ContentRequest{
		Kind:       types.KindPoll,
		Topic:      strings.TrimSpace(in.Topic),
		Audience:   orDefault(in.Audience, types.DefaultAudience),
		Style:      orDefault(in.Style, types.DefaultStyle),
		Guidelines: orDefault(in.Guidelines, types.DefaultGuidelines),
	}, nil
}

// ValidateImage validates a /api/generate-image body.
func ValidateImage(body []byte) (types.ImageRequest, error) {
	var in imageInput
	if err := check(body, imageSchema, &in); err != nil {
		return types.ImageRequest{}, err
	}
	return types.ImageRequest{Prompt: strings.TrimSpace(in.Prompt)}, nil
}

// ValidateNewsletter validates a /api/generate-newsletter body.
func ValidateNewsletter(body []byte) (types.NewsletterRequest, error) {
	var in newsletterInput
	if err := check(body, newsletterSchema, &in); err != nil {
		return types.NewsletterRequest{}, err
	}
	length := types.LengthTier(in.Length)
	if length == "" {
		length = types.LengthMedium
	}
	return types.NewsletterRequest{
		Topic:      strings.TrimSpace(in.Topic),
		Audience:   orDefault(in.Audience, types.DefaultAudience),
		Style:      orDefault(in.Style, types.DefaultStyle),
		Tone:       orDefault(in.Tone, types.DefaultTone),
		Length:     length,
		Guidelines: orDefault(in.Guidelines, types.DefaultGuidelines),
	}, nil
}

// check runs the JSON shape pass and then the struct rules, and returns a
// *ValidationError listing everything that failed.
func check(body []byte, s schema, dst any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return &ValidationError{Violations: []Violation{{
			Field:   "body",
			Rule:    "json",
			Message: "must be a JSON object",
		}}}
	}

	violations := s.check("", raw)

	// Mistyped fields are skipped by Unmarshal and already reported above.
	_ = json.Unmarshal(body, dst)

	reported := make(map[string]bool, len(violations))
	for _, v := range violations {
		reported[v.Field] = true
	}

	if err := rules.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate request: %w", err)
		}
		for _, fe := range verrs {
			field := fieldPath(fe)
			if reported[field] || reported[topLevel(field)] {
				continue
			}
			reported[field] = true
			violations = append(violations, Violation{
				Field:   field,
				Rule:    fe.Tag(),
				Message: message(fe),
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// fieldPath drops the root struct name from the namespace: "contentInput.topic"
// becomes "topic".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func topLevel(field string) string {
	head, _, _ := strings.Cut(field, ".")
	return head
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "max":
		if fe.Kind() == reflect.Map {
			return "must have at most " + fe.Param() + " entries"
		}
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

type jsonType int

const (
	jsonString jsonType = iota
	jsonObject
	jsonBoolMap
)

type field struct {
	typ    jsonType
	nested schema
}

// schema describes the JSON type of every accepted field. Keys it does not
// list are ignored.
type schema map[string]field

func (s schema) check(prefix string, raw map[string]json.RawMessage) []Violation {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Violation
	for _, k := range keys {
		name := prefix + k
		f, ok := s[k]
		if !ok {
			// Unknown keys are dropped, never reported.
			continue
		}
		value := bytes.TrimSpace(raw[k])
		if bytes.Equal(value, []byte("null")) {
			continue
		}
		switch f.typ {
		case jsonString:
			if len(value) == 0 || value[0] != '"' {
				out = append(out, Violation{Field: name, Rule: "type", Message: "must be a string"})
			}
		case jsonBoolMap:
			var m map[string]bool
			if err := json.Unmarshal(value, &m); err != nil {
				out = append(out, Violation{Field: name, Rule: "type", Message: "must be an object of booleans"})
			}
		case jsonObject:
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(value, &nested); err != nil {
				out = append(out, Violation{Field: name, Rule: "type", Message: "must be an object"})
				continue
			}
			out = append(out, f.nested.check(name+".", nested)...)
		}
	}
	return out
}
