package types

// Defaults applied by the validator when optional fields are absent.
const (
	DefaultAudience   = "general audience"
	DefaultStyle      = "neutral and engaging"
	DefaultGuidelines = "none"
	DefaultTone       = "professional"
)

// ContentRequest is the validated, normalized input to generation. It is built
// once per call and never mutated afterwards; the cache key is derived from its
// JSON encoding, so field order here is part of the key format.
type ContentRequest struct {
	Kind        Kind         `json:"kind"`
	Topic       string       `json:"topic"`
	Audience    string       `json:"audience"`
	Style       string       `json:"style"`
	Guidelines  string       `json:"guidelines"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Preferences are optional per-platform and tone hints from the UI.
type Preferences struct {
	Platforms         map[string]bool `json:"platforms,omitempty"`
	TonePreference    string          `json:"tonePreference,omitempty"`
	ContentLength     string          `json:"contentLength,omitempty"`
	HashtagPreference string          `json:"hashtagPreference,omitempty"`
}

// Empty reports whether no preference was supplied at all.
func (p *Preferences) Empty() bool {
	return p == nil || (len(p.Platforms) == 0 && p.TonePreference == "" &&
		p.ContentLength == "" && p.HashtagPreference == "")
}

// ImageRequest asks for a single generated image.
type ImageRequest struct {
	Prompt string `json:"prompt"`
}

// NewsletterRequest is the long-form brief used by the newsletter template.
type NewsletterRequest struct {
	Topic      string     `json:"topic"`
	Audience   string     `json:"audience"`
	Style      string     `json:"style"`
	Tone       string     `json:"tone"`
	Length     LengthTier `json:"length"`
	Guidelines string     `json:"guidelines"`
}
