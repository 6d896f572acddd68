// Package prompt renders the upstream prompts. Everything here is pure: the
// same request always yields the same string.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/af-corp/content-assistant/internal/types"
)

const (
	postSystemInstruction = `You are an expert social media copywriter.
Write platform-ready copy that matches the requested audience, style and guidelines.
Respond with the post text only, without commentary.`

	threadSystemInstruction = `You are an expert social media copywriter who writes threads.
Each post in the thread must stand on its own and lead naturally into the next.
Respond with the thread only, one post per paragraph, without commentary.`

	pollSystemInstruction = `You are a social media strategist who designs engaging polls.
Follow the requested output format exactly. Do not add any other text.`

	newsletterSystemInstruction = `You are an experienced newsletter editor.
Write clear, well-structured long-form content that follows the brief exactly.`
)

// SystemInstruction returns the fixed system message for a kind.
func SystemInstruction(kind types.Kind) string {
	switch kind {
	case types.KindThread:
		return threadSystemInstruction
	case types.KindPoll:
		return pollSystemInstruction
	case types.KindNewsletter:
		return newsletterSystemInstruction
	default:
		return postSystemInstruction
	}
}

// Build renders the user prompt for a validated content request.
func Build(kind types.Kind, req types.ContentRequest) string {
	switch kind {
	case types.KindPoll:
		return buildPoll(req)
	case types.KindThread:
		return buildPost("Create a social media thread of 3 to 5 connected posts about", req)
	default:
		return buildPost("Create a social media post about", req)
	}
}

func buildPost(lead string, req types.ContentRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s\n", lead, req.Topic)
	writeCommon(&b, req)

	if !req.Preferences.Empty() {
		p := req.Preferences
		fmt.Fprintf(&b, "Platforms: %s\n", platformsJSON(p.Platforms))
		fmt.Fprintf(&b, "Tone preference: %s\n", orNone(p.TonePreference))
		fmt.Fprintf(&b, "Content length: %s\n", orNone(p.ContentLength))
		fmt.Fprintf(&b, "Hashtag preference: %s\n", orNone(p.HashtagPreference))
	}

	return b.String()
}

func buildPoll(req types.ContentRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create an engaging social media poll about: %s\n", req.Topic)
	writeCommon(&b, req)

	b.WriteString("\nFormat your response as exactly six lines, numbered 1. through 6.:\n")
	b.WriteString("1. The poll question\n")
	b.WriteString("2. First option\n")
	b.WriteString("3. Second option\n")
	b.WriteString("4. Third option\n")
	b.WriteString("5. Fourth option\n")
	b.WriteString("6. One sentence explaining why this poll will drive engagement\n")

	return b.String()
}

func writeCommon(b *strings.Builder, req types.ContentRequest) {
	fmt.Fprintf(b, "Target audience: %s\n", req.Audience)
	fmt.Fprintf(b, "Style: %s\n", req.Style)
	fmt.Fprintf(b, "Guidelines: %s\n", req.Guidelines)
}

// BuildNewsletter renders the long-form newsletter brief.
func BuildNewsletter(req types.NewsletterRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a newsletter issue about: %s\n", req.Topic)
	fmt.Fprintf(&b, "Writing style: %s\n", req.Style)
	fmt.Fprintf(&b, "Target audience: %s\n", req.Audience)
	fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "Length: %s (%s words)\n", req.Length, req.Length.WordTarget())
	fmt.Fprintf(&b, "Guidelines: %s\n", req.Guidelines)

	b.WriteString("\nStructure the issue as follows:\n")
	b.WriteString("1. Headline: a compelling title for the issue\n")
	b.WriteString("2. Hook: an opening paragraph that earns the reader's attention\n")
	b.WriteString("3. Body: two to four sections, each with a subheading\n")
	b.WriteString("4. Key takeaways: three to five bullet points\n")
	b.WriteString("5. Looking ahead: what readers should watch for next\n")
	b.WriteString("6. Call to action: one clear next step for the reader\n")
	fmt.Fprintf(&b, "\nKeep the total length between %s words.\n", req.Length.WordTarget())

	return b.String()
}

// platformsJSON serializes the platform map; encoding/json sorts map keys so
// the output is stable.
func platformsJSON(platforms map[string]bool) string {
	if len(platforms) == 0 {
		return "{}"
	}
	data, err := json.Marshal(platforms)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func orNone(s string) string {
	if s == "" {
		return types.DefaultGuidelines
	}
	return s
}
