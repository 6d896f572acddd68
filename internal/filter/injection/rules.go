package injection

import "regexp"

// Rule categories.
const (
	CategoryInstructionBypass = "instruction_bypass"
	CategoryRoleOverride      = "role_override"
	CategoryEncodingTrick     = "encoding_trick"
	CategoryOutputSteering    = "output_steering"
	CategoryPromptLeak        = "prompt_leak"
)

// Rule defines a prompt injection detection pattern.
type Rule struct {
	Name     string
	Regex    *regexp.Regexp
	Severity float64 // 0.0 to 1.0
	Category string
}

// DefaultRules returns the built-in rules. They target text a user types into
// a content brief (topic, audience, style, guidelines), which is embedded
// verbatim into the upstream prompt.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "ignore_previous",
			Regex:    regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions|directions|rules)`),
			Severity: 0.95,
			Category: CategoryInstructionBypass,
		},
		{
			Name:     "disregard_prior",
			Regex:    regexp.MustCompile(`(?i)(disregard|forget)\s+(all\s+)?(prior|previous|above)\s+(instructions|context|rules)`),
			Severity: 0.95,
			Category: CategoryInstructionBypass,
		},
		{
			Name:     "reveal_system_prompt",
			Regex:    regexp.MustCompile(`(?i)(reveal|print|repeat|show|output)\s+(me\s+)?(your\s+|the\s+)?(system\s+prompt|system\s+instructions?|hidden\s+instructions?)`),
			Severity: 0.9,
			Category: CategoryPromptLeak,
		},
		// The bare words are ordinary topics; only mode switches and
		// persona assignments count.
		{
			Name:     "jailbreak",
			Regex:    regexp.MustCompile(`(?i)\b(?:enter|enable|activate|switch\s+to|turn\s+on)\s+(?:DAN|jailbreak|jailbroken|unrestricted)\s+mode\b|\byou\s+are\s+(?:now\s+)?(?:a\s+)?(?:DAN|jailbroken)\b|\byou\s+can\s+do\s+anything\s+now\b`),
			Severity: 0.9,
			Category: CategoryRoleOverride,
		},
		{
			Name:     "code_block_system",
			Regex:    regexp.MustCompile("(?i)```system"),
			Severity: 0.9,
			Category: CategoryRoleOverride,
		},
		{
			// Multi-line fields such as guidelines can smuggle a fake turn on any line.
			Name:     "role_prefix",
			Regex:    regexp.MustCompile(`(?im)^\s*(system|assistant)\s*:\s*`),
			Severity: 0.85,
			Category: CategoryRoleOverride,
		},
		{
			Name:     "developer_mode",
			Regex:    regexp.MustCompile(`(?i)(developer|debug|admin|root)\s+mode\s+(enabled|activated|on)`),
			Severity: 0.85,
			Category: CategoryRoleOverride,
		},
		{
			Name:     "base64_instruction",
			Regex:    regexp.MustCompile(`(?i)(decode|execute|follow)\s+(the\s+)?base64`),
			Severity: 0.85,
			Category: CategoryEncodingTrick,
		},
		{
			Name:     "new_instructions",
			Regex:    regexp.MustCompile(`(?i)(new|updated|revised)\s+instructions?\s*:`),
			Severity: 0.8,
			Category: CategoryInstructionBypass,
		},
		{
			Name:     "format_override",
			Regex:    regexp.MustCompile(`(?i)(do\s+not|don't)\s+(follow|use)\s+the\s+(format|template|numbering)`),
			Severity: 0.75,
			Category: CategoryOutputSteering,
		},
		{
			Name:     "response_prefix",
			Regex:    regexp.MustCompile(`(?i)respond\s+with\s*:\s*(sure|absolutely|of course)`),
			Severity: 0.75,
			Category: CategoryOutputSteering,
		},
		{
			Name:     "you_are_now",
			Regex:    regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|the)\s+`),
			Severity: 0.7,
			Category: CategoryRoleOverride,
		},
	}
}
