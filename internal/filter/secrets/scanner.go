package secrets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/filter"
)

// Detection represents a detected secret in text.
type Detection struct {
	PatternName string // e.g. "AWS Access Key"
	Field       string
	Start       int // byte offset
	End         int // byte offset
}

// Scanner scans text for secrets using pre-compiled regex patterns.
type Scanner struct {
	patterns []Pattern
	cfg      func() config.SecretsFilterConfig
}

// NewScanner creates a scanner with the default secret patterns.
func NewScanner(cfg func() config.SecretsFilterConfig) *Scanner {
	return &Scanner{patterns: DefaultPatterns(), cfg: cfg}
}

func (s *Scanner) Name() string { return "secrets" }

func (s *Scanner) Enabled() bool {
	return s.cfg != nil && s.cfg().Enabled
}

// Scan checks a single text string for secrets and returns all detections.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		locs := p.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				PatternName: p.Name,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	return detections
}

// ScanFields scans every field and tags detections with the field name.
func (s *Scanner) ScanFields(fields []filter.Field) []Detection {
	var detections []Detection
	for _, f := range fields {
		for _, d := range s.Scan(f.Text) {
			d.Field = f.Name
			detections = append(detections, d)
		}
	}
	return detections
}

// ScanRequest implements filter.Filter. Any detection blocks: credentials
// must never reach a third-party provider. The message names pattern types
// only, never the matched text.
func (s *Scanner) ScanRequest(_ context.Context, in *filter.Input) filter.Result {
	detections := s.ScanFields(in.Fields)
	if len(detections) == 0 {
		return filter.Result{Action: filter.ActionPass, FilterName: s.Name()}
	}

	patterns := map[string]bool{}
	fields := map[string]bool{}
	for _, d := range detections {
		patterns[d.PatternName] = true
		fields[d.Field] = true
	}

	return filter.Result{
		Action:     filter.ActionBlock,
		FilterName: s.Name(),
		Message:    fmt.Sprintf("Request blocked: possible credentials detected (%s)", strings.Join(sortedKeys(patterns), ", ")),
		Detections: len(detections),
		Fields:     sortedKeys(fields),
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
