package injection

import (
	"context"
	"fmt"
	"strings"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/filter"
)

// Detection records a matched injection pattern.
type Detection struct {
	RuleName string
	Severity float64
	Category string
	Field    string
	Start    int
	End      int
}

// Scanner scans text for prompt injection patterns.
type Scanner struct {
	rules []Rule
	cfg   func() config.InjectionFilterConfig
}

// NewScanner creates a prompt injection scanner.
func NewScanner(cfg func() config.InjectionFilterConfig) *Scanner {
	return &Scanner{rules: DefaultRules(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "injection" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// Scan checks a single text string and returns all detections.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, r := range s.rules {
		locs := r.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				RuleName: r.Name,
				Severity: r.Severity,
				Category: r.Category,
				Start:    loc[0],
				End:      loc[1],
			})
		}
	}
	return detections
}

// comboBoost is added to a field's score for each additional rule category
// that matched in the same field.
const comboBoost = 0.05

// ScanFields scans every field and returns all detections and the request
// score: the highest field score, where a field scores its worst match plus
// comboBoost per extra category, capped at 1.
func (s *Scanner) ScanFields(fields []filter.Field) ([]Detection, float64) {
	var allDetections []Detection
	maxScore := 0.0
	for _, f := range fields {
		detections := s.Scan(f.Text)
		for i := range detections {
			detections[i].Field = f.Name
		}
		allDetections = append(allDetections, detections...)
		if score := fieldScore(detections); score > maxScore {
			maxScore = score
		}
	}
	return allDetections, maxScore
}

func fieldScore(detections []Detection) float64 {
	if len(detections) == 0 {
		return 0
	}
	worst := 0.0
	categories := map[string]bool{}
	for _, d := range detections {
		worst = max(worst, d.Severity)
		categories[d.Category] = true
	}
	return min(1.0, worst+comboBoost*float64(len(categories)-1))
}

// ScanRequest implements filter.Filter.
func (s *Scanner) ScanRequest(_ context.Context, in *filter.Input) filter.Result {
	detections, score := s.ScanFields(in.Fields)
	cfg := s.cfg()

	if score >= cfg.BlockThreshold {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: "injection",
			Message:    fmt.Sprintf("Request blocked: prompt injection detected in %s (score %.2f)", strings.Join(detectionFields(detections), ", "), score),
			Detections: len(detections),
			Score:      score,
			Fields:     detectionFields(detections),
		}
	}
	if score >= cfg.FlagThreshold {
		return filter.Result{
			Action:     filter.ActionFlag,
			FilterName: "injection",
			Detections: len(detections),
			Score:      score,
			Fields:     detectionFields(detections),
		}
	}
	return filter.Result{Action: filter.ActionPass, FilterName: "injection", Score: score}
}

func detectionFields(detections []Detection) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range detections {
		if !seen[d.Field] {
			seen[d.Field] = true
			out = append(out, d.Field)
		}
	}
	return out
}
