package narrative

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"gridsight/pkg/contracts/domain"
)

var (
	fencedJSONPatterns = []*regexp.Regexp{
		regexp.MustCompile("```json\\s*\\n([\\s\\S]*?)\\n```"),
		regexp.MustCompile("```\\s*\\n([\\s\\S]*?)\\n```"),
	}
	bareObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

	validate = validator.New()
)

// wireNarrative matches the JSON schema the model is asked to produce.
type wireNarrative struct {
	ExecutiveSummary    string   `json:"executiveSummary"`
	CrossColumnPatterns []string `json:"crossColumnPatterns"`
	ActionItems         []string `json:"actionItems"`
	DataQualityConcerns []string `json:"dataQualityConcerns"`
}

// ParseResponse extracts and validates a structured narrative from raw model
// output. It tries a direct JSON parse first, then JSON inside markdown code
// fences, then the first bare object in the text.
func ParseResponse(raw string) (*domain.Narrative, error) {
	var wire wireNarrative
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		extracted, ok := extractJSON(raw)
		if !ok {
			return nil, fmt.Errorf("response contains no parseable JSON")
		}
		if err := json.Unmarshal([]byte(extracted), &wire); err != nil {
			return nil, fmt.Errorf("parse narrative JSON: %w", err)
		}
	}

	n := &domain.Narrative{
		ExecutiveSummary:    wire.ExecutiveSummary,
		CrossColumnPatterns: wire.CrossColumnPatterns,
		ActionItems:         wire.ActionItems,
		DataQualityConcerns: wire.DataQualityConcerns,
	}
	if n.ExecutiveSummary == "" {
		return nil, fmt.Errorf("narrative is missing an executive summary")
	}
	if err := validate.Struct(n); err != nil {
		return nil, fmt.Errorf("narrative failed validation: %w", err)
	}
	return n, nil
}

func extractJSON(text string) (string, bool) {
	for _, pattern := range fencedJSONPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if json.Valid([]byte(m[1])) {
				return m[1], true
			}
		}
	}
	if m := bareObjectPattern.FindString(text); m != "" && json.Valid([]byte(m)) {
		return m, true
	}
	return "", false
}
