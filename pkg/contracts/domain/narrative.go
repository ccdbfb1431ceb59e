package domain

// NarrativeStatus tracks the outcome of the optional narrative step.
type NarrativeStatus string

const (
	NarrativePending   NarrativeStatus = "pending"
	NarrativeCompleted NarrativeStatus = "completed"
	NarrativeFailed    NarrativeStatus = "failed"
	NarrativeSkipped   NarrativeStatus = "skipped"
)

// Narrative is the structured output of the narrative collaborator.
// It enriches, never replaces, the deterministic insights.
type Narrative struct {
	ExecutiveSummary    string   `json:"executive_summary" validate:"max=1000"`
	CrossColumnPatterns []string `json:"cross_column_patterns" validate:"max=3,dive,max=300"`
	ActionItems         []string `json:"action_items" validate:"max=3,dive,max=300"`
	DataQualityConcerns []string `json:"data_quality_concerns" validate:"max=5,dive,max=200"`
}
