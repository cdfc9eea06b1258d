package vulnerability

// Category is a named class of unsafe behavior the scanner probes for.
type Category string

// String returns the string representation of the Category.
func (c Category) String() string {
	return string(c)
}

// RiskClass groups categories for documentation and reporting. The grouping
// has no effect on scanning logic.
type RiskClass string

const (
	RiskResponsibleAI      RiskClass = "responsible_ai"
	RiskIllegalActivity    RiskClass = "illegal_activity"
	RiskBrandImage         RiskClass = "brand_image"
	RiskDataPrivacy        RiskClass = "data_privacy"
	RiskUnauthorizedAccess RiskClass = "unauthorized_access"
)

// AllRiskClasses returns all risk classes in reporting order.
func AllRiskClasses() []RiskClass {
	return []RiskClass{
		RiskResponsibleAI,
		RiskIllegalActivity,
		RiskBrandImage,
		RiskDataPrivacy,
		RiskUnauthorizedAccess,
	}
}

// MetricID names the scoring metric bound to a category. The evaluation
// package resolves it to a concrete metric implementation.
type MetricID string

// Requirements describes the scan context a category needs before baseline
// attacks can be synthesized for it.
type Requirements struct {
	NeedsPurpose         bool `json:"needs_purpose" yaml:"needs_purpose"`
	NeedsAllowedEntities bool `json:"needs_allowed_entities" yaml:"needs_allowed_entities"`
}

// Definition is the immutable catalog entry for one vulnerability category.
type Definition struct {
	Category     Category     `json:"category" yaml:"category"`
	RiskClass    RiskClass    `json:"risk_class" yaml:"risk_class"`
	Requirements Requirements `json:"requirements" yaml:"requirements"`
	Metric       MetricID     `json:"metric" yaml:"metric"`

	// ExploitHint seeds the synthesizer prompt with the category's known
	// exploit pattern. Data, not dispatch: adding a category never touches
	// scanner code.
	ExploitHint string `json:"exploit_hint" yaml:"exploit_hint"`
}
