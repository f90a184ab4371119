package models

import "strings"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one exchanged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Step identifies a triage wizard state.
type Step string

const (
	StepWelcome  Step = "welcome"
	StepCategory Step = "category"
	StepSymptoms Step = "symptoms"
	StepSeverity Step = "severity"
	StepContext  Step = "context"
	StepAssess   Step = "assess"
	StepComplete Step = "complete"
	StepCrisis   Step = "crisis"
)

// ParseStep returns the step named s. ok is false for unknown names.
func ParseStep(s string) (Step, bool) {
	step := Step(strings.ToLower(strings.TrimSpace(s)))
	switch step {
	case StepWelcome, StepCategory, StepSymptoms, StepSeverity, StepContext,
		StepAssess, StepComplete, StepCrisis:
		return step, true
	}
	return StepWelcome, false
}

// Terminal reports whether no further transitions leave the step.
func (s Step) Terminal() bool {
	return s == StepComplete || s == StepCrisis
}

// Severity is the assessed severity tier.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCrisis   Severity = "crisis"
)

// ParseSeverity returns the tier for s, or "" when unrecognised.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow
	case SeverityModerate, "medium":
		return SeverityModerate
	case SeverityHigh, "severe":
		return SeverityHigh
	case SeverityCrisis, "emergency":
		return SeverityCrisis
	}
	return ""
}

// SeverityFromScore maps the wizard's 1-5 self-rating onto a tier.
// Out-of-range scores yield moderate.
func SeverityFromScore(score int) Severity {
	switch {
	case score == 1 || score == 2:
		return SeverityLow
	case score == 4 || score == 5:
		return SeverityHigh
	default:
		return SeverityModerate
	}
}

// Answers holds what the wizard has captured so far.
type Answers struct {
	Category      string   `json:"category,omitempty"`
	Symptoms      []string `json:"symptoms,omitempty"`
	Duration      string   `json:"duration,omitempty"`
	SeverityScore int      `json:"severityScore,omitempty"`
	CareContext   string   `json:"careContext,omitempty"`
	Location      string   `json:"location,omitempty"`
}

// Session is the transient, client-held triage state.
type Session struct {
	ID      string  `json:"id"`
	Step    Step    `json:"step"`
	Answers Answers `json:"answers"`
	Crisis  bool    `json:"crisis"`
}
