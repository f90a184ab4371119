package assess

import (
	"encoding/json"
	"strings"

	"github.com/starford/vetbridge/internal/crisis"
	"github.com/starford/vetbridge/internal/metrics"
	"github.com/starford/vetbridge/internal/models"
)

// Entry is one resource suggested by the collaborator.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Reason      string `json:"reason"`
	Contact     string `json:"contact"`
}

// Assessment is the structured payload requested at the assess step.
type Assessment struct {
	Severity        string             `json:"severity"`
	Summary         string             `json:"summary"`
	NextSteps       []string           `json:"nextSteps"`
	Recommendations map[string][]Entry `json:"recommendations"`
}

// Result is either a parsed assessment or the raw text it was not
// extractable from. Exactly one of Parsed and Raw is meaningful.
type Result struct {
	Parsed *Assessment
	Raw    string
}

// OK reports whether the payload parsed.
func (r Result) OK() bool {
	return r.Parsed != nil
}

// Parse extracts and decodes the first JSON object in raw. Anything short of
// a complete, decodable object yields a Raw result.
func Parse(raw string) Result {
	obj, ok := ExtractObject(raw)
	if !ok {
		metrics.RecordAssessmentParse("raw")
		return Result{Raw: strings.TrimSpace(raw)}
	}
	var a Assessment
	if err := json.Unmarshal([]byte(obj), &a); err != nil {
		metrics.RecordAssessmentParse("raw")
		return Result{Raw: strings.TrimSpace(raw)}
	}
	metrics.RecordAssessmentParse("parsed")
	return Result{Parsed: &a}
}

// Fallback messages.
const (
	defaultSummary = "Thank you for sharing. Based on what you told us, here are resources across VA, community and local options that can help."
	rawPreamble    = "Thank you for sharing. Here are some resources that may help."
)

// Outcome is the reconciled assessment.
type Outcome struct {
	Severity    models.Severity
	Message     string
	NextSteps   []string
	Suggestions []models.Recommendation // collaborator entries tagged with their track
	Crisis      bool
}

// Reconcile turns a parse result into an outcome. A crisis tier from the
// collaborator discards its whole payload in favour of the static bundle.
// Unknown tiers are derived from the self-rated score; raw results are
// treated as moderate with the raw text as the message.
func Reconcile(res Result, answers models.Answers) Outcome {
	if !res.OK() {
		msg := rawPreamble
		if res.Raw != "" && !looksLikeJSON(res.Raw) {
			msg = res.Raw
		}
		return Outcome{Severity: models.SeverityModerate, Message: msg}
	}

	a := res.Parsed
	sev := models.ParseSeverity(a.Severity)
	if sev == models.SeverityCrisis {
		b := crisis.NewBundle()
		return Outcome{Severity: models.SeverityCrisis, Message: b.Message, NextSteps: b.NextSteps, Crisis: true}
	}
	if sev == "" {
		sev = models.SeverityFromScore(answers.SeverityScore)
	}

	out := Outcome{Severity: sev, Message: strings.TrimSpace(a.Summary), NextSteps: a.NextSteps}
	if out.Message == "" {
		out.Message = defaultSummary
	}
	for _, track := range models.Tracks {
		for _, e := range a.Recommendations[string(track)] {
			if rec, ok := e.recommendation(track); ok {
				out.Suggestions = append(out.Suggestions, rec)
			}
		}
	}
	return out
}

func (e Entry) recommendation(track models.Track) (models.Recommendation, bool) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return models.Recommendation{}, false
	}
	note := strings.TrimSpace(e.Reason)
	if note == "" {
		note = strings.TrimSpace(e.Description)
	}
	rec := models.Recommendation{
		Title:       name,
		Description: strings.TrimSpace(e.Description),
		Track:       track,
		Priority:    models.ParsePriority(e.Priority),
		Note:        note,
		Source:      models.SourceSuggested,
	}
	if c := strings.TrimSpace(e.Contact); c != "" {
		if strings.HasPrefix(c, "http://") || strings.HasPrefix(c, "https://") {
			rec.Contact = &models.Contact{URL: c}
		} else {
			rec.Contact = &models.Contact{Phone: c}
		}
	}
	return rec, true
}

// looksLikeJSON reports whether raw is a JSON fragment rather than prose.
// Fragments are never shown to the user.
func looksLikeJSON(raw string) bool {
	t := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "```json"))
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSpace(t)
	return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")
}
