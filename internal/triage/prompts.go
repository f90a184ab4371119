package triage

import (
	"fmt"
	"strings"

	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/taxonomy"
)

const persona = `You are a warm, plain-spoken intake guide helping a U.S. military veteran find support resources.
You are not a clinician and never diagnose. Keep replies to two or three short sentences and end with exactly one question.`

// stepInstructions tell the collaborator what the next question is about.
var stepInstructions = map[models.Step]string{
	models.StepCategory: "Greet the veteran and ask which area they want help with: mental health, medical care, crisis support, housing, employment, benefits or family.",
	models.StepSymptoms: "Acknowledge their choice and ask what they have been experiencing. Invite them to name symptoms in their own words.",
	models.StepSeverity: "Acknowledge what they shared and ask how long it has been going on and how much it affects daily life on a scale from 1 (mild) to 5 (severe).",
	models.StepContext:  "Ask what kind of help they prefer: VA or other government care, community or peer organisations, or local services near them. Ask for their state if they are comfortable sharing it.",
	models.StepAssess:   "Thank them for sharing and tell them you are putting together resource recommendations now. Do not ask anything else.",
}

// fallbackQuestions are shown when the collaborator is unavailable.
var fallbackQuestions = map[models.Step]string{
	models.StepCategory: "Welcome. I'm here to help you find support that fits. What would you like help with today: mental health, medical care, crisis support, housing, employment, benefits, or family support?",
	models.StepSymptoms: "Thanks for telling me. What have you been experiencing lately? You can describe it in your own words or pick from the options below.",
	models.StepSeverity: "I appreciate you sharing that. How long has this been going on, and on a scale from 1 (mild) to 5 (severe), how much is it affecting your daily life?",
	models.StepContext:  "Do you prefer VA or other government care, community and peer organisations, or local services near you? If you're comfortable, tell me which state you're in.",
	models.StepAssess:   "Thank you. I have what I need and I'm putting together recommendations for you now.",
}

const completeMessage = "Your recommendations are ready above. You can start a new conversation any time if something changes."

const assessInstruction = `Based on the conversation, assess the veteran's situation. Respond with ONE JSON object and nothing else, shaped as:
{"severity":"low|moderate|high|crisis","summary":"two or three supportive sentences",
 "nextSteps":["short action"],
 "recommendations":{"institutional":[{"name":"","description":"","priority":"high|medium|low","reason":"","contact":""}],
 "grassroots":[...],"regional":[...]}}
Give two or three real, well-known resources per track. Use "crisis" only for imminent risk of harm.`

var severityOptions = []string{
	"1 - Mild, manageable",
	"2 - Noticeable",
	"3 - Moderate, affects some days",
	"4 - Severe, affects most days",
	"5 - Overwhelming",
}

var contextOptions = []string{
	"VA or government care",
	"Community or peer organisations",
	"Local services near me",
	"No preference",
}

// suggestions returns quick-reply options for the question asked at step.
func suggestions(step models.Step, answers models.Answers, tax *taxonomy.Taxonomy) []string {
	switch step {
	case models.StepCategory:
		var out []string
		for _, k := range tax.Keys(taxonomy.KindCategory) {
			e, _ := tax.Lookup(k)
			out = append(out, e.Label)
		}
		return out
	case models.StepSymptoms:
		keys := tax.SymptomsIn(answers.Category)
		if len(keys) == 0 {
			keys = tax.Keys(taxonomy.KindSymptom)
		}
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			e, _ := tax.Lookup(k)
			out = append(out, e.Label)
		}
		return out
	case models.StepSeverity:
		return append([]string(nil), severityOptions...)
	case models.StepContext:
		return append([]string(nil), contextOptions...)
	}
	return nil
}

// summarize renders captured answers for the collaborator.
func summarize(a models.Answers) string {
	var b strings.Builder
	b.WriteString("Answers so far:\n")
	if a.Category != "" {
		fmt.Fprintf(&b, "- area: %s\n", a.Category)
	}
	if len(a.Symptoms) > 0 {
		fmt.Fprintf(&b, "- symptoms: %s\n", strings.Join(a.Symptoms, ", "))
	}
	if a.Duration != "" {
		fmt.Fprintf(&b, "- duration: %s\n", a.Duration)
	}
	if a.SeverityScore > 0 {
		fmt.Fprintf(&b, "- self-rated severity: %d of 5\n", a.SeverityScore)
	}
	if a.CareContext != "" {
		fmt.Fprintf(&b, "- preferred help: %s\n", a.CareContext)
	}
	if a.Location != "" {
		fmt.Fprintf(&b, "- location: %s\n", a.Location)
	}
	return b.String()
}
