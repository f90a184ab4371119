package triage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/taxonomy"
)

var (
	durationRe = regexp.MustCompile(`(?i)\b((?:a|an|one|two|three|four|five|six|several|few|\d+)\s+(?:day|week|month|year)s?|since\s+[a-z0-9 ]{2,30}|for\s+(?:a\s+)?(?:long\s+)?(?:while|time)|years?|months?)\b`)
	scoreRe    = regexp.MustCompile(`\b([1-5])\b`)
	unitRe     = regexp.MustCompile(`^(?:day|week|month|year|hour|time)s?\b`)
	postalRe   = regexp.MustCompile(`\b[Ii]n\s+([A-Z]{2})\b`)
)

// severityWords maps descriptive answers onto the 1-5 scale.
var severityWords = []struct {
	word  string
	score int
}{
	{"overwhelming", 5},
	{"unbearable", 5},
	{"extreme", 5},
	{"severe", 4},
	{"very bad", 4},
	{"moderate", 3},
	{"noticeable", 2},
	{"mild", 1},
	{"manageable", 1},
}

// usStates maps state names onto postal codes used as catalog region codes.
var usStates = map[string]string{
	"alabama": "al", "alaska": "ak", "arizona": "az", "arkansas": "ar", "california": "ca",
	"colorado": "co", "connecticut": "ct", "delaware": "de", "florida": "fl", "georgia": "ga",
	"hawaii": "hi", "idaho": "id", "illinois": "il", "indiana": "in", "iowa": "ia",
	"kansas": "ks", "kentucky": "ky", "louisiana": "la", "maine": "me", "maryland": "md",
	"massachusetts": "ma", "michigan": "mi", "minnesota": "mn", "mississippi": "ms", "missouri": "mo",
	"montana": "mt", "nebraska": "ne", "nevada": "nv", "new hampshire": "nh", "new jersey": "nj",
	"new mexico": "nm", "new york": "ny", "north carolina": "nc", "north dakota": "nd", "ohio": "oh",
	"oklahoma": "ok", "oregon": "or", "pennsylvania": "pa", "rhode island": "ri", "south carolina": "sc",
	"south dakota": "sd", "tennessee": "tn", "texas": "tx", "utah": "ut", "vermont": "vt",
	"virginia": "va", "washington": "wa", "west virginia": "wv", "wisconsin": "wi", "wyoming": "wy",
}

// capture records the answer to the question asked at step.
func capture(step models.Step, req Request, a *models.Answers, tax *taxonomy.Taxonomy) {
	text := strings.TrimSpace(req.UserMessage)
	if c := matchCategory(req.Category, tax); c != "" {
		a.Category = c
	}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		a.Location = strings.ToLower(loc)
	}

	switch step {
	case models.StepCategory:
		if a.Category == "" {
			a.Category = matchCategory(text, tax)
		}
	case models.StepSymptoms:
		a.Symptoms = captureSymptoms(req.Symptoms, text, tax)
		if a.Category == "" && len(a.Symptoms) > 0 {
			a.Category = tax.CategoryOf(a.Symptoms[0])
		}
	case models.StepSeverity:
		if score := parseScore(text); score > 0 {
			a.SeverityScore = score
		}
	case models.StepContext:
		if text != "" {
			a.CareContext = truncate(text, 500)
		}
		if loc := matchState(text); loc != "" && a.Location == "" {
			a.Location = loc
		}
	}
	if a.Duration == "" {
		if d := durationRe.FindString(text); d != "" {
			a.Duration = strings.ToLower(d)
		}
	}
	if len(req.Symptoms) > 0 && len(a.Symptoms) == 0 {
		a.Symptoms = captureSymptoms(req.Symptoms, "", tax)
	}
}

// matchCategory resolves a key, label or synonym onto a category key.
func matchCategory(s string, tax *taxonomy.Taxonomy) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	for _, k := range tax.Keys(taxonomy.KindCategory) {
		e, _ := tax.Lookup(k)
		if s == k || s == strings.ToLower(e.Label) {
			return k
		}
	}
	for _, k := range tax.Keys(taxonomy.KindCategory) {
		e, _ := tax.Lookup(k)
		if strings.Contains(s, strings.ReplaceAll(k, "-", " ")) || strings.Contains(s, strings.ToLower(e.Label)) {
			return k
		}
		for _, syn := range e.Synonyms {
			if strings.Contains(s, syn) {
				return k
			}
		}
	}
	return ""
}

// captureSymptoms merges explicit keys with taxonomy matches in the text.
// Free text without any match is kept as up to five literal terms.
func captureSymptoms(explicit []string, text string, tax *taxonomy.Taxonomy) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range explicit {
		if key := labelToKey(s, tax); key != "" {
			add(key)
		} else {
			add(s)
		}
	}
	for _, k := range tax.Match(text) {
		add(k)
	}
	if len(out) == 0 && text != "" {
		for _, part := range strings.Split(text, ",") {
			if len(out) == 5 {
				break
			}
			add(truncate(part, 60))
		}
	}
	return out
}

// labelToKey maps a symptom key or display label onto its key.
func labelToKey(s string, tax *taxonomy.Taxonomy) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range tax.Keys(taxonomy.KindSymptom) {
		e, _ := tax.Lookup(k)
		if s == k || s == strings.ToLower(e.Label) {
			return k
		}
	}
	return ""
}

// parseScore reads a 1-5 rating from a digit or a descriptive word.
func parseScore(text string) int {
	lower := strings.ToLower(text)
	for _, loc := range scoreRe.FindAllStringSubmatchIndex(lower, -1) {
		// "3 months" is a duration, not a rating.
		if unitRe.MatchString(strings.TrimSpace(lower[loc[1]:])) {
			continue
		}
		n, _ := strconv.Atoi(lower[loc[2]:loc[3]])
		return n
	}
	for _, w := range severityWords {
		if strings.Contains(lower, w.word) {
			return w.score
		}
	}
	return 0
}

// matchState finds a U.S. state name, or a postal code written as "in TX".
func matchState(text string) string {
	lower := strings.ToLower(text)
	best := ""
	for name := range usStates {
		if strings.Contains(lower, name) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return usStates[best]
	}
	if m := postalRe.FindStringSubmatch(text); m != nil {
		code := strings.ToLower(m[1])
		for _, c := range usStates {
			if c == code {
				return code
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
