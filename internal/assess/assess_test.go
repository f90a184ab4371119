package assess

import (
	"testing"

	"github.com/starford/vetbridge/internal/models"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"Sure! Here you go:\n```json\n{\"a\":{\"b\":2}}\n``` hope it helps", `{"a":{"b":2}}`, true},
		{`{"note":"use } and { freely","x":"\"}"}`, `{"note":"use } and { freely","x":"\"}"}`, true},
		{`{"a":1} {"b":2}`, `{"a":1}`, true},
		{`{"truncated": "value`, "", false},
		{"no json here", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractObject(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractObject(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParse_Valid(t *testing.T) {
	raw := `Here is the assessment: {"severity":"high","summary":"Sleep and trauma symptoms.",
		"recommendations":{"institutional":[{"name":"VA PTSD Program","priority":"high","reason":"specialised care"}],
		"grassroots":[{"name":"Team RWB"}],"regional":[]}}`
	res := Parse(raw)
	if !res.OK() {
		t.Fatalf("expected parsed result, raw = %q", res.Raw)
	}
	if res.Parsed.Severity != "high" || len(res.Parsed.Recommendations["institutional"]) != 1 {
		t.Errorf("parsed = %+v", res.Parsed)
	}
}

func TestParse_MalformedIsRaw(t *testing.T) {
	for _, raw := range []string{`{"severity": high}`, `{"severity":"low"`, "I can't produce JSON right now."} {
		res := Parse(raw)
		if res.OK() {
			t.Errorf("Parse(%q) should not parse", raw)
		}
	}
}

func TestReconcile_CrisisTierDiscardsPayload(t *testing.T) {
	res := Parse(`{"severity":"crisis","summary":"ignore me","recommendations":{"grassroots":[{"name":"Random Blog"}]}}`)
	out := Reconcile(res, models.Answers{})
	if !out.Crisis || out.Severity != models.SeverityCrisis {
		t.Fatalf("outcome = %+v", out)
	}
	if len(out.Suggestions) != 0 || out.Message == "ignore me" {
		t.Errorf("collaborator payload leaked: %+v", out)
	}
}

func TestReconcile_UnknownTierFromScore(t *testing.T) {
	tests := map[int]models.Severity{
		1: models.SeverityLow,
		2: models.SeverityLow,
		3: models.SeverityModerate,
		4: models.SeverityHigh,
		5: models.SeverityHigh,
		0: models.SeverityModerate,
	}
	for score, want := range tests {
		out := Reconcile(Parse(`{"severity":"purple"}`), models.Answers{SeverityScore: score})
		if out.Severity != want {
			t.Errorf("score %d: severity = %q, want %q", score, out.Severity, want)
		}
		if out.Message == "" {
			t.Errorf("score %d: empty message", score)
		}
	}
}

func TestReconcile_RawIsModerate(t *testing.T) {
	out := Reconcile(Parse("Please contact your local VA."), models.Answers{SeverityScore: 5})
	if out.Severity != models.SeverityModerate {
		t.Errorf("severity = %q", out.Severity)
	}
	if out.Message != "Please contact your local VA." {
		t.Errorf("message = %q", out.Message)
	}

	out = Reconcile(Parse(`{"severity":"hi`), models.Answers{})
	if out.Message == `{"severity":"hi` {
		t.Error("JSON fragment shown to user")
	}
}

func TestReconcile_SuggestionsTagged(t *testing.T) {
	res := Parse(`{"severity":"moderate","recommendations":{
		"institutional":[{"name":"Vet Center","priority":"HIGH","contact":"877-927-8387"}],
		"grassroots":[{"name":"Give an Hour","description":"Free counseling","contact":"https://giveanhour.org"},{"name":""}],
		"regional":[{"name":"County VSO","reason":"claims help"}]}}`)
	out := Reconcile(res, models.Answers{})
	if len(out.Suggestions) != 3 {
		t.Fatalf("suggestions = %+v", out.Suggestions)
	}
	byTitle := map[string]models.Recommendation{}
	for _, s := range out.Suggestions {
		byTitle[s.Title] = s
		if s.Source != models.SourceSuggested {
			t.Errorf("%s: source = %q", s.Title, s.Source)
		}
	}
	if r := byTitle["Vet Center"]; r.Track != models.TrackInstitutional || r.Priority != models.PriorityHigh || r.Contact.Phone == "" {
		t.Errorf("vet center = %+v", r)
	}
	if r := byTitle["Give an Hour"]; r.Track != models.TrackGrassroots || r.Contact.URL == "" || r.Note != "Free counseling" {
		t.Errorf("give an hour = %+v", r)
	}
	if r := byTitle["County VSO"]; r.Track != models.TrackRegional || r.Note != "claims help" {
		t.Errorf("county vso = %+v", r)
	}
}
