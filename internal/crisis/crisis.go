// Package crisis detects crisis language and supplies the static crisis
// bundle that replaces every other response when it fires.
package crisis

import "strings"

// lexicon is matched as lower-case substrings. It errs on the side of false
// positives. The bare word "crisis" is left out because category names and
// resource titles use it routinely.
var lexicon = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"killing myself",
	"end my life",
	"ending my life",
	"take my own life",
	"want to die",
	"wanna die",
	"self-harm",
	"self harm",
	"hurt myself",
	"hurting myself",
	"cutting myself",
	"overdose",
	"psychosis",
	"psychotic",
	"emergency",
	"homicidal",
	"kill someone",
	"hurt someone",
	"no reason to live",
	"better off dead",
	"in crisis",
}

// Detect reports whether text contains a crisis term.
func Detect(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, term := range lexicon {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// DetectAny reports whether any of texts contains a crisis term.
func DetectAny(texts ...string) bool {
	for _, t := range texts {
		if Detect(t) {
			return true
		}
	}
	return false
}

// Terms returns a copy of the lexicon.
func Terms() []string {
	return append([]string(nil), lexicon...)
}
