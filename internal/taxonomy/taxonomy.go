// Package taxonomy holds the static symptom and category vocabulary used for
// query expansion and tag matching.
package taxonomy

import (
	"sort"
	"strings"
)

// Kind distinguishes symptom keys from category keys.
type Kind string

const (
	KindSymptom  Kind = "symptom"
	KindCategory Kind = "category"
)

// Entry maps a canonical key to its ordered synonym list.
type Entry struct {
	Key      string
	Kind     Kind
	Label    string
	Category string // owning category key, symptoms only
	Synonyms []string
}

// Taxonomy is an immutable lookup table. Safe for concurrent use.
type Taxonomy struct {
	entries map[string]Entry
	order   []string
}

// New builds a taxonomy from entries. Keys are lower-cased; later duplicates
// are ignored.
func New(entries []Entry) *Taxonomy {
	t := &Taxonomy{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key := normalize(e.Key)
		if key == "" {
			continue
		}
		if _, dup := t.entries[key]; dup {
			continue
		}
		e.Key = key
		e.Category = normalize(e.Category)
		syn := make([]string, 0, len(e.Synonyms))
		for _, s := range e.Synonyms {
			if s = normalize(s); s != "" {
				syn = append(syn, s)
			}
		}
		e.Synonyms = syn
		t.entries[key] = e
		t.order = append(t.order, key)
	}
	return t
}

var defaultTaxonomy = New(defaultEntries())

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	return defaultTaxonomy
}

// Lookup returns a copy of the entry for key.
func (t *Taxonomy) Lookup(key string) (Entry, bool) {
	e, ok := t.entries[normalize(key)]
	if !ok {
		return Entry{}, false
	}
	e.Synonyms = append([]string(nil), e.Synonyms...)
	return e, true
}

// Expand returns key followed by its synonyms, deduplicated. Unknown keys
// expand to themselves and ok is false.
func (t *Taxonomy) Expand(key string) (terms []string, ok bool) {
	key = normalize(key)
	if key == "" {
		return nil, false
	}
	e, ok := t.entries[key]
	if !ok {
		return []string{key}, false
	}
	seen := map[string]struct{}{key: {}}
	terms = []string{key}
	for _, s := range e.Synonyms {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		terms = append(terms, s)
	}
	return terms, true
}

// CategoryOf returns the owning category of a symptom key, or the key itself
// when it is a category.
func (t *Taxonomy) CategoryOf(key string) string {
	e, ok := t.entries[normalize(key)]
	if !ok {
		return ""
	}
	if e.Kind == KindCategory {
		return e.Key
	}
	return e.Category
}

// Keys returns all keys of the given kind in declaration order.
func (t *Taxonomy) Keys(kind Kind) []string {
	var out []string
	for _, k := range t.order {
		if t.entries[k].Kind == kind {
			out = append(out, k)
		}
	}
	return out
}

// SymptomsIn returns the symptom keys belonging to category, in declaration
// order.
func (t *Taxonomy) SymptomsIn(category string) []string {
	category = normalize(category)
	var out []string
	for _, k := range t.order {
		e := t.entries[k]
		if e.Kind == KindSymptom && e.Category == category {
			out = append(out, k)
		}
	}
	return out
}

// Match scans free text for symptom keys whose key or synonyms occur in it.
// Results are sorted for stable output.
func (t *Taxonomy) Match(text string) []string {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, k := range t.order {
		e := t.entries[k]
		if e.Kind != KindSymptom {
			continue
		}
		if containsWord(text, strings.ReplaceAll(k, "-", " ")) || containsWord(text, k) {
			out = append(out, k)
			continue
		}
		for _, s := range e.Synonyms {
			if containsWord(text, s) {
				out = append(out, k)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// All returns copies of every entry in declaration order.
func (t *Taxonomy) All() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, k := range t.order {
		e, _ := t.Lookup(k)
		out = append(out, e)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsWord reports whether needle occurs in haystack on word boundaries.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if (start == 0 || !isWordByte(haystack[start-1])) && (end == len(haystack) || !isWordByte(haystack[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
