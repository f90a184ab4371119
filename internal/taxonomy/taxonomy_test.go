package taxonomy

import (
	"reflect"
	"testing"
)

func TestExpand_KnownKey(t *testing.T) {
	terms, ok := Default().Expand("ptsd")
	if !ok {
		t.Fatal("ptsd should be a known key")
	}
	if terms[0] != "ptsd" {
		t.Errorf("first term = %q, want ptsd", terms[0])
	}
	found := false
	for _, s := range terms {
		if s == "trauma" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected trauma among %v", terms)
	}
}

func TestExpand_Idempotent(t *testing.T) {
	tax := Default()
	a, _ := tax.Expand("ptsd")
	a[0] = "mutated"
	b, _ := tax.Expand("PTSD ")
	c, _ := tax.Expand("ptsd")
	if !reflect.DeepEqual(b, c) {
		t.Fatalf("expansions differ: %v vs %v", b, c)
	}
	if b[0] != "ptsd" {
		t.Errorf("caller mutation leaked into table: %v", b)
	}
}

func TestExpand_UnknownKey(t *testing.T) {
	terms, ok := Default().Expand("Vertigo")
	if ok {
		t.Error("unknown key reported as known")
	}
	if !reflect.DeepEqual(terms, []string{"vertigo"}) {
		t.Errorf("terms = %v, want [vertigo]", terms)
	}
	if terms, _ := Default().Expand("  "); terms != nil {
		t.Errorf("blank key expanded to %v", terms)
	}
}

func TestCategoryOf(t *testing.T) {
	tax := Default()
	tests := map[string]string{
		"ptsd":          CategoryMentalHealth,
		"tbi":           CategoryMedical,
		"mental-health": CategoryMentalHealth,
		"nope":          "",
	}
	for key, want := range tests {
		if got := tax.CategoryOf(key); got != want {
			t.Errorf("CategoryOf(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestKeys_DeclarationOrder(t *testing.T) {
	cats := Default().Keys(KindCategory)
	if len(cats) == 0 || cats[0] != CategoryMentalHealth {
		t.Fatalf("categories = %v", cats)
	}
	for _, k := range Default().Keys(KindSymptom) {
		if Default().CategoryOf(k) == "" {
			t.Errorf("symptom %q has no category", k)
		}
	}
}

func TestMatch_FreeText(t *testing.T) {
	got := Default().Match("I keep having nightmares and I'm drinking too much")
	want := []string{"ptsd", "substance-use"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match = %v, want %v", got, want)
	}
}

func TestMatch_WordBoundary(t *testing.T) {
	// "pain" must not match inside "painting".
	if got := Default().Match("I enjoy painting"); len(got) != 0 {
		t.Errorf("Match = %v, want none", got)
	}
}

func TestNew_IgnoresDuplicatesAndBlanks(t *testing.T) {
	tax := New([]Entry{
		{Key: "A", Kind: KindSymptom, Synonyms: []string{" X ", ""}},
		{Key: "a", Kind: KindSymptom, Synonyms: []string{"y"}},
		{Key: "", Kind: KindSymptom},
	})
	terms, ok := tax.Expand("a")
	if !ok || !reflect.DeepEqual(terms, []string{"a", "x"}) {
		t.Errorf("Expand(a) = %v, %v", terms, ok)
	}
	if n := len(tax.All()); n != 1 {
		t.Errorf("All() len = %d, want 1", n)
	}
}
