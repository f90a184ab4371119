package parser

import (
	"reflect"
	"testing"
	"time"

	"github.com/starford/vetbridge/internal/models"
)

func TestParse_FullFrontmatter(t *testing.T) {
	input := []byte(`---
id: vcl
title: Veterans Crisis Line
categories: [crisis, mental-health]
tags:
  - Crisis-Line
  - 24/7
org_type: government
org_name: VA
location: National
verified: true
featured: true
rating: 4.9
views: 1200
helpful_count: 300
contact:
  phone: "988"
  url: https://www.veteranscrisisline.net
updated: 2024-03-01T00:00:00Z
---
Confidential support, 24 hours a day. #suicide-prevention
`)
	r, err := Parse("national/vcl.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := r.Resource
	if !r.HasFrontmatter || res.ID != "vcl" || res.Title != "Veterans Crisis Line" {
		t.Fatalf("resource = %+v", res)
	}
	if res.OrgType != models.OrgInstitutional {
		t.Errorf("org type = %q", res.OrgType)
	}
	if res.Location != "national" {
		t.Errorf("location = %q", res.Location)
	}
	wantTags := []string{"crisis-line", "24/7", "suicide-prevention"}
	if !reflect.DeepEqual(res.Tags, wantTags) {
		t.Errorf("tags = %v, want %v", res.Tags, wantTags)
	}
	if !res.IsCrisisLine() {
		t.Error("expected a crisis line")
	}
	if res.Contact == nil || res.Contact.Phone != "988" {
		t.Errorf("contact = %+v", res.Contact)
	}
	if !res.UpdatedAt.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("updated = %v", res.UpdatedAt)
	}
	if res.Description != "Confidential support, 24 hours a day. #suicide-prevention" {
		t.Errorf("description = %q", res.Description)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse("peer/buddy-check.md", []byte("# Buddy Check\nWeekly peer calls.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HasFrontmatter {
		t.Error("expected no frontmatter")
	}
	if r.Resource.ID != "buddy-check" || r.Resource.Title != "Buddy Check" {
		t.Errorf("resource = %+v", r.Resource)
	}
	if r.Resource.Description != "Weekly peer calls." {
		t.Errorf("description = %q", r.Resource.Description)
	}
	if r.Resource.OrgType != models.OrgUnknown {
		t.Errorf("org type = %q", r.Resource.OrgType)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse("broken.md", []byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HasFrontmatter {
		t.Error("invalid YAML should not count as frontmatter")
	}
	if r.Resource.ID != "broken" {
		t.Errorf("id = %q", r.Resource.ID)
	}
}

func TestParse_CommaSeparatedLists(t *testing.T) {
	r, _ := Parse("x.md", []byte("---\ncategories: Housing, Employment , housing\n---\n"))
	if !reflect.DeepEqual(r.Resource.Categories, []string{"housing", "employment"}) {
		t.Errorf("categories = %v", r.Resource.Categories)
	}
	if r.Resource.Tags == nil {
		t.Error("tags should be an empty slice, not nil")
	}
}
