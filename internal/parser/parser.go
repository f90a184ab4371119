// Package parser turns resource documents (Markdown with YAML frontmatter)
// into catalog resources.
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/vetbridge/internal/models"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// frontmatter is the document header. Every key is optional.
type frontmatter struct {
	ID           string          `yaml:"id"`
	Title        string          `yaml:"title"`
	Description  string          `yaml:"description"`
	Categories   stringList      `yaml:"categories"`
	Tags         stringList      `yaml:"tags"`
	OrgType      string          `yaml:"org_type"`
	OrgName      string          `yaml:"org_name"`
	Location     string          `yaml:"location"`
	Verified     bool            `yaml:"verified"`
	Featured     bool            `yaml:"featured"`
	Rating       float64         `yaml:"rating"`
	Views        int             `yaml:"views"`
	HelpfulCount int             `yaml:"helpful_count"`
	Contact      *models.Contact `yaml:"contact"`
	Updated      time.Time       `yaml:"updated"`
}

// stringList accepts either a YAML sequence or a comma separated scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*l = splitList(n.Value)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := n.Decode(&raw); err != nil {
			return err
		}
		*l = raw
		return nil
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Result is a parsed document.
type Result struct {
	Resource       models.Resource
	HasFrontmatter bool
}

// Parse builds a resource from the document at relPath. Invalid YAML is not
// an error: the whole document becomes the description, and title falls back
// to the first heading. The ID is the frontmatter id, else the file stem.
func Parse(relPath string, data []byte) (*Result, error) {
	raw, body, ok := splitFrontmatter(data)
	var fm frontmatter
	if ok {
		if err := yaml.Unmarshal(raw, &fm); err != nil {
			ok = false
			body = string(data)
			fm = frontmatter{}
		}
	}

	r := models.Resource{
		ID:           strings.TrimSpace(fm.ID),
		Title:        strings.TrimSpace(fm.Title),
		Categories:   normalizeList(fm.Categories),
		OrgName:      strings.TrimSpace(fm.OrgName),
		Location:     strings.ToLower(strings.TrimSpace(fm.Location)),
		Verified:     fm.Verified,
		Featured:     fm.Featured,
		Rating:       fm.Rating,
		Views:        fm.Views,
		HelpfulCount: fm.HelpfulCount,
		Path:         relPath,
		UpdatedAt:    fm.Updated,
	}
	if r.ID == "" {
		r.ID = strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	}
	r.OrgType, _ = models.ParseOrgType(fm.OrgType)
	if fm.Contact != nil && !fm.Contact.IsZero() {
		r.Contact = fm.Contact
	}

	heading, rest := splitHeading(body)
	if r.Title == "" {
		r.Title = heading
	}
	r.Description = strings.TrimSpace(fm.Description)
	if r.Description == "" {
		r.Description = strings.TrimSpace(rest)
	}
	r.Tags = normalizeList(append([]string(fm.Tags), extractTags(body)...))

	return &Result{Resource: r, HasFrontmatter: ok}, nil
}

// splitFrontmatter separates the YAML block between leading --- delimiters
// from the body. ok is false when the document has no frontmatter.
func splitFrontmatter(data []byte) (yamlBlock []byte, body string, ok bool) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), false
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), false
	}
	after := rest[idx+1+len(delim):]
	return rest[:idx], strings.TrimLeft(string(after), "\n\r"), true
}

// splitHeading returns the first H1 and the body without it.
func splitHeading(body string) (heading, rest string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			rest := append(append([]string{}, lines[:i]...), lines[i+1:]...)
			return strings.TrimSpace(trimmed[2:]), strings.Join(rest, "\n")
		}
	}
	return "", body
}

func extractTags(body string) []string {
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}

// normalizeList lower-cases, trims and deduplicates, keeping first-seen order.
func normalizeList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := []string{}
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
