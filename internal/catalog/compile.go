package catalog

import (
	"fmt"
	"strings"

	"github.com/starford/vetbridge/internal/query"
)

// columns maps predicate fields onto resource table columns.
var columns = map[query.Field]string{
	query.FieldTitle:       "title",
	query.FieldDescription: "description",
	query.FieldTags:        "tags",
	query.FieldCategories:  "categories",
	query.FieldOrgName:     "org_name",
	query.FieldOrgType:     "org_type",
	query.FieldLocation:    "location",
	query.FieldRating:      "rating",
}

// compile renders p as a SQL boolean expression with positional args.
func compile(p query.Predicate) (string, []any, error) {
	var b strings.Builder
	var args []any
	if err := compileInto(&b, &args, p); err != nil {
		return "", nil, err
	}
	return b.String(), args, nil
}

func compileInto(b *strings.Builder, args *[]any, p query.Predicate) error {
	switch n := p.(type) {
	case nil:
		b.WriteString("1=1")
	case query.And:
		return compileJoin(b, args, []query.Predicate(n), " AND ", "1=1")
	case query.Or:
		return compileJoin(b, args, []query.Predicate(n), " OR ", "1=0")
	case query.FieldMatch:
		return compileField(b, args, n)
	case query.RangeMatch:
		return compileRange(b, args, n)
	default:
		return fmt.Errorf("catalog: unsupported predicate %T", p)
	}
	return nil
}

func compileJoin(b *strings.Builder, args *[]any, children []query.Predicate, sep, empty string) error {
	if len(children) == 0 {
		b.WriteString(empty)
		return nil
	}
	b.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			b.WriteString(sep)
		}
		if err := compileInto(b, args, c); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

func compileField(b *strings.Builder, args *[]any, m query.FieldMatch) error {
	col, ok := columns[m.Field]
	if !ok {
		return fmt.Errorf("catalog: unknown field %q", m.Field)
	}
	list := m.Field.IsList()

	switch m.Op {
	case query.OpContains:
		*args = append(*args, likePattern(m.Value))
		if list {
			fmt.Fprintf(b, "EXISTS (SELECT 1 FROM json_each(resources.%s) je WHERE lower(je.value) LIKE ? ESCAPE '\\')", col)
		} else {
			fmt.Fprintf(b, "lower(coalesce(%s, '')) LIKE ? ESCAPE '\\'", col)
		}
	case query.OpEquals:
		*args = append(*args, strings.ToLower(m.Value))
		if list {
			fmt.Fprintf(b, "EXISTS (SELECT 1 FROM json_each(resources.%s) je WHERE lower(je.value) = ?)", col)
		} else {
			fmt.Fprintf(b, "lower(coalesce(%s, '')) = ?", col)
		}
	case query.OpIn:
		if len(m.Values) == 0 {
			b.WriteString("1=0")
			return nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(m.Values)), ", ")
		for _, v := range m.Values {
			*args = append(*args, strings.ToLower(v))
		}
		if list {
			fmt.Fprintf(b, "EXISTS (SELECT 1 FROM json_each(resources.%s) je WHERE lower(je.value) IN (%s))", col, marks)
		} else {
			fmt.Fprintf(b, "lower(coalesce(%s, '')) IN (%s)", col, marks)
		}
	case query.OpEmpty:
		if list {
			fmt.Fprintf(b, "(%s IS NULL OR %s = '' OR %s = '[]')", col, col, col)
		} else {
			fmt.Fprintf(b, "(%s IS NULL OR %s = '')", col, col)
		}
	default:
		return fmt.Errorf("catalog: unsupported op %q", m.Op)
	}
	return nil
}

func compileRange(b *strings.Builder, args *[]any, r query.RangeMatch) error {
	col, ok := columns[r.Field]
	if !ok {
		return fmt.Errorf("catalog: unknown field %q", r.Field)
	}
	switch {
	case r.Min != nil && r.Max != nil:
		fmt.Fprintf(b, "(%s >= ? AND %s <= ?)", col, col)
		*args = append(*args, *r.Min, *r.Max)
	case r.Min != nil:
		fmt.Fprintf(b, "%s >= ?", col)
		*args = append(*args, *r.Min)
	case r.Max != nil:
		fmt.Fprintf(b, "%s <= ?", col)
		*args = append(*args, *r.Max)
	default:
		b.WriteString("1=1")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
