package cypher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/graphmap/schema"
)

// Statement is one compiled unit: UTF-8 Cypher text plus a flat
// string-keyed parameter map in the driver's native value forms.
type Statement struct {
	Text   string
	Params map[string]any
}

// String returns the statement text.
func (s *Statement) String() string { return s.Text }

// labelExpr renders a label set as a colon-joined expression, in declared
// order and without canonicalization: [A B] -> ":A:B".
func labelExpr(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return ":" + strings.Join(labels, ":")
}

// pattern renders one edge pattern between two node expressions, honoring
// the relationship's declared direction. relVar may be empty when the edge
// itself is not bound.
func pattern(src string, rel *schema.Relationship, relVar, dst string) string {
	edge := fmt.Sprintf("[%s:%s]", relVar, rel.EdgeType())
	switch rel.Direction {
	case schema.Incoming:
		return fmt.Sprintf("(%s)<-%s-(%s)", src, edge, dst)
	case schema.Undirected:
		return fmt.Sprintf("(%s)-%s-(%s)", src, edge, dst)
	default:
		return fmt.Sprintf("(%s)-%s->(%s)", src, edge, dst)
	}
}

// nodeExpr renders a node with an alias and labels; either part may be
// empty.
func nodeExpr(alias string, labels []string) string {
	return alias + labelExpr(labels)
}

// fragmentProjection renders a fragment's map projection at the given
// alias. Open fragments (and fragments declaring zero scalar fields)
// project all properties; both forms include the label array so callers can
// deserialize polymorphically.
func fragmentProjection(f *schema.Fragment, alias string) string {
	fs := f.FieldSet()
	if fs.IsWildcard() {
		return fmt.Sprintf("%s{.*, labels: labels(%s)}", alias, alias)
	}
	var b strings.Builder
	b.WriteString("{")
	for _, name := range fs.Names() {
		fmt.Fprintf(&b, "%s: %s.%s, ", name, alias, name)
	}
	fmt.Fprintf(&b, "labels: labels(%s)}", alias)
	return b.String()
}

// terminal is the literal a relationship collapses to when expansion stops:
// an empty list for collections, null for single cardinality.
func terminal(rel *schema.Relationship) string {
	if rel.Unique {
		return "null"
	}
	return "[]"
}

// scalarFields returns the field names written for a fragment, excluding
// the identity property (which travels in the MERGE pattern). For open
// fragments, whose field list is unknown, the object's own keys are used,
// sorted, minus the given relationship fields.
func scalarFields(f *schema.Fragment, obj map[string]any, skip map[string]bool) []string {
	if !f.Wildcard && len(f.Fields) > 0 {
		out := make([]string, 0, len(f.Fields))
		for _, name := range f.Fields {
			if name != f.ID {
				out = append(out, name)
			}
		}
		return out
	}
	out := make([]string, 0, len(obj))
	for name := range obj {
		if name == f.ID || skip[name] {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
