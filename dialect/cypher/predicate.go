package cypher

import (
	"fmt"
	"strings"

	"github.com/syssam/graphmap"
	"github.com/syssam/graphmap/schema"
)

// Op is a comparison operator of a PropertyCondition.
type Op uint8

const (
	OpEQ Op = iota
	OpNEQ
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpIn
	OpNotIn
	OpIsNull
	OpNotNull
	OpContains
	OpHasPrefix
	OpHasSuffix
)

// hasParam reports whether the operator binds a parameter.
func (o Op) hasParam() bool {
	return o != OpIsNull && o != OpNotNull
}

// text returns the operator's Cypher spelling.
func (o Op) text() string {
	switch o {
	case OpEQ:
		return "="
	case OpNEQ:
		return "<>"
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpIn:
		return "IN"
	case OpIsNull:
		return "IS NULL"
	case OpNotNull:
		return "IS NOT NULL"
	case OpContains:
		return "CONTAINS"
	case OpHasPrefix:
		return "STARTS WITH"
	case OpHasSuffix:
		return "ENDS WITH"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Condition is a node in a filter expression tree. The tree is immutable
// once built; conditions at the top level are implicitly AND-joined.
type Condition interface {
	condition()
}

// PropertyCondition compares one property against a value. Path encodes
// scope and property: "title" addresses the root fragment, "assignedTo.name"
// addresses the target of a declared relationship (one level only).
type PropertyCondition struct {
	Path  string
	Op    Op
	Value any
}

func (*PropertyCondition) condition() {}

// OrCondition joins its children with OR, parenthesized. When any child is
// relationship-scoped, the whole OR is lifted into one EXISTS subquery per
// distinct relationship referenced, because relationship targets are
// comprehension-derived and not standalone pattern variables in the
// compiled read statement.
type OrCondition struct {
	Children []Condition
}

func (*OrCondition) condition() {}

// Or builds an OrCondition.
func Or(children ...Condition) *OrCondition {
	return &OrCondition{Children: children}
}

// LabelCondition is a polymorphic is-instance-of filter: it requires the
// addressed node to carry every label of the given fragment. Path follows
// PropertyCondition scoping with the empty string addressing the root.
type LabelCondition struct {
	Path     string
	Fragment *schema.Fragment
}

func (*LabelCondition) condition() {}

// HasLabels builds a LabelCondition against the root node.
func HasLabels(f *schema.Fragment) *LabelCondition {
	return &LabelCondition{Fragment: f}
}

// OrderKey is one ORDER BY key against a root fragment field.
type OrderKey struct {
	Field string
	Desc  bool
}

// CompileWhere compiles a condition tree into WHERE text (without the
// WHERE keyword) plus its parameter bindings. Each condition binds a fresh
// parameter name, so repeated filters on the same property never collide.
func CompileWhere(v *schema.View, conds []Condition) (string, map[string]any, error) {
	w := &whereCompiler{view: v, params: map[string]any{}}
	text, err := w.compileAll(conds)
	if err != nil {
		return "", nil, err
	}
	return text, w.params, nil
}

// CompileOrder compiles order keys into ORDER BY text (without the
// keywords). Keys address root fragment fields only: relationship targets
// are list-comprehension projections and cannot be ordered by here; use a
// collection SortSpec for those.
func CompileOrder(v *schema.View, keys []OrderKey) (string, error) {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.Contains(k.Field, ".") || !v.Root.HasField(k.Field) {
			return "", graphmap.NewUnsupportedShapeError(v.Name, k.Field)
		}
		p := fmt.Sprintf("%s.%s", v.FieldName, k.Field)
		if k.Desc {
			p += " DESC"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", "), nil
}

type whereCompiler struct {
	view   *schema.View
	params map[string]any
	n      int
}

func (w *whereCompiler) param(v any) string {
	name := fmt.Sprintf("where_%d", w.n)
	w.n++
	w.params[name] = v
	return name
}

func (w *whereCompiler) compileAll(conds []Condition) (string, error) {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		t, err := w.compile(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " AND "), nil
}

func (w *whereCompiler) compile(c Condition) (string, error) {
	switch c := c.(type) {
	case *PropertyCondition:
		rel, clause, err := w.propertyClause(c)
		if err != nil {
			return "", err
		}
		if rel == nil {
			return clause, nil
		}
		return w.exists(rel, clause), nil
	case *LabelCondition:
		rel, clause, err := w.labelClause(c)
		if err != nil {
			return "", err
		}
		if rel == nil {
			return clause, nil
		}
		return w.exists(rel, clause), nil
	case *OrCondition:
		return w.compileOr(c)
	default:
		return "", graphmap.NewSchemaError("unknown condition type %T", c)
	}
}

// compileOr joins children with OR. Relationship-scoped children are
// grouped by relationship and each group is lifted into one EXISTS
// subquery, the safe baseline for comprehension-derived targets. Groups are
// emitted at the position of their first member so the output stays
// deterministic.
func (w *whereCompiler) compileOr(or *OrCondition) (string, error) {
	if len(or.Children) == 0 {
		return "", graphmap.NewSchemaError("empty OR condition")
	}
	type relGroup struct {
		rel     *schema.Relationship
		clauses []string
	}
	var (
		order  []any // *relGroup or plain string, in first-appearance order
		groups = map[string]*relGroup{}
	)
	for _, child := range or.Children {
		var (
			rel    *schema.Relationship
			clause string
			err    error
		)
		switch child := child.(type) {
		case *PropertyCondition:
			rel, clause, err = w.propertyClause(child)
		case *LabelCondition:
			rel, clause, err = w.labelClause(child)
		case *OrCondition:
			clause, err = w.compileOr(child)
		default:
			err = graphmap.NewSchemaError("unknown condition type %T", child)
		}
		if err != nil {
			return "", err
		}
		if rel == nil {
			order = append(order, clause)
			continue
		}
		g, ok := groups[rel.Field]
		if !ok {
			g = &relGroup{rel: rel}
			groups[rel.Field] = g
			order = append(order, g)
		}
		g.clauses = append(g.clauses, clause)
	}
	parts := make([]string, 0, len(order))
	for _, item := range order {
		switch item := item.(type) {
		case string:
			parts = append(parts, item)
		case *relGroup:
			parts = append(parts, w.exists(item.rel, strings.Join(item.clauses, " OR ")))
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

// exists wraps a clause on a relationship target into an EXISTS subquery
// scoped to that relationship's pattern.
func (w *whereCompiler) exists(rel *schema.Relationship, clause string) string {
	p := pattern(w.view.FieldName, rel, "", nodeExpr(rel.Field, rel.TargetLabels()))
	return fmt.Sprintf("EXISTS { %s WHERE %s }", p, clause)
}

// propertyClause compiles a PropertyCondition to its comparison text. The
// returned relationship is nil for root-scoped paths; otherwise the clause
// addresses the relationship's field-named alias and the caller decides how
// to scope it.
func (w *whereCompiler) propertyClause(c *PropertyCondition) (*schema.Relationship, string, error) {
	rel, alias, prop, err := w.resolve(c.Path)
	if err != nil {
		return nil, "", err
	}
	ref := fmt.Sprintf("%s.%s", alias, prop)
	var clause string
	switch {
	case !c.Op.hasParam():
		clause = fmt.Sprintf("%s %s", ref, c.Op.text())
	case c.Op == OpNotIn:
		clause = fmt.Sprintf("NOT %s IN $%s", ref, w.param(c.Value))
	default:
		clause = fmt.Sprintf("%s %s $%s", ref, c.Op.text(), w.param(c.Value))
	}
	return rel, clause, nil
}

// labelClause compiles a LabelCondition to a conjunctive label check.
func (w *whereCompiler) labelClause(c *LabelCondition) (*schema.Relationship, string, error) {
	if c.Fragment == nil || len(c.Fragment.Labels) == 0 {
		return nil, "", graphmap.NewSchemaError("label filter against a type with no declared labels")
	}
	if c.Path == "" {
		return nil, w.view.FieldName + labelExpr(c.Fragment.Labels), nil
	}
	rel, ok := w.view.Relationship(c.Path)
	if !ok {
		return nil, "", graphmap.NewUnsupportedShapeError(w.view.Name, c.Path)
	}
	return rel, rel.Field + labelExpr(c.Fragment.Labels), nil
}

// resolve splits a condition path into its scope and property. One level of
// relationship nesting is supported; anything deeper is rejected.
func (w *whereCompiler) resolve(path string) (*schema.Relationship, string, string, error) {
	parts := strings.Split(path, ".")
	switch len(parts) {
	case 1:
		if !w.view.Root.HasField(parts[0]) {
			return nil, "", "", graphmap.NewUnsupportedShapeError(w.view.Name, path)
		}
		return nil, w.view.FieldName, parts[0], nil
	case 2:
		rel, ok := w.view.Relationship(parts[0])
		if !ok {
			return nil, "", "", graphmap.NewUnsupportedShapeError(w.view.Name, path)
		}
		target := rel.Fragment
		if target == nil && rel.View != nil {
			target = rel.View.Root
		}
		if target == nil || !target.HasField(parts[1]) {
			return nil, "", "", graphmap.NewUnsupportedShapeError(w.view.Name, path)
		}
		return rel, rel.Field, parts[1], nil
	default:
		return nil, "", "", graphmap.NewUnsupportedShapeError(w.view.Name, path)
	}
}
