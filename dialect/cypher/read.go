package cypher

import (
	"fmt"
	"strings"

	"github.com/syssam/graphmap"
	"github.com/syssam/graphmap/schema"
)

// ReadOptions carry the caller-supplied inputs of one read compilation.
// The zero value compiles the bare view.
type ReadOptions struct {
	// Where is the condition tree, implicitly AND-joined at the top level.
	Where []Condition

	// Order lists ORDER BY keys over root fragment fields, appended after
	// the RETURN clause.
	Order []OrderKey

	// Sorts are client-requested post-projection sorts of collection
	// relationships, keyed by dotted relationship path (one level of
	// nesting). A client sort replaces the relationship's declared OrderBy
	// for the same path.
	Sorts []schema.SortSpec

	// Depths overrides the effective max depth per relationship, keyed by
	// dotted relationship path. An explicit zero collapses the relationship
	// to an empty list or null.
	Depths map[string]int
}

// CompileRead compiles a view into one read statement. The statement
// matches the root fragment by its full label set, filters by the supplied
// conditions plus one existence check per required single relationship, and
// returns one key per top-level field: the root projection followed by one
// pattern comprehension per relationship in declaration order.
//
// Compilation is deterministic: the same inputs yield byte-identical text.
func CompileRead(v *schema.View, opts ReadOptions) (*Statement, error) {
	c := &readCompiler{view: v, opts: opts}
	if err := c.checkSorts(); err != nil {
		return nil, err
	}

	whereText, params, err := CompileWhere(v, opts.Where)
	if err != nil {
		return nil, err
	}
	var filters []string
	if whereText != "" {
		filters = append(filters, whereText)
	}
	for _, rel := range v.Relationships {
		if rel.Unique && rel.Required {
			p := pattern(v.FieldName, rel, "", nodeExpr("", rel.TargetLabels()))
			filters = append(filters, fmt.Sprintf("EXISTS { %s }", p))
		}
	}

	if len(v.Root.Labels) == 0 {
		return nil, graphmap.NewSchemaError("view %s: root fragment has no labels", v.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (%s%s)", v.FieldName, labelExpr(v.Root.Labels))
	if len(filters) > 0 {
		fmt.Fprintf(&b, "\nWHERE %s", strings.Join(filters, " AND "))
	}

	items := make([]string, 0, len(v.Relationships)+1)
	items = append(items, fmt.Sprintf("%s AS %s", fragmentProjection(v.Root, v.FieldName), v.FieldName))
	for _, rel := range v.Relationships {
		proj, err := c.relationship(v.FieldName, rel, nil, "")
		if err != nil {
			return nil, err
		}
		items = append(items, fmt.Sprintf("%s AS %s", proj, rel.Field))
	}
	fmt.Fprintf(&b, "\nRETURN %s", strings.Join(items, ", "))

	if len(opts.Order) > 0 {
		orderText, err := CompileOrder(v, opts.Order)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "\nORDER BY %s", orderText)
	}
	return &Statement{Text: b.String(), Params: params}, nil
}

type readCompiler struct {
	view *schema.View
	opts ReadOptions
}

// visitMap counts, per view type name, how many times the compilation has
// re-entered that view below the root. It is extended copy-on-write at each
// recursive call, so sibling branches never observe each other's counts.
type visitMap map[string]int

func (m visitMap) extend(name string) visitMap {
	next := make(visitMap, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	next[name]++
	return next
}

// checkSorts rejects sort specs whose path does not resolve to a declared
// collection relationship. Paths support one level of nesting.
func (c *readCompiler) checkSorts() error {
	for _, s := range c.opts.Sorts {
		parts := strings.Split(s.Path, ".")
		switch len(parts) {
		case 1:
			rel, ok := c.view.Relationship(parts[0])
			if !ok || rel.Unique {
				return graphmap.NewUnsupportedShapeError(c.view.Name, s.Path)
			}
		case 2:
			parent, ok := c.view.Relationship(parts[0])
			if !ok || parent.View == nil {
				return graphmap.NewUnsupportedShapeError(c.view.Name, s.Path)
			}
			rel, ok := parent.View.Relationship(parts[1])
			if !ok || rel.Unique {
				return graphmap.NewUnsupportedShapeError(c.view.Name, s.Path)
			}
		default:
			return graphmap.NewUnsupportedShapeError(c.view.Name, s.Path)
		}
	}
	return nil
}

// sortFor returns the sort applied to the relationship compiled at path: a
// matching client spec wins, then the relationship's declared OrderBy.
func (c *readCompiler) sortFor(path string, rel *schema.Relationship) *schema.SortSpec {
	if rel.Unique {
		return nil
	}
	for i := range c.opts.Sorts {
		if c.opts.Sorts[i].Path == path {
			return &c.opts.Sorts[i]
		}
	}
	return rel.OrderBy
}

// depthFor returns the relationship's effective max depth at path: the
// per-call override when present, the declared value otherwise.
func (c *readCompiler) depthFor(path string, rel *schema.Relationship) int {
	if d, ok := c.opts.Depths[path]; ok {
		return d
	}
	return rel.MaxDepth
}

// relationship compiles one relationship field into its derived-alias
// projection expression. path is the dotted path from the root view, and
// visits carries the chain-cycle counts threaded through nested views.
func (c *readCompiler) relationship(parent string, rel *schema.Relationship, visits visitMap, prefix string) (string, error) {
	if len(rel.TargetLabels()) == 0 {
		return "", graphmap.NewSchemaError("relationship %s: target %s has no labels", rel.Field, rel.TargetName())
	}
	path := rel.Field
	if prefix != "" {
		path = prefix + "." + rel.Field
	}

	alias := rel.Field
	if rel.IsRich() {
		alias = rel.Field + "_target"
	}
	var expr string
	switch {
	case rel.View != nil && rel.Recursive:
		depth := c.depthFor(path, rel)
		if depth == 0 {
			return terminal(rel), nil
		}
		chain, err := c.recursiveChain(parent, rel, 1, depth, visits, path)
		if err != nil {
			return "", err
		}
		expr = chain
	case rel.View != nil:
		depth := c.depthFor(path, rel)
		if visits[rel.View.Name] >= depth {
			return terminal(rel), nil
		}
		inner, err := c.viewProjection(rel.View, alias, visits.extend(rel.View.Name), path)
		if err != nil {
			return "", err
		}
		expr = c.comprehension(parent, rel, inner)
	default:
		expr = c.comprehension(parent, rel, fragmentProjection(rel.Fragment, alias))
	}

	if s := c.sortFor(path, rel); s != nil {
		expr = sortWrap(expr, s)
	}
	if rel.Unique {
		expr += "[0]"
	}
	return expr, nil
}

// comprehension renders the pattern comprehension of one relationship. The
// target projection must already be bound to the relationship's derived
// target alias (field, or field_target for rich edges). Rich edges bind the
// edge variable too and project an object holding the edge properties plus
// the target under its declared field.
func (c *readCompiler) comprehension(parent string, rel *schema.Relationship, targetProjection string) string {
	if !rel.IsRich() {
		p := pattern(parent, rel, "", nodeExpr(rel.Field, rel.TargetLabels()))
		return fmt.Sprintf("[%s | %s]", p, targetProjection)
	}
	relVar := rel.Field + "_rel"
	target := rel.Field + "_target"
	var props strings.Builder
	for _, p := range rel.Properties {
		fmt.Fprintf(&props, "%s: %s.%s, ", p, relVar, p)
	}
	obj := fmt.Sprintf("{%s%s: %s}", props.String(), rel.TargetField, targetProjection)
	p := pattern(parent, rel, relVar, nodeExpr(target, rel.TargetLabels()))
	return fmt.Sprintf("[%s | %s]", p, obj)
}

// viewProjection renders a nested view as an object keyed by its root field
// name plus one key per relationship, re-applying the whole algorithm with
// the extended visit map.
func (c *readCompiler) viewProjection(v *schema.View, alias string, visits visitMap, prefix string) (string, error) {
	parts := make([]string, 0, len(v.Relationships)+1)
	parts = append(parts, fmt.Sprintf("%s: %s", v.FieldName, fragmentProjection(v.Root, alias)))
	for _, rel := range v.Relationships {
		expr, err := c.relationship(alias, rel, visits, prefix)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s: %s", rel.Field, expr))
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// recursiveChain renders a self-referential relationship as a right-nested
// chain of depth-indexed aliases field_d1..field_dN. At each depth the
// view's other relationships project normally; the recursive field itself
// recurses to depth+1 until the terminal depth collapses it to an empty
// list or null.
func (c *readCompiler) recursiveChain(parent string, rel *schema.Relationship, d, n int, visits visitMap, path string) (string, error) {
	alias := fmt.Sprintf("%s_d%d", rel.Field, d)
	view := rel.View
	depthVisits := visits.extend(view.Name)

	parts := make([]string, 0, len(view.Relationships)+1)
	parts = append(parts, fmt.Sprintf("%s: %s", view.FieldName, fragmentProjection(view.Root, alias)))
	for _, sib := range view.Relationships {
		var (
			expr string
			err  error
		)
		if sib == rel {
			if d < n {
				expr, err = c.recursiveChain(alias, rel, d+1, n, visits, path)
				if err == nil && rel.Unique {
					expr += "[0]"
				}
			} else {
				expr = terminal(rel)
			}
		} else {
			expr, err = c.relationship(alias, sib, depthVisits, path)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s: %s", sib.Field, expr))
	}
	inner := "{" + strings.Join(parts, ", ") + "}"

	if !rel.IsRich() {
		p := pattern(parent, rel, "", nodeExpr(alias, rel.TargetLabels()))
		return fmt.Sprintf("[%s | %s]", p, inner), nil
	}
	relVar := alias + "_rel"
	var props strings.Builder
	for _, p := range rel.Properties {
		fmt.Fprintf(&props, "%s: %s.%s, ", p, relVar, p)
	}
	obj := fmt.Sprintf("{%s%s: %s}", props.String(), rel.TargetField, inner)
	p := pattern(parent, rel, relVar, nodeExpr(alias, rel.TargetLabels()))
	return fmt.Sprintf("[%s | %s]", p, obj), nil
}

// sortWrap applies the stable descending sort-by-property primitive to a
// collection expression, reversing the result when ascending order was
// requested (the primitive itself sorts descending only).
func sortWrap(expr string, s *schema.SortSpec) string {
	out := fmt.Sprintf("apoc.coll.sortMaps(%s, '%s')", expr, s.Property)
	if s.Ascending {
		out = fmt.Sprintf("reverse(%s)", out)
	}
	return out
}
