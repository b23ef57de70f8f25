package schema

// View is a root fragment plus an ordered set of typed relationships,
// possibly nesting further views. Relationship targets may reference the
// declaring view itself (self-recursion) or, through intermediate views, an
// ancestor view (a chain cycle); both are bounded at read-compile time by
// the relationship's MaxDepth.
type View struct {
	// Name is the declared view name, unique within a Registry.
	Name string

	// FieldName is the root field name. It keys the root projection in the
	// compiled RETURN and in nested-view object projections, and doubles as
	// the root pattern alias.
	FieldName string

	// Root is the view's root fragment.
	Root *Fragment

	// Relationships in declaration order.
	Relationships []*Relationship
}

// Relationship returns the declared relationship with the given field name.
func (v *View) Relationship(field string) (*Relationship, bool) {
	for _, r := range v.Relationships {
		if r.Field == field {
			return r, true
		}
	}
	return nil, false
}
