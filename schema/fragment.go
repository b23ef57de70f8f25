package schema

// Fragment describes one node type's persistence shape: its ordered label
// set, identity property, and ordered scalar fields.
type Fragment struct {
	// Name is the declared type name, unique within a Registry.
	Name string

	// Labels is the ordered, non-empty label list. Labels are emitted in
	// declared order; the compilers never canonicalize them.
	Labels []string

	// ID is the identity property name. It must be one of Fields unless the
	// fragment is open (Wildcard).
	ID string

	// Fields is the ordered scalar field list.
	Fields []string

	// Wildcard marks an open (abstract, sealed, or interface-backed) type
	// whose concrete property set is unknown at compile time. Such fragments
	// project all properties plus the label array, supporting polymorphic
	// deserialization by the caller.
	Wildcard bool
}

// FieldSet is the projection variant of a fragment: either an explicit,
// ordered field list or the wildcard all-properties form. A fragment that
// declares zero scalar fields degrades to the wildcard form so the compiled
// projection is never a syntactically empty map.
type FieldSet struct {
	wild  bool
	names []string
}

// Explicit returns a FieldSet projecting exactly the given fields.
func Explicit(names ...string) FieldSet {
	return FieldSet{names: names}
}

// Wildcard returns the all-properties FieldSet.
func Wildcard() FieldSet {
	return FieldSet{wild: true}
}

// IsWildcard reports whether the set projects all properties.
func (fs FieldSet) IsWildcard() bool { return fs.wild }

// Names returns the explicit field names, nil for the wildcard form.
func (fs FieldSet) Names() []string { return fs.names }

// FieldSet returns the fragment's projection variant.
func (f *Fragment) FieldSet() FieldSet {
	if f.Wildcard || len(f.Fields) == 0 {
		return Wildcard()
	}
	return Explicit(f.Fields...)
}

// HasField reports whether name is a declared scalar field. Open fragments
// accept any name, since their property set is unknown by definition.
func (f *Fragment) HasField(name string) bool {
	if f.Wildcard {
		return true
	}
	for _, n := range f.Fields {
		if n == name {
			return true
		}
	}
	return false
}
