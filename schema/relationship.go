package schema

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
)

// Direction is the direction of an edge relative to its declaring fragment.
type Direction uint8

const (
	// Outgoing edges point from the declaring node to the target.
	Outgoing Direction = iota
	// Incoming edges point from the target to the declaring node.
	Incoming
	// Undirected edges match either direction.
	Undirected
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "OUTGOING"
	case Incoming:
		return "INCOMING"
	case Undirected:
		return "UNDIRECTED"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// Relationship describes one typed edge originating from a view's root
// fragment. Relationships are declared with a target type name; the Registry
// resolves it to a fragment or view model when the declaring view is
// compiled.
type Relationship struct {
	// Field is the relationship field name on the declaring view. It is also
	// the seed for every alias the compilers derive for this relationship.
	Field string

	// Type is the edge type string. When empty, it is derived from Field
	// (assignedTo -> ASSIGNED_TO).
	Type string

	// Direction of the edge relative to the declaring root.
	Direction Direction

	// Unique marks single cardinality: the compiled projection takes the
	// first match or null. Collections are the default.
	Unique bool

	// Required marks a non-nullable single relationship. The read compiler
	// emits an existence filter for it: roots missing the relationship are
	// excluded from results. Ignored for collections.
	Required bool

	// Target is the declared target type name, resolved by the Registry to
	// either a fragment or a view (possibly the declaring view itself).
	Target string

	// MaxDepth bounds recursive and chain-cycle expansion. Zero compiles the
	// relationship to an empty list or null with no expansion at all.
	MaxDepth int

	// Properties are the scalar property names carried by the edge itself,
	// making this a rich edge. A rich edge projects an object holding these
	// properties plus the target under TargetField.
	Properties []string

	// TargetField is the rich edge's target field name. Required when
	// Properties is non-empty, and must not appear in Properties.
	TargetField string

	// OrderBy is an optional declared sort of this collection relationship,
	// applied unless the caller supplies its own sort for the same path.
	OrderBy *SortSpec

	// Fragment is the resolved target fragment. Exactly one of Fragment and
	// View is non-nil after Registry compilation.
	Fragment *Fragment

	// View is the resolved target view.
	View *View

	// Recursive reports that the target view is the declaring view itself.
	Recursive bool
}

// EdgeType returns the effective edge type string.
func (r *Relationship) EdgeType() string {
	if r.Type != "" {
		return r.Type
	}
	return strings.ToUpper(inflect.Underscore(r.Field))
}

// IsRich reports whether the edge itself carries properties.
func (r *Relationship) IsRich() bool {
	return len(r.Properties) > 0
}

// TargetLabels returns the resolved target's label set.
func (r *Relationship) TargetLabels() []string {
	if r.Fragment != nil {
		return r.Fragment.Labels
	}
	if r.View != nil {
		return r.View.Root.Labels
	}
	return nil
}

// TargetName returns the resolved target's type name.
func (r *Relationship) TargetName() string {
	if r.Fragment != nil {
		return r.Fragment.Name
	}
	if r.View != nil {
		return r.View.Name
	}
	return r.Target
}

// SortSpec is a client-requested (or schema-declared) post-projection sort
// of one collection relationship. Path is the dotted relationship path and
// supports one level of nesting ("assignedTo", "subRegions.cities").
type SortSpec struct {
	Path      string
	Property  string
	Ascending bool
}
