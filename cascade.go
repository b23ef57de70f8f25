package graphmap

import "fmt"

// CascadePolicy is the write-time rule applied to relationship targets whose
// edge from the root was removed from the in-memory graph. The policy is
// supplied per save call and applies uniformly to every relationship
// processed by that call; it is never persisted or inferred.
type CascadePolicy uint8

const (
	// CascadeNone deletes only the edge. The target node is untouched.
	CascadeNone CascadePolicy = iota

	// CascadeDeleteAll detach-deletes the target node outright, removing
	// the target and all of its relationships regardless of other referents.
	CascadeDeleteAll

	// CascadeDeleteOrphan deletes the edge, then deletes the target node
	// only if no other relationship to or from it remains.
	CascadeDeleteOrphan

	// CascadePreserve skips the removal entirely: the edge and target stay
	// exactly as persisted; only added items are still processed.
	CascadePreserve
)

// String returns the policy name.
func (p CascadePolicy) String() string {
	switch p {
	case CascadeNone:
		return "NONE"
	case CascadeDeleteAll:
		return "DELETE_ALL"
	case CascadeDeleteOrphan:
		return "DELETE_ORPHAN"
	case CascadePreserve:
		return "PRESERVE"
	default:
		return fmt.Sprintf("CascadePolicy(%d)", p)
	}
}

// Valid reports whether p is one of the declared policies.
func (p CascadePolicy) Valid() bool {
	return p <= CascadePreserve
}
