package cypher

import (
	"fmt"
	"strings"

	"github.com/syssam/graphmap"
	"github.com/syssam/graphmap/schema"
)

// Tracker is the dirty-field and relationship-snapshot dependency the write
// compiler consults. *graphmap.Session implements it; a nil Tracker means
// nothing is tracked, so every field is dirty and every current item is an
// addition.
type Tracker interface {
	// DirtyFields returns, in field order, the names whose current value
	// differs from the tracked snapshot of (kind, id).
	DirtyFields(kind, id string, fields []string, current map[string]any) ([]string, error)

	// Relation returns the identities of the previously persisted items of
	// one relationship field. ok is false when (kind, id) is untracked.
	Relation(kind, id, field string) ([]any, bool)
}

// SaveSpec carries the inputs of one write compilation.
type SaveSpec struct {
	// View is the compiled view of the object being saved.
	View *schema.View

	// Object is the current in-memory object graph.
	Object graphmap.Object

	// Tracker supplies prior snapshots; nil compiles a full write.
	Tracker Tracker

	// Policy is applied to every relationship item removed from the graph.
	Policy graphmap.CascadePolicy
}

// CompileSave compiles one save call into an ordered statement list: the
// root merge first, then per relationship in declaration order the
// removed-edge statements followed by the added-item statements. Nested
// views are persisted before the edge from the outer root is merged, so the
// caller can execute the list front to back within one transaction.
//
// The compiler guarantees emission order, not atomicity: transactional
// behavior belongs to the executing driver.
func CompileSave(spec SaveSpec) ([]*Statement, error) {
	if spec.View == nil {
		return nil, graphmap.NewSchemaError("save without a view")
	}
	if spec.Object == nil {
		return nil, graphmap.NewSchemaError("save of a nil object")
	}
	if !spec.Policy.Valid() {
		return nil, graphmap.NewSchemaError("unknown cascade policy %d", uint8(spec.Policy))
	}
	w := &writeCompiler{tracker: spec.Tracker, policy: spec.Policy}
	if _, _, err := w.saveView(spec.View, spec.Object); err != nil {
		return nil, err
	}
	return w.stmts, nil
}

type writeCompiler struct {
	tracker Tracker
	policy  graphmap.CascadePolicy
	stmts   []*Statement
}

func (w *writeCompiler) emit(text string, params map[string]any) {
	w.stmts = append(w.stmts, &Statement{Text: text, Params: params})
}

// identity extracts and normalizes an object's identity value.
func identity(f *schema.Fragment, obj graphmap.Object) (raw any, key string, err error) {
	raw = obj[f.ID]
	key, ok := graphmap.IdentityKey(raw)
	if !ok {
		if raw == nil {
			return nil, "", graphmap.NewNotFoundError(f.Name, f.ID)
		}
		return nil, "", graphmap.NewNotFoundErrorWithValue(f.Name, f.ID, raw)
	}
	return raw, key, nil
}

// saveView runs the whole algorithm for one view-rooted object: merge the
// root fragment, then diff and persist each relationship in declaration
// order.
func (w *writeCompiler) saveView(v *schema.View, obj graphmap.Object) (raw any, key string, err error) {
	relFields := make(map[string]bool, len(v.Relationships))
	for _, rel := range v.Relationships {
		relFields[rel.Field] = true
	}
	raw, key, err = w.mergeFragment(v.Root, obj, relFields)
	if err != nil {
		return nil, "", err
	}
	for _, rel := range v.Relationships {
		if err := w.saveRelationship(v, raw, key, rel, graphmap.Items(obj[rel.Field])); err != nil {
			return nil, "", err
		}
	}
	return raw, key, nil
}

// mergeFragment emits the identity-scoped merge of one fragment, setting
// only its dirty fields. Untracked objects write every field; a fully clean
// object still emits the bare MERGE, keeping the node-existence guarantee
// that later edge merges rely on.
func (w *writeCompiler) mergeFragment(f *schema.Fragment, obj graphmap.Object, skip map[string]bool) (raw any, key string, err error) {
	if len(f.Labels) == 0 {
		return nil, "", graphmap.NewSchemaError("fragment %s has no labels", f.Name)
	}
	raw, key, err = identity(f, obj)
	if err != nil {
		return nil, "", err
	}
	fields := scalarFields(f, obj, skip)
	dirty := fields
	if w.tracker != nil {
		dirty, err = w.tracker.DirtyFields(f.Name, key, fields, obj)
		if err != nil {
			return nil, "", err
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "MERGE (n%s {%s: $%s})", labelExpr(f.Labels), f.ID, f.ID)
	params := map[string]any{f.ID: raw}
	if len(dirty) > 0 {
		sets := make([]string, len(dirty))
		for i, name := range dirty {
			sets[i] = fmt.Sprintf("n.%s = $%s", name, name)
			params[name] = obj[name]
		}
		fmt.Fprintf(&b, " SET %s", strings.Join(sets, ", "))
	}
	w.emit(b.String(), params)
	return raw, key, nil
}

// saveRelationship diffs the current items of one relationship against the
// tracked snapshot by identity and emits removals before additions. Items
// present on both sides are left untouched: their own save call, if any,
// handles their scalar fields.
func (w *writeCompiler) saveRelationship(v *schema.View, rootRaw any, rootKey string, rel *schema.Relationship, items []graphmap.Object) error {
	targetFrag := rel.Fragment
	if targetFrag == nil {
		targetFrag = rel.View.Root
	}

	type current struct {
		item   graphmap.Object // the relationship item (edge object for rich edges)
		target graphmap.Object // the target node object
		raw    any
	}
	currents := make([]current, 0, len(items))
	currentKeys := make(map[string]bool, len(items))
	for _, item := range items {
		target := item
		if rel.IsRich() {
			target = asObject(item[rel.TargetField])
			if target == nil {
				return graphmap.NewNotFoundError(targetFrag.Name, rel.TargetField)
			}
		}
		raw, key, err := identity(targetFrag, target)
		if err != nil {
			return err
		}
		currents = append(currents, current{item: item, target: target, raw: raw})
		currentKeys[key] = true
	}

	var (
		snapshot []any
		hasSnap  bool
		snapKeys map[string]bool
	)
	if w.tracker != nil {
		snapshot, hasSnap = w.tracker.Relation(v.Root.Name, rootKey, rel.Field)
	}
	if hasSnap {
		snapKeys = make(map[string]bool, len(snapshot))
		for _, prior := range snapshot {
			key, ok := graphmap.IdentityKey(prior)
			if !ok {
				return graphmap.NewNotFoundErrorWithValue(targetFrag.Name, targetFrag.ID, prior)
			}
			snapKeys[key] = true
			if !currentKeys[key] && w.policy != graphmap.CascadePreserve {
				w.removeItem(v, rootRaw, rel, targetFrag, prior)
			}
		}
	}

	for _, cur := range currents {
		key, _ := graphmap.IdentityKey(cur.raw)
		if hasSnap && snapKeys[key] {
			continue
		}
		if rel.View != nil {
			if _, _, err := w.saveView(rel.View, cur.target); err != nil {
				return err
			}
		} else {
			if _, _, err := w.mergeFragment(targetFrag, cur.target, nil); err != nil {
				return err
			}
		}
		w.mergeEdge(v, rootRaw, rel, targetFrag, cur.raw, cur.item)
	}
	return nil
}

// removeItem emits the statements for one removed edge under the compiled
// policy. CascadePreserve never reaches here.
func (w *writeCompiler) removeItem(v *schema.View, rootRaw any, rel *schema.Relationship, targetFrag *schema.Fragment, targetRaw any) {
	rootNode := fmt.Sprintf("(n%s {%s: $from_id})", labelExpr(v.Root.Labels), v.Root.ID)
	targetNode := fmt.Sprintf("(m%s {%s: $to_id})", labelExpr(targetFrag.Labels), targetFrag.ID)
	edgeDelete := fmt.Sprintf("MATCH %s%s%s DELETE r", rootNode, edgeExpr(rel, "r"), targetNode)

	switch w.policy {
	case graphmap.CascadeNone:
		w.emit(edgeDelete, map[string]any{"from_id": rootRaw, "to_id": targetRaw})
	case graphmap.CascadeDeleteAll:
		w.emit(fmt.Sprintf("MATCH %s DETACH DELETE m", targetNode), map[string]any{"to_id": targetRaw})
	case graphmap.CascadeDeleteOrphan:
		w.emit(edgeDelete, map[string]any{"from_id": rootRaw, "to_id": targetRaw})
		w.emit(
			fmt.Sprintf("MATCH %s WHERE NOT EXISTS { (m)--() } DELETE m", targetNode),
			map[string]any{"to_id": targetRaw},
		)
	}
}

// mergeEdge emits the single edge merge from the root to an added target,
// setting the edge properties when the edge is rich.
func (w *writeCompiler) mergeEdge(v *schema.View, rootRaw any, rel *schema.Relationship, targetFrag *schema.Fragment, targetRaw any, item graphmap.Object) {
	params := map[string]any{"from_id": rootRaw, "to_id": targetRaw}
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (n%s {%s: $from_id}) MATCH (m%s {%s: $to_id})",
		labelExpr(v.Root.Labels), v.Root.ID, labelExpr(targetFrag.Labels), targetFrag.ID)
	if !rel.IsRich() {
		fmt.Fprintf(&b, " MERGE (n)%s(m)", edgeExpr(rel, ""))
		w.emit(b.String(), params)
		return
	}
	fmt.Fprintf(&b, " MERGE (n)%s(m)", edgeExpr(rel, "r"))
	sets := make([]string, len(rel.Properties))
	for i, p := range rel.Properties {
		sets[i] = fmt.Sprintf("r.%s = $%s", p, p)
		params[p] = item[p]
	}
	fmt.Fprintf(&b, " SET %s", strings.Join(sets, ", "))
	w.emit(b.String(), params)
}

// edgeExpr renders the edge part of a write pattern, direction-aware.
func edgeExpr(rel *schema.Relationship, relVar string) string {
	edge := fmt.Sprintf("[%s:%s]", relVar, rel.EdgeType())
	switch rel.Direction {
	case schema.Incoming:
		return fmt.Sprintf("<-%s-", edge)
	case schema.Undirected:
		return fmt.Sprintf("-%s-", edge)
	default:
		return fmt.Sprintf("-%s->", edge)
	}
}

func asObject(v any) graphmap.Object {
	switch v := v.(type) {
	case graphmap.Object:
		return v
	case map[string]any:
		return v
	default:
		return nil
	}
}

// Tracked pairs an identity with the snapshot to record for it after a
// successful save.
type Tracked struct {
	Kind     string
	ID       string
	Snapshot graphmap.Snapshot
}

// CollectSnapshots walks a view-rooted object graph and returns, root
// included, one snapshot per reachable view root: the scalar property
// values plus the current item identities per relationship field. Callers
// track these after the compiled statements execute successfully, replacing
// the prior entries.
func CollectSnapshots(v *schema.View, obj graphmap.Object) ([]Tracked, error) {
	var out []Tracked
	if err := collectSnapshots(v, obj, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectSnapshots(v *schema.View, obj graphmap.Object, out *[]Tracked) error {
	relFields := make(map[string]bool, len(v.Relationships))
	for _, rel := range v.Relationships {
		relFields[rel.Field] = true
	}
	_, key, err := identity(v.Root, obj)
	if err != nil {
		return err
	}
	snap := graphmap.Snapshot{
		Properties: make(map[string]any),
		Relations:  make(map[string][]any),
	}
	for _, name := range scalarFields(v.Root, obj, relFields) {
		snap.Properties[name] = obj[name]
	}
	for _, rel := range v.Relationships {
		targetFrag := rel.Fragment
		if targetFrag == nil {
			targetFrag = rel.View.Root
		}
		items := graphmap.Items(obj[rel.Field])
		ids := make([]any, 0, len(items))
		for _, item := range items {
			target := item
			if rel.IsRich() {
				target = asObject(item[rel.TargetField])
				if target == nil {
					return graphmap.NewNotFoundError(targetFrag.Name, rel.TargetField)
				}
			}
			raw, _, err := identity(targetFrag, target)
			if err != nil {
				return err
			}
			ids = append(ids, raw)
			if rel.View != nil {
				if err := collectSnapshots(rel.View, target, out); err != nil {
					return err
				}
			}
		}
		snap.Relations[rel.Field] = ids
	}
	*out = append(*out, Tracked{Kind: v.Root.Name, ID: key, Snapshot: snap})
	return nil
}
