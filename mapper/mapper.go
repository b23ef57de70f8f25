// Package mapper orchestrates one unit of work against a graph store: it
// compiles statements with dialect/cypher, executes them through a
// dialect.Driver, and keeps a graphmap.Session in step with what was loaded
// and saved.
//
// The Mapper itself is stateless between calls; all unit-of-work state
// lives in the caller-owned Session, which must not be shared across
// concurrent units of work.
package mapper

import (
	"context"
	"log/slog"

	"github.com/syssam/graphmap"
	"github.com/syssam/graphmap/dialect"
	"github.com/syssam/graphmap/dialect/cypher"
	"github.com/syssam/graphmap/schema"
)

// Mapper loads and saves view-rooted object graphs.
type Mapper struct {
	drv dialect.Driver
	log *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger compiled statements are traced to at debug
// level.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		m.log = l
	}
}

// New returns a Mapper executing against drv.
func New(drv dialect.Driver, opts ...Option) *Mapper {
	m := &Mapper{drv: drv, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load compiles and executes one read statement and returns the matched
// rows as objects: the root fragment's projected fields merged with one key
// per relationship field. When sess is non-nil, every returned root is
// tracked so a later Save diffs against what was actually loaded.
func (m *Mapper) Load(ctx context.Context, sess *graphmap.Session, v *schema.View, opts cypher.ReadOptions) ([]graphmap.Object, error) {
	stmt, err := cypher.CompileRead(v, opts)
	if err != nil {
		return nil, err
	}
	m.log.DebugContext(ctx, "graphmap load", "view", v.Name, "query", stmt.Text)
	records, err := m.drv.Query(ctx, stmt.Text, stmt.Params)
	if err != nil {
		return nil, err
	}
	out := make([]graphmap.Object, 0, len(records))
	for _, rec := range records {
		obj := rowObject(v, rec)
		if sess != nil {
			if err := trackRow(sess, v, rec); err != nil {
				return nil, err
			}
		}
		out = append(out, obj)
	}
	return out, nil
}

// Save compiles the object graph's write statements and executes them in
// emission order within one transaction. On success the session (when
// non-nil) is re-tracked with the object's current state, so the next Save
// in the same unit of work diffs against what was just persisted.
func (m *Mapper) Save(ctx context.Context, sess *graphmap.Session, v *schema.View, obj graphmap.Object, policy graphmap.CascadePolicy) error {
	spec := cypher.SaveSpec{View: v, Object: obj, Policy: policy}
	if sess != nil {
		spec.Tracker = sess
	}
	stmts, err := cypher.CompileSave(spec)
	if err != nil {
		return err
	}
	tx, err := m.drv.Tx(ctx)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		m.log.DebugContext(ctx, "graphmap save", "view", v.Name, "query", stmt.Text)
		if err := tx.Exec(ctx, stmt.Text, stmt.Params); err != nil {
			if rerr := tx.Rollback(ctx); rerr != nil {
				m.log.ErrorContext(ctx, "graphmap rollback failed", "error", rerr)
			}
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	tracked, err := cypher.CollectSnapshots(v, obj)
	if err != nil {
		return err
	}
	for _, t := range tracked {
		if err := sess.Track(t.Kind, t.ID, t.Snapshot); err != nil {
			return err
		}
	}
	return nil
}

// rowObject flattens one result row into an object: the root projection's
// fields plus one key per relationship field. Nested-view items are
// flattened the same way, recursively, so a loaded graph can be handed back
// to Save unchanged.
func rowObject(v *schema.View, rec dialect.Record) graphmap.Object {
	obj := graphmap.Object{}
	if root, ok := rec[v.FieldName].(map[string]any); ok {
		for k, val := range root {
			obj[k] = val
		}
	}
	for _, rel := range v.Relationships {
		obj[rel.Field] = relValue(rel, rec[rel.Field])
	}
	return obj
}

// relValue normalizes one relationship field's projected value. Fragment
// targets project flat and pass through; view targets project their root
// under the view's field name and are flattened item by item.
func relValue(rel *schema.Relationship, val any) any {
	if rel.View == nil {
		return val
	}
	switch val := val.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = itemValue(rel, item)
		}
		return out
	default:
		return itemValue(rel, val)
	}
}

func itemValue(rel *schema.Relationship, val any) any {
	item, ok := val.(map[string]any)
	if !ok {
		return val
	}
	if rel.IsRich() {
		// Edge properties stay at the item level; only the wrapped
		// target is a view projection.
		out := make(map[string]any, len(item))
		for k, v := range item {
			out[k] = v
		}
		if target, ok := item[rel.TargetField].(map[string]any); ok {
			out[rel.TargetField] = flattenView(rel.View, target)
		}
		return out
	}
	return flattenView(rel.View, item)
}

func flattenView(v *schema.View, item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	if root, ok := item[v.FieldName].(map[string]any); ok {
		for k, val := range root {
			out[k] = val
		}
	}
	for _, rel := range v.Relationships {
		out[rel.Field] = relValue(rel, item[rel.Field])
	}
	return out
}

// trackRow records the loaded root's snapshot: its projected scalar values
// (minus the label array) and, per relationship, the identities of the
// items the row carried.
func trackRow(sess *graphmap.Session, v *schema.View, rec dialect.Record) error {
	root, ok := rec[v.FieldName].(map[string]any)
	if !ok {
		return nil
	}
	props := make(map[string]any, len(root))
	for k, val := range root {
		if k == "labels" {
			continue
		}
		props[k] = val
	}
	id, ok := graphmap.IdentityKey(props[v.Root.ID])
	if !ok {
		return graphmap.NewNotFoundError(v.Root.Name, v.Root.ID)
	}
	snap := graphmap.Snapshot{Properties: props, Relations: map[string][]any{}}
	for _, rel := range v.Relationships {
		ids, err := itemIdentities(rel, rec[rel.Field])
		if err != nil {
			return err
		}
		snap.Relations[rel.Field] = ids
	}
	return sess.Track(v.Root.Name, id, snap)
}

// itemIdentities extracts the identity values of a relationship field's
// items as projected by the read statement.
func itemIdentities(rel *schema.Relationship, field any) ([]any, error) {
	targetFrag := rel.Fragment
	if targetFrag == nil {
		targetFrag = rel.View.Root
	}
	var ids []any
	for _, item := range graphmap.Items(field) {
		target := map[string]any(item)
		if rel.IsRich() {
			t, ok := item[rel.TargetField].(map[string]any)
			if !ok {
				return nil, graphmap.NewNotFoundError(targetFrag.Name, rel.TargetField)
			}
			target = t
		}
		if rel.View != nil {
			if t, ok := target[rel.View.FieldName].(map[string]any); ok {
				target = t
			}
		}
		raw := target[targetFrag.ID]
		if _, ok := graphmap.IdentityKey(raw); !ok {
			return nil, graphmap.NewNotFoundError(targetFrag.Name, targetFrag.ID)
		}
		ids = append(ids, raw)
	}
	return ids, nil
}
