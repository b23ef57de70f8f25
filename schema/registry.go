package schema

import (
	"errors"
	"fmt"
	"sync"
)

// ErrMetadata is the sentinel every MetadataError matches.
var ErrMetadata = errors.New("graphmap: invalid metadata")

// MetadataError reports a structurally invalid type declaration: a missing
// identity property, zero labels, an unresolvable relationship target, or a
// rich edge without its target field. It is a pure function of the
// declaration and is never retried.
type MetadataError struct {
	Type string
	msg  string
}

// Error returns the error string.
func (e *MetadataError) Error() string {
	return fmt.Sprintf("graphmap: metadata: %s: %s", e.Type, e.msg)
}

// Is reports whether the target error matches MetadataError.
func (e *MetadataError) Is(err error) bool {
	return err == ErrMetadata
}

func newMetadataError(typ, format string, args ...any) *MetadataError {
	return &MetadataError{Type: typ, msg: fmt.Sprintf(format, args...)}
}

// IsMetadataError returns true if the error is a MetadataError.
func IsMetadataError(err error) bool {
	if err == nil {
		return false
	}
	var e *MetadataError
	return errors.As(err, &e) || errors.Is(err, ErrMetadata)
}

// Registry holds declared fragments and views and compiles them, once per
// type, into linked read-only models. Compiled models are cached and shared
// across all compiler invocations; the Registry itself is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	fragments map[string]*Fragment
	views     map[string]*View
	compiled  map[string]*View
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		fragments: make(map[string]*Fragment),
		views:     make(map[string]*View),
		compiled:  make(map[string]*View),
	}
}

// AddFragment declares a fragment. The declaration is validated eagerly:
// labels must be non-empty, the identity property must be declared, and a
// non-open fragment must declare its identity among its fields.
func (r *Registry) AddFragment(f *Fragment) error {
	if err := validateFragment(f); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fragments[f.Name]; ok {
		return newMetadataError(f.Name, "fragment declared twice")
	}
	if _, ok := r.views[f.Name]; ok {
		return newMetadataError(f.Name, "name already declared as a view")
	}
	r.fragments[f.Name] = f
	return nil
}

// AddView declares a view. Relationship targets are resolved lazily when the
// view is first compiled, so mutually recursive views can be declared in any
// order.
func (r *Registry) AddView(v *View) error {
	if v.Name == "" {
		return newMetadataError("?", "view without a name")
	}
	if v.FieldName == "" {
		return newMetadataError(v.Name, "view without a root field name")
	}
	if v.Root == nil {
		return newMetadataError(v.Name, "view without a root fragment")
	}
	if err := validateFragment(v.Root); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.views[v.Name]; ok {
		return newMetadataError(v.Name, "view declared twice")
	}
	if _, ok := r.fragments[v.Name]; ok {
		return newMetadataError(v.Name, "name already declared as a fragment")
	}
	r.views[v.Name] = v
	return nil
}

// Fragment returns the declared fragment with the given name.
func (r *Registry) Fragment(name string) (*Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fragments[name]
	if !ok {
		return nil, newMetadataError(name, "fragment not declared")
	}
	return f, nil
}

// View compiles (once, then caches) and returns the linked model of the
// named view: every relationship has its target resolved to a fragment or
// view pointer, self-recursion is marked, and rich edges are validated.
func (r *Registry) View(name string) (*View, error) {
	r.mu.RLock()
	v, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]*View)
	v, err := r.link(name, seen)
	if err != nil {
		return nil, err
	}
	// Promote only after the whole graph linked. On failure every view
	// staged in seen is discarded, so a model whose cycle peer never
	// finished linking cannot become observable through the cache.
	for n, sv := range seen {
		r.compiled[n] = sv
	}
	return v, nil
}

// link resolves the named view's relationship graph. seen holds views under
// construction so that chain cycles resolve to the same pointer instead of
// recursing forever; View promotes the staged views to the compiled cache
// once the top-level link succeeds.
func (r *Registry) link(name string, seen map[string]*View) (*View, error) {
	if v, ok := r.compiled[name]; ok {
		return v, nil
	}
	if v, ok := seen[name]; ok {
		return v, nil
	}
	decl, ok := r.views[name]
	if !ok {
		return nil, newMetadataError(name, "view not declared")
	}
	v := &View{
		Name:          decl.Name,
		FieldName:     decl.FieldName,
		Root:          decl.Root,
		Relationships: make([]*Relationship, len(decl.Relationships)),
	}
	seen[name] = v
	for i, declRel := range decl.Relationships {
		rel, err := r.linkRelationship(v, declRel, seen)
		if err != nil {
			return nil, err
		}
		v.Relationships[i] = rel
	}
	return v, nil
}

func (r *Registry) linkRelationship(owner *View, decl *Relationship, seen map[string]*View) (*Relationship, error) {
	if decl.Field == "" {
		return nil, newMetadataError(owner.Name, "relationship without a field name")
	}
	if decl.MaxDepth < 0 {
		return nil, newMetadataError(owner.Name, "relationship %s: negative max depth", decl.Field)
	}
	if decl.IsRich() {
		if decl.TargetField == "" {
			return nil, newMetadataError(owner.Name, "rich edge %s omits its target field", decl.Field)
		}
		for _, p := range decl.Properties {
			if p == decl.TargetField {
				return nil, newMetadataError(owner.Name, "rich edge %s declares its target field %q as an edge property", decl.Field, decl.TargetField)
			}
		}
	}
	rel := &Relationship{
		Field:       decl.Field,
		Type:        decl.Type,
		Direction:   decl.Direction,
		Unique:      decl.Unique,
		Required:    decl.Required,
		Target:      decl.Target,
		MaxDepth:    decl.MaxDepth,
		Properties:  decl.Properties,
		TargetField: decl.TargetField,
		OrderBy:     decl.OrderBy,
	}
	if f, ok := r.fragments[decl.Target]; ok {
		rel.Fragment = f
		return rel, nil
	}
	if _, ok := r.views[decl.Target]; ok {
		tv, err := r.link(decl.Target, seen)
		if err != nil {
			return nil, err
		}
		rel.View = tv
		rel.Recursive = tv == owner
		return rel, nil
	}
	return nil, newMetadataError(owner.Name, "relationship %s: target %q is neither a fragment nor a view", decl.Field, decl.Target)
}

func validateFragment(f *Fragment) error {
	if f == nil {
		return newMetadataError("?", "nil fragment")
	}
	if f.Name == "" {
		return newMetadataError("?", "fragment without a name")
	}
	if len(f.Labels) == 0 {
		return newMetadataError(f.Name, "fragment declares zero labels")
	}
	for _, l := range f.Labels {
		if l == "" {
			return newMetadataError(f.Name, "fragment declares an empty label")
		}
	}
	if f.ID == "" {
		return newMetadataError(f.Name, "fragment without an identity property")
	}
	if !f.Wildcard && len(f.Fields) > 0 && !f.HasField(f.ID) {
		return newMetadataError(f.Name, "identity property %q is not a declared field", f.ID)
	}
	return nil
}
