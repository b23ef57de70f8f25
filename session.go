package graphmap

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the last-known persisted state of one loaded, root-identified
// object: its scalar property values plus, per relationship field, the
// identity values of the items that were present when it was loaded or last
// saved.
type Snapshot struct {
	// Properties maps scalar field names to their persisted values.
	Properties map[string]any

	// Relations maps relationship field names to the identity values of the
	// previously persisted items.
	Relations map[string][]any
}

type sessionKey struct {
	kind string
	id   string
}

type sessionEntry struct {
	props map[string]any
	enc   map[string][]byte // msgpack encoding of props, computed at Track time
	rels  map[string][]any
}

// Session is the per-unit-of-work identity map. It tracks, per (type,
// identity) pair, the serialized property snapshot and relationship item
// identities used for dirty-field computation and relationship diffing.
//
// A Session is deliberately not safe for concurrent use: create one per unit
// of work (one logical transaction) and discard it afterwards. Concurrent
// saves against the same Session are undefined behavior.
type Session struct {
	entries map[sessionKey]*sessionEntry
}

// NewSession returns an empty identity map.
func NewSession() *Session {
	return &Session{entries: make(map[sessionKey]*sessionEntry)}
}

// Track records snap as the last persisted state of (kind, id), replacing
// any previous entry. Property values are serialized eagerly so that a value
// the store cannot represent fails here, not during a later dirty check.
func (s *Session) Track(kind, id string, snap Snapshot) error {
	e := &sessionEntry{
		props: make(map[string]any, len(snap.Properties)),
		enc:   make(map[string][]byte, len(snap.Properties)),
		rels:  make(map[string][]any, len(snap.Relations)),
	}
	for name, v := range snap.Properties {
		b, err := msgpack.Marshal(v)
		if err != nil {
			return fmt.Errorf("graphmap: session: encode %s.%s: %w", kind, name, err)
		}
		e.props[name] = v
		e.enc[name] = b
	}
	for name, ids := range snap.Relations {
		e.rels[name] = append([]any(nil), ids...)
	}
	s.entries[sessionKey{kind: kind, id: id}] = e
	return nil
}

// IsTracked reports whether (kind, id) has a snapshot in this session.
func (s *Session) IsTracked(kind, id string) bool {
	_, ok := s.entries[sessionKey{kind: kind, id: id}]
	return ok
}

// Snapshot returns the tracked prior state of (kind, id).
func (s *Session) Snapshot(kind, id string) (Snapshot, bool) {
	e, ok := s.entries[sessionKey{kind: kind, id: id}]
	if !ok {
		return Snapshot{}, false
	}
	snap := Snapshot{
		Properties: make(map[string]any, len(e.props)),
		Relations:  make(map[string][]any, len(e.rels)),
	}
	for name, v := range e.props {
		snap.Properties[name] = v
	}
	for name, ids := range e.rels {
		snap.Relations[name] = append([]any(nil), ids...)
	}
	return snap, true
}

// Relation returns the tracked prior item identities of one relationship
// field. The second result is false when (kind, id) is untracked, which
// callers must read as "no snapshot: treat every current item as added".
func (s *Session) Relation(kind, id, field string) ([]any, bool) {
	e, ok := s.entries[sessionKey{kind: kind, id: id}]
	if !ok {
		return nil, false
	}
	return e.rels[field], true
}

// DirtyFields returns, in the order of fields, the names whose current value
// differs structurally from the tracked snapshot. An untracked (kind, id)
// marks every field dirty (full write). Comparison is between msgpack
// encodings, so numerically equal values of different in-memory shapes
// compare by their serialized form.
func (s *Session) DirtyFields(kind, id string, fields []string, current map[string]any) ([]string, error) {
	e, ok := s.entries[sessionKey{kind: kind, id: id}]
	if !ok {
		return append([]string(nil), fields...), nil
	}
	var dirty []string
	for _, name := range fields {
		prev, tracked := e.enc[name]
		cur, err := msgpack.Marshal(current[name])
		if err != nil {
			return nil, fmt.Errorf("graphmap: session: encode %s.%s: %w", kind, name, err)
		}
		if !tracked || !bytes.Equal(prev, cur) {
			dirty = append(dirty, name)
		}
	}
	return dirty, nil
}

// Evict removes the entry for (kind, id), if any.
func (s *Session) Evict(kind, id string) {
	delete(s.entries, sessionKey{kind: kind, id: id})
}

// Clear drops every entry. Call it when the unit of work ends if the Session
// instance is reused; creating a fresh Session is equivalent.
func (s *Session) Clear() {
	s.entries = make(map[sessionKey]*sessionEntry)
}

// Len returns the number of tracked entries.
func (s *Session) Len() int {
	return len(s.entries)
}
