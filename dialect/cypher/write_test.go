package cypher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphmap"
	"github.com/syssam/graphmap/dialect/cypher"
	"github.com/syssam/graphmap/schema"
)

// stubTracker is a canned Tracker: dirty fields and relationship snapshots
// are keyed by "kind/id" (plus "/field" for relations). Identities without a
// dirty entry report every field dirty, matching untracked objects.
type stubTracker struct {
	dirty     map[string][]string
	relations map[string][]any
}

func (s *stubTracker) DirtyFields(kind, id string, fields []string, _ map[string]any) ([]string, error) {
	if d, ok := s.dirty[kind+"/"+id]; ok {
		return d, nil
	}
	return fields, nil
}

func (s *stubTracker) Relation(kind, id, field string) ([]any, bool) {
	r, ok := s.relations[kind+"/"+id+"/"+field]
	return r, ok
}

func texts(stmts []*cypher.Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Text
	}
	return out
}

func TestCompileSaveFullWrite(t *testing.T) {
	t.Parallel()

	v := issueView(t)
	stmts, err := cypher.CompileSave(cypher.SaveSpec{
		View: v,
		Object: graphmap.Object{
			"id":    "i1",
			"title": "Bug",
			"assignedTo": []any{
				map[string]any{"id": "p1", "name": "Alice"},
				map[string]any{"id": "p2", "name": "Bob"},
			},
			"raisedBy": map[string]any{"id": "p3", "name": "Carol"},
		},
		Policy: graphmap.CascadeNone,
	})
	require.NoError(t, err)

	// Root merge first, then per relationship in declaration order: each
	// added target is merged before its edge.
	require.Equal(t, []string{
		"MERGE (n:Issue {id: $id}) SET n.title = $title",
		"MERGE (n:Person {id: $id}) SET n.name = $name",
		"MATCH (n:Issue {id: $from_id}) MATCH (m:Person {id: $to_id}) MERGE (n)-[:ASSIGNED_TO]->(m)",
		"MERGE (n:Person {id: $id}) SET n.name = $name",
		"MATCH (n:Issue {id: $from_id}) MATCH (m:Person {id: $to_id}) MERGE (n)-[:ASSIGNED_TO]->(m)",
		"MERGE (n:Person {id: $id}) SET n.name = $name",
		"MATCH (n:Issue {id: $from_id}) MATCH (m:Person {id: $to_id}) MERGE (n)-[:RAISED_BY]->(m)",
	}, texts(stmts))

	assert.Equal(t, map[string]any{"id": "i1", "title": "Bug"}, stmts[0].Params)
	assert.Equal(t, map[string]any{"id": "p1", "name": "Alice"}, stmts[1].Params)
	assert.Equal(t, map[string]any{"from_id": "i1", "to_id": "p1"}, stmts[2].Params)
	assert.Equal(t, map[string]any{"from_id": "i1", "to_id": "p3"}, stmts[6].Params)
}

func TestCompileSaveDirtyFields(t *testing.T) {
	t.Parallel()

	v := issueView(t)

	t.Run("subset", func(t *testing.T) {
		t.Parallel()
		tr := &stubTracker{dirty: map[string][]string{"Issue/i1": {"title"}}}
		stmts, err := cypher.CompileSave(cypher.SaveSpec{
			View:    v,
			Object:  graphmap.Object{"id": "i1", "title": "Bug"},
			Tracker: tr,
			Policy:  graphmap.CascadeNone,
		})
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		assert.Equal(t, "MERGE (n:Issue {id: $id}) SET n.title = $title", stmts[0].Text)
	})

	t.Run("clean object still merges the node", func(t *testing.T) {
		t.Parallel()
		tr := &stubTracker{dirty: map[string][]string{"Issue/i1": {}}}
		stmts, err := cypher.CompileSave(cypher.SaveSpec{
			View:    v,
			Object:  graphmap.Object{"id": "i1", "title": "Bug"},
			Tracker: tr,
			Policy:  graphmap.CascadeNone,
		})
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		assert.Equal(t, "MERGE (n:Issue {id: $id})", stmts[0].Text)
		assert.Equal(t, map[string]any{"id": "i1"}, stmts[0].Params)
	})
}

// friendsView compiles a Person view with one friends collection, the shape
// used by the cascade scenarios.
func friendsView(t *testing.T) *schema.View {
	t.Helper()
	r := schema.NewRegistry()
	require.NoError(t, r.AddFragment(&schema.Fragment{
		Name: "Person", Labels: []string{"Person"}, ID: "id", Fields: []string{"id", "name"},
	}))
	require.NoError(t, r.AddView(&schema.View{
		Name:      "Profile",
		FieldName: "person",
		Root: &schema.Fragment{
			Name: "Person", Labels: []string{"Person"}, ID: "id", Fields: []string{"id", "name"},
		},
		Relationships: []*schema.Relationship{
			{Field: "friends", Target: "Person"},
		},
	}))
	v, err := r.View("Profile")
	require.NoError(t, err)
	return v
}

func TestCompileSaveCascade(t *testing.T) {
	t.Parallel()

	// Alice was tracked with Bob as a friend; the current object no longer
	// holds him.
	spec := func(t *testing.T, policy graphmap.CascadePolicy) cypher.SaveSpec {
		return cypher.SaveSpec{
			View:   friendsView(t),
			Object: graphmap.Object{"id": "alice", "name": "Alice", "friends": []any{}},
			Tracker: &stubTracker{
				dirty:     map[string][]string{"Person/alice": {}},
				relations: map[string][]any{"Person/alice/friends": {"bob"}},
			},
			Policy: policy,
		}
	}

	t.Run("none deletes only the edge", func(t *testing.T) {
		t.Parallel()
		stmts, err := cypher.CompileSave(spec(t, graphmap.CascadeNone))
		require.NoError(t, err)
		require.Equal(t, []string{
			"MERGE (n:Person {id: $id})",
			"MATCH (n:Person {id: $from_id})-[r:FRIENDS]->(m:Person {id: $to_id}) DELETE r",
		}, texts(stmts))
		assert.Equal(t, map[string]any{"from_id": "alice", "to_id": "bob"}, stmts[1].Params)
	})

	t.Run("delete all detaches the target", func(t *testing.T) {
		t.Parallel()
		stmts, err := cypher.CompileSave(spec(t, graphmap.CascadeDeleteAll))
		require.NoError(t, err)
		require.Equal(t, []string{
			"MERGE (n:Person {id: $id})",
			"MATCH (m:Person {id: $to_id}) DETACH DELETE m",
		}, texts(stmts))
	})

	t.Run("delete orphan checks connectivity", func(t *testing.T) {
		t.Parallel()
		stmts, err := cypher.CompileSave(spec(t, graphmap.CascadeDeleteOrphan))
		require.NoError(t, err)
		require.Equal(t, []string{
			"MERGE (n:Person {id: $id})",
			"MATCH (n:Person {id: $from_id})-[r:FRIENDS]->(m:Person {id: $to_id}) DELETE r",
			"MATCH (m:Person {id: $to_id}) WHERE NOT EXISTS { (m)--() } DELETE m",
		}, texts(stmts))
	})

	t.Run("preserve keeps the edge", func(t *testing.T) {
		t.Parallel()
		stmts, err := cypher.CompileSave(spec(t, graphmap.CascadePreserve))
		require.NoError(t, err)
		require.Equal(t, []string{"MERGE (n:Person {id: $id})"}, texts(stmts))
	})
}

func TestCompileSaveUntouchedItems(t *testing.T) {
	t.Parallel()

	// Bob is present on both sides of the diff: no removal, no addition.
	stmts, err := cypher.CompileSave(cypher.SaveSpec{
		View: friendsView(t),
		Object: graphmap.Object{
			"id": "alice", "name": "Alice",
			"friends": []any{map[string]any{"id": "bob", "name": "Bob"}},
		},
		Tracker: &stubTracker{
			dirty:     map[string][]string{"Person/alice": {}},
			relations: map[string][]any{"Person/alice/friends": {"bob"}},
		},
		Policy: graphmap.CascadeNone,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"MERGE (n:Person {id: $id})"}, texts(stmts))
}

func TestCompileSaveRichEdge(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.NoError(t, r.AddFragment(&schema.Fragment{
		Name: "Person", Labels: []string{"Person"}, ID: "id", Fields: []string{"id", "name"},
	}))
	require.NoError(t, r.AddView(&schema.View{
		Name:      "Issue",
		FieldName: "issue",
		Root:      &schema.Fragment{Name: "Issue", Labels: []string{"Issue"}, ID: "id", Fields: []string{"id"}},
		Relationships: []*schema.Relationship{
			{Field: "assignedTo", Target: "Person", Properties: []string{"since"}, TargetField: "person"},
		},
	}))
	v, err := r.View("Issue")
	require.NoError(t, err)

	stmts, err := cypher.CompileSave(cypher.SaveSpec{
		View: v,
		Object: graphmap.Object{
			"id": "i1",
			"assignedTo": []any{
				map[string]any{
					"since":  2024,
					"person": map[string]any{"id": "p1", "name": "Alice"},
				},
			},
		},
		Policy: graphmap.CascadeNone,
	})
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t,
		"MATCH (n:Issue {id: $from_id}) MATCH (m:Person {id: $to_id}) MERGE (n)-[r:ASSIGNED_TO]->(m) SET r.since = $since",
		stmts[2].Text,
	)
	assert.Equal(t, map[string]any{"from_id": "i1", "to_id": "p1", "since": 2024}, stmts[2].Params)
}

func TestCompileSaveNestedView(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.NoError(t, r.AddFragment(&schema.Fragment{
		Name: "Person", Labels: []string{"Person"}, ID: "id", Fields: []string{"id", "name"},
	}))
	require.NoError(t, r.AddView(&schema.View{
		Name:      "Team",
		FieldName: "team",
		Root:      &schema.Fragment{Name: "Team", Labels: []string{"Team"}, ID: "id", Fields: []string{"id", "name"}},
		Relationships: []*schema.Relationship{
			{Field: "members", Target: "Person"},
		},
	}))
	require.NoError(t, r.AddView(&schema.View{
		Name:      "Org",
		FieldName: "org",
		Root:      &schema.Fragment{Name: "Org", Labels: []string{"Org"}, ID: "id", Fields: []string{"id", "name"}},
		Relationships: []*schema.Relationship{
			{Field: "teams", Target: "Team"},
		},
	}))
	v, err := r.View("Org")
	require.NoError(t, err)

	stmts, err := cypher.CompileSave(cypher.SaveSpec{
		View: v,
		Object: graphmap.Object{
			"id": "o1", "name": "Acme",
			"teams": []any{map[string]any{
				"id": "t1", "name": "Core",
				"members": []any{map[string]any{"id": "p1", "name": "Alice"}},
			}},
		},
		Policy: graphmap.CascadeNone,
	})
	require.NoError(t, err)

	// The nested team graph is persisted in full before the org->team edge.
	require.Equal(t, []string{
		"MERGE (n:Org {id: $id}) SET n.name = $name",
		"MERGE (n:Team {id: $id}) SET n.name = $name",
		"MERGE (n:Person {id: $id}) SET n.name = $name",
		"MATCH (n:Team {id: $from_id}) MATCH (m:Person {id: $to_id}) MERGE (n)-[:MEMBERS]->(m)",
		"MATCH (n:Org {id: $from_id}) MATCH (m:Team {id: $to_id}) MERGE (n)-[:TEAMS]->(m)",
	}, texts(stmts))
}

func TestCompileSaveErrors(t *testing.T) {
	t.Parallel()

	v := issueView(t)

	t.Run("missing identity", func(t *testing.T) {
		t.Parallel()
		_, err := cypher.CompileSave(cypher.SaveSpec{
			View:   v,
			Object: graphmap.Object{"title": "Bug"},
			Policy: graphmap.CascadeNone,
		})
		require.Error(t, err)
		assert.True(t, graphmap.IsNotFound(err))
	})

	t.Run("unresolvable identity value", func(t *testing.T) {
		t.Parallel()
		_, err := cypher.CompileSave(cypher.SaveSpec{
			View:   v,
			Object: graphmap.Object{"id": struct{}{}},
			Policy: graphmap.CascadeNone,
		})
		require.Error(t, err)
		assert.True(t, graphmap.IsNotFound(err))
	})

	t.Run("missing item identity", func(t *testing.T) {
		t.Parallel()
		_, err := cypher.CompileSave(cypher.SaveSpec{
			View: v,
			Object: graphmap.Object{
				"id":         "i1",
				"title":      "Bug",
				"assignedTo": []any{map[string]any{"name": "Alice"}},
			},
			Policy: graphmap.CascadeNone,
		})
		require.Error(t, err)
		assert.True(t, graphmap.IsNotFound(err))
	})

	t.Run("non-object item", func(t *testing.T) {
		t.Parallel()
		// A bare identity value where an object is expected is an
		// error, not a skipped item.
		_, err := cypher.CompileSave(cypher.SaveSpec{
			View: v,
			Object: graphmap.Object{
				"id":         "i1",
				"title":      "Bug",
				"assignedTo": []any{"p1"},
			},
			Policy: graphmap.CascadeNone,
		})
		require.Error(t, err)
		assert.True(t, graphmap.IsNotFound(err))
	})

	t.Run("invalid policy", func(t *testing.T) {
		t.Parallel()
		_, err := cypher.CompileSave(cypher.SaveSpec{
			View:   v,
			Object: graphmap.Object{"id": "i1"},
			Policy: graphmap.CascadePolicy(42),
		})
		require.Error(t, err)
		assert.True(t, graphmap.IsSchemaError(err))
	})

	t.Run("nil view", func(t *testing.T) {
		t.Parallel()
		_, err := cypher.CompileSave(cypher.SaveSpec{Object: graphmap.Object{"id": "i1"}})
		require.Error(t, err)
		assert.True(t, graphmap.IsSchemaError(err))
	})
}

func TestCollectSnapshots(t *testing.T) {
	t.Parallel()

	v := issueView(t)
	out, err := cypher.CollectSnapshots(v, graphmap.Object{
		"id":    "i1",
		"title": "Bug",
		"assignedTo": []any{
			map[string]any{"id": "p1", "name": "Alice"},
		},
		"raisedBy": map[string]any{"id": "p2", "name": "Bob"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	root := out[0]
	assert.Equal(t, "Issue", root.Kind)
	assert.Equal(t, "i1", root.ID)
	assert.Equal(t, map[string]any{"title": "Bug"}, root.Snapshot.Properties)
	assert.Equal(t, map[string][]any{
		"assignedTo": {"p1"},
		"raisedBy":   {"p2"},
	}, root.Snapshot.Relations)
}

func TestCollectSnapshotsNested(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.NoError(t, r.AddFragment(&schema.Fragment{
		Name: "Person", Labels: []string{"Person"}, ID: "id", Fields: []string{"id", "name"},
	}))
	require.NoError(t, r.AddView(&schema.View{
		Name:      "Team",
		FieldName: "team",
		Root:      &schema.Fragment{Name: "Team", Labels: []string{"Team"}, ID: "id", Fields: []string{"id", "name"}},
		Relationships: []*schema.Relationship{
			{Field: "members", Target: "Person"},
		},
	}))
	require.NoError(t, r.AddView(&schema.View{
		Name:      "Org",
		FieldName: "org",
		Root:      &schema.Fragment{Name: "Org", Labels: []string{"Org"}, ID: "id", Fields: []string{"id", "name"}},
		Relationships: []*schema.Relationship{
			{Field: "teams", Target: "Team"},
		},
	}))
	v, err := r.View("Org")
	require.NoError(t, err)

	out, err := cypher.CollectSnapshots(v, graphmap.Object{
		"id": "o1", "name": "Acme",
		"teams": []any{map[string]any{
			"id": "t1", "name": "Core",
			"members": []any{map[string]any{"id": "p1", "name": "Alice"}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Nested roots are collected before their parents.
	assert.Equal(t, "Team", out[0].Kind)
	assert.Equal(t, "t1", out[0].ID)
	assert.Equal(t, []any{"p1"}, out[0].Snapshot.Relations["members"])
	assert.Equal(t, "Org", out[1].Kind)
	assert.Equal(t, map[string][]any{"teams": {"t1"}}, out[1].Snapshot.Relations)
}
