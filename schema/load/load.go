// Package load reads declarative YAML schema documents into graphmap
// metadata descriptors. It is a convenience front end for the schema
// Registry; callers that extract metadata some other way can construct
// descriptors directly and skip this package.
//
// A document declares fragments and views:
//
//	fragments:
//	  - name: Person
//	    labels: [Person]
//	    id: id
//	    fields: [id, name]
//	views:
//	  - name: Issue
//	    field: issue
//	    root:
//	      name: Issue
//	      labels: [Issue]
//	      id: id
//	      fields: [id, title]
//	    relationships:
//	      - field: assignedTo
//	        target: Person
//	      - field: raisedBy
//	        target: Person
//	        unique: true
//	        required: true
package load

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/graphmap/schema"
)

// Document is one parsed schema file.
type Document struct {
	Fragments []Fragment `yaml:"fragments"`
	Views     []View     `yaml:"views"`
}

// Fragment is the YAML form of a schema.Fragment.
type Fragment struct {
	Name     string   `yaml:"name"`
	Labels   []string `yaml:"labels"`
	ID       string   `yaml:"id"`
	Fields   []string `yaml:"fields"`
	Wildcard bool     `yaml:"wildcard"`
}

// View is the YAML form of a schema.View.
type View struct {
	Name          string         `yaml:"name"`
	Field         string         `yaml:"field"`
	Root          Fragment       `yaml:"root"`
	Relationships []Relationship `yaml:"relationships"`
}

// Relationship is the YAML form of a schema.Relationship declaration.
type Relationship struct {
	Field       string   `yaml:"field"`
	Type        string   `yaml:"type"`
	Direction   string   `yaml:"direction"`
	Target      string   `yaml:"target"`
	Unique      bool     `yaml:"unique"`
	Required    bool     `yaml:"required"`
	MaxDepth    int      `yaml:"maxDepth"`
	Properties  []string `yaml:"properties"`
	TargetField string   `yaml:"targetField"`
	OrderBy     *Sort    `yaml:"orderBy"`
}

// Sort is the YAML form of a declared collection sort.
type Sort struct {
	Property  string `yaml:"property"`
	Ascending bool   `yaml:"ascending"`
}

// Parse decodes one YAML schema document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("graphmap: load: %w", err)
	}
	return &doc, nil
}

// ParseFile reads and decodes one YAML schema file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graphmap: load: %w", err)
	}
	return Parse(data)
}

// Registry builds a fresh registry from the document. Declarations are
// validated by the registry; the first invalid one aborts the build.
func (d *Document) Registry() (*schema.Registry, error) {
	r := schema.NewRegistry()
	if err := d.Apply(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Apply declares the document's fragments and views on an existing
// registry.
func (d *Document) Apply(r *schema.Registry) error {
	for i := range d.Fragments {
		if err := r.AddFragment(d.Fragments[i].model()); err != nil {
			return err
		}
	}
	for i := range d.Views {
		v, err := d.Views[i].model()
		if err != nil {
			return err
		}
		if err := r.AddView(v); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fragment) model() *schema.Fragment {
	return &schema.Fragment{
		Name:     f.Name,
		Labels:   f.Labels,
		ID:       f.ID,
		Fields:   f.Fields,
		Wildcard: f.Wildcard,
	}
}

func (v *View) model() (*schema.View, error) {
	root := v.Root.model()
	if root.Name == "" {
		root.Name = v.Name
	}
	out := &schema.View{
		Name:          v.Name,
		FieldName:     v.Field,
		Root:          root,
		Relationships: make([]*schema.Relationship, len(v.Relationships)),
	}
	for i := range v.Relationships {
		rel, err := v.Relationships[i].model(v.Name)
		if err != nil {
			return nil, err
		}
		out.Relationships[i] = rel
	}
	return out, nil
}

func (r *Relationship) model(view string) (*schema.Relationship, error) {
	dir, err := parseDirection(r.Direction)
	if err != nil {
		return nil, fmt.Errorf("graphmap: load: view %s, relationship %s: %w", view, r.Field, err)
	}
	rel := &schema.Relationship{
		Field:       r.Field,
		Type:        r.Type,
		Direction:   dir,
		Unique:      r.Unique,
		Required:    r.Required,
		Target:      r.Target,
		MaxDepth:    r.MaxDepth,
		Properties:  r.Properties,
		TargetField: r.TargetField,
	}
	if r.OrderBy != nil {
		rel.OrderBy = &schema.SortSpec{
			Path:      r.Field,
			Property:  r.OrderBy.Property,
			Ascending: r.OrderBy.Ascending,
		}
	}
	return rel, nil
}

func parseDirection(s string) (schema.Direction, error) {
	switch strings.ToUpper(s) {
	case "", "OUTGOING":
		return schema.Outgoing, nil
	case "INCOMING":
		return schema.Incoming, nil
	case "UNDIRECTED":
		return schema.Undirected, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}
