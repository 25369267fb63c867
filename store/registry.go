package store

import "github.com/jacentio/catalog/internal/keys"

// Relationship declares that records of ChildKind live in the partition of a ParentKind record.
type Relationship struct {
	ParentKind keys.Kind
	ChildKind  keys.Kind
}

// Registry holds the known parent-child relationships used by cascades.
type Registry struct {
	relationships []Relationship
	byParent      map[keys.Kind][]Relationship
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		relationships: []Relationship{},
		byParent:      make(map[keys.Kind][]Relationship),
	}
}

// DefaultRegistry returns the catalog layout: programs, projects and
// procedures all belong to an institution.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, kind := range keys.Kinds() {
		if parent := kind.Parent(); parent != 0 {
			r.Register(Relationship{ParentKind: parent, ChildKind: kind})
		}
	}
	return r
}

// Register adds a relationship to the registry.
func (r *Registry) Register(rel Relationship) {
	r.relationships = append(r.relationships, rel)
	r.byParent[rel.ParentKind] = append(r.byParent[rel.ParentKind], rel)
}

// ChildrenOf returns all child relationships for a given parent kind.
func (r *Registry) ChildrenOf(parent keys.Kind) []Relationship {
	return r.byParent[parent]
}

// AllRelationships returns all registered relationships.
func (r *Registry) AllRelationships() []Relationship {
	return r.relationships
}

// HasChildren returns true if the parent kind has any registered child relationships.
func (r *Registry) HasChildren(parent keys.Kind) bool {
	return len(r.byParent[parent]) > 0
}
