package store_test

import (
	"testing"

	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/store"
)

func TestNewRegistry(t *testing.T) {
	r := store.NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil Registry")
	}
	if len(r.AllRelationships()) != 0 {
		t.Errorf("expected empty registry, got %d relationships", len(r.AllRelationships()))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := store.NewRegistry()
	r.Register(store.Relationship{ParentKind: keys.Institution, ChildKind: keys.Program})

	rels := r.AllRelationships()
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
	if rels[0].ParentKind != keys.Institution || rels[0].ChildKind != keys.Program {
		t.Errorf("unexpected relationship %+v", rels[0])
	}
}

func TestRegistry_ChildrenOf(t *testing.T) {
	r := store.NewRegistry()
	r.Register(store.Relationship{ParentKind: keys.Institution, ChildKind: keys.Program})
	r.Register(store.Relationship{ParentKind: keys.Institution, ChildKind: keys.Procedure})

	children := r.ChildrenOf(keys.Institution)
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[0].ChildKind != keys.Program || children[1].ChildKind != keys.Procedure {
		t.Errorf("expected registration order preserved, got %+v", children)
	}

	if got := r.ChildrenOf(keys.Program); len(got) != 0 {
		t.Errorf("expected no children for programs, got %+v", got)
	}
}

func TestRegistry_HasChildren(t *testing.T) {
	r := store.NewRegistry()
	r.Register(store.Relationship{ParentKind: keys.Institution, ChildKind: keys.Project})

	if !r.HasChildren(keys.Institution) {
		t.Error("expected institution to have children")
	}
	if r.HasChildren(keys.Project) {
		t.Error("expected project to have no children")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := store.DefaultRegistry()

	children := r.ChildrenOf(keys.Institution)
	want := []keys.Kind{keys.Program, keys.Project, keys.Procedure}
	if len(children) != len(want) {
		t.Fatalf("expected %d child kinds, got %+v", len(want), children)
	}
	for i, kind := range want {
		if children[i].ChildKind != kind {
			t.Errorf("child %d: expected %s, got %s", i, kind, children[i].ChildKind)
		}
		if children[i].ParentKind != keys.Institution {
			t.Errorf("child %d: expected parent institucion, got %s", i, children[i].ParentKind)
		}
	}

	for _, kind := range want {
		if r.HasChildren(kind) {
			t.Errorf("expected %s to be a leaf", kind)
		}
	}
	if len(r.AllRelationships()) != 3 {
		t.Errorf("expected 3 relationships, got %d", len(r.AllRelationships()))
	}
}

func TestStore_WithRegistry(t *testing.T) {
	custom := store.NewRegistry()
	custom.Register(store.Relationship{ParentKind: keys.Institution, ChildKind: keys.Program})

	s, _ := newTestStore(t, store.DefaultConfig(), store.WithRegistry(custom))
	if s.Registry() != custom {
		t.Error("expected the injected registry")
	}

	s, _ = newTestStore(t, store.DefaultConfig(), store.WithRegistry(nil))
	if len(s.Registry().ChildrenOf(keys.Institution)) != 3 {
		t.Error("expected a nil registry to keep the default")
	}
}
