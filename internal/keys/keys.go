// Package keys computes the single-table key layout shared by every entity kind.
//
// Every record lives in one table. Children are stored in their institution's
// partition so a parent listing is a single partition query, and every record
// carries a GSI1 key so it can be located by its own id alone.
package keys

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// Metadata is the sort key of a partition anchor and the GSI1 sort key of children.
	Metadata = "METADATA"

	// InstitutionCollection is the constant GSI1 partition holding every institution.
	InstitutionCollection = "INSTITUCIONES"

	separator = "#"
)

// Kind identifies one of the entity types stored in the table.
type Kind int

const (
	Institution Kind = iota + 1
	Program
	Project
	Procedure
)

type kindInfo struct {
	name     string
	tag      string
	idPrefix string
	idAttr   string
}

var kinds = map[Kind]kindInfo{
	Institution: {name: "institucion", tag: "INSTITUCION#", idPrefix: "INST-", idAttr: "id_institucion"},
	Program:     {name: "programa", tag: "PROGRAMA#", idPrefix: "PRG-", idAttr: "id_programa"},
	Project:     {name: "proyecto", tag: "PROYECTO#", idPrefix: "PRY-", idAttr: "id_proyecto"},
	Procedure:   {name: "tramite", tag: "TRAMITE#", idPrefix: "TRM-", idAttr: "id_tramite"},
}

// Kinds returns every known kind, root first.
func Kinds() []Kind {
	return []Kind{Institution, Program, Project, Procedure}
}

// String returns the lowercase kind name (e.g. "programa").
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// Tag returns the key prefix for the kind (e.g. "PROGRAMA#").
func (k Kind) Tag() string {
	return kinds[k].tag
}

// IDAttr returns the attribute name holding the entity id (e.g. "id_programa").
func (k Kind) IDAttr() string {
	return kinds[k].idAttr
}

// IsRoot reports whether the kind anchors its own partition.
func (k Kind) IsRoot() bool {
	return k == Institution
}

// Parent returns the parent kind, or zero for the root kind.
func (k Kind) Parent() Kind {
	if k.IsRoot() {
		return 0
	}
	return Institution
}

// Ref returns the type-qualified reference (e.g. "PROGRAMA#PRG-e5f6g7h8").
func Ref(kind Kind, id string) string {
	return kind.Tag() + id
}

// PrimaryKey returns the (PK, SK) pair for an entity.
// Root entities anchor their own partition; children live in their parent's.
func PrimaryKey(kind Kind, id, parentID string) (pk, sk string) {
	if kind.IsRoot() {
		return Ref(kind, id), Metadata
	}
	return Ref(kind.Parent(), parentID), Ref(kind, id)
}

// IndexKey returns the (GSI1PK, GSI1SK) pair for an entity.
// Children are indexed by their own reference. Institutions share the
// collection partition and are distinguished by their reference in GSI1SK.
func IndexKey(kind Kind, id string) (gsi1pk, gsi1sk string) {
	if kind.IsRoot() {
		return InstitutionCollection, Ref(kind, id)
	}
	return Ref(kind, id), Metadata
}

// BelongsToType reports whether a key starts with the kind's tag.
func BelongsToType(key string, kind Kind) bool {
	tag := kind.Tag()
	return tag != "" && strings.HasPrefix(key, tag)
}

// ParseRef splits a type-qualified reference into its kind and id.
func ParseRef(ref string) (Kind, string, bool) {
	for _, kind := range Kinds() {
		if BelongsToType(ref, kind) {
			id := ref[len(kind.Tag()):]
			if id == "" || strings.Contains(id, separator) {
				return 0, "", false
			}
			return kind, id, true
		}
	}
	return 0, "", false
}

// NewID generates a prefixed id for the kind (e.g. "PRG-e5f6a7b8").
// The suffix is the first 8 hex characters of a random UUID.
func NewID(kind Kind) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return kinds[kind].idPrefix + hex[:8]
}
