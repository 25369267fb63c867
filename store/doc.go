// Package store provides single-table DynamoDB access for the catalog of
// institutions and the programs, projects and procedures they offer.
//
// Every record lives in one table. An institution anchors its own partition
// and its children are stored inside it, so listing an institution's programs
// is one partition query. Every record also carries a GSI1 key derived from
// its own id, so any record can be read by id alone.
//
// # Repositories
//
// A [Store] is created once at startup and hands out one repository per kind:
//
//	s := store.New(client, store.DefaultConfig(), store.WithLogger(logger))
//	prg, err := s.Programs().Create(ctx, store.ProgramInput{
//	    InstitutionID: "INST-a1b2c3d4",
//	    Name:          "Becas",
//	})
//
// Each repository offers Create, GetByID, a listing (List for institutions,
// ListByParent for children), Update with a typed patch, and SetEnabled.
//
// # Logical delete
//
// Records are never removed. Disabling sets habil=false and refreshes
// fecha_actualizacion; enabling reverses it. Both are idempotent. Listings
// filter on habil in memory after retrieval.
//
// # Missing parent ids
//
// A child listing without an institution id fails with [ErrParentRequired]
// unless the deployment selects [MissingParentScan].
//
// # Errors
//
//   - [ErrNotFound] - no record matches the id
//   - [ErrNoFieldsToUpdate] - the patch sets nothing
//   - [ErrParentRequired] - a child operation has no institution id
//   - [ErrAlreadyExists] - a create collided with an existing key
//   - [ErrStoreUnavailable] - DynamoDB could not be reached in time
//   - [*WriteError] - DynamoDB rejected or failed a write
package store
