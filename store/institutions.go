package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
)

// Institution is the root entity. It anchors the partition its children live in.
type Institution struct {
	Keys      `json:"-"`
	IndexKeys `json:"-"`

	ID           string `dynamodbav:"id_institucion" json:"id_institucion"`
	Name         string `dynamodbav:"nombre" json:"nombre"`
	Department   string `dynamodbav:"departamento_sede" json:"departamento_sede"`
	Municipality string `dynamodbav:"municipio_sede" json:"municipio_sede"`
	Phone        string `dynamodbav:"telefono,omitempty" json:"telefono,omitempty"`
	Email        string `dynamodbav:"correo" json:"correo"`
	Meta
}

// InstitutionInput carries the fields of a new institution.
type InstitutionInput struct {
	Name         string
	Department   string
	Municipality string
	Phone        string
	Email        string
}

// InstitutionPatch lists the institution fields a partial update may set.
// Nil fields are left untouched.
type InstitutionPatch struct {
	Name         *string
	Department   *string
	Municipality *string
	Phone        *string
	Email        *string
}

func (p InstitutionPatch) fields() []Field {
	var f []Field
	f = appendString(f, "nombre", p.Name)
	f = appendString(f, "departamento_sede", p.Department)
	f = appendString(f, "municipio_sede", p.Municipality)
	f = appendString(f, "telefono", p.Phone)
	f = appendString(f, "correo", p.Email)
	return f
}

// InstitutionListItem is the listing projection of an institution.
type InstitutionListItem struct {
	ID      string `json:"id_institucion"`
	Name    string `json:"nombre"`
	Enabled bool   `json:"habil"`
}

func (i *Institution) project() (bool, InstitutionListItem) {
	return i.Enabled, InstitutionListItem{ID: i.ID, Name: i.Name, Enabled: i.Enabled}
}

// InstitutionRepository implements the institution access patterns.
type InstitutionRepository struct {
	s *Store
}

// Create stores a new enabled institution under a generated id.
func (r *InstitutionRepository) Create(ctx context.Context, in InstitutionInput) (*Institution, error) {
	id := r.s.newID(keys.Institution)
	pk, sk := keys.PrimaryKey(keys.Institution, id, "")
	gpk, gsk := keys.IndexKey(keys.Institution, id)
	now := r.s.timestamp()

	rec := &Institution{
		Keys:         Keys{PK: pk, SK: sk},
		IndexKeys:    IndexKeys{GSI1PK: gpk, GSI1SK: gsk},
		ID:           id,
		Name:         in.Name,
		Department:   in.Department,
		Municipality: in.Municipality,
		Phone:        in.Phone,
		Email:        in.Email,
		Meta:         Meta{Enabled: true, CreatedAt: now, UpdatedAt: now},
	}
	if err := r.s.put(ctx, "create institucion", rec); err != nil {
		return nil, fmt.Errorf("create institucion: %w", err)
	}

	r.s.logger.Info("institucion created", zap.String("id", id), zap.String("PK", pk))
	return rec, nil
}

// GetByID reads an institution by primary key; its id alone determines the key.
func (r *InstitutionRepository) GetByID(ctx context.Context, id string) (*Institution, error) {
	return locate[Institution](ctx, r.s, keys.Institution, id)
}

// List returns every institution from the collection partition of GSI1.
func (r *InstitutionRepository) List(ctx context.Context, opts ListOptions) ([]InstitutionListItem, error) {
	items, err := r.s.queryIndexPartition(ctx, keys.InstitutionCollection)
	if err != nil {
		return nil, fmt.Errorf("list institucion: %w", err)
	}
	return collect(items, opts, (*Institution).project)
}

// Update merges the patch into the stored institution and returns the result.
func (r *InstitutionRepository) Update(ctx context.Context, id string, patch InstitutionPatch) (*Institution, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := patch.fields()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	var updated Institution
	if err := r.s.update(ctx, "update institucion", current.Keys, fields, &updated); err != nil {
		return nil, fmt.Errorf("update institucion %s: %w", id, err)
	}
	return &updated, nil
}

// SetEnabled enables or disables an institution.
func (r *InstitutionRepository) SetEnabled(ctx context.Context, id string, enabled bool) (*Confirmation, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.s.setEnabled(ctx, keys.Institution, id, current.Keys, enabled)
}
