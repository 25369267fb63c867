package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
)

// Program belongs to one institution and is stored in its partition.
type Program struct {
	Keys      `json:"-"`
	IndexKeys `json:"-"`

	ID            string `dynamodbav:"id_programa" json:"id_programa"`
	InstitutionID string `dynamodbav:"id_institucion" json:"id_institucion"`
	Name          string `dynamodbav:"nombre" json:"nombre"`
	Description   string `dynamodbav:"descripcion,omitempty" json:"descripcion,omitempty"`
	Meta
}

// ProgramInput carries the fields of a new program.
type ProgramInput struct {
	InstitutionID string
	Name          string
	Description   string
}

// ProgramPatch lists the program fields a partial update may set.
type ProgramPatch struct {
	Name        *string
	Description *string
}

func (p ProgramPatch) fields() []Field {
	var f []Field
	f = appendString(f, "nombre", p.Name)
	f = appendString(f, "descripcion", p.Description)
	return f
}

// ProgramListItem is the listing projection of a program.
type ProgramListItem struct {
	ID      string `json:"id_programa"`
	Name    string `json:"nombre"`
	Enabled bool   `json:"habil"`
}

func (p *Program) project() (bool, ProgramListItem) {
	return p.Enabled, ProgramListItem{ID: p.ID, Name: p.Name, Enabled: p.Enabled}
}

// ProgramRepository implements the program access patterns.
type ProgramRepository struct {
	s *Store
}

// Create stores a new enabled program in its institution's partition.
// The institution is not checked for existence.
func (r *ProgramRepository) Create(ctx context.Context, in ProgramInput) (*Program, error) {
	if in.InstitutionID == "" {
		return nil, fmt.Errorf("create programa: %w", ErrParentRequired)
	}

	id := r.s.newID(keys.Program)
	pk, sk := keys.PrimaryKey(keys.Program, id, in.InstitutionID)
	gpk, gsk := keys.IndexKey(keys.Program, id)
	now := r.s.timestamp()

	rec := &Program{
		Keys:          Keys{PK: pk, SK: sk},
		IndexKeys:     IndexKeys{GSI1PK: gpk, GSI1SK: gsk},
		ID:            id,
		InstitutionID: in.InstitutionID,
		Name:          in.Name,
		Description:   in.Description,
		Meta:          Meta{Enabled: true, CreatedAt: now, UpdatedAt: now},
	}
	if err := r.s.put(ctx, "create programa", rec); err != nil {
		return nil, fmt.Errorf("create programa: %w", err)
	}

	r.s.logger.Info("programa created", zap.String("id", id), zap.String("PK", pk), zap.String("SK", sk))
	return rec, nil
}

// GetByID reads a program through GSI1 without knowing its institution.
func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*Program, error) {
	return locate[Program](ctx, r.s, keys.Program, id)
}

// ListByParent returns the programs of one institution.
func (r *ProgramRepository) ListByParent(ctx context.Context, opts ListOptions) ([]ProgramListItem, error) {
	items, err := r.s.listChildren(ctx, keys.Program, opts.ParentID)
	if err != nil {
		return nil, err
	}
	return collect(items, opts, (*Program).project)
}

// Update merges the patch into the stored program and returns the result.
func (r *ProgramRepository) Update(ctx context.Context, id string, patch ProgramPatch) (*Program, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := patch.fields()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	var updated Program
	if err := r.s.update(ctx, "update programa", current.Keys, fields, &updated); err != nil {
		return nil, fmt.Errorf("update programa %s: %w", id, err)
	}
	return &updated, nil
}

// SetEnabled enables or disables a program.
func (r *ProgramRepository) SetEnabled(ctx context.Context, id string, enabled bool) (*Confirmation, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.s.setEnabled(ctx, keys.Program, id, current.Keys, enabled)
}
