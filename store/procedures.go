package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
)

// Procedure is a public procedure (trámite) offered by one institution.
type Procedure struct {
	Keys      `json:"-"`
	IndexKeys `json:"-"`

	ID            string   `dynamodbav:"id_tramite" json:"id_tramite"`
	InstitutionID string   `dynamodbav:"id_institucion" json:"id_institucion"`
	Name          string   `dynamodbav:"nombre_tramite" json:"nombre_tramite"`
	Description   string   `dynamodbav:"descripcion" json:"descripcion"`
	Type          string   `dynamodbav:"tipo_tramite" json:"tipo_tramite"`
	Channel       string   `dynamodbav:"canal_atencion" json:"canal_atencion"`
	Cost          string   `dynamodbav:"costo" json:"costo"`
	Requirements  []string `dynamodbav:"requisitos" json:"requisitos"`
	Meta
}

// ProcedureInput carries the fields of a new procedure.
type ProcedureInput struct {
	InstitutionID string
	Name          string
	Description   string
	Type          string
	Channel       string
	Cost          string
	Requirements  []string
}

// ProcedurePatch lists the procedure fields a partial update may set.
// A non-nil Requirements replaces the whole list.
type ProcedurePatch struct {
	Name         *string
	Description  *string
	Type         *string
	Channel      *string
	Cost         *string
	Requirements *[]string
}

func (p ProcedurePatch) fields() []Field {
	var f []Field
	f = appendString(f, "nombre_tramite", p.Name)
	f = appendString(f, "descripcion", p.Description)
	f = appendString(f, "tipo_tramite", p.Type)
	f = appendString(f, "canal_atencion", p.Channel)
	f = appendString(f, "costo", p.Cost)
	f = appendStrings(f, "requisitos", p.Requirements)
	return f
}

// ProcedureListItem is the listing projection of a procedure.
type ProcedureListItem struct {
	ID      string `json:"id_tramite"`
	Name    string `json:"nombre_tramite"`
	Enabled bool   `json:"habil"`
}

func (p *Procedure) project() (bool, ProcedureListItem) {
	return p.Enabled, ProcedureListItem{ID: p.ID, Name: p.Name, Enabled: p.Enabled}
}

// ProcedureRepository implements the procedure access patterns.
type ProcedureRepository struct {
	s *Store
}

// Create stores a new enabled procedure in its institution's partition.
func (r *ProcedureRepository) Create(ctx context.Context, in ProcedureInput) (*Procedure, error) {
	if in.InstitutionID == "" {
		return nil, fmt.Errorf("create tramite: %w", ErrParentRequired)
	}

	id := r.s.newID(keys.Procedure)
	pk, sk := keys.PrimaryKey(keys.Procedure, id, in.InstitutionID)
	gpk, gsk := keys.IndexKey(keys.Procedure, id)
	now := r.s.timestamp()

	requirements := in.Requirements
	if requirements == nil {
		requirements = []string{}
	}

	rec := &Procedure{
		Keys:          Keys{PK: pk, SK: sk},
		IndexKeys:     IndexKeys{GSI1PK: gpk, GSI1SK: gsk},
		ID:            id,
		InstitutionID: in.InstitutionID,
		Name:          in.Name,
		Description:   in.Description,
		Type:          in.Type,
		Channel:       in.Channel,
		Cost:          in.Cost,
		Requirements:  requirements,
		Meta:          Meta{Enabled: true, CreatedAt: now, UpdatedAt: now},
	}
	if err := r.s.put(ctx, "create tramite", rec); err != nil {
		return nil, fmt.Errorf("create tramite: %w", err)
	}

	r.s.logger.Info("tramite created", zap.String("id", id), zap.String("PK", pk), zap.String("SK", sk))
	return rec, nil
}

// GetByID reads a procedure through GSI1 without knowing its institution.
func (r *ProcedureRepository) GetByID(ctx context.Context, id string) (*Procedure, error) {
	return locate[Procedure](ctx, r.s, keys.Procedure, id)
}

// ListByParent returns the procedures of one institution.
func (r *ProcedureRepository) ListByParent(ctx context.Context, opts ListOptions) ([]ProcedureListItem, error) {
	items, err := r.s.listChildren(ctx, keys.Procedure, opts.ParentID)
	if err != nil {
		return nil, err
	}
	return collect(items, opts, (*Procedure).project)
}

// Update merges the patch into the stored procedure and returns the result.
func (r *ProcedureRepository) Update(ctx context.Context, id string, patch ProcedurePatch) (*Procedure, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := patch.fields()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	var updated Procedure
	if err := r.s.update(ctx, "update tramite", current.Keys, fields, &updated); err != nil {
		return nil, fmt.Errorf("update tramite %s: %w", id, err)
	}
	return &updated, nil
}

// SetEnabled enables or disables a procedure.
func (r *ProcedureRepository) SetEnabled(ctx context.Context, id string, enabled bool) (*Confirmation, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.s.setEnabled(ctx, keys.Procedure, id, current.Keys, enabled)
}
