package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
)

// Project belongs to one institution and is stored in its partition.
type Project struct {
	Keys      `json:"-"`
	IndexKeys `json:"-"`

	ID            string `dynamodbav:"id_proyecto" json:"id_proyecto"`
	InstitutionID string `dynamodbav:"id_institucion" json:"id_institucion"`
	Name          string `dynamodbav:"nombre" json:"nombre"`
	Description   string `dynamodbav:"descripcion,omitempty" json:"descripcion,omitempty"`
	Status        string `dynamodbav:"estado_proyecto" json:"estado_proyecto"`
	Meta
}

// ProjectInput carries the fields of a new project.
type ProjectInput struct {
	InstitutionID string
	Name          string
	Description   string
	Status        string
}

// ProjectPatch lists the project fields a partial update may set.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *string
}

func (p ProjectPatch) fields() []Field {
	var f []Field
	f = appendString(f, "nombre", p.Name)
	f = appendString(f, "descripcion", p.Description)
	f = appendString(f, "estado_proyecto", p.Status)
	return f
}

// ProjectListItem is the listing projection of a project.
type ProjectListItem struct {
	ID      string `json:"id_proyecto"`
	Name    string `json:"nombre"`
	Status  string `json:"estado_proyecto"`
	Enabled bool   `json:"habil"`
}

func (p *Project) project() (bool, ProjectListItem) {
	return p.Enabled, ProjectListItem{ID: p.ID, Name: p.Name, Status: p.Status, Enabled: p.Enabled}
}

// ProjectRepository implements the project access patterns.
type ProjectRepository struct {
	s *Store
}

// Create stores a new enabled project in its institution's partition.
func (r *ProjectRepository) Create(ctx context.Context, in ProjectInput) (*Project, error) {
	if in.InstitutionID == "" {
		return nil, fmt.Errorf("create proyecto: %w", ErrParentRequired)
	}

	id := r.s.newID(keys.Project)
	pk, sk := keys.PrimaryKey(keys.Project, id, in.InstitutionID)
	gpk, gsk := keys.IndexKey(keys.Project, id)
	now := r.s.timestamp()

	rec := &Project{
		Keys:          Keys{PK: pk, SK: sk},
		IndexKeys:     IndexKeys{GSI1PK: gpk, GSI1SK: gsk},
		ID:            id,
		InstitutionID: in.InstitutionID,
		Name:          in.Name,
		Description:   in.Description,
		Status:        in.Status,
		Meta:          Meta{Enabled: true, CreatedAt: now, UpdatedAt: now},
	}
	if err := r.s.put(ctx, "create proyecto", rec); err != nil {
		return nil, fmt.Errorf("create proyecto: %w", err)
	}

	r.s.logger.Info("proyecto created", zap.String("id", id), zap.String("PK", pk), zap.String("SK", sk))
	return rec, nil
}

// GetByID reads a project through GSI1 without knowing its institution.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*Project, error) {
	return locate[Project](ctx, r.s, keys.Project, id)
}

// ListByParent returns the projects of one institution.
func (r *ProjectRepository) ListByParent(ctx context.Context, opts ListOptions) ([]ProjectListItem, error) {
	items, err := r.s.listChildren(ctx, keys.Project, opts.ParentID)
	if err != nil {
		return nil, err
	}
	return collect(items, opts, (*Project).project)
}

// Update merges the patch into the stored project and returns the result.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch ProjectPatch) (*Project, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := patch.fields()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	var updated Project
	if err := r.s.update(ctx, "update proyecto", current.Keys, fields, &updated); err != nil {
		return nil, fmt.Errorf("update proyecto %s: %w", id, err)
	}
	return &updated, nil
}

// SetEnabled enables or disables a project.
func (r *ProjectRepository) SetEnabled(ctx context.Context, id string, enabled bool) (*Confirmation, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.s.setEnabled(ctx, keys.Project, id, current.Keys, enabled)
}
