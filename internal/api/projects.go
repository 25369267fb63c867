package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/store"
)

type createProjectRequest struct {
	IDInstitucion  string `json:"id_institucion" validate:"required"`
	Nombre         string `json:"nombre" validate:"required"`
	Descripcion    string `json:"descripcion"`
	EstadoProyecto string `json:"estado_proyecto" validate:"required"`
}

type updateProjectRequest struct {
	Nombre         *string `json:"nombre"`
	Descripcion    *string `json:"descripcion"`
	EstadoProyecto *string `json:"estado_proyecto"`
}

type projectHandler struct {
	svc    ProjectService
	logger *zap.Logger
}

func (h *projectHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}

	prj, err := h.svc.Create(r.Context(), store.ProjectInput{
		InstitutionID: req.IDInstitucion,
		Name:          req.Nombre,
		Description:   req.Descripcion,
		Status:        req.EstadoProyecto,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}
	writeJSON(w, http.StatusCreated, prj)
}

func (h *projectHandler) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}
	items, err := h.svc.ListByParent(r.Context(), opts)
	if err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *projectHandler) get(w http.ResponseWriter, r *http.Request) {
	prj, err := h.svc.GetByID(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}
	writeJSON(w, http.StatusOK, prj)
}

func (h *projectHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}

	prj, err := h.svc.Update(r.Context(), idParam(r), store.ProjectPatch{
		Name:        req.Nombre,
		Description: req.Descripcion,
		Status:      req.EstadoProyecto,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}
	writeJSON(w, http.StatusOK, prj)
}

func (h *projectHandler) disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *projectHandler) enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

func (h *projectHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	conf, err := h.svc.SetEnabled(r.Context(), idParam(r), enabled)
	if err != nil {
		respondError(w, r, h.logger, keys.Project, err)
		return
	}
	confirm(w, conf)
}
