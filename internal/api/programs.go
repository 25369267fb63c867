package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/store"
)

type createProgramRequest struct {
	IDInstitucion string `json:"id_institucion" validate:"required"`
	Nombre        string `json:"nombre" validate:"required"`
	Descripcion   string `json:"descripcion"`
}

type updateProgramRequest struct {
	Nombre      *string `json:"nombre"`
	Descripcion *string `json:"descripcion"`
}

type programHandler struct {
	svc    ProgramService
	logger *zap.Logger
}

func (h *programHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProgramRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}

	prg, err := h.svc.Create(r.Context(), store.ProgramInput{
		InstitutionID: req.IDInstitucion,
		Name:          req.Nombre,
		Description:   req.Descripcion,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}
	writeJSON(w, http.StatusCreated, prg)
}

func (h *programHandler) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}
	items, err := h.svc.ListByParent(r.Context(), opts)
	if err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *programHandler) get(w http.ResponseWriter, r *http.Request) {
	prg, err := h.svc.GetByID(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}
	writeJSON(w, http.StatusOK, prg)
}

func (h *programHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProgramRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}

	prg, err := h.svc.Update(r.Context(), idParam(r), store.ProgramPatch{
		Name:        req.Nombre,
		Description: req.Descripcion,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}
	writeJSON(w, http.StatusOK, prg)
}

func (h *programHandler) disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *programHandler) enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

func (h *programHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	conf, err := h.svc.SetEnabled(r.Context(), idParam(r), enabled)
	if err != nil {
		respondError(w, r, h.logger, keys.Program, err)
		return
	}
	confirm(w, conf)
}
