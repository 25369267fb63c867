package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/store"
)

type createInstitutionRequest struct {
	Nombre           string `json:"nombre" validate:"required"`
	DepartamentoSede string `json:"departamento_sede" validate:"required"`
	MunicipioSede    string `json:"municipio_sede" validate:"required"`
	Telefono         string `json:"telefono" validate:"omitempty,telefono"`
	Correo           string `json:"correo" validate:"required,email"`
}

type updateInstitutionRequest struct {
	Nombre           *string `json:"nombre"`
	DepartamentoSede *string `json:"departamento_sede"`
	MunicipioSede    *string `json:"municipio_sede"`
	Telefono         *string `json:"telefono" validate:"omitempty,telefono"`
	Correo           *string `json:"correo" validate:"omitnil,email"`
}

type institutionHandler struct {
	svc    InstitutionService
	logger *zap.Logger
}

func (h *institutionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createInstitutionRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}

	inst, err := h.svc.Create(r.Context(), store.InstitutionInput{
		Name:         req.Nombre,
		Department:   req.DepartamentoSede,
		Municipality: req.MunicipioSede,
		Phone:        req.Telefono,
		Email:        req.Correo,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (h *institutionHandler) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}
	items, err := h.svc.List(r.Context(), opts)
	if err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *institutionHandler) get(w http.ResponseWriter, r *http.Request) {
	inst, err := h.svc.GetByID(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (h *institutionHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateInstitutionRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}

	inst, err := h.svc.Update(r.Context(), idParam(r), store.InstitutionPatch{
		Name:         req.Nombre,
		Department:   req.DepartamentoSede,
		Municipality: req.MunicipioSede,
		Phone:        req.Telefono,
		Email:        req.Correo,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (h *institutionHandler) disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *institutionHandler) enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

func (h *institutionHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	conf, err := h.svc.SetEnabled(r.Context(), idParam(r), enabled)
	if err != nil {
		respondError(w, r, h.logger, keys.Institution, err)
		return
	}
	confirm(w, conf)
}
