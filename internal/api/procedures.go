package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/store"
)

type createProcedureRequest struct {
	IDInstitucion string   `json:"id_institucion" validate:"required"`
	NombreTramite string   `json:"nombre_tramite" validate:"required,min=3"`
	Descripcion   string   `json:"descripcion" validate:"required"`
	TipoTramite   string   `json:"tipo_tramite" validate:"required"`
	CanalAtencion string   `json:"canal_atencion" validate:"required"`
	Costo         string   `json:"costo" validate:"required"`
	Requisitos    []string `json:"requisitos" validate:"required"`
}

type updateProcedureRequest struct {
	NombreTramite *string   `json:"nombre_tramite" validate:"omitnil,min=3"`
	Descripcion   *string   `json:"descripcion"`
	TipoTramite   *string   `json:"tipo_tramite"`
	CanalAtencion *string   `json:"canal_atencion"`
	Costo         *string   `json:"costo"`
	Requisitos    *[]string `json:"requisitos"`
}

type procedureHandler struct {
	svc    ProcedureService
	logger *zap.Logger
}

func (h *procedureHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProcedureRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}

	trm, err := h.svc.Create(r.Context(), store.ProcedureInput{
		InstitutionID: req.IDInstitucion,
		Name:          req.NombreTramite,
		Description:   req.Descripcion,
		Type:          req.TipoTramite,
		Channel:       req.CanalAtencion,
		Cost:          req.Costo,
		Requirements:  req.Requisitos,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}
	writeJSON(w, http.StatusCreated, trm)
}

func (h *procedureHandler) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}
	items, err := h.svc.ListByParent(r.Context(), opts)
	if err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *procedureHandler) get(w http.ResponseWriter, r *http.Request) {
	trm, err := h.svc.GetByID(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}
	writeJSON(w, http.StatusOK, trm)
}

func (h *procedureHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProcedureRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}

	trm, err := h.svc.Update(r.Context(), idParam(r), store.ProcedurePatch{
		Name:         req.NombreTramite,
		Description:  req.Descripcion,
		Type:         req.TipoTramite,
		Channel:      req.CanalAtencion,
		Cost:         req.Costo,
		Requirements: req.Requisitos,
	})
	if err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}
	writeJSON(w, http.StatusOK, trm)
}

func (h *procedureHandler) disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *procedureHandler) enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

func (h *procedureHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	conf, err := h.svc.SetEnabled(r.Context(), idParam(r), enabled)
	if err != nil {
		respondError(w, r, h.logger, keys.Procedure, err)
		return
	}
	confirm(w, conf)
}
