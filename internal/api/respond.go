package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/store"
)

const maxBodyBytes = 1 << 20

// Error codes returned in error bodies.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// MessageResponse acknowledges an enable or disable.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Code: code, Detail: detail})
}

var notFoundMessages = map[keys.Kind]string{
	keys.Institution: "Institución no encontrada, verificar id_institucion ingresado",
	keys.Program:     "Programa no encontrado, verificar id_programa ingresado",
	keys.Project:     "Proyecto no encontrado, verificar id_proyecto ingresado",
	keys.Procedure:   "Trámite no encontrado, verificar id_tramite ingresado",
}

// respondError maps a store error to its HTTP status.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, kind keys.Kind, err error) {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, CodeValidation, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, notFoundMessages[kind])
	case errors.Is(err, store.ErrNoFieldsToUpdate):
		writeError(w, http.StatusBadRequest, CodeBadRequest, "No hay campos para actualizar o no coinciden con los existentes")
	case errors.Is(err, store.ErrParentRequired):
		writeError(w, http.StatusBadRequest, CodeBadRequest, "id_institucion es requerido")
	case errors.Is(err, store.ErrAlreadyExists):
		writeError(w, http.StatusConflict, CodeConflict, "El registro ya existe")
	case errors.Is(err, store.ErrStoreUnavailable):
		logger.Error("store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "Servicio de datos no disponible")
	default:
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "Error interno del servidor")
	}
}

// decodeBody reads a JSON body into v and validates it.
// Unknown fields are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &validationError{msg: fmt.Sprintf("cuerpo JSON inválido: %v", err)}
	}
	return validateStruct(v)
}

// listOptions reads ?id_institucion= and ?habil= from the query string.
func listOptions(r *http.Request) (store.ListOptions, error) {
	q := r.URL.Query()
	opts := store.ListOptions{ParentID: q.Get(store.AttrInstitutionID)}

	if raw := q.Get(store.AttrEnabled); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, &validationError{msg: fmt.Sprintf("habil debe ser true o false, recibido %q", raw)}
		}
		opts.Enabled = &enabled
	}
	return opts, nil
}

func confirm(w http.ResponseWriter, c *store.Confirmation) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: c.Message})
}
