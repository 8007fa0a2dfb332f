package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/dgallion1/resumedoc/internal/store"
	"github.com/dgallion1/resumedoc/internal/suggest"
)

var validate = validator.New()

// badRequest marks an error caused by the request itself.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func invalid(msg string) error { return &badRequest{msg: msg} }

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		nf  *section.NotFoundError
		iv  *section.InvariantViolation
		br  *badRequest
		ve  validator.ValidationErrors
		rte *suggest.RetryableError
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &nf):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &iv):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":      iv.Message,
			"reason":     string(iv.Reason),
			"section_id": iv.SectionID,
		})
	case errors.As(err, &br):
		jsonError(w, br.msg, http.StatusBadRequest)
	case errors.As(err, &ve):
		jsonError(w, "invalid request: "+ve.Error(), http.StatusBadRequest)
	case errors.Is(err, suggest.ErrRejected):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &rte):
		jsonError(w, "suggestion service unavailable: "+err.Error(), http.StatusBadGateway)
	default:
		s.log.Error("request failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v and validates its struct tags.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("invalid JSON body: " + err.Error())
	}
	return validate.Struct(v)
}
