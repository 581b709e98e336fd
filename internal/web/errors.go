package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobtrack/internal/mutate"
	"jobtrack/internal/statusutil"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg})
}

func writeFieldErrors(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fields})
}

// writeError maps domain errors onto HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr mutate.ValidationError
	var nf mutate.NotFoundError
	switch {
	case errors.As(err, &verr):
		writeFieldErrors(w, verr.Fields)
	case errors.As(err, &nf):
		writeMessage(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, statusutil.ErrInvalidStatus):
		writeFieldErrors(w, map[string][]string{"status": {err.Error()}})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
