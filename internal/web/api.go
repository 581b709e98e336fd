package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"jobtrack/internal/board"
	"jobtrack/internal/model"
	"jobtrack/internal/mutate"
	"jobtrack/internal/statusutil"
)

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFieldErrors(w, map[string][]string{"body": {"invalid JSON: " + err.Error()}})
		return false
	}
	return true
}

func listParamsFromQuery(r *http.Request) (model.ListParams, error) {
	q := r.URL.Query()
	sort, err := model.ParseSort(q.Get("sort"))
	if err != nil {
		return model.ListParams{}, mutate.ValidationError{Fields: map[string][]string{"sort": {err.Error()}}}
	}
	return model.ListParams{Search: strings.TrimSpace(q.Get("search")), Sort: sort}, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, user string) {
	params, err := listParamsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.cfg.Store.ListApplications(r.Context(), user, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, user string) {
	var p model.CreateParams
	if !decodeBody(w, r, &p) {
		return
	}
	a, err := s.cfg.Store.CreateApplication(r.Context(), user, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hubs.hubFor(user).broadcast()
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, user string) {
	a, err := s.cfg.Store.GetApplication(r.Context(), user, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, user string) {
	var p model.UpdateParams
	if !decodeBody(w, r, &p) {
		return
	}
	patch, err := mutate.DecodePatch(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.cfg.Store.UpdateApplication(r.Context(), user, r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Changed {
		s.logger.Debug("application updated", "user", user, "payload", res.EventPayload)
		s.hubs.hubFor(user).broadcast()
	}
	writeJSON(w, http.StatusOK, res.Application)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, user string) {
	if err := s.cfg.Store.DeleteApplication(r.Context(), user, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hubs.hubFor(user).broadcast()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRejected(w http.ResponseWriter, r *http.Request, user string) {
	n, err := s.cfg.Store.DeleteByStatus(r.Context(), user, model.StatusRejected)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if n > 0 {
		s.hubs.hubFor(user).broadcast()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request, user string) {
	st, err := statusutil.Normalize(r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.cfg.Store.RebalanceColumn(r.Context(), user, st)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(plan) > 0 {
		s.hubs.hubFor(user).broadcast()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": st, "changed": plan})
}

func (s *Server) loadBoard(r *http.Request, user string) (board.Board, error) {
	params, err := listParamsFromQuery(r)
	if err != nil {
		return board.Board{}, err
	}
	res, err := s.cfg.Store.ListApplications(r.Context(), user, params)
	if err != nil {
		return board.Board{}, err
	}
	return board.Build(res.Results), nil
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request, user string) {
	b, err := s.loadBoard(r, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
