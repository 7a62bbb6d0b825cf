package handler

import (
	"net/http"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/series"

	"github.com/go-chi/chi/v5"
)

type SeriesHandler struct {
	Series *series.Service
	Gate   *auth.Gate
}

type seriesReq struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	EntryID  flexID `json:"entryId"`
	Password string `json:"password"`
}

func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.Series.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, all)
}

func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	d, err := h.Series.Get(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, d)
}

func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req seriesReq
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Series.Create(r.Context(), capability(r, h.Gate, req.Password), req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, s)
}

func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req seriesReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Series.Delete(r.Context(), capability(r, h.Gate, req.Password), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *SeriesHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req seriesReq
	if !decode(w, r, &req) {
		return
	}
	kind, err := board.ParseKind(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.Series.AddItem(r.Context(), capability(r, h.Gate, req.Password), id, kind, uint64(req.EntryID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (h *SeriesHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	target, ok := parseID(chi.URLParam(r, "targetId"))
	if !ok {
		badRequest(w, "invalid target id")
		return
	}
	var req seriesReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Series.RemoveItem(r.Context(), capability(r, h.Gate, req.Password), id, kind, target); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
