package handler

import (
	"net/http"

	"wall/internal/auth"
	"wall/internal/wall"

	"github.com/go-chi/chi/v5"
)

type WallHandler struct {
	Walls *wall.Service
	Gate  *auth.Gate
}

type wallReq struct {
	Name     *string `json:"name"`
	IsPublic *bool   `json:"is_public"`
	Password string  `json:"password"`
}

func (h *WallHandler) List(w http.ResponseWriter, r *http.Request) {
	walls, err := h.Walls.List(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, walls)
}

// Get looks a wall up by id or slug.
func (h *WallHandler) Get(w http.ResponseWriter, r *http.Request) {
	wl, err := h.Walls.Get(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, wl)
}

func (h *WallHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wallReq
	if !decode(w, r, &req) {
		return
	}
	in := wall.CreateInput{IsPublic: req.IsPublic}
	if req.Name != nil {
		in.Name = *req.Name
	}
	wl, err := h.Walls.Create(r.Context(), capability(r, h.Gate, req.Password), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, wl)
}

func (h *WallHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req wallReq
	if !decode(w, r, &req) {
		return
	}
	wl, err := h.Walls.Update(r.Context(), capability(r, h.Gate, req.Password), id, wall.UpdateInput{
		Name:     req.Name,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, wl)
}

func (h *WallHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req wallReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Walls.Delete(r.Context(), capability(r, h.Gate, req.Password), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
