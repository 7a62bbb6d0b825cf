package handler

import (
	"context"
	"net/http"
	"strconv"

	"wall/internal/auth"
	"wall/internal/board"
)

// WallBoards resolves a wall reference (id or slug) to its entry board.
type WallBoards interface {
	Board(ctx context.Context, c auth.Capability, ref string) (board.Ref, error)
}

type EntryHandler struct {
	Entries *board.Service
	Walls   WallBoards
	Gate    *auth.Gate
}

type entryReq struct {
	ID         flexID  `json:"id"`
	Text       *string `json:"text"`
	Title      *string `json:"title"`
	Name       *string `json:"name"`
	Visibility *string `json:"visibility"`
	WallID     *flexID `json:"wallId"`
	Password   string  `json:"password"`
}

// boardRef builds the board for kind. wall is an id or slug and only
// applies to wall entries.
func boardRef(ctx context.Context, walls WallBoards, c auth.Capability, kind board.Kind, wall string) (board.Ref, error) {
	if kind != board.KindWall || wall == "" || walls == nil {
		return board.Ref{Kind: kind}, nil
	}
	return walls.Board(ctx, c, wall)
}

func wallParam(id *flexID) string {
	if id == nil || *id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	c := auth.FromContext(r.Context())

	ref, err := boardRef(r.Context(), h.Walls, c, kind, q.Get("wall"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	entries, err := h.Entries.List(r.Context(), board.ListInput{
		Ref:    ref,
		Tag:    q.Get("tag"),
		Search: q.Get("q"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryReq
	if !decode(w, r, &req) {
		return
	}
	c := capability(r, h.Gate, req.Password)

	in := board.CreateInput{Title: req.Title, Name: req.Name}
	if req.Text != nil {
		in.Text = *req.Text
	}
	if req.Visibility != nil {
		in.Visibility = *req.Visibility
	}
	if req.WallID != nil {
		if kind != board.KindWall {
			badRequest(w, "wallId only applies to wall entries")
			return
		}
		ref, err := boardRef(r.Context(), h.Walls, c, kind, wallParam(req.WallID))
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.WallID = ref.WallID
	}

	e, err := h.Entries.Create(r.Context(), c, kind, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, e)
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := idFrom(r, req.ID)
	if !ok {
		badRequest(w, "Missing id")
		return
	}

	e, err := h.Entries.Update(r.Context(), capability(r, h.Gate, req.Password), kind, id, board.UpdateInput{
		Text:       req.Text,
		Title:      req.Title,
		Visibility: req.Visibility,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, e)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := idFrom(r, req.ID)
	if !ok {
		badRequest(w, "Missing id")
		return
	}

	if err := h.Entries.Delete(r.Context(), capability(r, h.Gate, req.Password), kind, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Drafts lists drafts newest first. POST carries the password in the body.
func (h *EntryHandler) Drafts(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryReq
	if r.Method == http.MethodPost && !decode(w, r, &req) {
		return
	}
	c := capability(r, h.Gate, req.Password)

	wall := r.URL.Query().Get("wall")
	if wall == "" {
		wall = wallParam(req.WallID)
	}
	ref, err := boardRef(r.Context(), h.Walls, c, kind, wall)
	if err != nil {
		writeError(w, r, err)
		return
	}

	drafts, err := h.Entries.Drafts(r.Context(), c, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, drafts)
}
