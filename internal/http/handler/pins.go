package handler

import (
	"net/http"

	"wall/internal/auth"
	"wall/internal/pin"
)

type PinHandler struct {
	Engine *pin.Engine
	Walls  WallBoards
	Gate   *auth.Gate
}

type pinReq struct {
	ID       flexID `json:"id"`
	Pin      *bool  `json:"pin"`
	Password string `json:"password"`
}

func (h *PinHandler) Pin(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req pinReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := idFrom(r, req.ID)
	if !ok || req.Pin == nil {
		badRequest(w, "id and pin are required")
		return
	}
	c := capability(r, h.Gate, req.Password)

	if !*req.Pin {
		if err := h.Engine.Unpin(r.Context(), c, kind, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	order, err := h.Engine.Pin(r.Context(), c, kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "pin_order": order})
}

type reorderReq struct {
	OrderedIDs []flexID `json:"orderedIds"`
	WallID     *flexID  `json:"wallId"`
	Password   string   `json:"password"`
}

func (h *PinHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reorderReq
	if !decode(w, r, &req) {
		return
	}
	if req.OrderedIDs == nil {
		badRequest(w, "orderedIds must be an array")
		return
	}
	c := capability(r, h.Gate, req.Password)

	ref, err := boardRef(r.Context(), h.Walls, c, kind, wallParam(req.WallID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	ids := make([]uint64, len(req.OrderedIDs))
	for i, id := range req.OrderedIDs {
		ids[i] = uint64(id)
	}
	if err := h.Engine.Reorder(r.Context(), c, ref, ids); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
