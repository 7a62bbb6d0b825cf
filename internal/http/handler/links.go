package handler

import (
	"net/http"
	"strings"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/shortlink"

	"github.com/go-chi/chi/v5"
)

type LinkHandler struct {
	Links     *shortlink.Directory
	Publisher *shortlink.Publisher
	Gate      *auth.Gate
}

type shortenReq struct {
	EntryID  flexID `json:"entryId"`
	Type     string `json:"type"`
	Password string `json:"password"`
}

// Shorten returns the share URL for an entry, minting its code on first use.
func (h *LinkHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenReq
	if !decode(w, r, &req) {
		return
	}
	if req.EntryID == 0 {
		badRequest(w, "Missing entryId")
		return
	}
	kind := board.KindWall
	if strings.TrimSpace(req.Type) != "" {
		k, err := board.ParseKind(req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		kind = k
	}

	c := capability(r, h.Gate, req.Password)
	l, _, err := h.Links.CreateOrGet(r.Context(), c, shortlink.Target{Kind: kind, ID: uint64(req.EntryID)})
	if err != nil {
		writeError(w, r, err)
		return
	}

	share, err := h.Publisher.Publish(r.Context(), l.Code, r.Host, r.Header.Get("X-Forwarded-Proto"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

// Lookup reports the target of a code as JSON.
func (h *LinkHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := codeFrom(r)
	if code == "" {
		badRequest(w, "Missing code")
		return
	}
	t, err := h.Links.Resolve(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entryId": t.ID, "type": t.Kind})
}

// codeFrom reads the code from the {code} route param, ?c= or ?code=.
func codeFrom(r *http.Request) string {
	if c := chi.URLParam(r, "code"); c != "" {
		return c
	}
	q := r.URL.Query()
	if c := q.Get("c"); c != "" {
		return c
	}
	return q.Get("code")
}
