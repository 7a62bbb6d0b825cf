package handler

import (
	"net/http"

	"wall/internal/auth"
	"wall/internal/share"

	"go.uber.org/zap"
)

type ShareHandler struct {
	Responder *share.Responder
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// Resolve answers a short link with a redirect for browsers or an HTML
// preview for crawlers.
func (h *ShareHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := codeFrom(r)
	if code == "" {
		writeText(w, http.StatusBadRequest, "Missing code")
		return
	}

	res, err := h.Responder.Respond(r.Context(), share.Request{
		Code:      code,
		UserAgent: r.UserAgent(),
		Host:      r.Host,
		Proto:     r.Header.Get("X-Forwarded-Proto"),
		Cap:       auth.FromContext(r.Context()),
	})
	if err != nil {
		zap.L().Error("resolve short link failed", zap.String("code", code), zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}

	switch res.Outcome {
	case share.OutcomeNotFound:
		writeText(w, http.StatusNotFound, "Not found")
	case share.OutcomeForbidden:
		writeText(w, http.StatusForbidden, "This note is not publicly shareable.")
	case share.OutcomeRedirect:
		w.Header().Set("Location", res.Location)
		w.WriteHeader(http.StatusFound)
	case share.OutcomePreview:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.HTML)
	}
}
