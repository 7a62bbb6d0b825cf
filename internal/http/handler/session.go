package handler

import (
	"net/http"

	"wall/internal/auth"

	"go.uber.org/zap"
)

type SessionHandler struct {
	Gate *auth.Gate
	JWT  *auth.JWT
}

type verifyReq struct {
	Password string `json:"password"`
}

// VerifyPassword checks the shared secret and, when sessions are enabled,
// returns a token that stands in for it.
func (h *SessionHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if !decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		badRequest(w, "Password is required")
		return
	}
	if !h.Gate.IsAuthorized(req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid password"})
		return
	}

	resp := map[string]any{"ok": true}
	if h.JWT.Enabled() {
		token, err := h.JWT.Sign()
		if err != nil {
			zap.L().Error("sign session token failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
			return
		}
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"authorized": auth.FromContext(r.Context()).Granted(),
	})
}
