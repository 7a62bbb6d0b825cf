package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/pin"
	"wall/internal/series"
	"wall/internal/shortlink"
	"wall/internal/wall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": msg})
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and answered with an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rejected *board.RejectedError
		reorder  *pin.ReorderError
	)
	switch {
	case errors.As(err, &rejected):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "Content rejected by moderation",
			"analysis":   rejected.Report.Analysis,
			"thresholds": rejected.Report.Thresholds,
		})
	case errors.As(err, &reorder):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "reorder partially applied",
			"applied": reorder.Applied,
			"id":      reorder.ID,
		})
	case errors.Is(err, board.ErrInvalid), errors.Is(err, wall.ErrInvalid), errors.Is(err, series.ErrInvalid):
		badRequest(w, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid password"})
	case errors.Is(err, auth.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "forbidden"})
	case errors.Is(err, board.ErrNotFound), errors.Is(err, shortlink.ErrNotFound),
		errors.Is(err, wall.ErrNotFound), errors.Is(err, series.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Not found"})
	case errors.Is(err, wall.ErrProtected):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
	case errors.Is(err, shortlink.ErrAllocationFailed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "Failed to generate short code"})
	case errors.Is(err, shortlink.ErrExternalFailed):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "External shortener failed"})
	default:
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
	}
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "bad json")
		return false
	}
	return true
}

// capability combines the request's header credential with a body password.
func capability(r *http.Request, gate *auth.Gate, password string) auth.Capability {
	c := auth.FromContext(r.Context())
	if password != "" && gate != nil {
		c = c.Or(gate.Check(password))
	}
	return c
}

// flexID accepts ids sent as JSON numbers or strings.
type flexID uint64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*f = flexID(n)
	return nil
}

func parseID(s string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// idFrom prefers the {id} route param, then ?id=, then a body id.
func idFrom(r *http.Request, body flexID) (uint64, bool) {
	if p := chi.URLParam(r, "id"); p != "" {
		return parseID(p)
	}
	if q := r.URL.Query().Get("id"); q != "" {
		return parseID(q)
	}
	return uint64(body), body != 0
}

func kindFrom(r *http.Request) (board.Kind, error) {
	return board.ParseKind(chi.URLParam(r, "kind"))
}

// FixedKind pins the {kind} route param for routes that name one board.
func FixedKind(kind board.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				rctx.URLParams.Add("kind", string(kind))
			}
			next.ServeHTTP(w, r)
		})
	}
}
