package http

import (
	"net/http"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/config"
	"wall/internal/http/handler"
	mw "wall/internal/http/middleware"
	"wall/internal/pin"
	"wall/internal/series"
	"wall/internal/share"
	"wall/internal/shortlink"
	"wall/internal/wall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services are the domain components the router exposes.
type Services struct {
	Gate      *auth.Gate
	JWT       *auth.JWT
	Entries   *board.Service
	Pins      *pin.Engine
	Walls     *wall.Service
	Series    *series.Service
	Links     *shortlink.Directory
	Publisher *shortlink.Publisher
	Share     *share.Responder
}

func NewRouter(cfg config.Config, s Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logging(zap.L().With(zap.String("component", "http"))))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}
	r.Use(auth.Resolve(s.Gate, s.JWT))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// avoid a nil interface holding a nil pointer
	var walls handler.WallBoards
	if s.Walls != nil {
		walls = s.Walls
	}

	sessH := &handler.SessionHandler{Gate: s.Gate, JWT: s.JWT}
	entryH := &handler.EntryHandler{Entries: s.Entries, Walls: walls, Gate: s.Gate}
	pinH := &handler.PinHandler{Engine: s.Pins, Walls: walls, Gate: s.Gate}
	wallH := &handler.WallHandler{Walls: s.Walls, Gate: s.Gate}
	seriesH := &handler.SeriesHandler{Series: s.Series, Gate: s.Gate}
	linkH := &handler.LinkHandler{Links: s.Links, Publisher: s.Publisher, Gate: s.Gate}
	shareH := &handler.ShareHandler{Responder: s.Share}

	r.Get("/s/{code}", shareH.Resolve)

	r.Route("/api", func(r chi.Router) {
		r.Post("/verify-password", sessH.VerifyPassword)
		r.Get("/session", sessH.Session)

		r.Route("/boards/{kind}", func(r chi.Router) {
			r.Get("/entries", entryH.List)
			r.Post("/entries", entryH.Create)
			r.Patch("/entries/{id}", entryH.Update)
			r.Delete("/entries/{id}", entryH.Delete)
			r.Post("/entries/{id}/pin", pinH.Pin)
			r.Get("/drafts", entryH.Drafts)
			r.Post("/drafts", entryH.Drafts)
			r.Post("/pins/reorder", pinH.Reorder)
		})

		r.Route("/walls", func(r chi.Router) {
			r.Get("/", wallH.List)
			r.Post("/", wallH.Create)
			r.Get("/{id}", wallH.Get)
			r.Patch("/{id}", wallH.Update)
			r.Delete("/{id}", wallH.Delete)
		})

		r.Route("/series", func(r chi.Router) {
			r.Get("/", seriesH.List)
			r.Post("/", seriesH.Create)
			r.Get("/{id}", seriesH.Get)
			r.Delete("/{id}", seriesH.Delete)
			r.Post("/{id}/items", seriesH.AddItem)
			r.Delete("/{id}/items/{kind}/{targetId}", seriesH.RemoveItem)
		})

		r.Post("/shorten", linkH.Shorten)
		r.Get("/shorten", linkH.Lookup)
		r.Get("/s", shareH.Resolve)

		legacy(r, entryH, pinH)
	})

	return r
}

// legacy keeps the flat endpoints older clients call. Ids travel in the
// body or as ?id=.
func legacy(r chi.Router, entryH *handler.EntryHandler, pinH *handler.PinHandler) {
	wallR := r.With(handler.FixedKind(board.KindWall))
	wallR.Get("/entries", entryH.List)
	wallR.Post("/entries", entryH.Create)
	wallR.Get("/drafts", entryH.Drafts)
	wallR.Post("/drafts", entryH.Drafts)
	wallR.Post("/pin-entry", pinH.Pin)
	wallR.Post("/reorder-pins", pinH.Reorder)
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		wallR.Method(m, "/update-entry", http.HandlerFunc(entryH.Update))
	}
	for _, m := range []string{http.MethodPost, http.MethodDelete} {
		wallR.Method(m, "/delete-entry", http.HandlerFunc(entryH.Delete))
	}

	friendR := r.With(handler.FixedKind(board.KindFriend))
	friendR.Get("/friend-entries", entryH.List)
	friendR.Post("/friend-entries", entryH.Create)
	for _, m := range []string{http.MethodPost, http.MethodDelete} {
		friendR.Method(m, "/delete-friend-entry", http.HandlerFunc(entryH.Delete))
	}

	techR := r.With(handler.FixedKind(board.KindTech))
	techR.Get("/tech-notes", entryH.List)
	techR.Post("/tech-notes", entryH.Create)
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		techR.Method(m, "/update-tech-note", http.HandlerFunc(entryH.Update))
	}
	for _, m := range []string{http.MethodPost, http.MethodDelete} {
		techR.Method(m, "/delete-tech-note", http.HandlerFunc(entryH.Delete))
	}
}
