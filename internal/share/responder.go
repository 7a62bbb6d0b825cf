package share

import (
	"context"
	"errors"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/metrics"
	"wall/internal/shortlink"

	"go.uber.org/zap"
)

type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeForbidden
	OutcomeRedirect
	OutcomePreview
)

func (o Outcome) String() string {
	switch o {
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeRedirect:
		return "redirect"
	case OutcomePreview:
		return "preview"
	default:
		return "not_found"
	}
}

// Resolver maps a code to its target.
type Resolver interface {
	Resolve(ctx context.Context, code string) (shortlink.Target, error)
}

// Request describes one resolution request.
type Request struct {
	Code      string
	UserAgent string
	Host      string
	Proto     string
	Cap       auth.Capability
}

// Result is the response to send. Location is set for redirects, HTML for
// previews.
type Result struct {
	Outcome  Outcome
	Target   shortlink.Target
	Location string
	HTML     []byte
}

// Responder decides between a browser redirect and a crawler preview for
// a short link.
type Responder struct {
	Links   Resolver
	Entries shortlink.Entries
	Walls   shortlink.WallPolicy

	log *zap.Logger
}

func NewResponder(links Resolver, entries shortlink.Entries, walls shortlink.WallPolicy) *Responder {
	return &Responder{
		Links:   links,
		Entries: entries,
		Walls:   walls,
		log:     zap.L().With(zap.String("component", "share.Responder")),
	}
}

// Respond returns an error only for backend failures.
func (r *Responder) Respond(ctx context.Context, req Request) (*Result, error) {
	res, err := r.respond(ctx, req)
	if err != nil {
		metrics.LinkResolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LinkResolutionsTotal.WithLabelValues(res.Outcome.String()).Inc()
	return res, nil
}

func (r *Responder) respond(ctx context.Context, req Request) (*Result, error) {
	target, err := r.Links.Resolve(ctx, req.Code)
	if errors.Is(err, shortlink.ErrNotFound) {
		return &Result{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	entry, err := r.Entries.Get(ctx, target.Kind, target.ID)
	if errors.Is(err, board.ErrNotFound) {
		r.log.Debug("orphaned short link", zap.String("code", req.Code), zap.Stringer("target", target))
		return &Result{Outcome: OutcomeNotFound, Target: target}, nil
	}
	if err != nil {
		return nil, err
	}

	if !req.Cap.Granted() {
		public, err := shortlink.Public(ctx, r.Walls, target.Kind, entry)
		if errors.Is(err, board.ErrNotFound) {
			// the entry's wall is gone
			return &Result{Outcome: OutcomeNotFound, Target: target}, nil
		}
		if err != nil {
			return nil, err
		}
		if !public {
			return &Result{Outcome: OutcomeForbidden, Target: target}, nil
		}
	}

	link := DeepLink(req.Proto, req.Host, target.Kind, target.ID)
	if !IsCrawler(req.UserAgent) {
		return &Result{Outcome: OutcomeRedirect, Target: target, Location: link}, nil
	}

	html, err := renderPreview(previewData{
		Title:       Title(target.Kind, entry),
		Description: Truncate(entry.Text, descriptionLimit),
		URL:         link,
		Hash:        Hash(target.Kind, target.ID),
	})
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomePreview, Target: target, Location: link, HTML: html}, nil
}
