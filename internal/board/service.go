package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wall/internal/auth"
	"wall/internal/moderation"

	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Screener checks user-submitted text before it is stored.
type Screener interface {
	Screen(ctx context.Context, inputs []moderation.Input) moderation.Report
}

// RejectedError is returned when moderation refuses a post.
type RejectedError struct {
	Report moderation.Report
}

func (e *RejectedError) Error() string { return "content rejected by moderation" }

type Service struct {
	Store    Store
	Screener Screener
	log      *zap.Logger
}

func NewService(store Store, screener Screener) *Service {
	return &Service{
		Store:    store,
		Screener: screener,
		log:      zap.L().With(zap.String("component", "board.Service")),
	}
}

type CreateInput struct {
	Text       string
	Title      *string
	Name       *string
	Visibility string
	WallID     *uint64
}

func (s *Service) Create(ctx context.Context, c auth.Capability, kind Kind, in CreateInput) (*Entry, error) {
	if !kind.OpenPosting() {
		if err := c.Require(); err != nil {
			return nil, err
		}
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalid)
	}

	vis, err := ParseVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}
	if vis == VisibilityDraft && !kind.HasDrafts() {
		return nil, fmt.Errorf("%w: %s entries cannot be drafts", ErrInvalid, kind)
	}
	if in.WallID != nil && kind != KindWall {
		return nil, fmt.Errorf("%w: wall_id only applies to wall entries", ErrInvalid)
	}

	var name *string
	if kind == KindFriend {
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name and text are required", ErrInvalid)
		}
		n := strings.TrimSpace(*in.Name)
		name = &n

		if s.Screener != nil {
			report := s.Screener.Screen(ctx, []moderation.Input{
				{Label: "name", Text: n},
				{Label: "text", Text: text},
			})
			if report.Flagged {
				s.log.Info("friend entry rejected", zap.Int("inputs", len(report.Analysis)))
				return nil, &RejectedError{Report: report}
			}
		}
	}

	now := time.Now()
	e := &Entry{
		WallID:     in.WallID,
		Name:       name,
		Text:       text,
		Title:      NormalizeTitle(in.Title),
		Visibility: vis,
		Tags:       ExtractTags(text),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.Create(ctx, kind, e); err != nil {
		s.log.Error("create entry failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}
	return e, nil
}

type UpdateInput struct {
	Text       *string
	Title      *string
	Visibility *string
}

func (s *Service) Update(ctx context.Context, c auth.Capability, kind Kind, id uint64, in UpdateInput) (*Entry, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	var p Patch
	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalid)
		}
		p.Text = &text
		p.Tags = ExtractTags(text)
	}
	if in.Title != nil {
		p.SetTitle = true
		p.Title = NormalizeTitle(in.Title)
	}
	if in.Visibility != nil {
		if !kind.HasDrafts() {
			return nil, fmt.Errorf("%w: %s entries have no visibility", ErrInvalid, kind)
		}
		if strings.TrimSpace(*in.Visibility) == "" {
			return nil, fmt.Errorf("%w: visibility must be public or draft", ErrInvalid)
		}
		vis, err := ParseVisibility(*in.Visibility)
		if err != nil {
			return nil, err
		}
		p.Visibility = &vis
	}
	if p.Text == nil && !p.SetTitle && p.Visibility == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalid)
	}

	return s.Store.Update(ctx, kind, id, p)
}

func (s *Service) Delete(ctx context.Context, c auth.Capability, kind Kind, id uint64) error {
	if err := c.Require(); err != nil {
		return err
	}
	return s.Store.Delete(ctx, kind, id)
}

func (s *Service) Get(ctx context.Context, kind Kind, id uint64) (*Entry, error) {
	return s.Store.Get(ctx, kind, id)
}

type ListInput struct {
	Ref    Ref
	Tag    string
	Search string
	Limit  int
}

// List returns the public entries of a board in rendering order.
func (s *Service) List(ctx context.Context, in ListInput) ([]Entry, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.Store.List(ctx, Query{
		Ref:        in.Ref,
		Visibility: VisibilityPublic,
		Tag:        strings.ToLower(strings.TrimPrefix(strings.TrimSpace(in.Tag), "#")),
		Search:     strings.TrimSpace(in.Search),
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	Sort(rows)
	return rows, nil
}

func (s *Service) Drafts(ctx context.Context, c auth.Capability, ref Ref) ([]Entry, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}
	if !ref.Kind.HasDrafts() {
		return []Entry{}, nil
	}
	return s.Store.List(ctx, Query{
		Ref:        ref,
		Visibility: VisibilityDraft,
		ByRecency:  true,
		Limit:      maxListLimit,
	})
}
