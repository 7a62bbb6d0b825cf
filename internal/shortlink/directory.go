package shortlink

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/metrics"

	"go.uber.org/zap"
)

// Directory maps codes to entries. Each target gets at most one code.
type Directory struct {
	Store   Store
	Entries Entries
	Walls   WallPolicy
	// Cache is optional.
	Cache    Cache
	Generate Generator
	Length   int

	log *zap.Logger
}

func NewDirectory(store Store, entries Entries, walls WallPolicy) *Directory {
	return &Directory{
		Store:    store,
		Entries:  entries,
		Walls:    walls,
		Generate: RandomCode,
		Length:   DefaultLength,
		log:      zap.L().With(zap.String("component", "shortlink.Directory")),
	}
}

// CreateOrGet returns the code for t, minting one on first request. created
// reports whether this call inserted the link. Without the credential only
// publicly visible targets can be linked.
func (d *Directory) CreateOrGet(ctx context.Context, c auth.Capability, t Target) (*Link, bool, error) {
	l, created, err := d.createOrGet(ctx, c, t)
	switch {
	case err == nil && created:
		metrics.LinksCreatedTotal.WithLabelValues("created").Inc()
	case err == nil:
		metrics.LinksCreatedTotal.WithLabelValues("existing").Inc()
	case errors.Is(err, ErrAllocationFailed):
		metrics.LinksCreatedTotal.WithLabelValues("allocation_failed").Inc()
	case errors.Is(err, auth.ErrUnauthorized):
		metrics.LinksCreatedTotal.WithLabelValues("unauthorized").Inc()
	default:
		metrics.LinksCreatedTotal.WithLabelValues("error").Inc()
	}
	return l, created, err
}

func (d *Directory) createOrGet(ctx context.Context, c auth.Capability, t Target) (*Link, bool, error) {
	if !slices.Contains(board.Kinds, t.Kind) || t.ID == 0 {
		return nil, false, fmt.Errorf("%w: target kind and id are required", board.ErrInvalid)
	}

	entry, err := d.Entries.Get(ctx, t.Kind, t.ID)
	if err != nil {
		return nil, false, err
	}
	if !c.Granted() {
		public, err := Public(ctx, d.Walls, t.Kind, entry)
		if err != nil {
			return nil, false, err
		}
		if !public {
			return nil, false, auth.ErrUnauthorized
		}
	}

	existing, err := d.Store.FindByTarget(ctx, t)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	length := d.Length
	if length <= 0 {
		length = DefaultLength
	}
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, err := d.Generate(length + attempt)
		if err != nil {
			return nil, false, err
		}

		l := &Link{Code: code, TargetKind: t.Kind, TargetID: t.ID, CreatedAt: time.Now()}
		err = d.Store.Insert(ctx, l)
		switch {
		case err == nil:
			d.log.Info("short link created", zap.String("code", code), zap.Stringer("target", t))
			return l, true, nil
		case errors.Is(err, ErrCodeTaken):
			d.log.Debug("code collision", zap.Int("attempt", attempt), zap.Int("length", length+attempt))
			continue
		case errors.Is(err, ErrTargetLinked):
			// lost a race with another request for the same target
			l, err := d.Store.FindByTarget(ctx, t)
			if err != nil {
				return nil, false, err
			}
			return l, false, nil
		default:
			d.log.Error("insert short link failed", zap.Stringer("target", t), zap.Error(err))
			return nil, false, err
		}
	}

	d.log.Warn("code allocation exhausted", zap.Stringer("target", t), zap.Int("attempts", MaxAttempts))
	return nil, false, ErrAllocationFailed
}

// Resolve returns the target of code, or ErrNotFound.
func (d *Directory) Resolve(ctx context.Context, code string) (Target, error) {
	if !ValidCode(code) {
		return Target{}, ErrNotFound
	}

	if d.Cache != nil {
		t, ok, err := d.Cache.Get(ctx, code)
		switch {
		case err != nil:
			metrics.LinkCacheTotal.WithLabelValues("error").Inc()
			d.log.Warn("cache get failed", zap.String("code", code), zap.Error(err))
		case ok:
			metrics.LinkCacheTotal.WithLabelValues("hit").Inc()
			return t, nil
		default:
			metrics.LinkCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	l, err := d.Store.FindByCode(ctx, code)
	if err != nil {
		return Target{}, err
	}
	t := l.Target()

	if d.Cache != nil {
		if err := d.Cache.Set(ctx, code, t); err != nil {
			d.log.Warn("cache set failed", zap.String("code", code), zap.Error(err))
		}
	}
	return t, nil
}
