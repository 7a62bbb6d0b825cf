package shortlink

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	uniqueViolation  = "23505"
	targetConstraint = "uq_short_links_target"
)

type Store interface {
	FindByTarget(ctx context.Context, t Target) (*Link, error)
	FindByCode(ctx context.Context, code string) (*Link, error)
	// Insert returns ErrCodeTaken or ErrTargetLinked on a unique violation.
	Insert(ctx context.Context, l *Link) error
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) FindByTarget(ctx context.Context, t Target) (*Link, error) {
	var l Link
	err := s.DB.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", t.Kind, t.ID).
		Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *GormStore) FindByCode(ctx context.Context, code string) (*Link, error) {
	var l Link
	err := s.DB.WithContext(ctx).Where("code = ?", code).Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *GormStore) Insert(ctx context.Context, l *Link) error {
	err := s.DB.WithContext(ctx).Create(l).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == targetConstraint {
			return ErrTargetLinked
		}
		return ErrCodeTaken
	}
	return err
}
