package series

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"wall/internal/auth"
	"wall/internal/board"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("series not found")
	ErrInvalid  = errors.New("invalid series")
)

type Service struct {
	DB      *gorm.DB
	Entries Loader
	log     *zap.Logger
}

func NewService(db *gorm.DB, entries Loader) *Service {
	return &Service{
		DB:      db,
		Entries: entries,
		log:     zap.L().With(zap.String("component", "series.Service")),
	}
}

func (s *Service) Create(ctx context.Context, c auth.Capability, title string) (*Series, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	sr := Series{Title: title, CreatedAt: time.Now()}
	if err := s.DB.WithContext(ctx).Create(&sr).Error; err != nil {
		return nil, err
	}
	return &sr, nil
}

func (s *Service) Delete(ctx context.Context, c auth.Capability, id uint64) error {
	if err := c.Require(); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("series_id = ?", id).Delete(&Item{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Series{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Service) List(ctx context.Context) ([]Series, error) {
	out := []Series{}
	if err := s.DB.WithContext(ctx).Order("created_at desc, id desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a series with its visible entries in position order.
func (s *Service) Get(ctx context.Context, c auth.Capability, id uint64) (*Detail, error) {
	var sr Series
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&sr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var items []Item
	if err := s.DB.WithContext(ctx).
		Where("series_id = ?", id).
		Order("position asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	views, err := Resolve(ctx, s.Entries, c, items)
	if err != nil {
		s.log.Error("resolve series items failed", zap.Uint64("series", id), zap.Error(err))
		return nil, err
	}
	return &Detail{Series: sr, Items: views}, nil
}

// AddItem appends an entry to a series. Adding an entry already in the
// series returns the existing item.
func (s *Service) AddItem(ctx context.Context, c auth.Capability, id uint64, kind board.Kind, targetID uint64) (*Item, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}
	if !slices.Contains(board.Kinds, kind) || targetID == 0 {
		return nil, fmt.Errorf("%w: target kind and id are required", ErrInvalid)
	}

	found, err := s.Entries.GetMany(ctx, kind, []uint64{targetID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, board.ErrNotFound
	}

	var item Item
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sr Series
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&sr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		err := tx.Where("series_id = ? AND target_kind = ? AND target_id = ?", id, kind, targetID).First(&item).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var top sql.NullInt64
		if err := tx.Model(&Item{}).
			Where("series_id = ?", id).
			Select("max(position)").
			Row().Scan(&top); err != nil {
			return err
		}
		pos := 0
		if top.Valid {
			pos = int(top.Int64) + 1
		}

		item = Item{SeriesID: id, TargetKind: kind, TargetID: targetID, Position: pos, CreatedAt: time.Now()}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) RemoveItem(ctx context.Context, c auth.Capability, id uint64, kind board.Kind, targetID uint64) error {
	if err := c.Require(); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).
		Where("series_id = ? AND target_kind = ? AND target_id = ?", id, kind, targetID).
		Delete(&Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
