package wall

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wall/internal/auth"
	"wall/internal/board"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = fmt.Errorf("wall %w", board.ErrNotFound)
	ErrInvalid   = errors.New("invalid wall")
	ErrProtected = errors.New("the default wall cannot be deleted")
)

type Service struct {
	DB  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, log: zap.L().With(zap.String("component", "wall.Service"))}
}

// EnsureDefault creates the default wall if it does not exist yet.
func (s *Service) EnsureDefault(ctx context.Context) (*Wall, error) {
	var w Wall
	err := s.DB.WithContext(ctx).
		Where("is_default = ?", true).
		Attrs(Wall{Name: DefaultName, Slug: DefaultSlug, IsPublic: true}).
		FirstOrCreate(&w, Wall{IsDefault: true}).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

type CreateInput struct {
	Name     string
	IsPublic *bool
}

func (s *Service) Create(ctx context.Context, c auth.Capability, in CreateInput) (*Wall, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	w := Wall{Name: name, IsPublic: true, CreatedAt: time.Now()}
	if in.IsPublic != nil {
		w.IsPublic = *in.IsPublic
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := Slugify(name)
		var taken []string
		if err := tx.Model(&Wall{}).
			Where("slug = ? OR slug LIKE ?", base, base+"-%").
			Pluck("slug", &taken).Error; err != nil {
			return err
		}
		w.Slug = uniqueSlug(base, taken)

		// zero-value IsPublic must not fall back to the column default
		return tx.Select("Name", "Slug", "IsPublic", "IsDefault", "CreatedAt").Create(&w).Error
	})
	if err != nil {
		s.log.Error("create wall failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return &w, nil
}

type UpdateInput struct {
	Name     *string
	IsPublic *bool
}

// Update renames a wall or changes its privacy. The slug is kept.
func (s *Service) Update(ctx context.Context, c auth.Capability, id uint64, in UpdateInput) (*Wall, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalid)
		}
		updates["name"] = name
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalid)
	}

	res := s.DB.WithContext(ctx).Model(&Wall{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.byID(ctx, id)
}

// Delete removes a wall and all of its entries.
func (s *Service) Delete(ctx context.Context, c auth.Capability, id uint64) error {
	if err := c.Require(); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w Wall
		if err := tx.Where("id = ?", id).First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if w.IsDefault {
			return ErrProtected
		}

		res := tx.Exec("delete from "+board.KindWall.Table()+" where wall_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Delete(&Wall{}, id).Error; err != nil {
			return err
		}
		s.log.Info("wall deleted", zap.Uint64("id", id), zap.Int64("entries", res.RowsAffected))
		return nil
	})
}

// List returns public walls, or every wall when c is granted.
func (s *Service) List(ctx context.Context, c auth.Capability) ([]Wall, error) {
	q := s.DB.WithContext(ctx).Model(&Wall{})
	if !c.Granted() {
		q = q.Where("is_public = ?", true)
	}
	walls := []Wall{}
	if err := q.Order("is_default desc, created_at asc, id asc").Find(&walls).Error; err != nil {
		return nil, err
	}
	return walls, nil
}

// Get finds a wall by numeric id or slug. Private walls need the credential.
func (s *Service) Get(ctx context.Context, c auth.Capability, ref string) (*Wall, error) {
	ref = strings.TrimSpace(ref)
	var (
		w   *Wall
		err error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		w, err = s.byID(ctx, id)
	} else {
		w, err = s.bySlug(ctx, strings.ToLower(ref))
	}
	if err != nil {
		return nil, err
	}
	if !w.IsPublic && !c.Granted() {
		return nil, auth.ErrUnauthorized
	}
	return w, nil
}

// Board maps a wall reference to the entry board it owns. An empty ref and
// the default wall both map to entries without a wall_id.
func (s *Service) Board(ctx context.Context, c auth.Capability, ref string) (board.Ref, error) {
	if strings.TrimSpace(ref) == "" {
		return board.Ref{Kind: board.KindWall}, nil
	}
	w, err := s.Get(ctx, c, ref)
	if err != nil {
		return board.Ref{}, err
	}
	if w.IsDefault {
		return board.Ref{Kind: board.KindWall}, nil
	}
	id := w.ID
	return board.Ref{Kind: board.KindWall, WallID: &id}, nil
}

// IsPublic reports the privacy of wall id.
func (s *Service) IsPublic(ctx context.Context, id uint64) (bool, error) {
	w, err := s.byID(ctx, id)
	if err != nil {
		return false, err
	}
	return w.IsPublic, nil
}

func (s *Service) byID(ctx context.Context, id uint64) (*Wall, error) {
	var w Wall
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *Service) bySlug(ctx context.Context, slug string) (*Wall, error) {
	var w Wall
	if err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}
