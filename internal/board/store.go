package board

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Patch lists the fields an update writes. Nil pointers are left alone;
// Title is written (possibly as NULL) only when SetTitle is true.
type Patch struct {
	Text       *string
	Tags       []string
	Title      *string
	SetTitle   bool
	Visibility *Visibility
}

type Query struct {
	Ref        Ref
	Visibility Visibility
	Tag        string
	Search     string
	// ByRecency ignores pin state and sorts newest first.
	ByRecency bool
	Limit     int
}

type Store interface {
	Create(ctx context.Context, kind Kind, e *Entry) error
	Get(ctx context.Context, kind Kind, id uint64) (*Entry, error)
	GetMany(ctx context.Context, kind Kind, ids []uint64) ([]Entry, error)
	Update(ctx context.Context, kind Kind, id uint64, p Patch) (*Entry, error)
	Delete(ctx context.Context, kind Kind, id uint64) error
	List(ctx context.Context, q Query) ([]Entry, error)

	// MaxPinOrder returns the largest pin_order among pinned entries of ref, or nil.
	MaxPinOrder(ctx context.Context, ref Ref) (*int, error)
	// SetPin writes is_pinned and pin_order of one entry.
	SetPin(ctx context.Context, kind Kind, id uint64, pinned bool, order *int) error
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) table(ctx context.Context, kind Kind) *gorm.DB {
	return s.DB.WithContext(ctx).Table(kind.Table())
}

func scopeRef(q *gorm.DB, ref Ref) *gorm.DB {
	if ref.Kind != KindWall {
		return q
	}
	if ref.WallID == nil {
		return q.Where("wall_id is null")
	}
	return q.Where("wall_id = ?", *ref.WallID)
}

func (s *GormStore) Create(ctx context.Context, kind Kind, e *Entry) error {
	return s.table(ctx, kind).Create(e).Error
}

func (s *GormStore) Get(ctx context.Context, kind Kind, id uint64) (*Entry, error) {
	var e Entry
	if err := s.table(ctx, kind).Where("id = ?", id).Take(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *GormStore) GetMany(ctx context.Context, kind Kind, ids []uint64) ([]Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	arr := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	var rows []Entry
	if err := s.table(ctx, kind).Where("id = any(?)", arr).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) Update(ctx context.Context, kind Kind, id uint64, p Patch) (*Entry, error) {
	fields := map[string]any{"updated_at": time.Now()}
	if p.Text != nil {
		fields["text"] = *p.Text
		fields["tags"] = pq.StringArray(p.Tags)
	}
	if p.SetTitle {
		fields["title"] = p.Title
	}
	if p.Visibility != nil {
		fields["visibility"] = *p.Visibility
	}

	res := s.table(ctx, kind).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, kind, id)
}

func (s *GormStore) Delete(ctx context.Context, kind Kind, id uint64) error {
	res := s.table(ctx, kind).Where("id = ?", id).Delete(&Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, q Query) ([]Entry, error) {
	db := scopeRef(s.table(ctx, q.Ref.Kind), q.Ref)

	if q.Visibility != "" {
		db = db.Where("visibility = ?", q.Visibility)
	}
	if q.Tag != "" {
		db = db.Where("? = any(tags)", q.Tag)
	}
	if q.Search != "" {
		db = db.Where("text ILIKE ?", "%"+q.Search+"%")
	}
	if q.ByRecency {
		db = db.Order("created_at desc")
	} else {
		db = db.Order(orderClause)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var rows []Entry
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) MaxPinOrder(ctx context.Context, ref Ref) (*int, error) {
	var max sql.NullInt64
	q := scopeRef(s.table(ctx, ref.Kind), ref).Where("is_pinned = ?", true)
	if err := q.Select("max(pin_order)").Row().Scan(&max); err != nil {
		return nil, err
	}
	if !max.Valid {
		return nil, nil
	}
	v := int(max.Int64)
	return &v, nil
}

func (s *GormStore) SetPin(ctx context.Context, kind Kind, id uint64, pinned bool, order *int) error {
	res := s.table(ctx, kind).Where("id = ?", id).Updates(map[string]any{
		"is_pinned":  pinned,
		"pin_order":  order,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
