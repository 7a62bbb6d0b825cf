// Package boardtest provides an in-memory board.Store for tests.
package boardtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wall/internal/board"
)

type Store struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[board.Kind]map[uint64]board.Entry

	// SetPinErr, when set, is returned by SetPin for the given entry id.
	SetPinErr map[uint64]error
	// Err, when set, is returned by every call.
	Err error
}

func New() *Store {
	return &Store{entries: map[board.Kind]map[uint64]board.Entry{}, SetPinErr: map[uint64]error{}}
}

// Put stores e as-is, assigning an id when e.ID is zero and deriving tags
// from the text when e.Tags is nil.
func (s *Store) Put(kind board.Kind, e board.Entry) board.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		s.nextID++
		e.ID = s.nextID
	} else if e.ID > s.nextID {
		s.nextID = e.ID
	}
	if e.Tags == nil {
		e.Tags = board.ExtractTags(e.Text)
	}
	if e.Visibility == "" {
		e.Visibility = board.VisibilityPublic
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.table(kind)[e.ID] = e
	return e
}

// All returns every entry of kind, sorted by id.
func (s *Store) All(kind board.Kind) []board.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Entry, 0, len(s.entries[kind]))
	for _, e := range s.entries[kind] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) table(kind board.Kind) map[uint64]board.Entry {
	t, ok := s.entries[kind]
	if !ok {
		t = map[uint64]board.Entry{}
		s.entries[kind] = t
	}
	return t
}

func inRef(e board.Entry, ref board.Ref) bool {
	if ref.Kind != board.KindWall {
		return true
	}
	if ref.WallID == nil {
		return e.WallID == nil
	}
	return e.WallID != nil && *e.WallID == *ref.WallID
}

func (s *Store) Create(ctx context.Context, kind board.Kind, e *board.Entry) error {
	if s.Err != nil {
		return s.Err
	}
	stored := s.Put(kind, *e)
	*e = stored
	return nil
}

func (s *Store) Get(ctx context.Context, kind board.Kind, id uint64) (*board.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	e, ok := s.table(kind)[id]
	if !ok {
		return nil, board.ErrNotFound
	}
	return &e, nil
}

func (s *Store) GetMany(ctx context.Context, kind board.Kind, ids []uint64) ([]board.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []board.Entry
	for _, id := range ids {
		if e, ok := s.table(kind)[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, kind board.Kind, id uint64, p board.Patch) (*board.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	e, ok := s.table(kind)[id]
	if !ok {
		return nil, board.ErrNotFound
	}
	if p.Text != nil {
		e.Text = *p.Text
		e.Tags = p.Tags
	}
	if p.SetTitle {
		e.Title = p.Title
	}
	if p.Visibility != nil {
		e.Visibility = *p.Visibility
	}
	e.UpdatedAt = time.Now()
	s.table(kind)[id] = e
	return &e, nil
}

func (s *Store) Delete(ctx context.Context, kind board.Kind, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.table(kind)[id]; !ok {
		return board.ErrNotFound
	}
	delete(s.table(kind), id)
	return nil
}

func (s *Store) List(ctx context.Context, q board.Query) ([]board.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []board.Entry{}
	for _, e := range s.table(q.Ref.Kind) {
		if !inRef(e, q.Ref) {
			continue
		}
		if q.Visibility != "" && e.Visibility != q.Visibility {
			continue
		}
		if q.Tag != "" && !contains(e.Tags, q.Tag) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(e.Text), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, e)
	}
	if q.ByRecency {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	} else {
		board.Sort(out)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) MaxPinOrder(ctx context.Context, ref board.Ref) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var max *int
	for _, e := range s.table(ref.Kind) {
		if !e.IsPinned || e.PinOrder == nil || !inRef(e, ref) {
			continue
		}
		if max == nil || *e.PinOrder > *max {
			v := *e.PinOrder
			max = &v
		}
	}
	return max, nil
}

func (s *Store) SetPin(ctx context.Context, kind board.Kind, id uint64, pinned bool, order *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if err := s.SetPinErr[id]; err != nil {
		return err
	}
	e, ok := s.table(kind)[id]
	if !ok {
		return board.ErrNotFound
	}
	e.IsPinned = pinned
	if order != nil {
		v := *order
		e.PinOrder = &v
	} else {
		e.PinOrder = nil
	}
	s.table(kind)[id] = e
	return nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
