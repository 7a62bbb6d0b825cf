// Package linktest provides an in-memory shortlink.Store for tests.
package linktest

import (
	"context"
	"sync"

	"wall/internal/shortlink"
)

type Store struct {
	mu       sync.Mutex
	byCode   map[string]shortlink.Link
	byTarget map[shortlink.Target]string

	// BeforeInsert, when set, runs before each insert with the lock released.
	BeforeInsert func(l *shortlink.Link)
	// Inserts counts attempted inserts.
	Inserts int
}

func New() *Store {
	return &Store{byCode: map[string]shortlink.Link{}, byTarget: map[shortlink.Target]string{}}
}

// Put stores l without uniqueness checks on the target.
func (s *Store) Put(l shortlink.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCode[l.Code] = l
	s.byTarget[l.Target()] = l.Code
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byCode)
}

func (s *Store) FindByTarget(ctx context.Context, t shortlink.Target) (*shortlink.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.byTarget[t]
	if !ok {
		return nil, shortlink.ErrNotFound
	}
	l := s.byCode[code]
	return &l, nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (*shortlink.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byCode[code]
	if !ok {
		return nil, shortlink.ErrNotFound
	}
	return &l, nil
}

func (s *Store) Insert(ctx context.Context, l *shortlink.Link) error {
	if s.BeforeInsert != nil {
		s.BeforeInsert(l)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inserts++
	if _, ok := s.byCode[l.Code]; ok {
		return shortlink.ErrCodeTaken
	}
	if _, ok := s.byTarget[l.Target()]; ok {
		return shortlink.ErrTargetLinked
	}
	s.byCode[l.Code] = *l
	s.byTarget[l.Target()] = l.Code
	return nil
}
