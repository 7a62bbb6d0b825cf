package pin

import (
	"context"
	"fmt"
	"sync"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/metrics"

	"go.uber.org/zap"
)

// Store is the part of the entry store the engine writes through.
type Store interface {
	Get(ctx context.Context, kind board.Kind, id uint64) (*board.Entry, error)
	MaxPinOrder(ctx context.Context, ref board.Ref) (*int, error)
	SetPin(ctx context.Context, kind board.Kind, id uint64, pinned bool, order *int) error
}

// ReorderError reports a reorder that stopped part way. The first Applied
// writes are committed and are not rolled back.
type ReorderError struct {
	Applied int
	ID      uint64
	Err     error
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("reorder stopped at entry %d after %d writes: %v", e.ID, e.Applied, e.Err)
}

func (e *ReorderError) Unwrap() error { return e.Err }

// Engine keeps pinned entries of a board in a gap-tolerant total order.
// Operations on the same board are serialized within this process.
type Engine struct {
	Store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	log   *zap.Logger
}

func NewEngine(store Store) *Engine {
	return &Engine{
		Store: store,
		locks: map[string]*sync.Mutex{},
		log:   zap.L().With(zap.String("component", "pin.Engine")),
	}
}

func (e *Engine) lock(ref board.Ref) func() {
	e.mu.Lock()
	l, ok := e.locks[ref.Key()]
	if !ok {
		l = &sync.Mutex{}
		e.locks[ref.Key()] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// SetPinned pins or unpins one entry.
func (e *Engine) SetPinned(ctx context.Context, c auth.Capability, kind board.Kind, id uint64, pinned bool) error {
	if pinned {
		_, err := e.Pin(ctx, c, kind, id)
		return err
	}
	return e.Unpin(ctx, c, kind, id)
}

// Pin appends the entry to the tail of its board's pinned order and returns
// its pin_order. Pinning an already pinned entry changes nothing.
func (e *Engine) Pin(ctx context.Context, c auth.Capability, kind board.Kind, id uint64) (int, error) {
	if err := c.Require(); err != nil {
		metrics.PinOperationsTotal.WithLabelValues("pin", "unauthorized").Inc()
		return 0, err
	}

	order, err := e.pin(ctx, kind, id)
	metrics.PinOperationsTotal.WithLabelValues("pin", metrics.Status(err)).Inc()
	return order, err
}

func (e *Engine) pin(ctx context.Context, kind board.Kind, id uint64) (int, error) {
	entry, err := e.Store.Get(ctx, kind, id)
	if err != nil {
		return 0, err
	}
	ref := board.RefOf(kind, entry)

	unlock := e.lock(ref)
	defer unlock()

	// re-read under the board lock
	entry, err = e.Store.Get(ctx, kind, id)
	if err != nil {
		return 0, err
	}
	if entry.IsPinned && entry.PinOrder != nil {
		return *entry.PinOrder, nil
	}

	next := 0
	top, err := e.Store.MaxPinOrder(ctx, ref)
	if err != nil {
		return 0, err
	}
	if top != nil {
		next = *top + 1
	}

	if err := e.Store.SetPin(ctx, kind, id, true, &next); err != nil {
		e.log.Error("pin write failed", zap.String("board", ref.Key()), zap.Uint64("id", id), zap.Error(err))
		return 0, err
	}
	return next, nil
}

// Unpin clears pin state. Remaining pinned entries keep their orders.
func (e *Engine) Unpin(ctx context.Context, c auth.Capability, kind board.Kind, id uint64) error {
	if err := c.Require(); err != nil {
		metrics.PinOperationsTotal.WithLabelValues("unpin", "unauthorized").Inc()
		return err
	}

	err := e.unpin(ctx, kind, id)
	metrics.PinOperationsTotal.WithLabelValues("unpin", metrics.Status(err)).Inc()
	return err
}

func (e *Engine) unpin(ctx context.Context, kind board.Kind, id uint64) error {
	entry, err := e.Store.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	unlock := e.lock(board.RefOf(kind, entry))
	defer unlock()

	return e.Store.SetPin(ctx, kind, id, false, nil)
}

// Reorder writes pin_order = index and is_pinned = true for each listed id,
// in list order. Ids not listed are untouched. A failed write stops the
// operation with a *ReorderError; earlier writes stay applied. A zero id
// fails validation before anything is written.
func (e *Engine) Reorder(ctx context.Context, c auth.Capability, ref board.Ref, ids []uint64) error {
	if err := c.Require(); err != nil {
		metrics.PinOperationsTotal.WithLabelValues("reorder", "unauthorized").Inc()
		return err
	}
	for i, id := range ids {
		if id == 0 {
			metrics.PinOperationsTotal.WithLabelValues("reorder", "invalid").Inc()
			return fmt.Errorf("%w: orderedIds[%d] is not a valid id", board.ErrInvalid, i)
		}
	}

	unlock := e.lock(ref)
	defer unlock()

	for i, id := range ids {
		order := i
		if err := e.Store.SetPin(ctx, ref.Kind, id, true, &order); err != nil {
			e.log.Warn("reorder partially applied",
				zap.String("board", ref.Key()),
				zap.Int("applied", i),
				zap.Uint64("id", id),
				zap.Error(err),
			)
			metrics.PinOperationsTotal.WithLabelValues("reorder", "partial").Inc()
			return &ReorderError{Applied: i, ID: id, Err: err}
		}
	}

	metrics.PinOperationsTotal.WithLabelValues("reorder", "ok").Inc()
	return nil
}
