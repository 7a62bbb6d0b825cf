package pin_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/board/boardtest"
	"wall/internal/pin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = auth.NewGate("pw", "").Check("pw")
	anon  auth.Capability
	home  = board.Ref{Kind: board.KindWall}
	base  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func intp(v int) *int { return &v }

func seed(store *boardtest.Store, n int) []board.Entry {
	out := make([]board.Entry, n)
	for i := range out {
		out[i] = store.Put(board.KindWall, board.Entry{Text: "note", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	return out
}

func orderOf(t *testing.T, store *boardtest.Store, id uint64) *int {
	t.Helper()
	e, err := store.Get(context.Background(), board.KindWall, id)
	require.NoError(t, err)
	return e.PinOrder
}

func listed(t *testing.T, store *boardtest.Store) []uint64 {
	t.Helper()
	entries, err := store.List(context.Background(), board.Query{Ref: home})
	require.NoError(t, err)
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func TestPin_AppendsInOrder(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	e := seed(store, 5)
	a, b, c := e[0], e[1], e[2]

	for i, entry := range []board.Entry{a, b, c} {
		got, err := eng.Pin(ctx, owner, board.KindWall, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}

	assert.Equal(t, intp(0), orderOf(t, store, a.ID))
	assert.Equal(t, intp(1), orderOf(t, store, b.ID))
	assert.Equal(t, intp(2), orderOf(t, store, c.ID))
	assert.Equal(t, []uint64{a.ID, b.ID, c.ID, e[4].ID, e[3].ID}, listed(t, store))
}

func TestPin_AlreadyPinnedIsNoop(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	e := seed(store, 2)

	_, err := eng.Pin(ctx, owner, board.KindWall, e[0].ID)
	require.NoError(t, err)
	_, err = eng.Pin(ctx, owner, board.KindWall, e[1].ID)
	require.NoError(t, err)

	got, err := eng.Pin(ctx, owner, board.KindWall, e[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Equal(t, intp(0), orderOf(t, store, e[0].ID))
}

func TestPin_Missing(t *testing.T) {
	eng := pin.NewEngine(boardtest.New())
	_, err := eng.Pin(context.Background(), owner, board.KindWall, 42)
	assert.ErrorIs(t, err, board.ErrNotFound)
}

func TestUnpin_KeepsGaps(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	e := seed(store, 4)
	for _, entry := range e {
		_, err := eng.Pin(ctx, owner, board.KindWall, entry.ID)
		require.NoError(t, err)
	}

	require.NoError(t, eng.Unpin(ctx, owner, board.KindWall, e[1].ID))

	assert.Nil(t, orderOf(t, store, e[1].ID))
	assert.Equal(t, intp(0), orderOf(t, store, e[0].ID))
	assert.Equal(t, intp(2), orderOf(t, store, e[2].ID))
	assert.Equal(t, intp(3), orderOf(t, store, e[3].ID))
	assert.Equal(t, []uint64{e[0].ID, e[2].ID, e[3].ID, e[1].ID}, listed(t, store))

	// the next pin lands after the current max, not in the gap
	got, err := eng.Pin(ctx, owner, board.KindWall, e[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestReorder_RewritesListedOrder(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	a := store.Put(board.KindWall, board.Entry{Text: "a", IsPinned: true, PinOrder: intp(7)})
	b := store.Put(board.KindWall, board.Entry{Text: "b", IsPinned: true, PinOrder: intp(2)})
	c := store.Put(board.KindWall, board.Entry{Text: "c", IsPinned: true, PinOrder: intp(5)})

	require.NoError(t, eng.Reorder(ctx, owner, home, []uint64{c.ID, a.ID, b.ID}))

	assert.Equal(t, intp(0), orderOf(t, store, c.ID))
	assert.Equal(t, intp(1), orderOf(t, store, a.ID))
	assert.Equal(t, intp(2), orderOf(t, store, b.ID))
	assert.Equal(t, []uint64{c.ID, a.ID, b.ID}, listed(t, store))
}

func TestReorder_PinsUnpinnedAndLeavesOthers(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	kept := store.Put(board.KindWall, board.Entry{Text: "kept", IsPinned: true, PinOrder: intp(9)})
	loose := store.Put(board.KindWall, board.Entry{Text: "loose"})

	require.NoError(t, eng.Reorder(ctx, owner, home, []uint64{loose.ID}))

	e, err := store.Get(ctx, board.KindWall, loose.ID)
	require.NoError(t, err)
	assert.True(t, e.IsPinned)
	assert.Equal(t, intp(0), e.PinOrder)
	assert.Equal(t, intp(9), orderOf(t, store, kept.ID))
}

func TestReorder_PartialFailure(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	e := seed(store, 3)
	boom := errors.New("connection reset")
	store.SetPinErr[e[1].ID] = boom

	err := eng.Reorder(ctx, owner, home, []uint64{e[2].ID, e[1].ID, e[0].ID})

	var rerr *pin.ReorderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 1, rerr.Applied)
	assert.Equal(t, e[1].ID, rerr.ID)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, intp(0), orderOf(t, store, e[2].ID), "earlier write stays applied")
	assert.Nil(t, orderOf(t, store, e[0].ID), "later writes never ran")
}

func TestReorder_ZeroIDRejectedBeforeWrites(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	e := seed(store, 2)
	before := store.All(board.KindWall)

	err := eng.Reorder(context.Background(), owner, home, []uint64{e[0].ID, 0, e[1].ID})

	assert.ErrorIs(t, err, board.ErrInvalid)
	var rerr *pin.ReorderError
	assert.False(t, errors.As(err, &rerr))
	assert.Equal(t, before, store.All(board.KindWall))
}

func TestUnauthenticated_NoStateChange(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	e := seed(store, 2)
	before := store.All(board.KindWall)

	_, err := eng.Pin(ctx, anon, board.KindWall, e[0].ID)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.ErrorIs(t, eng.Unpin(ctx, anon, board.KindWall, e[0].ID), auth.ErrUnauthorized)
	assert.ErrorIs(t, eng.Reorder(ctx, anon, home, []uint64{e[1].ID, e[0].ID}), auth.ErrUnauthorized)
	assert.ErrorIs(t, eng.SetPinned(ctx, anon, board.KindWall, e[1].ID, true), auth.ErrUnauthorized)

	assert.Equal(t, before, store.All(board.KindWall))
}

func TestPin_ScopedPerWall(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	wallID := uint64(3)
	onHome := store.Put(board.KindWall, board.Entry{Text: "home", IsPinned: true, PinOrder: intp(4)})
	onWall := store.Put(board.KindWall, board.Entry{Text: "side", WallID: &wallID})

	got, err := eng.Pin(ctx, owner, board.KindWall, onWall.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Equal(t, intp(4), orderOf(t, store, onHome.ID))
}

func TestPin_ConcurrentSameBoardNoTies(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	e := seed(store, 20)

	var wg sync.WaitGroup
	for _, entry := range e {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := eng.Pin(ctx, owner, board.KindWall, id)
			assert.NoError(t, err)
		}(entry.ID)
	}
	wg.Wait()

	seen := map[int]bool{}
	for _, entry := range store.All(board.KindWall) {
		require.NotNil(t, entry.PinOrder)
		assert.False(t, seen[*entry.PinOrder], "duplicate order %d", *entry.PinOrder)
		seen[*entry.PinOrder] = true
	}
	assert.Len(t, seen, 20)
}

func TestSetPinned(t *testing.T) {
	store := boardtest.New()
	eng := pin.NewEngine(store)
	ctx := context.Background()
	e := seed(store, 1)

	require.NoError(t, eng.SetPinned(ctx, owner, board.KindWall, e[0].ID, true))
	assert.Equal(t, intp(0), orderOf(t, store, e[0].ID))

	require.NoError(t, eng.SetPinned(ctx, owner, board.KindWall, e[0].ID, false))
	got, err := store.Get(ctx, board.KindWall, e[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsPinned)
	assert.Nil(t, got.PinOrder)
}
