package board_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/board/boardtest"
	"wall/internal/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = auth.NewGate("pw", "").Check("pw")
	anon  auth.Capability
)

type fakeScreener struct {
	report moderation.Report
	calls  [][]moderation.Input
}

func (f *fakeScreener) Screen(ctx context.Context, in []moderation.Input) moderation.Report {
	f.calls = append(f.calls, in)
	return f.report
}

func strp(s string) *string { return &s }

func TestCreate_RequiresCredential(t *testing.T) {
	store := boardtest.New()
	svc := board.NewService(store, nil)

	_, err := svc.Create(context.Background(), anon, board.KindWall, board.CreateInput{Text: "hi"})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.Empty(t, store.All(board.KindWall))
}

func TestCreate_WallEntry(t *testing.T) {
	store := boardtest.New()
	svc := board.NewService(store, nil)

	e, err := svc.Create(context.Background(), owner, board.KindWall, board.CreateInput{
		Text:       "  shipping #Go today ",
		Title:      strp("(optional)"),
		Visibility: "draft",
	})
	require.NoError(t, err)

	assert.NotZero(t, e.ID)
	assert.Equal(t, "shipping #Go today", e.Text)
	assert.Nil(t, e.Title)
	assert.Equal(t, board.VisibilityDraft, e.Visibility)
	assert.Equal(t, []string{"go"}, []string(e.Tags))
	assert.False(t, e.IsPinned)
	assert.Nil(t, e.PinOrder)
}

func TestCreate_Validation(t *testing.T) {
	svc := board.NewService(boardtest.New(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, board.KindTech, board.CreateInput{Text: "   "})
	assert.ErrorIs(t, err, board.ErrInvalid)

	_, err = svc.Create(ctx, owner, board.KindWall, board.CreateInput{Text: "x", Visibility: "hidden"})
	assert.ErrorIs(t, err, board.ErrInvalid)

	wallID := uint64(3)
	_, err = svc.Create(ctx, owner, board.KindSong, board.CreateInput{Text: "x", WallID: &wallID})
	assert.ErrorIs(t, err, board.ErrInvalid)
}

func TestCreate_FriendOpenButModerated(t *testing.T) {
	store := boardtest.New()
	screener := &fakeScreener{}
	svc := board.NewService(store, screener)
	ctx := context.Background()

	_, err := svc.Create(ctx, anon, board.KindFriend, board.CreateInput{Text: "hey"})
	assert.ErrorIs(t, err, board.ErrInvalid, "name is required")

	_, err = svc.Create(ctx, anon, board.KindFriend, board.CreateInput{Text: "hey", Name: strp("Kai"), Visibility: "draft"})
	assert.ErrorIs(t, err, board.ErrInvalid, "friend notes cannot be drafts")

	e, err := svc.Create(ctx, anon, board.KindFriend, board.CreateInput{Text: "hey", Name: strp(" Kai ")})
	require.NoError(t, err)
	assert.Equal(t, "Kai", *e.Name)
	require.Len(t, screener.calls, 1)
	assert.Equal(t, []moderation.Input{{Label: "name", Text: "Kai"}, {Label: "text", Text: "hey"}}, screener.calls[0])
}

func TestCreate_FriendRejected(t *testing.T) {
	store := boardtest.New()
	screener := &fakeScreener{report: moderation.Report{Flagged: true}}
	svc := board.NewService(store, screener)

	_, err := svc.Create(context.Background(), anon, board.KindFriend, board.CreateInput{Text: "rude", Name: strp("Kai")})

	var rej *board.RejectedError
	require.True(t, errors.As(err, &rej))
	assert.True(t, rej.Report.Flagged)
	assert.Empty(t, store.All(board.KindFriend))
}

func TestUpdate(t *testing.T) {
	store := boardtest.New()
	svc := board.NewService(store, nil)
	ctx := context.Background()
	e := store.Put(board.KindWall, board.Entry{Text: "old", Title: strp("T")})

	_, err := svc.Update(ctx, anon, board.KindWall, e.ID, board.UpdateInput{Text: strp("new")})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	got, err := svc.Update(ctx, owner, board.KindWall, e.ID, board.UpdateInput{
		Text:       strp("new #idea"),
		Title:      strp(" "),
		Visibility: strp("draft"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new #idea", got.Text)
	assert.Equal(t, []string{"idea"}, []string(got.Tags))
	assert.Nil(t, got.Title)
	assert.Equal(t, board.VisibilityDraft, got.Visibility)

	_, err = svc.Update(ctx, owner, board.KindWall, 999, board.UpdateInput{Text: strp("x")})
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = svc.Update(ctx, owner, board.KindWall, e.ID, board.UpdateInput{})
	assert.ErrorIs(t, err, board.ErrInvalid)

	_, err = svc.Update(ctx, owner, board.KindWall, e.ID, board.UpdateInput{Visibility: strp("secret")})
	assert.ErrorIs(t, err, board.ErrInvalid)
}

func TestDelete(t *testing.T) {
	store := boardtest.New()
	svc := board.NewService(store, nil)
	ctx := context.Background()
	e := store.Put(board.KindTech, board.Entry{Text: "x"})

	assert.ErrorIs(t, svc.Delete(ctx, anon, board.KindTech, e.ID), auth.ErrUnauthorized)
	require.NoError(t, svc.Delete(ctx, owner, board.KindTech, e.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, board.KindTech, e.ID), board.ErrNotFound)
}

func TestListAndDrafts(t *testing.T) {
	store := boardtest.New()
	svc := board.NewService(store, nil)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	order := 0
	wallID := uint64(9)

	store.Put(board.KindWall, board.Entry{ID: 1, Text: "old #go", CreatedAt: base})
	store.Put(board.KindWall, board.Entry{ID: 2, Text: "new", CreatedAt: base.Add(time.Hour)})
	store.Put(board.KindWall, board.Entry{ID: 3, Text: "pinned #go", IsPinned: true, PinOrder: &order, CreatedAt: base.Add(-time.Hour)})
	store.Put(board.KindWall, board.Entry{ID: 4, Text: "secret", Visibility: board.VisibilityDraft, CreatedAt: base})
	store.Put(board.KindWall, board.Entry{ID: 5, Text: "other wall", WallID: &wallID, CreatedAt: base})

	got, err := svc.List(ctx, board.ListInput{Ref: board.Ref{Kind: board.KindWall}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 2, 1}, entryIDs(got))

	got, err = svc.List(ctx, board.ListInput{Ref: board.Ref{Kind: board.KindWall}, Tag: "#GO"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1}, entryIDs(got))

	got, err = svc.List(ctx, board.ListInput{Ref: board.Ref{Kind: board.KindWall, WallID: &wallID}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, entryIDs(got))

	_, err = svc.Drafts(ctx, anon, board.Ref{Kind: board.KindWall})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	drafts, err := svc.Drafts(ctx, owner, board.Ref{Kind: board.KindWall})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, entryIDs(drafts))
}

func entryIDs(entries []board.Entry) []uint64 {
	out := make([]uint64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
