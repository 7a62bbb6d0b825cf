package share_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/board/boardtest"
	"wall/internal/share"
	"wall/internal/shortlink"
	"wall/internal/shortlink/linktest"
	"wall/internal/wall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15"
	facebook  = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"
)

var owner = auth.NewGate("pw", "").Check("pw")

type privateWalls map[uint64]bool

func (w privateWalls) IsPublic(ctx context.Context, id uint64) (bool, error) {
	return !w[id], nil
}

type missingWalls struct{}

func (missingWalls) IsPublic(ctx context.Context, id uint64) (bool, error) {
	return false, wall.ErrNotFound
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, code string) (shortlink.Target, error) {
	return shortlink.Target{}, errors.New("db down")
}

func setup(t *testing.T) (*share.Responder, *boardtest.Store, *linktest.Store) {
	t.Helper()
	entries := boardtest.New()
	links := linktest.New()
	walls := privateWalls{5: true}
	dir := shortlink.NewDirectory(links, entries, walls)
	return share.NewResponder(dir, entries, walls), entries, links
}

func link(links *linktest.Store, code string, kind board.Kind, id uint64) {
	links.Put(shortlink.Link{Code: code, TargetKind: kind, TargetID: id})
}

func TestRespond_UnknownCode(t *testing.T) {
	r, _, _ := setup(t)
	res, err := r.Respond(context.Background(), share.Request{Code: "Nope22", UserAgent: browserUA})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeNotFound, res.Outcome)
}

func TestRespond_OrphanedLink(t *testing.T) {
	r, _, links := setup(t)
	link(links, "Orphan", board.KindWall, 99)

	res, err := r.Respond(context.Background(), share.Request{Code: "Orphan", UserAgent: browserUA})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeNotFound, res.Outcome)
}

func TestRespond_DraftForbidden(t *testing.T) {
	r, entries, links := setup(t)
	e := entries.Put(board.KindWall, board.Entry{Text: "top secret plans", Visibility: board.VisibilityDraft})
	link(links, "Draft2", board.KindWall, e.ID)

	for _, ua := range []string{browserUA, facebook} {
		res, err := r.Respond(context.Background(), share.Request{Code: "Draft2", UserAgent: ua})
		require.NoError(t, err)
		assert.Equal(t, share.OutcomeForbidden, res.Outcome)
		assert.Empty(t, res.HTML)
		assert.Empty(t, res.Location)
	}

	res, err := r.Respond(context.Background(), share.Request{Code: "Draft2", UserAgent: browserUA, Host: "wall.example", Cap: owner})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeRedirect, res.Outcome)
}

func TestRespond_PrivateWallForbidden(t *testing.T) {
	r, entries, links := setup(t)
	wallID := uint64(5)
	e := entries.Put(board.KindWall, board.Entry{Text: "hidden", WallID: &wallID})
	link(links, "Priv22", board.KindWall, e.ID)

	res, err := r.Respond(context.Background(), share.Request{Code: "Priv22", UserAgent: browserUA})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeForbidden, res.Outcome)
}

func TestRespond_DeletedWallNotFound(t *testing.T) {
	entries := boardtest.New()
	links := linktest.New()
	r := share.NewResponder(shortlink.NewDirectory(links, entries, missingWalls{}), entries, missingWalls{})
	wallID := uint64(8)
	e := entries.Put(board.KindWall, board.Entry{Text: "left behind", WallID: &wallID})
	link(links, "Gone22", board.KindWall, e.ID)

	res, err := r.Respond(context.Background(), share.Request{Code: "Gone22", UserAgent: browserUA})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeNotFound, res.Outcome)

	res, err = r.Respond(context.Background(), share.Request{Code: "Gone22", UserAgent: browserUA, Cap: owner})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeRedirect, res.Outcome)
}

func TestRespond_FriendNeverDraft(t *testing.T) {
	r, entries, links := setup(t)
	e := entries.Put(board.KindFriend, board.Entry{Text: "hi!", Name: strp("Kai"), Visibility: board.VisibilityDraft})
	link(links, "Frnd22", board.KindFriend, e.ID)

	res, err := r.Respond(context.Background(), share.Request{Code: "Frnd22", UserAgent: browserUA, Host: "wall.example"})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeRedirect, res.Outcome)
	assert.Equal(t, "https://wall.example/#friends&entry=1", res.Location)
}

func TestRespond_HumanRedirect(t *testing.T) {
	r, entries, links := setup(t)
	e := entries.Put(board.KindWall, board.Entry{Text: "hello"})
	link(links, "Pub234", board.KindWall, e.ID)

	res, err := r.Respond(context.Background(), share.Request{Code: "Pub234", UserAgent: browserUA, Host: "wall.example", Proto: "http"})
	require.NoError(t, err)
	assert.Equal(t, share.OutcomeRedirect, res.Outcome)
	assert.Equal(t, "http://wall.example/#entry=1", res.Location)
	assert.Empty(t, res.HTML)
}

func TestRespond_CrawlerPreview(t *testing.T) {
	r, entries, links := setup(t)
	text := strings.Repeat("word ", 30) + "\n\n" + strings.Repeat("x", 200)
	e := entries.Put(board.KindWall, board.Entry{Text: text})
	link(links, "Pub234", board.KindWall, e.ID)

	res, err := r.Respond(context.Background(), share.Request{Code: "Pub234", UserAgent: facebook, Host: "wall.example"})
	require.NoError(t, err)
	require.Equal(t, share.OutcomePreview, res.Outcome)

	want := share.Truncate(text, 200)
	assert.Equal(t, 200, len([]rune(want)))
	assert.True(t, strings.HasSuffix(want, "…"))

	html := string(res.HTML)
	assert.Contains(t, html, `<meta property="og:description" content="`+want+`" />`)
	assert.Contains(t, html, `<meta property="og:title" content="Note on My Wall" />`)
	assert.Contains(t, html, `<link rel="canonical" href="https://wall.example/#entry=1" />`)
	assert.Contains(t, html, `location.replace("#entry=1")`)
}

func TestRespond_PreviewEscapesText(t *testing.T) {
	r, entries, links := setup(t)
	e := entries.Put(board.KindFriend, board.Entry{Text: `<script>alert("x")</script>`, Name: strp("Kai")})
	link(links, "Frnd22", board.KindFriend, e.ID)

	res, err := r.Respond(context.Background(), share.Request{Code: "Frnd22", UserAgent: "Slackbot-LinkExpanding 1.0", Host: "wall.example"})
	require.NoError(t, err)
	require.Equal(t, share.OutcomePreview, res.Outcome)

	html := string(res.HTML)
	assert.NotContains(t, html, `<script>alert`)
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "<title>Kai’s Note</title>")
}

func TestRespond_BackendError(t *testing.T) {
	r := share.NewResponder(failingResolver{}, boardtest.New(), nil)
	_, err := r.Respond(context.Background(), share.Request{Code: "Any234"})
	assert.Error(t, err)
}

func TestIsCrawler(t *testing.T) {
	for _, ua := range []string{facebook, "Twitterbot/1.0", "WhatsApp/2.23", "Mozilla/5.0 (compatible; Discordbot/2.0)", "LinkedInBot/1.0", "Googlebot"} {
		assert.True(t, share.IsCrawler(ua), ua)
	}
	assert.False(t, share.IsCrawler(browserUA))
	assert.False(t, share.IsCrawler(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b c", share.Truncate("  a \n b\t\tc ", 200))
	assert.Equal(t, "abcd…", share.Truncate("abcdefgh", 5))
	assert.Equal(t, "abcde", share.Truncate("abcde", 5))
	assert.Equal(t, "ééé…", share.Truncate("éééééé", 4))
}

func TestHash(t *testing.T) {
	assert.Equal(t, "#entry=3", share.Hash(board.KindWall, 3))
	assert.Equal(t, "#friends&entry=3", share.Hash(board.KindFriend, 3))
	assert.Equal(t, "#tech&entry=3", share.Hash(board.KindTech, 3))
}

func strp(s string) *string { return &s }

func TestTitle(t *testing.T) {
	own := "Release notes"
	name := "Kai"
	assert.Equal(t, "Release notes", share.Title(board.KindWall, &board.Entry{Title: &own}))
	assert.Equal(t, "Note on My Wall", share.Title(board.KindWall, &board.Entry{}))
	assert.Equal(t, "Kai’s Note", share.Title(board.KindFriend, &board.Entry{Name: &name}))
	assert.Equal(t, "Friend Note", share.Title(board.KindFriend, &board.Entry{}))
}
