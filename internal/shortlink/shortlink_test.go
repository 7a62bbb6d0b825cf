package shortlink

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wall/internal/board"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCode(t *testing.T) {
	for _, n := range []int{6, 7, 10} {
		c, err := RandomCode(n)
		require.NoError(t, err)
		assert.Len(t, c, n)
		assert.True(t, ValidCode(c), c)
	}
}

func TestAlphabet_Unambiguous(t *testing.T) {
	for _, r := range "01IOl" {
		assert.False(t, strings.ContainsRune(Alphabet, r), string(r))
	}
	seen := map[rune]bool{}
	for _, r := range Alphabet {
		assert.False(t, seen[r], "duplicate %q", r)
		seen[r] = true
	}
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("Ab3xyz"))
	assert.False(t, ValidCode(""))
	assert.False(t, ValidCode("Ab0xyz"))
	assert.False(t, ValidCode("a/b"))
	assert.False(t, ValidCode(strings.Repeat("a", 40)))
}

func TestTarget_RoundTrip(t *testing.T) {
	in := Target{Kind: board.KindFriend, ID: 42}
	out, err := ParseTarget(in.String())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ParseTarget("friend")
	assert.Error(t, err)
	_, err = ParseTarget("friend:x")
	assert.Error(t, err)
}

type stubShortener struct {
	url string
	err error
	got []string
}

func (s *stubShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	s.got = append(s.got, longURL)
	return s.url, s.err
}

func TestPublish_Internal(t *testing.T) {
	ctx := context.Background()

	s, err := NewPublisher("", "", nil).Publish(ctx, "Ab3xyz", "wall.example", "https")
	require.NoError(t, err)
	assert.Equal(t, Share{Code: "Ab3xyz", ShortURL: "https://wall.example/s/Ab3xyz"}, s)

	s, err = NewPublisher("https://notes.example/", "", nil).Publish(ctx, "Ab3xyz", "ignored", "http")
	require.NoError(t, err)
	assert.Equal(t, "https://notes.example/s/Ab3xyz", s.ShortURL)

	s, err = NewPublisher("", "", nil).Publish(ctx, "Ab3xyz", "wall.example", "")
	require.NoError(t, err)
	assert.Equal(t, "/s/Ab3xyz", s.ShortURL)
}

func TestPublish_External(t *testing.T) {
	ext := &stubShortener{url: "https://bit.ly/xyz"}
	s, err := NewPublisher("https://notes.example", "bitly", ext).Publish(context.Background(), "Ab3xyz", "notes.example", "https")
	require.NoError(t, err)
	assert.True(t, s.External)
	assert.Equal(t, "https://bit.ly/xyz", s.ShortURL)
	assert.Equal(t, []string{"https://notes.example/s/Ab3xyz"}, ext.got)
}

func TestPublish_ExternalFailure(t *testing.T) {
	ctx := context.Background()
	ext := &stubShortener{err: errors.New("quota")}

	_, err := NewPublisher("https://notes.example", "bitly", ext).Publish(ctx, "Ab3xyz", "notes.example", "https")
	assert.ErrorIs(t, err, ErrExternalFailed)

	s, err := NewPublisher("", "bitly", ext).Publish(ctx, "Ab3xyz", "localhost:3000", "http")
	require.NoError(t, err)
	assert.False(t, s.External)
	assert.Equal(t, "http://localhost:3000/s/Ab3xyz", s.ShortURL)

	// unknown provider still requires an external link in production
	_, err = NewPublisher("https://notes.example", "tinyurl", nil).Publish(ctx, "Ab3xyz", "notes.example", "https")
	assert.ErrorIs(t, err, ErrExternalFailed)
}

func TestIsLocalHost(t *testing.T) {
	assert.True(t, IsLocalHost("localhost:8080"))
	assert.True(t, IsLocalHost("127.0.0.1"))
	assert.True(t, IsLocalHost("127.0.0.1:9000"))
	assert.False(t, IsLocalHost("localhost"))
	assert.False(t, IsLocalHost("wall.example"))
}

func TestNewShortener(t *testing.T) {
	assert.IsType(t, &Bitly{}, NewShortener("Bitly", "tok", "", ""))
	assert.IsType(t, &ShortIO{}, NewShortener("short.io", "", "key", "s.example"))
	assert.IsType(t, &ShortIO{}, NewShortener("shortio", "", "key", "s.example"))
	assert.Nil(t, NewShortener("", "", "", ""))
	assert.Nil(t, NewShortener("tinyurl", "", "", ""))
}

func TestBitly_Shorten(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://notes.example/s/Ab3xyz", body["long_url"])
		_, _ = w.Write([]byte(`{"link":"https://bit.ly/abc"}`))
	}))
	defer srv.Close()

	b := &Bitly{Token: "tok", Endpoint: srv.URL, HTTP: srv.Client()}
	got, err := b.Shorten(context.Background(), "https://notes.example/s/Ab3xyz")
	require.NoError(t, err)
	assert.Equal(t, "https://bit.ly/abc", got)

	_, err = (&Bitly{Endpoint: srv.URL, HTTP: srv.Client()}).Shorten(context.Background(), "x")
	assert.Error(t, err)
}

func TestBitly_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"FORBIDDEN"}`))
	}))
	defer srv.Close()

	_, err := (&Bitly{Token: "tok", Endpoint: srv.URL, HTTP: srv.Client()}).Shorten(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORBIDDEN")
}

func TestShortIO_Shorten(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "s.example", body["domain"])
		assert.Equal(t, "https://notes.example/s/Ab3xyz", body["originalURL"])
		_, _ = w.Write([]byte(`{"secureShortURL":"https://s.example/q"}`))
	}))
	defer srv.Close()

	s := &ShortIO{APIKey: "key", Domain: "s.example", Endpoint: srv.URL, HTTP: srv.Client()}
	got, err := s.Shorten(context.Background(), "https://notes.example/s/Ab3xyz")
	require.NoError(t, err)
	assert.Equal(t, "https://s.example/q", got)

	_, err = (&ShortIO{APIKey: "key", Endpoint: srv.URL, HTTP: srv.Client()}).Shorten(context.Background(), "x")
	assert.Error(t, err)
}
