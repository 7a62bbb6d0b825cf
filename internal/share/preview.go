package share

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"wall/internal/board"
)

const descriptionLimit = 200

// Hash is the client-side route that opens an entry.
func Hash(kind board.Kind, id uint64) string {
	switch kind {
	case board.KindFriend:
		return fmt.Sprintf("#friends&entry=%d", id)
	case board.KindTech:
		return fmt.Sprintf("#tech&entry=%d", id)
	case board.KindSong:
		return fmt.Sprintf("#songs&entry=%d", id)
	case board.KindIdea:
		return fmt.Sprintf("#ideas&entry=%d", id)
	default:
		return fmt.Sprintf("#entry=%d", id)
	}
}

// DeepLink is the absolute in-app URL for an entry. proto defaults to https.
func DeepLink(proto, host string, kind board.Kind, id uint64) string {
	if proto == "" {
		proto = "https"
	}
	return proto + "://" + host + "/" + Hash(kind, id)
}

// Title is the preview heading for an entry.
func Title(kind board.Kind, e *board.Entry) string {
	switch kind {
	case board.KindFriend:
		if e.Name != nil && strings.TrimSpace(*e.Name) != "" {
			return strings.TrimSpace(*e.Name) + "’s Note"
		}
		return "Friend Note"
	case board.KindTech:
		return "Tech Note"
	case board.KindSong:
		return "Song Quote"
	case board.KindIdea:
		return "Project Idea"
	default:
		if e.Title != nil {
			return *e.Title
		}
		return "Note on My Wall"
	}
}

// Truncate collapses whitespace and cuts s to at most n runes, the last
// of which is an ellipsis when anything was dropped.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

var previewTmpl = template.Must(template.New("preview").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <meta property="og:title" content="{{.Title}}" />
  <meta property="og:description" content="{{.Description}}" />
  <meta property="og:type" content="article" />
  <meta property="og:url" content="{{.URL}}" />
  <meta name="twitter:card" content="summary" />
  <meta name="twitter:title" content="{{.Title}}" />
  <meta name="twitter:description" content="{{.Description}}" />
  <link rel="canonical" href="{{.URL}}" />
  <meta http-equiv="refresh" content="0;url={{.Hash}}" />
  <style>
    body { margin: 0; background: #1a1a1a; color: #e0e0e0; font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; }
    .wrap { padding: 24px; min-height: 100vh; display: grid; place-items: center; }
    .card { width: min(680px, 92%); background: #2a2a2a; border: 1px solid #3a3a3a; border-radius: 8px; padding: 16px; }
    h1 { margin: 0 0 8px 0; font-size: 18px; font-weight: 600; }
    .desc { white-space: pre-wrap; opacity: 0.9; }
    .actions { margin-top: 14px; display: flex; justify-content: flex-end; }
    a.btn { display: inline-block; padding: 10px 14px; background: #333; color: #fff; border-radius: 6px; text-decoration: none; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="card">
      <h1>{{.Title}}</h1>
      <div class="desc">{{.Description}}</div>
      <div class="actions"><a class="btn" href="/{{.Hash}}">Open</a></div>
    </div>
  </div>
  <script>location.replace({{.Hash}});</script>
</body>
</html>
`))

type previewData struct {
	Title       string
	Description string
	URL         string
	Hash        string
}

func renderPreview(d previewData) ([]byte, error) {
	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
