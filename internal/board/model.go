package board

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")
var ErrInvalid = errors.New("invalid input")

// Kind names a board. Each kind lives in its own table.
type Kind string

const (
	KindWall   Kind = "wall"
	KindFriend Kind = "friend"
	KindTech   Kind = "tech"
	KindSong   Kind = "song"
	KindIdea   Kind = "idea"
)

var Kinds = []Kind{KindWall, KindFriend, KindTech, KindSong, KindIdea}

var kindAliases = map[string]Kind{
	"wall":           KindWall,
	"entry":          KindWall,
	"entries":        KindWall,
	"friend":         KindFriend,
	"friends":        KindFriend,
	"friend-entries": KindFriend,
	"tech":           KindTech,
	"tech-notes":     KindTech,
	"song":           KindSong,
	"songs":          KindSong,
	"song-quotes":    KindSong,
	"idea":           KindIdea,
	"ideas":          KindIdea,
	"project-ideas":  KindIdea,
}

func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown board %q", ErrInvalid, s)
	}
	return k, nil
}

func (k Kind) Table() string {
	switch k {
	case KindFriend:
		return "friend_entries"
	case KindTech:
		return "tech_notes"
	case KindSong:
		return "song_quotes"
	case KindIdea:
		return "project_ideas"
	default:
		return "wall_entries"
	}
}

// HasDrafts reports whether entries of this kind can be hidden as drafts.
// Friend notes are always public.
func (k Kind) HasDrafts() bool { return k != KindFriend }

// OpenPosting reports whether anyone may post without the credential.
func (k Kind) OpenPosting() bool { return k == KindFriend }

type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityDraft  Visibility = "draft"
)

func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case "", VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityDraft:
		return VisibilityDraft, nil
	}
	return "", fmt.Errorf("%w: visibility must be public or draft", ErrInvalid)
}

// Entry is one note on a board. PinOrder is set iff IsPinned.
type Entry struct {
	ID         uint64         `gorm:"primaryKey" json:"id"`
	WallID     *uint64        `json:"wall_id,omitempty"`
	Name       *string        `gorm:"type:text" json:"name,omitempty"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	Title      *string        `gorm:"type:text" json:"title"`
	Visibility Visibility     `gorm:"type:text;not null;default:'public'" json:"visibility"`
	Tags       pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	IsPinned   bool           `gorm:"not null;default:false" json:"is_pinned"`
	PinOrder   *int           `json:"pin_order"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (e *Entry) IsPublic() bool {
	return e.Visibility == "" || e.Visibility == VisibilityPublic
}

// Ref identifies a board: a kind, narrowed to one wall for KindWall.
// A nil WallID on KindWall is the default wall.
type Ref struct {
	Kind   Kind
	WallID *uint64
}

func (r Ref) Key() string {
	if r.Kind == KindWall && r.WallID != nil {
		return fmt.Sprintf("%s:%d", r.Kind, *r.WallID)
	}
	return string(r.Kind)
}

// RefOf returns the board e belongs to.
func RefOf(kind Kind, e *Entry) Ref {
	if kind == KindWall {
		return Ref{Kind: kind, WallID: e.WallID}
	}
	return Ref{Kind: kind}
}

const titlePlaceholder = "(optional)"

// NormalizeTitle maps empty, whitespace-only and placeholder titles to nil.
func NormalizeTitle(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" || t == titlePlaceholder {
		return nil
	}
	return &t
}
