package shortlink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wall/internal/board"
)

var (
	ErrNotFound         = errors.New("short link not found")
	ErrAllocationFailed = errors.New("could not allocate short code")
	ErrExternalFailed   = errors.New("external shortener failed")

	// Returned by Store.Insert on a unique violation.
	ErrCodeTaken    = errors.New("code already in use")
	ErrTargetLinked = errors.New("target already linked")
)

// Target is the entry a code points at.
type Target struct {
	Kind board.Kind `json:"kind"`
	ID   uint64     `json:"id"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// ParseTarget is the inverse of Target.String.
func ParseTarget(s string) (Target, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Target{}, fmt.Errorf("malformed target %q", s)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return Target{}, fmt.Errorf("malformed target %q: %w", s, err)
	}
	return Target{Kind: board.Kind(kind), ID: n}, nil
}

// Link maps a code to exactly one target. There is at most one link per target.
type Link struct {
	Code       string     `gorm:"primaryKey;type:text" json:"code"`
	TargetKind board.Kind `gorm:"type:text;not null;uniqueIndex:uq_short_links_target,priority:1" json:"target_kind"`
	TargetID   uint64     `gorm:"not null;uniqueIndex:uq_short_links_target,priority:2" json:"target_id"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Link) TableName() string { return "short_links" }

func (l *Link) Target() Target {
	return Target{Kind: l.TargetKind, ID: l.TargetID}
}
