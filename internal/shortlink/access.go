package shortlink

import (
	"context"

	"wall/internal/board"
)

// Entries loads link targets.
type Entries interface {
	Get(ctx context.Context, kind board.Kind, id uint64) (*board.Entry, error)
}

// WallPolicy reports whether a user-created wall is public. A missing wall
// is an error wrapping board.ErrNotFound.
type WallPolicy interface {
	IsPublic(ctx context.Context, id uint64) (bool, error)
}

// Public reports whether e may be shared and shown without the credential.
// Drafts are never public, except on kinds that have no drafts. Entries on a
// private wall are treated like drafts.
func Public(ctx context.Context, walls WallPolicy, kind board.Kind, e *board.Entry) (bool, error) {
	if kind.HasDrafts() && !e.IsPublic() {
		return false, nil
	}
	if kind == board.KindWall && e.WallID != nil && walls != nil {
		return walls.IsPublic(ctx, *e.WallID)
	}
	return true, nil
}
