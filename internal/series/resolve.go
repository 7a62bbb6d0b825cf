package series

import (
	"context"
	"sort"
	"sync"

	"wall/internal/auth"
	"wall/internal/board"

	"golang.org/x/sync/errgroup"
)

// Loader fetches entries of one kind by id. Missing ids are left out.
type Loader interface {
	GetMany(ctx context.Context, kind board.Kind, ids []uint64) ([]board.Entry, error)
}

type entryKey struct {
	kind board.Kind
	id   uint64
}

// Resolve loads the entries behind items, one query per kind, run
// concurrently. Items whose entry is gone are skipped, and drafts are
// skipped unless c is granted. The result follows item position.
func Resolve(ctx context.Context, loader Loader, c auth.Capability, items []Item) ([]View, error) {
	byKind := map[board.Kind][]uint64{}
	for _, it := range items {
		byKind[it.TargetKind] = append(byKind[it.TargetKind], it.TargetID)
	}

	var (
		mu    sync.Mutex
		found = make(map[entryKey]board.Entry, len(items))
	)
	g, gctx := errgroup.WithContext(ctx)
	for kind, ids := range byKind {
		g.Go(func() error {
			entries, err := loader.GetMany(gctx, kind, ids)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, e := range entries {
				found[entryKey{kind, e.ID}] = e
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	views := make([]View, 0, len(ordered))
	for _, it := range ordered {
		e, ok := found[entryKey{it.TargetKind, it.TargetID}]
		if !ok {
			continue
		}
		if it.TargetKind.HasDrafts() && !e.IsPublic() && !c.Granted() {
			continue
		}
		views = append(views, View{Kind: it.TargetKind, Position: it.Position, Entry: e})
	}
	return views, nil
}
