package board

import "sort"

// Less is the rendering order shared by every consumer:
// pinned first, then pin_order ascending with nulls last, then newest first.
func Less(a, b *Entry) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}
	if a.IsPinned {
		switch {
		case a.PinOrder != nil && b.PinOrder == nil:
			return true
		case a.PinOrder == nil && b.PinOrder != nil:
			return false
		case a.PinOrder != nil && b.PinOrder != nil && *a.PinOrder != *b.PinOrder:
			return *a.PinOrder < *b.PinOrder
		}
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(&entries[i], &entries[j])
	})
}

// orderClause is Less expressed for SQL.
const orderClause = "is_pinned desc, pin_order asc nulls last, created_at desc"
