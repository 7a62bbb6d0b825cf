package wall

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultSlug = "main"
	DefaultName = "My Wall"
)

// Wall groups wall entries. The default wall owns entries with no wall_id.
type Wall struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Slug      string    `gorm:"type:text;not null;uniqueIndex:uq_walls_slug" json:"slug"`
	IsPublic  bool      `gorm:"not null;default:true" json:"is_public"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

// Slugify lowercases name and joins runs of other characters with "-".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "wall"
	}
	return b.String()
}

// uniqueSlug returns base, or base-N with the smallest N >= 2 not in taken.
func uniqueSlug(base string, taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, t := range taken {
		used[t] = true
	}
	if !used[base] {
		return base
	}
	for n := 2; ; n++ {
		s := fmt.Sprintf("%s-%d", base, n)
		if !used[s] {
			return s
		}
	}
}
