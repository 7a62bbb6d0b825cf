package series

import (
	"time"

	"wall/internal/board"
)

type Series struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Series) TableName() string { return "series" }

// Item places one entry in a series. An entry appears at most once per series.
type Item struct {
	SeriesID   uint64     `gorm:"primaryKey" json:"series_id"`
	TargetKind board.Kind `gorm:"primaryKey;type:text" json:"target_kind"`
	TargetID   uint64     `gorm:"primaryKey" json:"target_id"`
	Position   int        `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Item) TableName() string { return "series_items" }

// View is an item joined with its entry.
type View struct {
	Kind     board.Kind  `json:"kind"`
	Position int         `json:"position"`
	Entry    board.Entry `json:"entry"`
}

type Detail struct {
	Series
	Items []View `json:"items"`
}
