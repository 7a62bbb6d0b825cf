package db

import (
	"fmt"

	"wall/internal/board"
	"wall/internal/series"
	"wall/internal/shortlink"
	"wall/internal/wall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// One table per board kind, all sharing the Entry shape
	for _, k := range board.Kinds {
		if err := gdb.Table(k.Table()).AutoMigrate(&board.Entry{}); err != nil {
			return fmt.Errorf("migrate %s: %w", k.Table(), err)
		}
	}

	if err := gdb.AutoMigrate(
		&wall.Wall{},
		&series.Series{},
		&series.Item{},
		&shortlink.Link{},
		&schemaVersion{},
	); err != nil {
		return err
	}

	stmts := []string{
		// at most one default wall
		`create unique index if not exists uq_walls_default on walls(is_default) where is_default;`,
		`create index if not exists idx_series_items_position on series_items(series_id, position);`,
	}
	for _, k := range board.Kinds {
		stmts = append(stmts, entryIndexes(k.Table())...)
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}

// entryIndexes are named per table; the same name on two tables collides in Postgres.
func entryIndexes(table string) []string {
	return []string{
		// rendering order: is_pinned desc, pin_order asc nulls last, created_at desc
		fmt.Sprintf(`create index if not exists idx_%[1]s_order on %[1]s(wall_id, is_pinned desc, pin_order asc nulls last, created_at desc);`, table),
		fmt.Sprintf(`create index if not exists idx_%[1]s_visibility on %[1]s(visibility, created_at desc);`, table),
		// tag filter (GIN for text[])
		fmt.Sprintf(`create index if not exists idx_%[1]s_tags on %[1]s using gin (tags);`, table),
	}
}
