package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SchemaVersion is the schema this binary reads and writes. Bump it with
// every change to AutoMigrateAndIndexes.
const SchemaVersion = 1

var ErrSchemaMismatch = errors.New("database schema version mismatch")

type schemaVersion struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	AppliedAt time.Time `gorm:"not null;default:now()"`
}

func (schemaVersion) TableName() string { return "schema_versions" }

// CurrentVersion returns the newest applied version, or 0 for an empty database.
func CurrentVersion(gdb *gorm.DB) (int, error) {
	if !gdb.Migrator().HasTable(&schemaVersion{}) {
		return 0, nil
	}
	var v sql.NullInt64
	if err := gdb.Model(&schemaVersion{}).Select("max(version)").Row().Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// EnsureSchema migrates an older database to SchemaVersion. A database newer
// than the binary is refused.
func EnsureSchema(gdb *gorm.DB) error {
	v, err := CurrentVersion(gdb)
	if err != nil {
		return err
	}
	if err := compare(v, true); err != nil {
		return err
	}
	if v == SchemaVersion {
		return nil
	}

	if err := AutoMigrateAndIndexes(gdb); err != nil {
		return err
	}
	return gdb.Create(&schemaVersion{Version: SchemaVersion, AppliedAt: time.Now()}).Error
}

// CheckSchema fails unless the database is exactly at SchemaVersion.
func CheckSchema(gdb *gorm.DB) error {
	v, err := CurrentVersion(gdb)
	if err != nil {
		return err
	}
	return compare(v, false)
}

func compare(have int, allowOlder bool) error {
	switch {
	case have == SchemaVersion:
		return nil
	case have < SchemaVersion && allowOlder:
		return nil
	}
	return fmt.Errorf("%w: database at %d, binary expects %d", ErrSchemaMismatch, have, SchemaVersion)
}
