package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryIndexes_PrefixedByTable(t *testing.T) {
	stmts := entryIndexes("tech_notes")
	assert.Len(t, stmts, 3)
	for _, s := range stmts {
		assert.Contains(t, s, "idx_tech_notes_")
		assert.Contains(t, s, " on tech_notes")
	}
	assert.True(t, strings.Contains(stmts[0], "pin_order asc nulls last"))
}

func TestCompare(t *testing.T) {
	assert.NoError(t, compare(SchemaVersion, false))
	assert.NoError(t, compare(0, true))
	assert.ErrorIs(t, compare(0, false), ErrSchemaMismatch)
	assert.ErrorIs(t, compare(SchemaVersion+1, true), ErrSchemaMismatch)
}
