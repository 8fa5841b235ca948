package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIncrementSQL(t *testing.T) {
	pairs := []pair{
		{id: 3, inc: 2},
		{id: 7, inc: 1},
	}

	sql, args := buildIncrementSQL("users", "csv_export_count", pairs)

	assert.Equal(t,
		"UPDATE users SET csv_export_count = csv_export_count + CASE id  WHEN ? THEN ? WHEN ? THEN ? END WHERE id IN (?,?)",
		sql,
	)
	require.Len(t, args, 6)
	assert.Equal(t, []interface{}{uint64(3), int64(2), uint64(7), int64(1), uint64(3), uint64(7)}, args)
}

func TestBuildIncrementSQLSingle(t *testing.T) {
	sql, args := buildIncrementSQL("users", "pdf_export_count", []pair{{id: 1, inc: 5}})

	assert.Contains(t, sql, "UPDATE users SET pdf_export_count")
	assert.Contains(t, sql, "WHERE id IN (?)")
	assert.Len(t, args, 3)
}
