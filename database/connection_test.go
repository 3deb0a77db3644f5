package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemato/schemato/spec"
)

func TestRebindPostgres(t *testing.T) {
	q := Rebind(spec.PostgreSQL, "INSERT INTO t (a, b, c) VALUES (?, ?, ?);")
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES ($1, $2, $3);", q)
}

func TestRebindSQLitePassthrough(t *testing.T) {
	q := "DELETE FROM t WHERE a = ?;"
	assert.Equal(t, q, Rebind(spec.SQLite, q))
}
