package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemato/schemato/generator"
)

func TestParseMigrationFile(t *testing.T) {
	dir := t.TempDir()
	filename, err := generator.WriteMigrationFile(dir,
		[]string{`CREATE TABLE "users" ("id" BIGSERIAL PRIMARY KEY);`},
		[]string{`DROP TABLE IF EXISTS "users";`},
	)
	require.NoError(t, err)

	up, down, err := parseMigrationFile(dir, filepath.Base(filename))
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE "users" ("id" BIGSERIAL PRIMARY KEY);`, up)
	assert.Equal(t, `DROP TABLE IF EXISTS "users";`, down)
}

func TestParseMigrationFileMissingSections(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.sql"), []byte("SELECT 1;"), 0644))

	_, _, err := parseMigrationFile(dir, "broken.sql")
	assert.Error(t, err)
}

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20240102_b.sql", "20240101_a.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	r := New(nil, "sqlite", dir)
	files, err := r.migrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"20240101_a.sql", "20240102_b.sql"}, files)
}

func TestMigrationFilesMissingDir(t *testing.T) {
	r := New(nil, "sqlite", filepath.Join(t.TempDir(), "nope"))
	files, err := r.migrationFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestChecksumStable(t *testing.T) {
	assert.Equal(t, checksum("CREATE TABLE t;"), checksum("CREATE TABLE t;"))
	assert.NotEqual(t, checksum("a"), checksum("b"))
}
