package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemato/schemato/spec"
)

func invoiceTable(t *testing.T) *spec.Table {
	t.Helper()
	tbl := spec.NewTable("invoices")
	require.NoError(t, tbl.AddColumn(&spec.Column{
		Name: "title", Type: spec.TypeString, Length: spec.LengthDefault, Nullable: false,
	}))
	require.NoError(t, tbl.AddColumn(&spec.Column{
		Name: "amount", Type: spec.TypeCurrency, Nullable: true,
	}))
	return tbl
}

func TestCompileTablePostgres(t *testing.T) {
	c := New()
	def, err := c.CompileTable(invoiceTable(t), spec.PostgreSQL)
	require.NoError(t, err)

	require.Len(t, def.Columns, 3)

	id := def.Columns[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "BIGINT", id.SQLType)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.Nullable)

	title := def.Columns[2]
	assert.Equal(t, "title", title.Name)
	assert.Equal(t, "TEXT", title.SQLType)
	assert.False(t, title.Nullable)

	amount := def.Columns[1]
	assert.Equal(t, "amount", amount.Name)
	assert.Equal(t, "NUMERIC(20, 2)", amount.SQLType)
	assert.True(t, amount.Nullable)
}

func TestCompileTableSQLite(t *testing.T) {
	c := New()
	def, err := c.CompileTable(invoiceTable(t), spec.SQLite)
	require.NoError(t, err)

	id := def.Columns[0]
	assert.Equal(t, "INTEGER", id.SQLType, "sqlite uses the native integer for the primary key")
	assert.True(t, id.AutoIncrement)
}

func TestCompileTableIndexes(t *testing.T) {
	tbl := invoiceTable(t)
	require.NoError(t, tbl.AddIndex(&spec.Index{
		Name:    "ix_title",
		Kind:    spec.KindUnique,
		Columns: []spec.IndexColumn{{Column: "title"}},
	}))

	c := New()
	def, err := c.CompileTable(tbl, spec.MySQL)
	require.NoError(t, err)

	require.Len(t, def.Indexes, 1)
	assert.Equal(t, "ix_title", def.Indexes[0].Name)
	assert.True(t, def.Indexes[0].Unique)
	assert.Equal(t, []string{"title"}, def.Indexes[0].Columns)

	title, err := tbl.Column("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"ix_title"}, title.Indexes)
}

func TestCompileTableAccumulatesSchema(t *testing.T) {
	c := New()
	_, err := c.CompileTable(invoiceTable(t), spec.MySQL)
	require.NoError(t, err)

	other := spec.NewTable("users")
	_, err = c.CompileTable(other, spec.MySQL)
	require.NoError(t, err)

	assert.Len(t, c.Metadata.Tables, 2)
	_, ok := c.Metadata.Table("invoices")
	assert.True(t, ok)
	_, ok = c.Metadata.Table("users")
	assert.True(t, ok)
}

func writeSpec(t *testing.T, dir, name string, tbl *spec.Table) string {
	t.Helper()
	path := filepath.Join(dir, name+spec.FileExt)
	require.NoError(t, tbl.Save(path))
	return path
}

func TestCompileDirSortedOrder(t *testing.T) {
	dir := t.TempDir()
	// Written in reverse of the expected processing order.
	writeSpec(t, dir, "zebra", spec.NewTable("zebra"))
	writeSpec(t, dir, "apple", spec.NewTable("apple"))
	writeSpec(t, dir, "mango", spec.NewTable("mango"))

	c := New()
	compiled, err := c.CompileDir(dir, spec.MySQL)
	require.NoError(t, err)

	require.Len(t, compiled, 3)
	assert.Equal(t, "apple", compiled[0].Table.Name)
	assert.Equal(t, "mango", compiled[1].Table.Name)
	assert.Equal(t, "zebra", compiled[2].Table.Name)
	for _, ct := range compiled {
		assert.Equal(t, spec.FileExt, filepath.Ext(ct.Source))
	}
}

func TestCompileDirIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "users", spec.NewTable("users"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a spec"), 0644))

	c := New()
	compiled, err := c.CompileDir(dir, spec.MySQL)
	require.NoError(t, err)
	assert.Len(t, compiled, 1)
}

func TestCompileDirFailsFast(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "aaa", spec.NewTable("aaa"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bbb"+spec.FileExt), []byte("{broken"), 0644))
	writeSpec(t, dir, "ccc", spec.NewTable("ccc"))

	c := New()
	compiled, err := c.CompileDir(dir, spec.MySQL)
	assert.Error(t, err)
	assert.Nil(t, compiled)
}
