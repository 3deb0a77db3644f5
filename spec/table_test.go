package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(name string, typ ColumnType) *Column {
	return &Column{Name: name, Type: typ, Length: LengthDefault}
}

func testTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable("posts")
	require.NoError(t, tbl.AddColumn(col("title", TypeString)))
	require.NoError(t, tbl.AddColumn(col("body", TypeString)))
	require.NoError(t, tbl.AddColumn(&Column{Name: "amount", Type: TypeCurrency, Nullable: true}))
	return tbl
}

func columnNames(tbl *Table) []string {
	var names []string
	for _, c := range tbl.Columns() {
		names = append(names, c.Name)
	}
	return names
}

func TestColumnsSortedByName(t *testing.T) {
	tbl := testTable(t)
	assert.Equal(t, []string{"amount", "body", "title"}, columnNames(tbl))
}

func TestAddColumnDuplicate(t *testing.T) {
	tbl := testTable(t)
	err := tbl.AddColumn(col("title", TypeString))
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestAddColumnInvalidName(t *testing.T) {
	tbl := testTable(t)
	err := tbl.AddColumn(col("1st-place", TypeString))
	assert.ErrorIs(t, err, ErrInvalidName)
	// Rejected adds leave the column set untouched.
	assert.Equal(t, []string{"amount", "body", "title"}, columnNames(tbl))
}

func TestAddRemoveColumnRestoresState(t *testing.T) {
	tbl := testTable(t)
	before := columnNames(tbl)

	require.NoError(t, tbl.AddColumn(col("created_at", TypeDatetime)))
	assert.Equal(t, []string{"amount", "body", "created_at", "title"}, columnNames(tbl))

	require.NoError(t, tbl.RemoveColumn("created_at"))
	assert.Equal(t, before, columnNames(tbl))
}

func TestRemoveColumnUnknown(t *testing.T) {
	tbl := testTable(t)
	assert.ErrorIs(t, tbl.RemoveColumn("missing"), ErrUnknownColumn)
}

func TestAddIndexBackReferences(t *testing.T) {
	tbl := testTable(t)
	require.NoError(t, tbl.AddIndex(&Index{
		Name:    "ix_title",
		Kind:    KindUnique,
		Columns: []IndexColumn{{Column: "title"}},
	}))

	c, err := tbl.Column("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"ix_title"}, c.Indexes)

	ix, err := tbl.Index("ix_title")
	require.NoError(t, err)
	assert.Equal(t, KindUnique, ix.Kind)
}

func TestAddIndexErrors(t *testing.T) {
	tbl := testTable(t)
	require.NoError(t, tbl.AddIndex(&Index{
		Name: "ix_title", Kind: KindIndex, Columns: []IndexColumn{{Column: "title"}},
	}))

	dup := &Index{Name: "ix_title", Kind: KindIndex, Columns: []IndexColumn{{Column: "body"}}}
	assert.ErrorIs(t, tbl.AddIndex(dup), ErrDuplicateName)

	unknown := &Index{Name: "ix_other", Kind: KindIndex, Columns: []IndexColumn{{Column: "title"}, {Column: "missing"}}}
	assert.ErrorIs(t, tbl.AddIndex(unknown), ErrUnknownColumn)
	// A rejected add must not have touched any back-reference list.
	c, err := tbl.Column("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"ix_title"}, c.Indexes)
}

func TestRemoveColumnCascadesIndexes(t *testing.T) {
	tbl := testTable(t)
	require.NoError(t, tbl.AddIndex(&Index{
		Name: "ix_title_body", Kind: KindIndex,
		Columns: []IndexColumn{{Column: "title"}, {Column: "body"}},
	}))
	require.NoError(t, tbl.AddIndex(&Index{
		Name: "ix_title", Kind: KindUnique,
		Columns: []IndexColumn{{Column: "title"}},
	}))

	require.NoError(t, tbl.RemoveColumn("title"))

	_, err := tbl.Index("ix_title")
	assert.ErrorIs(t, err, ErrUnknownIndex)
	_, err = tbl.Index("ix_title_body")
	assert.ErrorIs(t, err, ErrUnknownIndex)

	// The surviving column's back-reference list is gone entirely.
	c, err := tbl.Column("body")
	require.NoError(t, err)
	assert.Nil(t, c.Indexes)
}

func TestRemoveIndexPrunesBackReferences(t *testing.T) {
	tbl := testTable(t)
	require.NoError(t, tbl.AddIndex(&Index{
		Name: "ix_a", Kind: KindIndex, Columns: []IndexColumn{{Column: "title"}},
	}))
	require.NoError(t, tbl.AddIndex(&Index{
		Name: "ix_b", Kind: KindIndex, Columns: []IndexColumn{{Column: "title"}},
	}))

	require.NoError(t, tbl.RemoveIndex("ix_a"))
	c, err := tbl.Column("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"ix_b"}, c.Indexes)

	require.NoError(t, tbl.RemoveIndex("ix_b"))
	c, err = tbl.Column("title")
	require.NoError(t, err)
	assert.Nil(t, c.Indexes)

	assert.ErrorIs(t, tbl.RemoveIndex("ix_b"), ErrUnknownIndex)
}

func TestCheckIndexColumns(t *testing.T) {
	tbl := NewTable("t")
	require.NoError(t, tbl.AddColumn(col("a", TypeString)))
	require.NoError(t, tbl.AddColumn(col("b", TypeString)))

	cols, err := tbl.CheckIndexColumns("a, b(10)")
	require.NoError(t, err)
	assert.Equal(t, []IndexColumn{{Column: "a"}, {Column: "b", Size: 10}}, cols)

	_, err = tbl.CheckIndexColumns("a, c")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = tbl.CheckIndexColumns("a, b(x)")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = tbl.CheckIndexColumns("a b")
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts"+FileExt)

	tbl := testTable(t)
	require.NoError(t, tbl.AddIndex(&Index{
		Name: "ix_title", Kind: KindUnique,
		Columns: []IndexColumn{{Column: "title", Size: 20}},
	}))
	require.NoError(t, tbl.Save(path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "posts", loaded.Name)
	assert.Equal(t, columnNames(tbl), columnNames(loaded))

	require.NoError(t, loaded.Save(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "repeated saves must be byte-identical")
}

func TestSaveEmptyTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty"+FileExt)
	require.NoError(t, NewTable("empty").Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"table":"empty","column":[],"index":[]}`, string(data))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.Columns())
	assert.Empty(t, loaded.Indexes())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad"+FileExt)
	doc := `{"table":"bad","column":[{"name":"a","type":"string","length":"default","nullable":false,"extra":1}],"index":[]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownIndexColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad"+FileExt)
	doc := `{
	    "column": [{"name": "a", "nullable": false, "type": "string", "length": "default"}],
	    "index": [{"columns": [{"column": "zzz"}], "name": "ix", "type": "index"}],
	    "table": "bad"
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestLoadRebuildsBackReferences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts"+FileExt)
	// Hand-written file without the indexes back-reference key.
	doc := `{
	    "column": [{"name": "title", "nullable": false, "type": "string", "length": "default"}],
	    "index": [{"columns": [{"column": "title"}], "name": "ix_title", "type": "unique"}],
	    "table": "posts"
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	c, err := loaded.Column("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"ix_title"}, c.Indexes)
}
