// Package compiler assembles compiled table definitions out of a directory
// of table specifications for one target engine.
package compiler

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/schemato/schemato/spec"
)

// TableDef is one fully compiled table: the synthesized id primary key
// first, then the declared columns, then the declared indexes.
type TableDef struct {
	Name    string
	Columns []spec.ColumnDef
	Indexes []spec.IndexDef
}

// Schema accumulates every table compiled in one run. It is the container a
// migration-diff engine consumes. Failed runs are discarded whole; a partial
// container is never handed to a caller.
type Schema struct {
	Tables []*TableDef

	byName map[string]*TableDef
}

func NewSchema() *Schema {
	return &Schema{byName: map[string]*TableDef{}}
}

func (s *Schema) add(def *TableDef) {
	s.Tables = append(s.Tables, def)
	s.byName[def.Name] = def
}

// Table looks a compiled table up by name.
func (s *Schema) Table(name string) (*TableDef, bool) {
	def, ok := s.byName[name]
	return def, ok
}

// Compiler compiles table specifications into one shared Schema container.
// Each compilation run owns a fresh Compiler; after a failed run the
// instance must be discarded along with its container.
type Compiler struct {
	Metadata *Schema
}

func New() *Compiler {
	return &Compiler{Metadata: NewSchema()}
}

// CompileTable compiles one table specification for the target engine and
// records the result in the run's container. Every table gets a leading id
// primary key: 64-bit on mysql and postgresql, the native integer on sqlite,
// which also needs the explicit autoincrement flag at DDL time.
func (c *Compiler) CompileTable(ts *spec.Table, engine spec.Engine) (*TableDef, error) {
	idType := "BIGINT"
	if engine == spec.SQLite {
		idType = "INTEGER"
	}
	def := &TableDef{Name: ts.Name}
	def.Columns = append(def.Columns, spec.ColumnDef{
		Name:          "id",
		SQLType:       idType,
		Nullable:      false,
		PrimaryKey:    true,
		AutoIncrement: true,
	})
	for _, col := range ts.Columns() {
		cd, err := col.Compile(engine)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", ts.Name, err)
		}
		def.Columns = append(def.Columns, cd)
	}
	for _, ix := range ts.Indexes() {
		def.Indexes = append(def.Indexes, ix.Compile(engine))
	}
	c.Metadata.add(def)
	return def, nil
}

// CompiledTable pairs a table definition with the spec file it came from.
type CompiledTable struct {
	Source string
	Table  *TableDef
}

// CompileDir discovers every specification file in dir and compiles them in
// lexicographically sorted path order, independent of filesystem enumeration
// order. The first file that fails to parse or compile aborts the pass.
func (c *Compiler) CompileDir(dir string, engine spec.Engine) ([]CompiledTable, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+spec.FileExt))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(paths)

	compiled := make([]CompiledTable, 0, len(paths))
	for _, path := range paths {
		ts, err := spec.Load(path)
		if err != nil {
			return nil, err
		}
		def, err := c.CompileTable(ts, engine)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		compiled = append(compiled, CompiledTable{Source: path, Table: def})
	}
	return compiled, nil
}
