package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FileExt identifies table specification files inside a spec directory.
const FileExt = ".js"

var (
	identPattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	sizedIdentPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\((\d+)\)$`)
)

// Table owns one table's full declaration: the unit of persistence, one
// file per table. The keyed maps are the source of truth; the sorted name
// slices are recomputed after every mutation, so Columns and Indexes always
// iterate in lexicographic order regardless of insertion order.
//
// Every mutation validates before touching state: on error the table is left
// unchanged. Not safe for concurrent use; callers editing the same table
// must serialize externally.
type Table struct {
	Name string

	columns     map[string]*Column
	indexes     map[string]*Index
	columnNames []string
	indexNames  []string
}

func NewTable(name string) *Table {
	return &Table{
		Name:    name,
		columns: map[string]*Column{},
		indexes: map[string]*Index{},
	}
}

// document is the canonical on-disk form: name-sorted sequences instead of
// the keyed maps, object keys in alphabetical order.
type document struct {
	Column []*Column `json:"column"`
	Index  []*Index  `json:"index"`
	Table  string    `json:"table"`
}

// Load reads and validates a table specification file. Unknown JSON keys are
// rejected, every column and index is validated, and each index may only
// reference declared columns. The back-reference lists are rebuilt from the
// index set, so they are in sync even if the file was edited by hand.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table spec: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	t := NewTable(doc.Table)
	for _, c := range doc.Column {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if !identPattern.MatchString(c.Name) {
			return nil, fmt.Errorf("%s: %w: column %q", path, ErrInvalidName, c.Name)
		}
		if _, ok := t.columns[c.Name]; ok {
			return nil, fmt.Errorf("%s: %w: column %q", path, ErrDuplicateName, c.Name)
		}
		c.Indexes = nil
		t.columns[c.Name] = c
	}
	for _, ix := range doc.Index {
		if err := ix.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, ok := t.indexes[ix.Name]; ok {
			return nil, fmt.Errorf("%s: %w: index %q", path, ErrDuplicateName, ix.Name)
		}
		for _, ic := range ix.Columns {
			if _, ok := t.columns[ic.Column]; !ok {
				return nil, fmt.Errorf("%s: %w: index %q references %q", path, ErrUnknownColumn, ix.Name, ic.Column)
			}
		}
		t.indexes[ix.Name] = ix
		for _, ic := range ix.Columns {
			c := t.columns[ic.Column]
			c.Indexes = insertName(c.Indexes, ix.Name)
		}
	}
	t.resortColumns()
	t.resortIndexes()
	return t, nil
}

// Save writes the canonical document: sorted sequences, alphabetical keys,
// 4-space indent, trailing newline. Saving unchanged state is byte-identical
// across runs, which keeps spec files diffable under version control.
func (t *Table) Save(path string) error {
	doc := document{
		Column: t.Columns(),
		Index:  t.Indexes(),
		Table:  t.Name,
	}
	data, err := json.MarshalIndent(&doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding table spec: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing table spec: %w", err)
	}
	return nil
}

// Columns returns the columns sorted by name. The slice is freshly
// allocated; the pointed-to columns are the live declarations.
func (t *Table) Columns() []*Column {
	cols := make([]*Column, 0, len(t.columnNames))
	for _, name := range t.columnNames {
		cols = append(cols, t.columns[name])
	}
	return cols
}

// Indexes returns the indexes sorted by name.
func (t *Table) Indexes() []*Index {
	idxs := make([]*Index, 0, len(t.indexNames))
	for _, name := range t.indexNames {
		idxs = append(idxs, t.indexes[name])
	}
	return idxs
}

func (t *Table) Column(name string) (*Column, error) {
	c, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return c, nil
}

func (t *Table) Index(name string) (*Index, error) {
	ix, ok := t.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	return ix, nil
}

// AddColumn inserts a validated column declaration and recomputes the
// sorted view.
func (t *Table) AddColumn(c *Column) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, ok := t.columns[c.Name]; ok {
		return fmt.Errorf("%w: column %q", ErrDuplicateName, c.Name)
	}
	if !identPattern.MatchString(c.Name) {
		return fmt.Errorf("%w: column %q", ErrInvalidName, c.Name)
	}
	t.columns[c.Name] = c
	t.resortColumns()
	return nil
}

// RemoveColumn deletes a column. Indexes covering the column are removed
// first, so the cross-reference invariant holds at every step.
func (t *Table) RemoveColumn(name string) error {
	c, ok := t.columns[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	// RemoveIndex prunes the back-reference list being iterated, so walk a
	// copy of it.
	for _, ixName := range append([]string(nil), c.Indexes...) {
		if err := t.RemoveIndex(ixName); err != nil {
			return err
		}
	}
	delete(t.columns, name)
	t.resortColumns()
	return nil
}

// AddIndex inserts a validated index declaration, records the index name on
// every referenced column's back-reference list, and recomputes the sorted
// view. All column references are checked before anything is mutated.
func (t *Table) AddIndex(ix *Index) error {
	if err := ix.Validate(); err != nil {
		return err
	}
	if _, ok := t.indexes[ix.Name]; ok {
		return fmt.Errorf("%w: index %q", ErrDuplicateName, ix.Name)
	}
	for _, ic := range ix.Columns {
		if _, ok := t.columns[ic.Column]; !ok {
			return fmt.Errorf("%w: index %q references %q", ErrUnknownColumn, ix.Name, ic.Column)
		}
	}
	t.indexes[ix.Name] = ix
	for _, ic := range ix.Columns {
		c := t.columns[ic.Column]
		c.Indexes = insertName(c.Indexes, ix.Name)
	}
	t.resortIndexes()
	return nil
}

// RemoveIndex deletes an index and prunes it from every referenced column's
// back-reference list, dropping lists that become empty.
func (t *Table) RemoveIndex(name string) error {
	ix, ok := t.indexes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	for _, ic := range ix.Columns {
		c := t.columns[ic.Column]
		c.Indexes = removeName(c.Indexes, name)
	}
	delete(t.indexes, name)
	t.resortIndexes()
	return nil
}

// CheckIndexColumns parses a comma-separated column list where each element
// is either a bare identifier or identifier(size), and resolves every
// identifier against the declared columns. The result is the normalized
// column-reference list an Index is constructed from.
func (t *Table) CheckIndexColumns(text string) ([]IndexColumn, error) {
	var cols []IndexColumn
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		var ic IndexColumn
		if identPattern.MatchString(part) {
			ic.Column = part
		} else if m := sizedIdentPattern.FindStringSubmatch(part); m != nil {
			size, err := strconv.Atoi(m[2])
			if err != nil || size <= 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidSpec, part)
			}
			ic.Column = m[1]
			ic.Size = size
		} else {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSpec, part)
		}
		if _, ok := t.columns[ic.Column]; !ok {
			return nil, fmt.Errorf("%w: index column %q", ErrUnknownColumn, ic.Column)
		}
		cols = append(cols, ic)
	}
	return cols, nil
}

func (t *Table) resortColumns() {
	t.columnNames = t.columnNames[:0]
	for name := range t.columns {
		t.columnNames = append(t.columnNames, name)
	}
	sort.Strings(t.columnNames)
}

func (t *Table) resortIndexes() {
	t.indexNames = t.indexNames[:0]
	for name := range t.indexes {
		t.indexNames = append(t.indexNames, name)
	}
	sort.Strings(t.indexNames)
}

// insertName adds name to a sorted, deduplicated name list.
func insertName(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	names = append(names, name)
	sort.Strings(names)
	return names
}

// removeName drops name from the list, returning nil when it empties so the
// indexes key disappears from the saved document.
func removeName(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
