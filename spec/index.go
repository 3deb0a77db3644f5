package spec

import "fmt"

// IndexKind distinguishes plain from unique indexes. The JSON key is "type"
// for compatibility with the specification file format.
type IndexKind string

const (
	KindIndex  IndexKind = "index"
	KindUnique IndexKind = "unique"
)

// IndexColumn is one entry of an index's column list. Size, when positive,
// requests a prefix-length index over the column.
type IndexColumn struct {
	Column string `json:"column"`
	Size   int    `json:"size,omitempty"`
}

// Index is one index's declaration. Column order is significant: it affects
// seek behavior and is preserved verbatim through compilation and
// persistence.
type Index struct {
	Columns []IndexColumn `json:"columns"`
	Name    string        `json:"name"`
	Kind    IndexKind     `json:"type"`
}

func (ix *Index) Validate() error {
	if ix.Kind != KindIndex && ix.Kind != KindUnique {
		return fmt.Errorf("%w: index %q type %q", ErrInvalidType, ix.Name, ix.Kind)
	}
	return nil
}

// IndexDef is an engine-native index definition. Each column is rendered as
// "name" or "name(size)" in declaration order.
type IndexDef struct {
	Name    string
	Unique  bool
	Columns []string
}

// Compile resolves the declaration into an index definition. The rendering
// is the same for every engine target.
func (ix *Index) Compile(engine Engine) IndexDef {
	def := IndexDef{
		Name:   ix.Name,
		Unique: ix.Kind == KindUnique,
	}
	for _, c := range ix.Columns {
		if c.Size > 0 {
			def.Columns = append(def.Columns, fmt.Sprintf("%s(%d)", c.Column, c.Size))
		} else {
			def.Columns = append(def.Columns, c.Column)
		}
	}
	return def
}
