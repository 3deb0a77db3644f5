package spec

import (
	"encoding/json"
	"fmt"
)

// ColumnType is the declared, engine-independent type of a column.
type ColumnType string

const (
	TypeString   ColumnType = "string"
	TypeBinary   ColumnType = "binary"
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeCurrency ColumnType = "currency"
	TypeBoolean  ColumnType = "boolean"
	TypeRecord   ColumnType = "record"
	TypeDate     ColumnType = "date"
	TypeDatetime ColumnType = "datetime"
	TypeJSON     ColumnType = "json"
	TypeUUID     ColumnType = "uuid"
)

// LengthMode qualifies string and binary columns.
type LengthMode string

const (
	LengthDefault LengthMode = "default"
	LengthLong    LengthMode = "long"
	LengthSpecify LengthMode = "specify"
)

// DefaultMode selects the server-side default behavior of a column.
type DefaultMode string

const (
	DefaultNone    DefaultMode = "none"
	DefaultNull    DefaultMode = "null"
	DefaultSpecify DefaultMode = "specify"
)

// Column is one column's declaration. It is a value object: a changed
// declaration is a new Column, not a mutation. Indexes is the back-reference
// list of index names covering this column, maintained by the owning Table.
//
// Field order matches the alphabetical key order of the canonical file
// format; keep it that way so saved documents stay byte-stable.
type Column struct {
	Default       DefaultMode     `json:"default,omitempty"`
	DefaultValue  json.RawMessage `json:"default_value,omitempty"`
	Indexes       []string        `json:"indexes,omitempty"`
	Length        LengthMode      `json:"length,omitempty"`
	LengthSpecify int             `json:"length_specify,omitempty"`
	Name          string          `json:"name"`
	Nullable      bool            `json:"nullable"`
	Type          ColumnType      `json:"type"`
}

// Validate rejects unknown enum values and unsatisfiable combinations before
// any column definition can be produced from the declaration.
func (c *Column) Validate() error {
	switch c.Type {
	case TypeString, TypeBinary, TypeInteger, TypeFloat, TypeCurrency,
		TypeBoolean, TypeRecord, TypeDate, TypeDatetime, TypeJSON, TypeUUID:
	default:
		return fmt.Errorf("%w: column %q type %q", ErrInvalidType, c.Name, c.Type)
	}
	switch c.Length {
	case "", LengthDefault, LengthLong, LengthSpecify:
	default:
		return fmt.Errorf("%w: column %q length %q", ErrInvalidType, c.Name, c.Length)
	}
	if c.Length == LengthSpecify && c.LengthSpecify <= 0 {
		return fmt.Errorf("%w: column %q requires a positive length_specify", ErrUnresolvedType, c.Name)
	}
	switch c.Default {
	case "", DefaultNone, DefaultNull, DefaultSpecify:
	default:
		return fmt.Errorf("%w: column %q default %q", ErrInvalidType, c.Name, c.Default)
	}
	if c.Default == DefaultSpecify && len(c.DefaultValue) == 0 {
		return fmt.Errorf("%w: column %q default=specify requires default_value", ErrInvalidType, c.Name)
	}
	return nil
}

// ColumnDef is an engine-native column definition ready for DDL rendering.
type ColumnDef struct {
	Name          string
	SQLType       string
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	ServerDefault *string
}

// Compile resolves the declaration into an engine-native definition. It is a
// pure function of (declaration, engine): the same inputs always produce the
// same definition.
func (c *Column) Compile(engine Engine) (ColumnDef, error) {
	sqlType, err := c.sqlType(engine)
	if err != nil {
		return ColumnDef{}, err
	}
	def := ColumnDef{
		Name:     c.Name,
		SQLType:  sqlType,
		Nullable: c.Nullable,
	}
	switch c.Default {
	case DefaultNull:
		lit := "NULL"
		def.ServerDefault = &lit
	case DefaultSpecify:
		lit := c.DefaultLiteral()
		def.ServerDefault = &lit
	}
	return def, nil
}

func (c *Column) sqlType(engine Engine) (string, error) {
	switch c.Type {
	case TypeString:
		switch c.length() {
		case LengthDefault:
			return "TEXT", nil
		case LengthLong:
			if engine == MySQL {
				return "LONGTEXT", nil
			}
			return "TEXT", nil
		case LengthSpecify:
			if c.LengthSpecify > 0 {
				return fmt.Sprintf("VARCHAR(%d)", c.LengthSpecify), nil
			}
		}
	case TypeBinary:
		switch c.length() {
		case LengthDefault, LengthLong:
			// long binary has no wider type than BLOB on sqlite, so both
			// modes collapse there; postgresql has only BYTEA either way.
			switch engine {
			case PostgreSQL:
				return "BYTEA", nil
			case MySQL:
				if c.length() == LengthLong {
					return "LONGBLOB", nil
				}
				return "BLOB", nil
			case SQLite:
				return "BLOB", nil
			}
		case LengthSpecify:
			if engine == PostgreSQL {
				return "BYTEA", nil
			}
			if c.LengthSpecify > 0 {
				return fmt.Sprintf("VARBINARY(%d)", c.LengthSpecify), nil
			}
		}
	case TypeInteger, TypeRecord:
		if engine == SQLite {
			return "INTEGER", nil
		}
		return "BIGINT", nil
	case TypeFloat:
		return "FLOAT", nil
	case TypeCurrency:
		return "NUMERIC(20, 2)", nil
	case TypeBoolean:
		return "BOOLEAN", nil
	case TypeDate:
		return "DATE", nil
	case TypeDatetime:
		return "TIMESTAMP", nil
	case TypeJSON:
		return "JSON", nil
	case TypeUUID:
		if engine == PostgreSQL {
			return "UUID", nil
		}
		return "VARBINARY(16)", nil
	default:
		return "", fmt.Errorf("%w: column %q type %q", ErrInvalidType, c.Name, c.Type)
	}
	return "", fmt.Errorf("%w: column %q (%s/%s on %s)", ErrUnresolvedType, c.Name, c.Type, c.length(), engine)
}

// length treats an omitted length as the default mode.
func (c *Column) length() LengthMode {
	if c.Length == "" {
		return LengthDefault
	}
	return c.Length
}

// DefaultLiteral renders default_value for DDL. JSON strings carry the
// server-side literal verbatim ('active', now(), ...); other scalars render
// as their JSON text.
func (c *Column) DefaultLiteral() string {
	var s string
	if err := json.Unmarshal(c.DefaultValue, &s); err == nil {
		return s
	}
	return string(c.DefaultValue)
}
