package diff

import (
	"github.com/schemato/schemato/compiler"
	"github.com/schemato/schemato/introspect"
	"github.com/schemato/schemato/spec"
)

type OperationType string

const (
	CreateTable OperationType = "CREATE_TABLE"
	DropTable   OperationType = "DROP_TABLE"
	AddColumn   OperationType = "ADD_COLUMN"
	DropColumn  OperationType = "DROP_COLUMN"
	CreateIndex OperationType = "CREATE_INDEX"
	DropIndex   OperationType = "DROP_INDEX"
)

type Operation struct {
	Type       OperationType
	TableName  string
	Table      *compiler.TableDef // for CREATE_TABLE
	Column     *spec.ColumnDef    // for ADD_COLUMN
	ColumnName string             // for DROP_COLUMN
	Index      *spec.IndexDef     // for CREATE_INDEX
	IndexName  string             // for DROP_INDEX
}

// DiffSchemas compares the compiled schema against the introspected database
// state and returns the operations that bring the database in line with the
// schema. Tables come in compilation order; dropped tables come last.
func DiffSchemas(schema *compiler.Schema, existing []introspect.ExistingTable) []Operation {
	var ops []Operation

	existingTableMap := map[string]introspect.ExistingTable{}
	for _, t := range existing {
		existingTableMap[t.TableName] = t
	}

	for _, def := range schema.Tables {
		table, exists := existingTableMap[def.Name]
		if !exists {
			ops = append(ops, Operation{
				Type:      CreateTable,
				TableName: def.Name,
				Table:     def,
			})
			for i := range def.Indexes {
				ops = append(ops, Operation{
					Type:      CreateIndex,
					TableName: def.Name,
					Index:     &def.Indexes[i],
				})
			}
			continue
		}

		existingCols := map[string]introspect.ExistingColumn{}
		for _, c := range table.Columns {
			existingCols[c.ColumnName] = c
		}

		wantCols := map[string]bool{}
		for i := range def.Columns {
			col := &def.Columns[i]
			wantCols[col.Name] = true
			if _, ok := existingCols[col.Name]; !ok {
				ops = append(ops, Operation{
					Type:      AddColumn,
					TableName: def.Name,
					Column:    col,
				})
			}
		}

		for _, c := range table.Columns {
			if !wantCols[c.ColumnName] {
				ops = append(ops, Operation{
					Type:       DropColumn,
					TableName:  def.Name,
					ColumnName: c.ColumnName,
				})
			}
		}

		existingIdx := map[string]bool{}
		for _, ix := range table.Indexes {
			existingIdx[ix.IndexName] = true
		}

		wantIdx := map[string]bool{}
		for i := range def.Indexes {
			ix := &def.Indexes[i]
			wantIdx[ix.Name] = true
			if !existingIdx[ix.Name] {
				ops = append(ops, Operation{
					Type:      CreateIndex,
					TableName: def.Name,
					Index:     ix,
				})
			}
		}

		for _, ix := range table.Indexes {
			// Primary-key and unique-constraint indexes are owned by the
			// table definition, not the spec's index set.
			if !wantIdx[ix.IndexName] && !ix.IsPrimary {
				ops = append(ops, Operation{
					Type:      DropIndex,
					TableName: def.Name,
					IndexName: ix.IndexName,
				})
			}
		}
	}

	for _, t := range existing {
		if _, ok := schema.Table(t.TableName); !ok {
			ops = append(ops, Operation{
				Type:      DropTable,
				TableName: t.TableName,
			})
		}
	}

	return ops
}
