package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schemato/schemato/compiler"
	"github.com/schemato/schemato/diff"
	"github.com/schemato/schemato/spec"
)

// quote wraps an identifier for the target engine.
func quote(engine spec.Engine, ident string) string {
	if engine == spec.MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// columnClause renders one column definition, including the primary-key and
// autoincrement forms each engine expects.
func columnClause(engine spec.Engine, col spec.ColumnDef) string {
	if col.PrimaryKey && col.AutoIncrement {
		switch engine {
		case spec.MySQL:
			return fmt.Sprintf("%s %s NOT NULL AUTO_INCREMENT PRIMARY KEY", quote(engine, col.Name), col.SQLType)
		case spec.PostgreSQL:
			return fmt.Sprintf("%s BIGSERIAL PRIMARY KEY", quote(engine, col.Name))
		case spec.SQLite:
			return fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", quote(engine, col.Name))
		}
	}
	clause := fmt.Sprintf("%s %s", quote(engine, col.Name), col.SQLType)
	if col.PrimaryKey {
		clause += " PRIMARY KEY"
	}
	if !col.Nullable && !col.PrimaryKey {
		clause += " NOT NULL"
	}
	if col.ServerDefault != nil {
		clause += fmt.Sprintf(" DEFAULT %s", *col.ServerDefault)
	}
	return clause
}

// CreateTableSQL renders the CREATE TABLE statement for a compiled table.
func CreateTableSQL(engine spec.Engine, def *compiler.TableDef) string {
	clauses := make([]string, 0, len(def.Columns))
	for _, col := range def.Columns {
		clauses = append(clauses, columnClause(engine, col))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s);", quote(engine, def.Name), strings.Join(clauses, ", "))
}

// CreateIndexSQL renders the CREATE INDEX statement for one compiled index.
// Prefix lengths stay in the column rendering (col(10)); only mysql accepts
// them, which is also the only engine the spec format sizes are written for.
func CreateIndexSQL(engine spec.Engine, table string, ix *spec.IndexDef) string {
	stmt := "CREATE"
	if ix.Unique {
		stmt += " UNIQUE"
	}
	cols := make([]string, 0, len(ix.Columns))
	for _, c := range ix.Columns {
		if i := strings.IndexByte(c, '('); i >= 0 {
			cols = append(cols, quote(engine, c[:i])+c[i:])
		} else {
			cols = append(cols, quote(engine, c))
		}
	}
	return fmt.Sprintf("%s INDEX %s ON %s (%s);", stmt, quote(engine, ix.Name), quote(engine, table), strings.Join(cols, ", "))
}

// SchemaSQL renders the full schema of a compilation pass: every table's
// CREATE TABLE followed by its CREATE INDEX statements.
func SchemaSQL(engine spec.Engine, compiled []compiler.CompiledTable) []string {
	var stmts []string
	for _, ct := range compiled {
		stmts = append(stmts, CreateTableSQL(engine, ct.Table))
		for i := range ct.Table.Indexes {
			stmts = append(stmts, CreateIndexSQL(engine, ct.Table.Name, &ct.Table.Indexes[i]))
		}
	}
	return stmts
}

// GenerateSQL converts a list of diff operations into SQL statements.
func GenerateSQL(engine spec.Engine, ops []diff.Operation) ([]string, error) {
	var sqlStatements []string

	for _, op := range ops {
		switch op.Type {
		case diff.CreateTable:
			sqlStatements = append(sqlStatements, CreateTableSQL(engine, op.Table))

		case diff.AddColumn:
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;",
				quote(engine, op.TableName),
				columnClause(engine, *op.Column),
			)
			sqlStatements = append(sqlStatements, stmt)

		case diff.DropColumn:
			stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;",
				quote(engine, op.TableName),
				quote(engine, op.ColumnName),
			)
			sqlStatements = append(sqlStatements, stmt)

		case diff.DropTable:
			stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s;", quote(engine, op.TableName))
			sqlStatements = append(sqlStatements, stmt)

		case diff.CreateIndex:
			sqlStatements = append(sqlStatements, CreateIndexSQL(engine, op.TableName, op.Index))

		case diff.DropIndex:
			sqlStatements = append(sqlStatements, dropIndexSQL(engine, op.TableName, op.IndexName))

		default:
			return nil, fmt.Errorf("unsupported operation: %s", op.Type)
		}
	}

	return sqlStatements, nil
}

// GenerateRollbackSQL converts a list of diff operations into rollback SQL
// statements, processed in reverse order.
func GenerateRollbackSQL(engine spec.Engine, ops []diff.Operation) ([]string, error) {
	var sqlStatements []string

	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		switch op.Type {
		case diff.CreateTable:
			stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s;", quote(engine, op.TableName))
			sqlStatements = append(sqlStatements, stmt)

		case diff.AddColumn:
			stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;",
				quote(engine, op.TableName),
				quote(engine, op.Column.Name),
			)
			sqlStatements = append(sqlStatements, stmt)

		case diff.DropColumn:
			// The original definition is gone by now; TEXT is the
			// recoverable approximation.
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT;",
				quote(engine, op.TableName),
				quote(engine, op.ColumnName),
			)
			sqlStatements = append(sqlStatements, stmt)

		case diff.DropTable:
			stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);",
				quote(engine, op.TableName),
				columnClause(engine, spec.ColumnDef{Name: "id", SQLType: "BIGINT", PrimaryKey: true, AutoIncrement: true}),
			)
			sqlStatements = append(sqlStatements, stmt)

		case diff.CreateIndex:
			sqlStatements = append(sqlStatements, dropIndexSQL(engine, op.TableName, op.Index.Name))

		case diff.DropIndex:
			// Original index definition is unknown at rollback time.
			stmt := fmt.Sprintf("-- cannot recreate dropped index %s on %s", op.IndexName, op.TableName)
			sqlStatements = append(sqlStatements, stmt)

		default:
			return nil, fmt.Errorf("unsupported rollback operation: %s", op.Type)
		}
	}

	return sqlStatements, nil
}

func dropIndexSQL(engine spec.Engine, table, index string) string {
	// mysql scopes index names to their table.
	if engine == spec.MySQL {
		return fmt.Sprintf("DROP INDEX %s ON %s;", quote(engine, index), quote(engine, table))
	}
	return fmt.Sprintf("DROP INDEX IF EXISTS %s;", quote(engine, index))
}

// WriteMigrationFile saves the SQL statements into a timestamped .sql file
// with up/down sections inside the migrations directory.
func WriteMigrationFile(dir string, sqlStatements, rollbackStatements []string) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating migrations folder: %v", err)
		}
	}

	timestamp := time.Now().Format("20060102150405")
	filename := filepath.Join(dir, fmt.Sprintf("%s_migration.sql", timestamp))

	content := "-- Migration: " + timestamp + "\n"
	content += "-- Description: Auto-generated migration\n\n"

	content += "-- Up Migration\n"
	content += "-- ============\n"
	for _, stmt := range sqlStatements {
		content += stmt + "\n"
	}

	content += "\n-- Down Migration (Rollback)\n"
	content += "-- =======================\n"
	for _, stmt := range rollbackStatements {
		content += stmt + "\n"
	}

	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing migration file: %v", err)
	}

	return filename, nil
}
