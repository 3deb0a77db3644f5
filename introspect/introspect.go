package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/schemato/schemato/spec"
)

type ExistingTable struct {
	TableName string
	Columns   []ExistingColumn
	Indexes   []ExistingIndex
}

type ExistingColumn struct {
	ColumnName    string
	DataType      string
	IsNullable    bool
	ColumnDefault *string
}

type ExistingIndex struct {
	IndexName string
	TableName string
	Columns   []string
	IsUnique  bool
	IsPrimary bool
}

// Database reads the current tables, columns and indexes for the target
// engine. mysql has no online support; see database.Open.
func Database(ctx context.Context, db *sql.DB, engine spec.Engine) ([]ExistingTable, error) {
	switch engine {
	case spec.PostgreSQL:
		return postgres(ctx, db)
	case spec.SQLite:
		return sqlite(ctx, db)
	}
	return nil, fmt.Errorf("introspection not supported for engine %q", engine)
}

func postgres(ctx context.Context, db *sql.DB) ([]ExistingTable, error) {
	tablesQuery := `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
	ORDER BY table_name;
	`

	rows, err := db.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %v", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("scanning table name: %v", err)
		}
		tableNames = append(tableNames, tableName)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating table rows: %v", rows.Err())
	}

	var tables []ExistingTable
	for _, tableName := range tableNames {
		columns, err := postgresColumns(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("getting columns for table %s: %v", tableName, err)
		}
		indexes, err := postgresIndexes(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("getting indexes for table %s: %v", tableName, err)
		}
		tables = append(tables, ExistingTable{
			TableName: tableName,
			Columns:   columns,
			Indexes:   indexes,
		})
	}
	return tables, nil
}

func postgresColumns(ctx context.Context, db *sql.DB, tableName string) ([]ExistingColumn, error) {
	columnsQuery := `
	SELECT
		column_name,
		data_type,
		(is_nullable = 'YES') AS is_nullable,
		column_default
	FROM information_schema.columns
	WHERE table_schema = 'public' AND table_name = $1
	ORDER BY ordinal_position;
	`

	rows, err := db.QueryContext(ctx, columnsQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %v", err)
	}
	defer rows.Close()

	var columns []ExistingColumn
	for rows.Next() {
		var col ExistingColumn
		if err := rows.Scan(&col.ColumnName, &col.DataType, &col.IsNullable, &col.ColumnDefault); err != nil {
			return nil, fmt.Errorf("scanning column: %v", err)
		}
		columns = append(columns, col)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %v", rows.Err())
	}
	return columns, nil
}

func postgresIndexes(ctx context.Context, db *sql.DB, tableName string) ([]ExistingIndex, error) {
	indexesQuery := `
	SELECT
		c.relname AS index_name,
		t.relname AS table_name,
		array_to_string(array_agg(a.attname ORDER BY a.attnum), ',') AS column_names,
		ix.indisunique,
		ix.indisprimary
	FROM pg_index ix
	JOIN pg_class c ON c.oid = ix.indexrelid
	JOIN pg_class t ON t.oid = ix.indrelid
	JOIN pg_namespace n ON n.oid = t.relnamespace
	JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
	WHERE n.nspname = 'public' AND t.relname = $1
	GROUP BY c.relname, t.relname, ix.indisunique, ix.indisprimary
	ORDER BY c.relname;
	`

	rows, err := db.QueryContext(ctx, indexesQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %v", err)
	}
	defer rows.Close()

	var indexes []ExistingIndex
	for rows.Next() {
		var idx ExistingIndex
		var columnNames string
		if err := rows.Scan(&idx.IndexName, &idx.TableName, &columnNames, &idx.IsUnique, &idx.IsPrimary); err != nil {
			return nil, fmt.Errorf("scanning index: %v", err)
		}
		idx.Columns = splitColumnList(columnNames)
		indexes = append(indexes, idx)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating index rows: %v", rows.Err())
	}
	return indexes, nil
}

func sqlite(ctx context.Context, db *sql.DB) ([]ExistingTable, error) {
	tablesQuery := `
	SELECT name FROM sqlite_master
	WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	ORDER BY name;
	`

	rows, err := db.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %v", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("scanning table name: %v", err)
		}
		tableNames = append(tableNames, tableName)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating table rows: %v", rows.Err())
	}

	var tables []ExistingTable
	for _, tableName := range tableNames {
		columns, err := sqliteColumns(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("getting columns for table %s: %v", tableName, err)
		}
		indexes, err := sqliteIndexes(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("getting indexes for table %s: %v", tableName, err)
		}
		tables = append(tables, ExistingTable{
			TableName: tableName,
			Columns:   columns,
			Indexes:   indexes,
		})
	}
	return tables, nil
}

func sqliteColumns(ctx context.Context, db *sql.DB, tableName string) ([]ExistingColumn, error) {
	// PRAGMA arguments cannot be bound.
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("querying table_info: %v", err)
	}
	defer rows.Close()

	var columns []ExistingColumn
	for rows.Next() {
		var (
			cid      int
			col      ExistingColumn
			notNull  int
			pk       int
			deflt    *string
			dataType string
		)
		if err := rows.Scan(&cid, &col.ColumnName, &dataType, &notNull, &deflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table_info row: %v", err)
		}
		col.DataType = dataType
		col.IsNullable = notNull == 0
		col.ColumnDefault = deflt
		columns = append(columns, col)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating table_info rows: %v", rows.Err())
	}
	return columns, nil
}

func sqliteIndexes(ctx context.Context, db *sql.DB, tableName string) ([]ExistingIndex, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s);", quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("querying index_list: %v", err)
	}
	defer rows.Close()

	var indexes []ExistingIndex
	for rows.Next() {
		var (
			seq     int
			idx     ExistingIndex
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &idx.IndexName, &unique, &origin, &partial); err != nil {
			return nil, fmt.Errorf("scanning index_list row: %v", err)
		}
		idx.TableName = tableName
		idx.IsUnique = unique == 1
		// origin "pk" and "u" mark constraint-owned indexes.
		idx.IsPrimary = origin == "pk"
		indexes = append(indexes, idx)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating index_list rows: %v", rows.Err())
	}
	rows.Close()

	for i := range indexes {
		cols, err := sqliteIndexColumns(ctx, db, indexes[i].IndexName)
		if err != nil {
			return nil, err
		}
		indexes[i].Columns = cols
	}
	return indexes, nil
}

func sqliteIndexColumns(ctx context.Context, db *sql.DB, indexName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s);", quoteIdent(indexName)))
	if err != nil {
		return nil, fmt.Errorf("querying index_info: %v", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			seqno int
			cid   int
			name  *string
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("scanning index_info row: %v", err)
		}
		if name != nil {
			columns = append(columns, *name)
		}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating index_info rows: %v", rows.Err())
	}
	return columns, nil
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func splitColumnList(list string) []string {
	columns := strings.Split(list, ",")
	for i, col := range columns {
		columns[i] = strings.TrimSpace(col)
	}
	return columns
}
