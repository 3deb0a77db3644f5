package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/schemato/schemato/spec"
)

// Open connects to the target database: postgresql through the pgx
// database/sql adapter, sqlite through the pure-Go driver. mysql targets
// are generate-only — the compiled SQL can be applied with any mysql
// client, but this tool does not connect to one.
func Open(ctx context.Context, engine spec.Engine, url string) (*sql.DB, error) {
	var driver string
	switch engine {
	case spec.PostgreSQL:
		driver = "pgx"
	case spec.SQLite:
		driver = "sqlite"
	case spec.MySQL:
		return nil, fmt.Errorf("engine %q is generate-only: apply the generated SQL with a mysql client", engine)
	default:
		return nil, fmt.Errorf("unsupported engine %q", engine)
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return db, nil
}

// Rebind rewrites ? placeholders into the $N form postgresql expects.
// sqlite takes ? as-is.
func Rebind(engine spec.Engine, query string) string {
	if engine != spec.PostgreSQL {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
