package runner

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schemato/schemato/database"
	"github.com/schemato/schemato/spec"
)

// Runner drives the migration ledger for one database. The ledger DDL is
// portable between postgresql and sqlite so both engines share this path.
type Runner struct {
	db     *sql.DB
	engine spec.Engine
	dir    string
}

func New(db *sql.DB, engine spec.Engine, dir string) *Runner {
	return &Runner{db: db, engine: engine, dir: dir}
}

func (r *Runner) exec(ctx context.Context, query string, args ...any) error {
	_, err := r.db.ExecContext(ctx, database.Rebind(r.engine, query), args...)
	return err
}

func (r *Runner) ensureMigrationsTable(ctx context.Context) error {
	err := r.exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL,
		checksum TEXT NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %v", err)
	}
	return nil
}

func (r *Runner) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT filename FROM schema_migrations;`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %v", err)
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var fname string
		if err := rows.Scan(&fname); err != nil {
			return nil, fmt.Errorf("scan filename: %v", err)
		}
		applied[fname] = true
	}
	return applied, rows.Err()
}

func (r *Runner) appliedMigrationsOrdered(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT filename FROM schema_migrations ORDER BY applied_at DESC, filename DESC;`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %v", err)
	}
	defer rows.Close()

	var applied []string
	for rows.Next() {
		var fname string
		if err := rows.Scan(&fname); err != nil {
			return nil, fmt.Errorf("scan filename: %v", err)
		}
		applied = append(applied, fname)
	}
	return applied, rows.Err()
}

func (r *Runner) migrationFiles() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations dir: %v", err)
	}

	var filenames []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			filenames = append(filenames, e.Name())
		}
	}
	sort.Strings(filenames)
	return filenames, nil
}

// parseMigrationFile splits a migration file into its up and down SQL
// sections, matching the format WriteMigrationFile produces.
func parseMigrationFile(dir, filename string) (string, string, error) {
	content, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return "", "", fmt.Errorf("read file %s: %v", filename, err)
	}

	parts := strings.Split(string(content), "-- Down Migration (Rollback)")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("migration file %s does not contain rollback section", filename)
	}

	upParts := strings.Split(parts[0], "-- Up Migration")
	if len(upParts) < 2 {
		return "", "", fmt.Errorf("migration file %s does not contain up migration section", filename)
	}
	downParts := strings.Split(parts[1], "-- =======================")
	if len(downParts) < 2 {
		return "", "", fmt.Errorf("migration file %s does not contain valid rollback section", filename)
	}

	upSQL := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(upParts[1]), "-- ============"))
	downSQL := strings.TrimSpace(downParts[1])
	return upSQL, downSQL, nil
}

func checksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

func (r *Runner) applyMigration(ctx context.Context, filename string) error {
	upSQL, _, err := parseMigrationFile(r.dir, filename)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, upSQL); err != nil {
		return fmt.Errorf("executing migration %s: %v", filename, err)
	}

	err = r.exec(ctx, `INSERT INTO schema_migrations (filename, applied_at, checksum) VALUES (?, ?, ?);`,
		filename, time.Now().UTC(), checksum(upSQL))
	if err != nil {
		return fmt.Errorf("recording migration %s: %v", filename, err)
	}
	return nil
}

func (r *Runner) rollbackMigration(ctx context.Context, filename string) error {
	_, downSQL, err := parseMigrationFile(r.dir, filename)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, downSQL); err != nil {
		return fmt.Errorf("executing rollback for %s: %v", filename, err)
	}

	if err := r.exec(ctx, `DELETE FROM schema_migrations WHERE filename = ?;`, filename); err != nil {
		return fmt.Errorf("removing migration record for %s: %v", filename, err)
	}
	return nil
}

// Apply runs every pending migration in filename order.
func (r *Runner) Apply(ctx context.Context) error {
	if err := r.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := r.appliedMigrations(ctx)
	if err != nil {
		return err
	}
	files, err := r.migrationFiles()
	if err != nil {
		return err
	}

	var pending []string
	for _, f := range files {
		if !applied[f] {
			pending = append(pending, f)
		}
	}

	if len(pending) == 0 {
		fmt.Println("✅ No pending migrations.")
		return nil
	}

	fmt.Printf("Applying %d migration(s)...\n", len(pending))
	for _, f := range pending {
		fmt.Printf("Applying: %s\n", f)
		if err := r.applyMigration(ctx, f); err != nil {
			return err
		}
	}

	fmt.Println("✅ All migrations applied.")
	return nil
}

// Rollback reverts up to steps applied migrations, most recent first.
func (r *Runner) Rollback(ctx context.Context, steps int) error {
	if err := r.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := r.appliedMigrationsOrdered(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Println("✅ No migrations to rollback.")
		return nil
	}

	toRollback := steps
	if toRollback > len(applied) {
		toRollback = len(applied)
		fmt.Printf("⚠️  Only %d migrations available, rolling back all.\n", len(applied))
	}

	fmt.Printf("Rolling back %d migration(s)...\n", toRollback)
	for _, f := range applied[:toRollback] {
		fmt.Printf("Rolling back: %s\n", f)
		if err := r.rollbackMigration(ctx, f); err != nil {
			return err
		}
	}

	fmt.Println("✅ Rollback completed.")
	return nil
}

// Status returns applied and pending migration filenames.
func (r *Runner) Status(ctx context.Context) ([]string, []string, error) {
	if err := r.ensureMigrationsTable(ctx); err != nil {
		return nil, nil, err
	}

	appliedMap, err := r.appliedMigrations(ctx)
	if err != nil {
		return nil, nil, err
	}

	applied := make([]string, 0, len(appliedMap))
	for f := range appliedMap {
		applied = append(applied, f)
	}
	sort.Strings(applied)

	files, err := r.migrationFiles()
	if err != nil {
		return nil, nil, err
	}

	var pending []string
	for _, f := range files {
		if !appliedMap[f] {
			pending = append(pending, f)
		}
	}

	return applied, pending, nil
}

// Preview prints the SQL of all pending migrations without applying them.
func (r *Runner) Preview(ctx context.Context) error {
	if err := r.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := r.appliedMigrations(ctx)
	if err != nil {
		return err
	}
	files, err := r.migrationFiles()
	if err != nil {
		return err
	}

	var pending []string
	for _, f := range files {
		if !applied[f] {
			pending = append(pending, f)
		}
	}

	if len(pending) == 0 {
		fmt.Println("✅ No pending migrations.")
		return nil
	}

	fmt.Println("\n================ DRY RUN: Migration Preview ================")
	for _, f := range pending {
		fmt.Printf("\n-- Migration: %s --\n", f)
		upSQL, downSQL, err := parseMigrationFile(r.dir, f)
		if err != nil {
			return err
		}
		fmt.Println("-- Up Migration SQL --")
		fmt.Println(upSQL)
		fmt.Println("\n-- Down Migration (Rollback) SQL --")
		fmt.Println(downSQL)
	}
	fmt.Println("============================================================")
	fmt.Println("(Dry run only. No migrations were applied.)")
	return nil
}
