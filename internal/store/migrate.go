package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

//go:embed pgmigrations/*.sql
var pgMigrations embed.FS

// migrationSource returns the embedded migrations, their directory, and the
// goose dialect for driver.
func migrationSource(driver string) (fs.FS, string, string, error) {
	switch driver {
	case "sqlite":
		return sqliteMigrations, "migrations", "sqlite3", nil
	case "postgres":
		return pgMigrations, "pgmigrations", "postgres", nil
	default:
		return nil, "", "", fmt.Errorf("unknown storage driver: %s", driver)
	}
}

func setupGoose(driver string) (string, error) {
	fsys, dir, dialect, err := migrationSource(driver)
	if err != nil {
		return "", err
	}
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("setting goose dialect: %w", err)
	}
	return dir, nil
}

func runMigrations(db *sql.DB, driver string) error {
	dir, err := setupGoose(driver)
	if err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// PendingMigrations reports the schema version of db and the migration
// versions that have not been applied yet. No migration is applied.
func PendingMigrations(db *sql.DB, driver string) (current int64, pending []int64, err error) {
	dir, err := setupGoose(driver)
	if err != nil {
		return 0, nil, err
	}

	// A fresh database has no version table yet.
	current, err = goose.GetDBVersion(db)
	if err != nil {
		current = 0
	}

	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return current, nil, fmt.Errorf("collecting migrations: %w", err)
	}
	for _, m := range migrations {
		if m.Version > current {
			pending = append(pending, m.Version)
		}
	}
	return current, pending, nil
}
