package repository

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

//go:embed migration/*
var migrationsFS embed.FS

// MigrationsTempDir creates a temporary directory, populates it with the
// migration files, and returns the path to that directory. This lets the
// binary run migrations without shipping the files separately.
//
// It is the caller's responsibility to remove the directory when it is
// no longer needed.
func MigrationsTempDir() (string, error) {
	tmpDir, err := os.MkdirTemp("", "migrations-*")
	if err != nil {
		return "", err
	}

	if err := fs.WalkDir(migrationsFS, "migration", func(path string, d fs.DirEntry, _ error) error {
		if d.IsDir() {
			return nil
		}

		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return err
		}

		dst := filepath.Join(tmpDir, filepath.Base(path))
		return os.WriteFile(dst, content, 0600)
	}); err != nil {
		return "", err
	}

	return tmpDir, nil
}

// Migrate applies all pending migrations against the given mysql DSN.
func Migrate(dsn string) error {
	dir, err := MigrationsTempDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	m, err := migrate.New("file://"+dir, fmt.Sprintf("mysql://%s", dsn))
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
