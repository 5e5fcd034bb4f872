/*
 * vblock: content-addressed block store
 * Copyright © 2026 Mario Finelli
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package catalog tracks blobs ingested through the CLI in a sqlite
// database. The catalog is an index only: the object store remains the
// source of truth, and nothing in the store layer ever consults it.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

// The catalog has a single table and no foreign keys, but it does see
// concurrent openers (a put racing doctor), so it trades the usual
// foreign-key pragma for a busy timeout.
const dbPragmas = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

// ErrNoCatalog means the configured database file does not exist yet.
// Callers that can live without the catalog (put keeps the object store
// as source of truth) test for it and degrade instead of failing.
var ErrNoCatalog = errors.New("catalog database not initialized")

//go:embed migrations
var migrations embed.FS

// Open opens the configured catalog database and brings its schema up
// to date. The database must already exist: read paths never create a
// catalog, so a mistyped --config cannot silently spawn an empty ledger.
// A missing file is reported as ErrNoCatalog.
func Open(ctx context.Context) (*sql.DB, error) {
	path := viper.GetString("database")
	if err := ensureExists(path); err != nil {
		return nil, err
	}
	return open(ctx, path)
}

// Create opens the configured catalog database, creating the file on
// first use, and migrates it. Only `vblock init` should need this.
func Create(ctx context.Context) (*sql.DB, error) {
	return open(ctx, viper.GetString("database"))
}

// OpenReadOnly opens the catalog without migrating it, for paths that
// must never write (shell completion against a possibly older schema).
func OpenReadOnly() (*sql.DB, error) {
	path := viper.GetString("database")
	if err := ensureExists(path); err != nil {
		return nil, err
	}
	return sql.Open("sqlite3", fmt.Sprintf("file:%s%s&mode=ro", path, dbPragmas))
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("database path is not configured")
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s%s", path, dbPragmas))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog %s: %w", path, err)
	}

	return db, nil
}

// ensureExists verifies the database file exists and is a regular file,
// mapping absence to ErrNoCatalog with a pointer at `vblock init`.
func ensureExists(path string) error {
	if path == "" {
		return errors.New("database path is not configured")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf(
				"%w: %s missing\n\nRun `vblock init` to create the store and catalog",
				ErrNoCatalog, path,
			)
		}
		return fmt.Errorf("cannot access database %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("database path %s exists but is not a regular file", path)
	}

	return nil
}

// migrate runs the embedded goose migrations. The provider FS points at
// the "migrations" directory within the embed.FS.
func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("error preparing migrations fs: %w", err)
	}

	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("error setting up goose provider: %w", err)
	}

	if _, err := p.Up(ctx); err != nil {
		return err
	}

	return nil
}
