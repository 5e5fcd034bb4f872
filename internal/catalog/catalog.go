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

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Blob is one catalog row: a blob ingested via the CLI, keyed by the
// root oid returned from the store.
type Blob struct {
	Oid          string
	Size         int64
	Pieces       int64
	Levels       int64
	OriginalName sql.NullString
	Pinned       int64
	CreatedAt    string
	VerifiedAt   sql.NullString
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// RecordBlob ensures the blobs table has a row for oid, enforcing
// invariants:
//   - if the blob already exists, its size must match
//   - otherwise, insert it
//
// verified_at is set only by doctor's --recheck pass, not on ingest.
func RecordBlob(
	ctx context.Context,
	db *sql.DB,
	oid string,
	size int64,
	pieces int64,
	levels int64,
	originalName string,
) error {
	var existing int64
	err := db.QueryRowContext(ctx,
		`SELECT size FROM blobs WHERE oid = ?`, oid).Scan(&existing)
	switch {
	case err == nil:
		if existing != size {
			return fmt.Errorf(
				"blob %s already recorded with size=%d, ingest size=%d",
				oid, existing, size)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		// fall through to insert
	default:
		return fmt.Errorf("query blob %s: %w", oid, err)
	}

	var name sql.NullString
	if originalName != "" {
		name = sql.NullString{String: originalName, Valid: true}
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO blobs (oid, size, pieces, levels, original_name, pinned, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		oid, size, pieces, levels, name, timestamp())
	if err != nil {
		return fmt.Errorf("insert blob %s: %w", oid, err)
	}
	return nil
}

// ListBlobs returns all catalog rows, newest first.
func ListBlobs(ctx context.Context, db *sql.DB) ([]Blob, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT oid, size, pieces, levels, original_name, pinned, created_at, verified_at
		 FROM blobs ORDER BY created_at DESC, oid`)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	defer rows.Close()

	var out []Blob
	for rows.Next() {
		var b Blob
		if err := rows.Scan(&b.Oid, &b.Size, &b.Pieces, &b.Levels,
			&b.OriginalName, &b.Pinned, &b.CreatedAt, &b.VerifiedAt); err != nil {
			return nil, fmt.Errorf("scan blob: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBlob returns the catalog row for oid, or nil if absent.
func GetBlob(ctx context.Context, db *sql.DB, oid string) (*Blob, error) {
	var b Blob
	err := db.QueryRowContext(ctx,
		`SELECT oid, size, pieces, levels, original_name, pinned, created_at, verified_at
		 FROM blobs WHERE oid = ?`, oid).
		Scan(&b.Oid, &b.Size, &b.Pieces, &b.Levels,
			&b.OriginalName, &b.Pinned, &b.CreatedAt, &b.VerifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", oid, err)
	}
	return &b, nil
}

// MarkVerified stamps verified_at for oid.
func MarkVerified(ctx context.Context, db *sql.DB, oid string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE blobs SET verified_at = ? WHERE oid = ?`, timestamp(), oid)
	if err != nil {
		return fmt.Errorf("mark blob %s verified: %w", oid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("blob %s is not in the catalog", oid)
	}
	return nil
}

// SetPinned sets the pinned flag for oid to pinned. Pinned blobs are protected
// from any future pruning pass.
func SetPinned(ctx context.Context, db *sql.DB, oid string, pinned bool) error {
	v := int64(0)
	if pinned {
		v = 1
	}
	res, err := db.ExecContext(ctx,
		`UPDATE blobs SET pinned = ? WHERE oid = ?`, v, oid)
	if err != nil {
		return fmt.Errorf("pin blob %s: %w", oid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("blob %s is not in the catalog", oid)
	}
	return nil
}

// ListOids returns all catalog oids, for shell completion.
func ListOids(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT oid FROM blobs ORDER BY oid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var oid string
		if err := rows.Scan(&oid); err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, rows.Err()
}
