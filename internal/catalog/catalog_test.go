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
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s%s", path, dbPragmas))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrate(context.Background(), db))
	return db
}

// not parallel: mutates the process-wide viper config
func TestOpenRequiresExistingCatalog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vblock.db")
	viper.Set("database", path)
	defer viper.Set("database", "")

	_, err := Open(ctx)
	assert.ErrorIs(t, err, ErrNoCatalog)

	_, err = OpenReadOnly()
	assert.ErrorIs(t, err, ErrNoCatalog)

	// init's path brings the file into existence with the schema
	db, err := Create(ctx)
	require.NoError(t, err)
	require.NoError(t, RecordBlob(ctx, db, testOid(0x99), 1, 1, 0, ""))
	require.NoError(t, db.Close())

	db, err = Open(ctx)
	require.NoError(t, err)
	defer db.Close()

	blobs, err := ListBlobs(ctx, db)
	require.NoError(t, err)
	assert.Len(t, blobs, 1)
}

func testOid(seed byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", seed), 64)
}

func TestRecordAndListBlobs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testDB(t)

	require.NoError(t, RecordBlob(ctx, db, testOid(0xaa), 1234, 3, 1, "backup.tar"))
	require.NoError(t, RecordBlob(ctx, db, testOid(0xbb), 0, 1, 0, ""))

	blobs, err := ListBlobs(ctx, db)
	require.NoError(t, err)
	require.Len(t, blobs, 2)

	byOid := make(map[string]Blob)
	for _, b := range blobs {
		byOid[b.Oid] = b
	}

	a := byOid[testOid(0xaa)]
	assert.Equal(t, int64(1234), a.Size)
	assert.Equal(t, int64(3), a.Pieces)
	assert.Equal(t, int64(1), a.Levels)
	assert.True(t, a.OriginalName.Valid)
	assert.Equal(t, "backup.tar", a.OriginalName.String)
	assert.Equal(t, int64(0), a.Pinned)
	assert.False(t, a.VerifiedAt.Valid)
	assert.NotEmpty(t, a.CreatedAt)

	b := byOid[testOid(0xbb)]
	assert.False(t, b.OriginalName.Valid)
}

func TestRecordBlobIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testDB(t)

	require.NoError(t, RecordBlob(ctx, db, testOid(0x11), 42, 1, 0, "x"))
	require.NoError(t, RecordBlob(ctx, db, testOid(0x11), 42, 1, 0, "x"))

	blobs, err := ListBlobs(ctx, db)
	require.NoError(t, err)
	assert.Len(t, blobs, 1)
}

func TestRecordBlobSizeMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testDB(t)

	require.NoError(t, RecordBlob(ctx, db, testOid(0x22), 42, 1, 0, ""))

	err := RecordBlob(ctx, db, testOid(0x22), 43, 1, 0, "")
	assert.Error(t, err)
}

func TestGetBlob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testDB(t)

	got, err := GetBlob(ctx, db, testOid(0x33))
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, RecordBlob(ctx, db, testOid(0x33), 7, 1, 0, ""))

	got, err = GetBlob(ctx, db, testOid(0x33))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.Size)
}

func TestMarkVerified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testDB(t)

	require.NoError(t, RecordBlob(ctx, db, testOid(0x44), 7, 1, 0, ""))
	require.NoError(t, MarkVerified(ctx, db, testOid(0x44)))

	got, err := GetBlob(ctx, db, testOid(0x44))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.VerifiedAt.Valid)

	// unknown oids are an error, not a silent no-op
	assert.Error(t, MarkVerified(ctx, db, testOid(0x55)))
}

func TestSetPinned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testDB(t)

	require.NoError(t, RecordBlob(ctx, db, testOid(0x66), 7, 1, 0, ""))

	require.NoError(t, SetPinned(ctx, db, testOid(0x66), true))
	got, err := GetBlob(ctx, db, testOid(0x66))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Pinned)

	require.NoError(t, SetPinned(ctx, db, testOid(0x66), false))
	got, err = GetBlob(ctx, db, testOid(0x66))
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Pinned)

	assert.Error(t, SetPinned(ctx, db, testOid(0x77), true))
}

func TestListOids(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testDB(t)

	require.NoError(t, RecordBlob(ctx, db, testOid(0x02), 1, 1, 0, ""))
	require.NoError(t, RecordBlob(ctx, db, testOid(0x01), 1, 1, 0, ""))

	oids, err := ListOids(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{testOid(0x01), testOid(0x02)}, oids)
}
