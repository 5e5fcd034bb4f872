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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfinelli/vblock/internal/catalog"
	"github.com/mfinelli/vblock/internal/object"
	"github.com/mfinelli/vblock/internal/store"
)

var putNoCatalog bool

var putCmd = &cobra.Command{
	Use:   "put [FILE]",
	Short: "Store a file (or stdin) as a blob",
	Long: `Read a file (or stdin when no file is given), split it at
content-defined boundaries, and store the resulting chunk tree. Prints
the root oid, which is sufficient to recover the data with "vblock get".

Storing the same content twice is free: every chunk already present is
reused.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var data []byte
		var name string
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}
			name = filepath.Base(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("error reading stdin: %w", err)
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		oid, err := s.PutBlob(data)
		if err != nil {
			return fmt.Errorf("error storing blob: %w", err)
		}

		if !putNoCatalog {
			if err := recordInCatalog(ctx, s, oid, int64(len(data)), name); err != nil {
				return err
			}
		}

		fmt.Println(oid)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)

	putCmd.Flags().BoolVar(&putNoCatalog, "no-catalog", false,
		"Skip recording the blob in the catalog database")
}

// recordInCatalog counts the stored tree for the ingested root and
// records it. A missing catalog is reported but does not fail the put:
// the object store already holds the data.
func recordInCatalog(ctx context.Context, s *store.Store, oid object.Oid, size int64, name string) error {
	db, err := catalog.Open(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrNoCatalog) {
			fmt.Fprintf(os.Stderr, "warning: blob stored but not catalogued: %v\n", err)
			return nil
		}
		return fmt.Errorf("error opening catalog: %w", err)
	}
	defer db.Close()

	pieces, levels, err := s.StatBlob(oid)
	if err != nil {
		return err
	}

	return catalog.RecordBlob(ctx, db, oid.Hex(), size, pieces, levels, name)
}
