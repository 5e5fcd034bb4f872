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
	"fmt"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.finelli.dev/util"

	"github.com/mfinelli/vblock/internal/catalog"
)

var blobsListFull bool

var blobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists all blobs recorded in the catalog",
	Long: `Display every blob ingested through "vblock put", with its logical
size, tree shape, and verification state. Blobs written through the
library API (or with --no-catalog) do not appear here; use "vblock
objects list" to walk the store itself.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		db, err := catalog.Open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		blobs, err := catalog.ListBlobs(ctx, db)
		if err != nil {
			return fmt.Errorf("error listing blobs: %w", err)
		}

		rows := [][]string{}
		for _, b := range blobs {
			oid := b.Oid
			if !blobsListFull && len(oid) > 16 {
				oid = oid[:16]
			}

			name := ""
			if b.OriginalName.Valid {
				name = b.OriginalName.String
			}

			pinned := "✗"
			if util.SqliteIntToBool(b.Pinned) {
				pinned = "✓"
			}

			verified := ""
			if b.VerifiedAt.Valid {
				verified = b.VerifiedAt.String
			}

			rows = append(rows, []string{
				fmt.Sprintf(" %s ", oid),
				fmt.Sprintf(" %d ", b.Size),
				fmt.Sprintf(" %d ", b.Pieces),
				fmt.Sprintf(" %d ", b.Levels),
				fmt.Sprintf(" %s ", name),
				fmt.Sprintf(" %s ", pinned),
				fmt.Sprintf(" %s ", verified),
			})
		}

		t := table.New().
			Headers(" Oid ", " Size ", " Pieces ", " Levels ", " Name ", " Pinned ", " Verified ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func init() {
	blobsCmd.AddCommand(blobsListCmd)

	blobsListCmd.Flags().BoolVar(&blobsListFull, "full-oids", false,
		"Print full 128-character oids instead of a prefix")
}
