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

	"github.com/spf13/cobra"

	"github.com/mfinelli/vblock/internal/catalog"
	"github.com/mfinelli/vblock/internal/completion"
	"github.com/mfinelli/vblock/internal/object"
)

var blobsPinRemove bool

var blobsPinCmd = &cobra.Command{
	Use:   "pin OID",
	Short: "Pin a blob so future pruning leaves it alone",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return completion.BlobOids(cmd, toComplete)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		oid, err := object.FromHex(args[0])
		if err != nil {
			return fmt.Errorf("error parsing oid: %w", err)
		}

		db, err := catalog.Open(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := catalog.SetPinned(ctx, db, oid.Hex(), !blobsPinRemove); err != nil {
			return err
		}

		if blobsPinRemove {
			fmt.Printf("Unpinned %s\n", oid)
		} else {
			fmt.Printf("Pinned %s\n", oid)
		}

		return nil
	},
}

func init() {
	blobsCmd.AddCommand(blobsPinCmd)

	blobsPinCmd.Flags().BoolVar(&blobsPinRemove, "remove", false,
		"Remove the pin instead of setting it")
}
