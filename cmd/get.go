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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfinelli/vblock/internal/completion"
	"github.com/mfinelli/vblock/internal/object"
)

var getOutput string

var getCmd = &cobra.Command{
	Use:   "get OID",
	Short: "Recover a blob by its root oid",
	Long: `Reassemble the blob rooted at OID and write it to stdout (or to a
file with --output). Every object read along the way is verified against
its oid, so what comes out is exactly what went in.`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return completion.BlobOids(cmd, toComplete)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		oid, err := object.FromHex(args[0])
		if err != nil {
			return fmt.Errorf("error parsing oid: %w", err)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		data, err := s.GetBlob(oid)
		if err != nil {
			return fmt.Errorf("error reading blob: %w", err)
		}
		if data == nil {
			return fmt.Errorf("no object %s in this store", oid)
		}

		if getOutput != "" {
			if err := os.WriteFile(getOutput, data, 0o666); err != nil {
				return fmt.Errorf("error writing output: %w", err)
			}
			return nil
		}

		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getOutput, "output", "o", "",
		"Write the blob to a file instead of stdout")
}
