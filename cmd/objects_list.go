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

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var objectsListFull bool

var objectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists every object in the store",
	Long: `Walk the store's objects/ tree and list every object: pieces holding
raw chunk data, blob indexes linking them together, and reserved tree
records alike. Each object is re-hashed as it is read, so a clean
listing doubles as an integrity sweep.

This walks the filesystem, not the catalog; it sees everything,
including objects written with --no-catalog or through the library.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rows := [][]string{}
		for o, err := range s.Objects() {
			if err != nil {
				return fmt.Errorf("error walking store: %w", err)
			}

			oid := o.Oid().Hex()
			if !objectsListFull {
				oid = oid[:16]
			}

			rows = append(rows, []string{
				fmt.Sprintf(" %s ", oid),
				fmt.Sprintf(" %s ", o.Kind()),
				fmt.Sprintf(" %d ", o.Size()),
			})
		}

		t := table.New().
			Headers(" Oid ", " Kind ", " Size ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func init() {
	objectsCmd.AddCommand(objectsListCmd)

	objectsListCmd.Flags().BoolVar(&objectsListFull, "full-oids", false,
		"Print full 128-character oids instead of a prefix")
}
