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
	"github.com/mfinelli/vblock/internal/state"
	"github.com/mfinelli/vblock/internal/store"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "initializes the vblock store and catalog",
	Long: `Initialize vblock's local state.

Creates the store root with its objects/ directory and initializes or
upgrades the catalog database. This command is safe to run multiple times
and will not overwrite existing data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		root, depth, err := resolveStore()
		if err != nil {
			return err
		}

		s, err := store.Init(root)
		if err != nil {
			return fmt.Errorf("error creating store: %w", err)
		}
		defer s.Close()

		db, err := catalog.Create(ctx)
		if err != nil {
			return fmt.Errorf("error creating catalog: %w", err)
		}
		defer db.Close()

		// remember the store and the depth it was laid out with; only
		// claim the active slot if nothing else holds it
		st, err := state.Load()
		if err != nil {
			return err
		}
		st.Register(root, depth)
		if st.Active == "" {
			st.SetActive(root)
		}
		if err := state.Save(st); err != nil {
			return err
		}

		fmt.Printf("Initialized vblock store at %s (split depth %d)\n", root, depth)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
