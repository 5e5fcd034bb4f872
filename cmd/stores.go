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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfinelli/vblock/internal/state"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Manage which store commands operate on",
	Long: `vblock can keep any number of stores on disk. Commands resolve the
store root in order: the --store flag, the active store set here, then
the configured default. Each registered store remembers the split depth
it was created with, since reopening a store at a different depth would
make its objects unreachable.`,
}

var storesSetActiveCmd = &cobra.Command{
	Use:   "set-active PATH",
	Short: "Register a store root and make it the active store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		info, err := os.Stat(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no store at %q; run `vblock --store %s init` first", root, root)
			}
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%q is not a directory", root)
		}

		st, err := state.Load()
		if err != nil {
			return err
		}

		// first registration records the configured depth; later
		// activations keep the depth the store was registered with
		depth := viper.GetInt("split_depth")
		if known, ok := st.Lookup(root); ok {
			depth = known.SplitDepth
		}

		st.Register(root, depth)
		st.SetActive(root)

		if err := state.Save(st); err != nil {
			return err
		}

		fmt.Printf("Active store set to %s (split depth %d)\n", root, depth)

		return nil
	},
}

var storesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists all registered stores",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := state.Load()
		if err != nil {
			return err
		}

		rows := [][]string{}
		for _, s := range st.Stores {
			active := "✗"
			if s.Root == st.Active {
				active = "✓"
			}

			rows = append(rows, []string{
				fmt.Sprintf(" %s ", s.Root),
				fmt.Sprintf(" %d ", s.SplitDepth),
				fmt.Sprintf(" %s ", active),
				fmt.Sprintf(" %s ", s.AddedAt),
			})
		}

		t := table.New().
			Headers(" Root ", " Depth ", " Active ", " Added ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

var storesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the store root commands would use",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, depth, err := resolveStore()
		if err != nil {
			return err
		}
		fmt.Printf("%s (split depth %d)\n", root, depth)
		return nil
	},
}

var storesClearActiveCmd = &cobra.Command{
	Use:   "clear-active",
	Short: "Forget the active store and fall back to the configured default",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := state.Load()
		if err != nil {
			return err
		}

		st.ClearActive()

		return state.Save(st)
	},
}

func init() {
	rootCmd.AddCommand(storesCmd)
	storesCmd.AddCommand(storesSetActiveCmd)
	storesCmd.AddCommand(storesListCmd)
	storesCmd.AddCommand(storesShowCmd)
	storesCmd.AddCommand(storesClearActiveCmd)
}
