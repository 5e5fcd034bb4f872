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
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfinelli/vblock/internal/state"
	"github.com/mfinelli/vblock/internal/store"
)

var (
	cfgFile   string
	storeFlag string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vblock",
	Short: "vblock: content-addressed block store",
	Long: `vblock is a content-addressed block store in the spirit of git or bup. It
persists byte streams under the hash of their contents, splitting large
inputs into deduplicated chunks at content-defined boundaries.

vblock  Copyright © 2026  Mario Finelli
This program comes with ABSOLUTELY NO WARRANTY; This program is free
software, and you are welcome to redistribute it under certain conditions;
You should have received a copy of the GNU General Public License (version
3) along with this program. If not, see https://www.gnu.org/licenses/.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/vblock/config.toml",
	)

	rootCmd.PersistentFlags().StringVar(
		&storeFlag,
		"store",
		"",
		"store root directory (overrides config and active store)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"enable verbose output",
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("store", filepath.Join(xdg.DataHome, "vblock", "store"))

	dbPath, err := xdg.DataFile("vblock/vblock.db")
	cobra.CheckErr(err)
	viper.SetDefault("database", dbPath)

	viper.SetDefault("split_depth", store.DefaultSplitDepth)

	if cfgFile != "" {
		// User explicitly provided a config file: it must work.
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("toml")

		if err := viper.ReadInConfig(); err != nil {
			cobra.CheckErr(err)
		}

		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file: ",
				viper.ConfigFileUsed())
		}

		return
	}

	defaultPath, err := xdg.ConfigFile("vblock/config.toml")
	cobra.CheckErr(err)

	if _, err := os.Stat(defaultPath); errors.Is(err, os.ErrNotExist) {
		return // default config file doesn't exist -- use defaults
	}

	viper.SetConfigFile(defaultPath)
	viper.SetConfigType("toml")

	if err := viper.ReadInConfig(); err != nil {
		// missing config file is fine -- use the built-in defaults
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		// parse/permission errors should fail loudly
		cobra.CheckErr(err)
		return
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file: ",
			viper.ConfigFileUsed())
	}
}

// resolveStore picks the store directory and its split depth. The
// --store flag wins over the active store from state, which wins over
// the configured default; either way, a depth registered in state for
// the chosen root overrides the configured split_depth, because depth
// is a property of the on-disk layout and reopening at the wrong depth
// would orphan every object.
func resolveStore() (string, int, error) {
	depth := viper.GetInt("split_depth")

	st, err := state.Load()
	if err != nil {
		return "", 0, err
	}

	root := storeFlag
	if root == "" {
		if active, ok := st.ActiveStore(); ok {
			root = active.Root
		} else {
			root = viper.GetString("store")
		}
	}

	if known, ok := st.Lookup(root); ok && known.SplitDepth > 0 {
		depth = known.SplitDepth
	}

	return root, depth, nil
}

// openStore opens the resolved store at its resolved split depth.
func openStore() (*store.Store, error) {
	root, depth, err := resolveStore()
	if err != nil {
		return nil, err
	}

	s, err := store.OpenSplitDepth(root, depth)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", root, err)
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using store: ", root)
	}

	return s, nil
}
