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
	"io"
	"os"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mfinelli/vblock/internal"
	"github.com/mfinelli/vblock/internal/bench"
)

var (
	benchInputRandom string
	benchInputFile   string
	benchInputDir    string
)

var benchSplitCmd = &cobra.Command{
	Use:   "bench-split",
	Short: "Benchmark block splitting mechanisms (speed & deduplication), reads data from stdin by default",
	Long: `Run the same input through each content-defined splitter (the built-in
rolling checksum and the rabin chunker) and report chunk counts, sizes,
throughput, and how much of the input deduplicates.

The input comes from stdin unless one of --input-random, --input-file or
--input-dir is given.`,
	Args:         cobra.ExactArgs(0),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var src bench.Source

		switch {
		case benchInputRandom != "":
			n, ok := internal.ParseByteSize(benchInputRandom)
			if !ok {
				return fmt.Errorf(
					"--input-random requires an unsigned number of bytes, got %q",
					benchInputRandom)
			}
			fmt.Printf("Benchmarking %d bytes of random data\n", n)
			src = bench.NewRandomSource(n)

		case benchInputFile != "":
			src = bench.NewFileSource(benchInputFile)

		case benchInputDir != "":
			var err error
			src, err = bench.NewDirSource(benchInputDir)
			if err != nil {
				return fmt.Errorf("error scanning input dir: %w", err)
			}

		default:
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("error reading stdin: %w", err)
			}
			src = bench.NewBytesSource("stdin", data)
		}

		results, err := bench.Run(src)
		if err != nil {
			return fmt.Errorf("error benchmarking %s: %w", src.Name(), err)
		}

		rows := [][]string{}
		for _, r := range results {
			rows = append(rows, []string{
				fmt.Sprintf(" %s ", r.Splitter),
				fmt.Sprintf(" %d ", r.Chunks),
				fmt.Sprintf(" %d ", r.Min),
				fmt.Sprintf(" %d ", r.Avg()),
				fmt.Sprintf(" %d ", r.Max),
				fmt.Sprintf(" %d ", r.Unique),
				fmt.Sprintf(" %.1f%% ", dupPercent(r)),
				fmt.Sprintf(" %.1f MiB/s ", r.Throughput()),
			})
		}

		t := table.New().
			Headers(" Splitter ", " Chunks ", " Min ", " Avg ", " Max ", " Unique ", " Dup ", " Speed ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func dupPercent(r bench.Stats) float64 {
	if r.Bytes == 0 {
		return 0
	}
	return float64(r.DupBytes) / float64(r.Bytes) * 100
}

func init() {
	rootCmd.AddCommand(benchSplitCmd)

	benchSplitCmd.Flags().StringVarP(&benchInputRandom, "input-random", "r", "",
		"Use random data for benchmark (BYTES, binary suffixes allowed)")
	benchSplitCmd.Flags().StringVarP(&benchInputFile, "input-file", "f", "",
		"Use a file for data")
	benchSplitCmd.Flags().StringVarP(&benchInputDir, "input-dir", "d", "",
		"Use the contents of a directory (recursively) for data")

	benchSplitCmd.MarkFlagsMutuallyExclusive("input-random", "input-file", "input-dir")
}
