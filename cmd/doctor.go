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
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfinelli/vblock/internal/catalog"
	"github.com/mfinelli/vblock/internal/object"
)

var deepCheck bool
var doctorRecheck bool

// TODO: extract these somewhere else
var (
	headerStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("63"))
	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	errStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("1"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the store and catalog",
	Long: `Run a read-mostly health check to confirm vblock can operate safely.

Doctor verifies:
  - Store root layout and writability (objects/ exists, no stale temp
    directories piling up)
  - Catalog database is present and usable (SELECT 1), and passes sqlite
    quick_check (integrity_check + foreign_key_check with --full)
  - Every object in the store rehashes to its oid (corruption sweep)
  - Catalogued blobs reassemble end to end (--recheck)

Doctor never modifies store objects. Verification timestamps are written
to the catalog when --recheck succeeds.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		run := func() error {
			if err := checkPaths(); err != nil {
				return err
			}
			if err := checkDb(ctx); err != nil {
				return err
			}
			if err := checkObjects(ctx); err != nil {
				return err
			}
			if doctorRecheck {
				if err := recheckBlobs(ctx); err != nil {
					return err
				}
			}
			return nil
		}

		if err := run(); err != nil {
			if errors.Is(err, context.Canceled) {
				return fmt.Errorf("cancelled")
			}
			return err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVar(&deepCheck, "full", false, "Runs a more complete database check")
	doctorCmd.Flags().BoolVar(&doctorRecheck, "recheck", false, "Reassembles all catalogued blobs to ensure integrity")
}

// checkPaths verifies the store root exists and is writable.
func checkPaths() error {
	fmt.Println(headerStyle.Render("Store Checks"))

	root, _, err := resolveStore()
	if err != nil {
		return err
	}
	fmt.Println(subtleStyle.Render("  store: " + root))
	fmt.Println()

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println(errStyle.Render("  ✗ store root does not exist"))
			fmt.Println(subtleStyle.Render("    run `vblock init` to create it"))
			fmt.Println()
			return fmt.Errorf("store missing: %s", root)
		}
		fmt.Println(errStyle.Render("  ✗ could not stat store root"))
		return err
	}
	if !info.IsDir() {
		fmt.Println(errStyle.Render("  ✗ store root is not a directory"))
		return fmt.Errorf("not a directory: %s", root)
	}
	fmt.Println(okStyle.Render("  ✓ store root exists"))

	probe, err := os.CreateTemp(root, ".vblock-doctor-")
	if err != nil {
		fmt.Println(errStyle.Render("  ✗ store root is not writable"))
		return fmt.Errorf("store not writable: %w", err)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	fmt.Println(okStyle.Render("  ✓ store root is writable"))

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	haveObjects := false
	stale := 0
	for _, e := range entries {
		if e.Name() == "objects" && e.IsDir() {
			haveObjects = true
		}
		if len(e.Name()) > len("vblock-temp.") && e.Name()[:len("vblock-temp.")] == "vblock-temp." {
			stale++
		}
	}

	if haveObjects {
		fmt.Println(okStyle.Render("  ✓ objects/ directory present"))
	} else {
		fmt.Println(warnStyle.Render("  ! objects/ missing (will be created on first write)"))
	}

	if stale > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  ! %d leftover temp directories (crashed writers?)", stale)))
	} else {
		fmt.Println(okStyle.Render("  ✓ no leftover temp directories"))
	}

	fmt.Println()
	return nil
}

// checkDb verifies the catalog exists and is usable. Returns error only
// for non-recoverable failures.
func checkDb(ctx context.Context) error {
	fmt.Println(headerStyle.Render("Database Checks"))
	fmt.Println(subtleStyle.Render("  db: " + viper.GetString("database")))
	fmt.Println()

	db, err := catalog.Open(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrNoCatalog) {
			fmt.Println(warnStyle.Render("  ! catalog database missing (puts will not be catalogued)"))
			fmt.Println(subtleStyle.Render("    run `vblock init` to create it"))
			fmt.Println()
			return nil
		}
		fmt.Println(errStyle.Render("  ✗ could not open database"))
		return err
	}
	defer db.Close()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		fmt.Println(errStyle.Render("  ✗ database is not usable"))
		return err
	}
	fmt.Println(okStyle.Render("  ✓ database opens and answers"))

	check := "PRAGMA quick_check"
	if deepCheck {
		check = "PRAGMA integrity_check"
	}

	var result string
	if err := db.QueryRowContext(ctx, check).Scan(&result); err != nil {
		fmt.Println(errStyle.Render("  ✗ integrity check failed to run"))
		return err
	}
	if result != "ok" {
		fmt.Println(errStyle.Render("  ✗ integrity check reported: " + result))
		return fmt.Errorf("sqlite integrity: %s", result)
	}
	fmt.Println(okStyle.Render("  ✓ " + check + " ok"))

	if deepCheck {
		rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_check")
		if err != nil {
			return err
		}
		defer rows.Close()
		if rows.Next() {
			fmt.Println(errStyle.Render("  ✗ foreign key violations present"))
			return fmt.Errorf("sqlite foreign_key_check failed")
		}
		if err := rows.Err(); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("  ✓ foreign keys consistent"))
	}

	fmt.Println()
	return nil
}

// checkObjects walks the store and rehashes every object.
func checkObjects(ctx context.Context) error {
	fmt.Println(headerStyle.Render("Object Checks"))
	fmt.Println()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var total, corrupt int
	for _, err := range s.Objects() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if errors.Is(err, object.ErrInvalidData) {
				corrupt++
				fmt.Println(errStyle.Render("  ✗ " + err.Error()))
				continue
			}
			return err
		}
		total++
	}

	if corrupt > 0 {
		fmt.Println()
		fmt.Println(errStyle.Render(fmt.Sprintf("  ✗ %d of %d objects corrupt", corrupt, total+corrupt)))
		return fmt.Errorf("%d corrupt objects", corrupt)
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ all %d objects verified", total)))
	fmt.Println()
	return nil
}

// recheckBlobs reassembles every catalogued blob and stamps verified_at.
func recheckBlobs(ctx context.Context) error {
	fmt.Println(headerStyle.Render("Blob Rechecks"))
	fmt.Println()

	db, err := catalog.Open(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrNoCatalog) {
			fmt.Println(warnStyle.Render("  ! no catalog to recheck"))
			fmt.Println()
			return nil
		}
		return err
	}
	defer db.Close()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	blobs, err := catalog.ListBlobs(ctx, db)
	if err != nil {
		return err
	}

	var bad int
	for _, b := range blobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		oid, err := object.FromHex(b.Oid)
		if err != nil {
			bad++
			fmt.Println(errStyle.Render("  ✗ bad oid in catalog: " + b.Oid))
			continue
		}

		data, err := s.GetBlob(oid)
		if err != nil {
			bad++
			fmt.Println(errStyle.Render("  ✗ " + shortOid(b.Oid) + ": " + err.Error()))
			continue
		}
		if data == nil {
			bad++
			fmt.Println(errStyle.Render("  ✗ " + shortOid(b.Oid) + ": not in store"))
			continue
		}
		if int64(len(data)) != b.Size {
			bad++
			fmt.Println(errStyle.Render(fmt.Sprintf(
				"  ✗ %s: reassembled %d bytes, catalog says %d",
				shortOid(b.Oid), len(data), b.Size)))
			continue
		}

		if err := catalog.MarkVerified(ctx, db, b.Oid); err != nil {
			return err
		}
	}

	if bad > 0 {
		fmt.Println()
		fmt.Println(errStyle.Render(fmt.Sprintf("  ✗ %d of %d blobs failed recheck", bad, len(blobs))))
		return fmt.Errorf("%d blobs failed recheck", bad)
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ all %d blobs reassemble", len(blobs))))
	fmt.Println()
	return nil
}

func shortOid(oid string) string {
	if len(oid) > 16 {
		return oid[:16]
	}
	return oid
}
