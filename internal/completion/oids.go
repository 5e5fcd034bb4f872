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

package completion

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfinelli/vblock/internal/catalog"
)

// BlobOids completes catalogued blob oids.
func BlobOids(cmd *cobra.Command, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := context.Background()

	db, err := catalog.OpenReadOnly()
	if err != nil {
		// No DB (not initialized) or error: don't fall back to file completion.
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer db.Close()

	oids, err := catalog.ListOids(ctx, db)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	needle := strings.ToLower(toComplete)
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		if strings.HasPrefix(oid, needle) {
			out = append(out, oid)
		}
	}

	return out, cobra.ShellCompDirectiveNoFileComp
}
