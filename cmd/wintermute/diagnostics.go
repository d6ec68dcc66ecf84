// Copyright 2026 The Wintermute Authors
// This file is part of the Wintermute engine.
//
// The Wintermute engine is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Wintermute engine is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Wintermute engine. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/wintermute-engine/wme/engine"
)

// printCacheStats renders the resource cache's occupancy for --cache-stats.
func printCacheStats(rt *engine.Runtime) {
	stats := rt.Cache.Stats()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"metric", "value"})
	table.Append([]string{"entries", fmt.Sprint(stats.Entries)})
	table.Append([]string{"total size (bytes)", fmt.Sprint(stats.TotalSize)})
	table.Append([]string{"soft cap (bytes)", fmt.Sprint(stats.SoftCap)})
	table.Append([]string{"evictable", fmt.Sprint(stats.Evictable)})
	table.Append([]string{"memory available (bytes)", fmt.Sprint(stats.MemoryAvail)})
	table.Render()
}

// printVFSList renders every path visible through the mounted VFS for
// --list.
func printVFSList(rt *engine.Runtime) error {
	paths, err := rt.FS.Enumerate("*", true)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"path"})
	for _, p := range paths {
		table.Append([]string{p})
	}
	table.Render()
	return nil
}
