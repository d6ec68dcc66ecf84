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

// Package vfs implements the unified, priority-ordered, read-only
// filesystem over a stack of compressed package archives and the on-disk
// game directory.
package vfs

import "strings"

// NormalizePath lower-cases a logical path and normalizes back-slashes to
// forward-slashes, the canonical form every lookup key in this package
// uses: paths are case-insensitive and back-slashes are normalised to
// forward-slashes before lookup.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(p)
}

// Entry is one resolved VFS path: which source produced it (a mounted
// package, by id, or the on-disk directory), its size, and the priority the
// source carried when resolution ran. Priority is stored per-entry (copied
// from the owning package at mount time) so callers comparing two Entries
// for shadowing don't need to re-consult the source.
type Entry struct {
	Path             string // normalized logical path
	PackageID        int    // 0 means "on disk", never a valid mounted package id
	Offset           uint32
	UncompressedSize uint32
	CompressedSize   uint32 // 0 or == UncompressedSize means "stored"
	Flags            uint32
	Priority         int
}

// FromDisk reports whether e was resolved from the on-disk game directory
// rather than a mounted package.
func (e Entry) FromDisk() bool { return e.PackageID == 0 }
