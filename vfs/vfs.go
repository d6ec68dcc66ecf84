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

package vfs

import (
	"bytes"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/bloomfilter/v2"
	"github.com/rjeczalik/notify"

	"github.com/wintermute-engine/wme/common"
	"github.com/wintermute-engine/wme/internal/wlog"
)

// negativeHash turns a normalized path into the uint64 key
// holiman/bloomfilter/v2 operates on (it has no notion of a byte-slice key
// itself — callers hash their own).
func negativeHash(norm string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(norm))
	return h.Sum64()
}

// Stream is a seekable, standalone in-memory view over one resolved file's
// bytes. Open streams are seekable over an in-memory buffer, so callers may
// hold many simultaneously without contending on archive file positions.
type Stream struct {
	*bytes.Reader
	size int64
}

func newStream(data []byte) *Stream { return &Stream{Reader: bytes.NewReader(data), size: int64(len(data))} }

// Size returns the stream's total byte length.
func (s *Stream) Size() int64 { return s.size }

// VFS is the priority-ordered union of mounted packages and the on-disk game
// directory. Reads never block on each other past one package's own
// internal read mutex; the resolution table itself is guarded by mu.
type VFS struct {
	mu       sync.RWMutex
	diskRoot string
	packages []*Package // sorted by descending priority

	// negative is a bloom filter of paths recently resolved as not-found,
	// so repeated misses across many mounted packages short-circuit before
	// walking the whole priority stack again. A hit is trusted: Exists and
	// Open report not-found without a real lookup, so a false positive
	// reports an existing path as missing until the filter is rebuilt.
	negative *bloomfilter.Filter

	watcher chan notify.EventInfo
	log     *wlog.Logger
}

// bloomMaxElements and bloomFalsePositive size the negative-result filter;
// it is rebuilt from scratch (cheap; it only ever holds path hashes) any
// time the mount set changes, since the library exposes no reset/remove.
const (
	bloomMaxElements   = 4096
	bloomFalsePositive = 0.01
)

func newNegativeFilter() *bloomfilter.Filter {
	filter, _ := bloomfilter.NewOptimal(bloomMaxElements, bloomFalsePositive)
	return filter
}

// New creates an empty VFS rooted at diskDir for the on-disk fallback layer.
// diskDir may be "" if the engine runs package-only (no loose files).
func New(diskDir string) *VFS {
	return &VFS{diskRoot: diskDir, negative: newNegativeFilter(), log: wlog.Root().With("component", "vfs")}
}

// Mount registers pkg, re-sorting the priority-descending package list.
// Packages of equal priority keep their mount order (stable sort), later
// mounts of equal priority shadowing earlier ones on ties is therefore a
// caller responsibility, not a VFS one.
func (v *VFS) Mount(pkg *Package) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.packages = append(v.packages, pkg)
	sort.SliceStable(v.packages, func(i, j int) bool { return v.packages[i].Priority > v.packages[j].Priority })
	v.negative = newNegativeFilter()
	v.log.Info("mounted package", "path", pkg.Path, "priority", pkg.Priority, "entries", len(pkg.Names()))
}

// SetDiskRoot (re)points the on-disk fallback layer at dir, invalidating the
// negative-result cache since a path that missed against the old root may
// now resolve against the new one. Used once at startup, after a
// ProjectLoader has resolved a project file into its disk root, since New
// is called before that resolution happens.
func (v *VFS) SetDiskRoot(dir string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.diskRoot = dir
	v.negative = newNegativeFilter()
	v.log.Info("disk root set", "path", dir)
}

// Unmount removes pkg (matched by Path) from the resolution stack.
func (v *VFS) Unmount(pkg *Package) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.packages[:0]
	for _, p := range v.packages {
		if p != pkg {
			out = append(out, p)
		}
	}
	v.packages = out
	v.negative = newNegativeFilter()
	v.log.Info("unmounted package", "path", pkg.Path)
}

// WatchDisk starts watching the on-disk root for changes, invalidating the
// negative-result cache so an asset edited during development is picked up
// without restarting the engine. Calling it twice is a no-op; Close stops
// the watch.
func (v *VFS) WatchDisk() error {
	if v.diskRoot == "" || v.watcher != nil {
		return nil
	}
	ch := make(chan notify.EventInfo, 32)
	if err := notify.Watch(filepath.Join(v.diskRoot, "..."), ch, notify.All); err != nil {
		return err
	}
	v.watcher = ch
	go v.watchLoop(ch)
	return nil
}

func (v *VFS) watchLoop(ch chan notify.EventInfo) {
	for range ch {
		v.mu.Lock()
		v.negative = newNegativeFilter()
		v.mu.Unlock()
	}
}

// Close stops any active disk watch.
func (v *VFS) Close() {
	if v.watcher != nil {
		notify.Stop(v.watcher)
		v.watcher = nil
	}
}

// resolve finds the highest-priority Entry for norm, or ok=false. Disk
// presence is checked last, matching the resolution order: packages by
// descending priority, then the disk directory.
func (v *VFS) resolve(norm string) (Entry, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, pkg := range v.packages {
		if e, ok := pkg.Stat(norm); ok {
			return e, true
		}
	}
	if v.diskRoot != "" {
		full := filepath.Join(v.diskRoot, filepath.FromSlash(norm))
		if fi, err := os.Stat(full); err == nil && !fi.IsDir() {
			return Entry{Path: norm, PackageID: 0, UncompressedSize: uint32(fi.Size()), Priority: -1}, true
		}
	}
	return Entry{}, false
}

// Exists reports whether path resolves to any mounted source or the disk.
func (v *VFS) Exists(path string) bool {
	norm := NormalizePath(path)
	if v.negativeHit(norm) {
		return false
	}
	_, ok := v.resolve(norm)
	if !ok {
		v.recordMiss(norm)
	}
	return ok
}

// negativeHit reports whether norm is very likely already known not-found.
// A bloom filter never false-negatives, so a miss here means nothing; a hit
// is trusted to short-circuit the full priority-stack walk, at the cost of
// the filter's bloomFalsePositive rate of occasionally re-declaring a path
// not-found for one lookup after it should have resolved. The filter is
// rebuilt on every Mount/Unmount, bounding how stale that risk can get.
func (v *VFS) negativeHit(norm string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.negative.Contains(negativeHash(norm))
}

func (v *VFS) recordMiss(norm string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.negative.Add(negativeHash(norm))
}

// Size returns path's uncompressed byte length, or (0, false) if not found.
func (v *VFS) Size(path string) (int64, bool) {
	e, ok := v.resolve(NormalizePath(path))
	if !ok {
		return 0, false
	}
	return int64(e.UncompressedSize), true
}

// Open resolves path and returns a standalone seekable Stream over its
// bytes, or common.ErrNotFound (a recoverable value, not a hard error).
func (v *VFS) Open(path string) (*Stream, error) {
	norm := NormalizePath(path)
	if v.negativeHit(norm) {
		return nil, common.ErrNotFound
	}
	e, ok := v.resolve(norm)
	if !ok {
		v.recordMiss(norm)
		return nil, common.ErrNotFound
	}
	if e.FromDisk() {
		data, err := os.ReadFile(filepath.Join(v.diskRoot, filepath.FromSlash(norm)))
		if err != nil {
			return nil, common.Wrap(common.KindFormat, "vfs", path, 0, err)
		}
		return newStream(data), nil
	}
	v.mu.RLock()
	var pkg *Package
	for _, p := range v.packages {
		if p.ID == e.PackageID {
			pkg = p
			break
		}
	}
	v.mu.RUnlock()
	if pkg == nil {
		return nil, common.ErrNotFound
	}
	data, err := pkg.Read(norm)
	if err != nil {
		return nil, err
	}
	return newStream(data), nil
}

// Enumerate yields every distinct path (deduplicated, shadowing applied)
// across every mounted package and the disk directory whose base name
// matches glob, in sorted path order.
func (v *VFS) Enumerate(glob string, recursive bool) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	seen := mapset.NewSet()
	var out []string
	consider := func(norm string) error {
		if seen.Contains(norm) {
			return nil
		}
		matched, err := filepath.Match(glob, filepath.Base(norm))
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
		if !recursive && strings.Count(norm, "/") > strings.Count(glob, "/") {
			return nil
		}
		seen.Add(norm)
		out = append(out, norm)
		return nil
	}

	// Highest priority first so shadowing (the later, higher-priority
	// source "wins" for Open) is reflected consistently: Enumerate still
	// reports the union, but the first-seen path per name is always the
	// winning source's.
	for _, pkg := range v.packages {
		for _, norm := range pkg.Names() {
			if err := consider(norm); err != nil {
				return nil, err
			}
		}
	}
	if v.diskRoot != "" {
		filepath.Walk(v.diskRoot, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			rel, rerr := filepath.Rel(v.diskRoot, path)
			if rerr != nil {
				return nil
			}
			return consider(NormalizePath(filepath.ToSlash(rel)))
		})
	}

	sort.Strings(out)
	return out, nil
}
