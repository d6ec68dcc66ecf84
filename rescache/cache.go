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

// Package rescache implements the content-addressed, reference-counted
// resource cache: acquire/release/preload/clear/stats over typed assets
// backed by the VFS. The single-load-per-key rule is
// golang.org/x/sync/singleflight, exactly the guarantee that package
// provides; eviction bookkeeping borrows hashicorp/golang-lru's recency
// tracking; VictoriaMetrics/fastcache holds decompressed byte payloads
// ahead of typed construction so two different T's acquired from the same
// path don't re-read the VFS; shirou/gopsutil informs how hard the trimmer
// pushes under real memory pressure.
package rescache

import (
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	lru "github.com/hashicorp/golang-lru"
	"github.com/shirou/gopsutil/mem"
	"golang.org/x/sync/singleflight"

	"github.com/wintermute-engine/wme/common"
	"github.com/wintermute-engine/wme/internal/wlog"
	"github.com/wintermute-engine/wme/vfs"
)

// Loader constructs one typed resource from its raw bytes. Implementations
// live with the concrete type they build (sprite loader, sound loader, ...);
// the cache itself is type-agnostic.
type Loader interface {
	Load(path string, raw []byte) (resource interface{}, sizeEstimate int64, err error)
}

type key struct {
	path string
	typ  reflect.Type
}

type entry struct {
	value      interface{}
	size       int64
	refs       int32
	loadTime   time.Time
	lastAccess time.Time
}

// Stats summarizes the cache's current occupancy, returned by Stats().
type Stats struct {
	Entries     int
	TotalSize   int64
	SoftCap     int64
	Evictable   int // entries with refcount 0, eviction candidates
	MemoryAvail uint64 // bytes, per gopsutil; 0 if unavailable
}

// Cache is the engine-wide resource store. One Cache instance serves every
// asset type; the type parameter only shows up at the Acquire/Handle call
// site (Go has no covariant container otherwise), matching the familiar
// acquire<T>(path) notation directly.
type Cache struct {
	mu      sync.Mutex
	entries map[key]*entry
	order   *lru.Cache // recency tracker (key -> struct{}); oldest-first eviction candidates

	group   singleflight.Group
	raw     *fastcache.Cache
	fs      *vfs.VFS
	loaders map[reflect.Type]Loader

	softCap   int64
	totalSize int64

	log *wlog.Logger
}

// New creates a Cache reading through fs, evicting once totalSize exceeds
// softCapBytes.
func New(fs *vfs.VFS, softCapBytes int64) *Cache {
	order, _ := lru.New(1 << 20) // effectively unbounded; real eviction policy lives in trim()
	return &Cache{
		entries: map[key]*entry{},
		order:   order,
		raw:     fastcache.New(64 * 1024 * 1024),
		fs:      fs,
		loaders: map[reflect.Type]Loader{},
		softCap: softCapBytes,
		log:     wlog.Root().With("component", "rescache"),
	}
}

// Register binds a Loader to the concrete type it constructs. Call once per
// resource type at startup (sprite.Load, sound.Load, ...).
func Register[T any](c *Cache, loader Loader) {
	var zero T
	c.mu.Lock()
	c.loaders[reflect.TypeOf(zero)] = loader
	c.mu.Unlock()
}

// Handle is a live reference to one cached resource. Release must be called
// exactly once per Handle obtained from Acquire.
type Handle[T any] struct {
	c    *Cache
	k    key
	Data T
}

// Release decrements the resource's reference count. At 0 the entry becomes
// an eviction candidate but is not immediately freed.
func (h Handle[T]) Release() {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if e, ok := h.c.entries[h.k]; ok && e.refs > 0 {
		e.refs--
	}
}

// flightKey scopes singleflight calls by key so unrelated paths never
// share a flight, and lets Acquire report the concrete load error to every
// waiter.
func flightKey(k key) string { return fmt.Sprintf("%s#%s", k.typ, k.path) }

// Acquire implements acquire<T>(path): returns a live Handle, either
// by sharing an already-cached entry (refcount incremented) or by running
// (at most once per key, even under concurrent callers) T's registered
// Loader against bytes read through the VFS.
func Acquire[T any](c *Cache, path string) (*Handle[T], error) {
	var zero T
	typ := reflect.TypeOf(zero)
	k := key{path: vfs.NormalizePath(path), typ: typ}

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		e.refs++
		e.lastAccess = time.Now()
		c.order.Add(k, struct{}{})
		c.mu.Unlock()
		return &Handle[T]{c: c, k: k, Data: e.value.(T)}, nil
	}
	loader, ok := c.loaders[typ]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("rescache: no loader registered for %s", typ)
	}

	v, err, _ := c.group.Do(flightKey(k), func() (interface{}, error) {
		raw, err := c.readRaw(k.path)
		if err != nil {
			return nil, err
		}
		resource, size, err := loader.Load(path, raw)
		if err != nil {
			return nil, err
		}
		c.insert(k, resource, size)
		return resource, nil
	})
	if err != nil {
		return nil, err
	}

	// Every caller that reaches here — whether it ran the load or joined an
	// in-flight one via singleflight — takes exactly one reference; insert
	// starts the entry at refs=0 so the count always equals outstanding
	// Handles, never double-counting the caller that happened to win the
	// flight. trimLocked only runs here, after the increment, so the entry
	// this very call just loaded is never evicted before it is claimed.
	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		e.refs++
	}
	c.trimLocked()
	c.mu.Unlock()
	return &Handle[T]{c: c, k: k, Data: v.(T)}, nil
}

func (c *Cache) insert(k key, resource interface{}, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.entries[k] = &entry{value: resource, size: size, refs: 0, loadTime: now, lastAccess: now}
	c.order.Add(k, struct{}{})
	c.totalSize += size
}

// readRaw fetches path's bytes, caching the raw, not-yet-typed payload in a
// fastcache byte cache so a second Acquire of a different T over the same
// path skips the VFS entirely.
func (c *Cache) readRaw(path string) ([]byte, error) {
	rawKey := []byte(path)
	if cached, ok := c.raw.HasGet(nil, rawKey); ok {
		return cached, nil
	}
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, f.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, common.Wrap(common.KindFormat, "rescache", path, 0, err)
	}
	c.raw.Set(rawKey, buf)
	return buf, nil
}

// Preload warms the cache for a batch of paths without returning handles to
// the caller (each load still goes through the same singleflight/refcount
// path as Acquire, and is immediately released once loaded), so the assets
// are already cached when they are later acquired.
func Preload[T any](c *Cache, paths []string) {
	for _, p := range paths {
		h, err := Acquire[T](c, p)
		if err != nil {
			c.log.Warn("preload failed", "path", p, "err", err)
			continue
		}
		h.Release()
	}
}

// Clear destroys every entry with refcount 0. If force is true it also
// destroys referenced entries; their outstanding Handles thereafter read
// stale data (the in-memory Data field) but any later Release is still safe
// since the map entry being gone is treated as already-evicted.
func (c *Cache) Clear(force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if force || e.refs == 0 {
			delete(c.entries, k)
			c.totalSize -= e.size
		}
	}
}

// trimLocked evicts refcount-0 entries in LRU order until totalSize is back
// under softCap, or there is nothing left to evict. Called with c.mu held.
func (c *Cache) trimLocked() {
	if c.totalSize <= c.effectiveCapLocked() {
		return
	}
	for _, rawKey := range c.order.Keys() {
		if c.totalSize <= c.effectiveCapLocked() {
			return
		}
		k := rawKey.(key)
		e, ok := c.entries[k]
		if !ok || e.refs > 0 {
			continue
		}
		delete(c.entries, k)
		c.order.Remove(k)
		c.totalSize -= e.size
	}
}

// effectiveCapLocked shrinks the soft cap under real system memory
// pressure, per gopsutil's virtual-memory read: below 15% available, the
// engine trims twice as aggressively rather than waiting for the nominal
// cap to be exceeded.
func (c *Cache) effectiveCapLocked() int64 {
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Total == 0 {
		return c.softCap
	}
	availPercent := float64(vm.Available) / float64(vm.Total) * 100
	if availPercent > 15 {
		return c.softCap
	}
	return c.softCap / 2
}

// Stats reports the cache's current occupancy for the CLI's --cache-stats
// output and for diagnostics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Entries: len(c.entries), TotalSize: c.totalSize, SoftCap: c.softCap}
	for _, e := range c.entries {
		if e.refs == 0 {
			s.Evictable++
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemoryAvail = vm.Available
	}
	return s
}
