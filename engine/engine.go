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

// Package engine wires every subsystem into one running instance: a VFS
// mounted per engcfg.Config, a resource cache over it, a gameobj.Registry
// with every concrete class registered through the root Game object, a
// hostext.Host combining that registry with the external-call provider
// registry, and a script scheduler running against that Host. Project
// loading itself — turning a project file into the set of packages to
// mount and the scene to start in — stays the named external collaborator
// ProjectLoader: the engine defines the seam but ships only DefaultLoader,
// a minimal implementation treating the project file argument as the disk
// root, with no packages mounted.
package engine

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/wintermute-engine/wme/defload"
	"github.com/wintermute-engine/wme/gameobj"
	"github.com/wintermute-engine/wme/hostext"
	"github.com/wintermute-engine/wme/internal/engcfg"
	"github.com/wintermute-engine/wme/internal/wlog"
	"github.com/wintermute-engine/wme/rescache"
	"github.com/wintermute-engine/wme/script/scheduler"
	"github.com/wintermute-engine/wme/vfs"
)

// Manifest is what a ProjectLoader resolves a project file into: the
// packages to mount (in priority order) and the on-disk fallback root.
type Manifest struct {
	Mounts   []engcfg.Mount
	DiskRoot string
}

// ProjectLoader turns a project-file path into a Manifest. The engine
// proper never interprets a project file's own format; that is left to
// whatever game ships on top of this package, since project/configuration
// loading is an explicitly out-of-scope external collaborator.
type ProjectLoader interface {
	Load(path string) (Manifest, error)
}

// DefaultLoader is the minimal ProjectLoader the engine ships with: the
// project-file argument is itself the disk root to mount, with no
// packages. Real games supply their own ProjectLoader that understands
// their project file's format and package layout.
type DefaultLoader struct{}

func (DefaultLoader) Load(path string) (Manifest, error) {
	return Manifest{DiskRoot: path}, nil
}

// Runtime is one running instance of the engine: a mounted VFS, a resource
// cache over it, the object registry and root Game, the external-call
// host, and the script scheduler driving every loaded script forward one
// tick at a time.
type Runtime struct {
	FS        *vfs.VFS
	Cache     *rescache.Cache
	Objects   *gameobj.Registry
	Externals *hostext.Registry
	Host      *hostext.Host
	Scheduler *scheduler.Scheduler
	Game      *gameobj.Game
	Defs      *defload.Loader

	log *wlog.Logger
}

// New assembles a Runtime from cfg but mounts nothing yet; call Load to
// resolve a project file through a ProjectLoader and mount its packages.
func New(cfg engcfg.Config) *Runtime {
	fs := vfs.New(cfg.DiskRoot)
	cache := rescache.New(fs, cfg.CacheSoftCapBytes)
	objects := gameobj.NewRegistry()
	game := gameobj.NewGame(objects)
	externals := hostext.NewRegistry()
	host := hostext.NewHost(objects, externals)
	sched := scheduler.New(host, 10000, rate.Limit(50))
	log := wlog.Root().With("component", "engine")
	log.Info("runtime assembled", "cache_soft_cap", cfg.CacheSoftCapBytes, "disk_root", cfg.DiskRoot)

	return &Runtime{
		FS:        fs,
		Cache:     cache,
		Objects:   objects,
		Externals: externals,
		Host:      host,
		Scheduler: sched,
		Game:      game,
		Defs:      defload.New(objects),
		log:       log,
	}
}

// LoadDefinitionFile reads path through the mounted VFS and constructs
// every SCENE/ACTOR/ITEM/... block it contains — game objects are created
// either by parsing a definition file or by a script calling a
// constructor — returning the handles of the top-level objects created.
func (rt *Runtime) LoadDefinitionFile(path string) ([]uint64, error) {
	stream, err := rt.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("engine: opening definition file %q: %w", path, err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("engine: reading definition file %q: %w", path, err)
	}
	return rt.Defs.LoadString(path, string(data))
}

// Load resolves path through loader and mounts every resulting package
// onto the Runtime's VFS in manifest order (vfs.VFS.Mount re-sorts by
// priority regardless of call order, so this loop's order is not itself
// load-bearing — it only matters that every mount happens before any asset
// read). Package ids start at 1; id 0 denotes the on-disk layer.
func (rt *Runtime) Load(loader ProjectLoader, path string) error {
	manifest, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("engine: loading project %q: %w", path, err)
	}
	rt.log.Info("project loaded", "path", path, "mounts", len(manifest.Mounts), "disk_root", manifest.DiskRoot)
	if manifest.DiskRoot != "" {
		rt.FS.SetDiskRoot(manifest.DiskRoot)
	}
	for i, m := range manifest.Mounts {
		pkg, err := vfs.OpenPackage(i+1, m.Path, m.Priority)
		if err != nil {
			return fmt.Errorf("engine: mounting %q: %w", m.Path, err)
		}
		rt.FS.Mount(pkg)
	}
	return nil
}

// Tick advances the script scheduler and the active scene by dt, the
// engine's one per-frame unit of work (rendering and audio are the
// spec's explicit non-goals and have no presence here).
func (rt *Runtime) Tick(now time.Time, dt time.Duration) {
	rt.Scheduler.Tick(now, dt)
	rt.Game.Update(dt)
}

// Close releases the scheduler's background preload worker.
func (rt *Runtime) Close() {
	rt.Scheduler.Close()
}
