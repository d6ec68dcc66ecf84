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

// Package gameobj implements the game object tree: concrete Scriptable
// objects (scenes, layers, actors, items, windows, sprites) plus the
// central id-keyed registry that resolves native-object-reference
// handles for the VM. Grounded on core/types/block.go's
// composition-over-inheritance (a struct embeds a common header plus typed
// child collections) and core/state/statedb.go's one-authoritative-map
// object registry, adapted from address-keyed accounts to the 64-bit
// monotonic ids of common.NextObjectID.
package gameobj

import (
	"fmt"
	"sync"

	"github.com/wintermute-engine/wme/internal/wlog"
	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/value"
)

// Object is what the registry holds: a live Scriptable plus the bookkeeping
// the tree needs but script never sees directly (class name, for Resolve
// diagnostics and persistence's class-tag-on-save requirement).
type Object interface {
	vm.Scriptable
	ObjectID() uint64
	ClassName() string
}

// Factory constructs a new instance of one class, used by Registry.NewObject
// (the VM's NewObject opcode) and by persistence's second construction pass
// on load.
type Factory func(r *Registry, args []value.Value) (Object, error)

// Registry is the engine's single authoritative object table (core/state
// .StateDB's stateObjects map, generalized from one address-keyed account
// kind to many id-keyed game-object classes). It implements the id-handle
// half of vm.Host; the engine wires a Registry into every VM's Host via a
// thin adapter that also supplies CallExternal (see hostext).
type Registry struct {
	mu        sync.RWMutex
	objects   map[uint64]Object
	factories map[string]Factory
	log       *wlog.Logger
}

// NewRegistry creates an empty object table.
func NewRegistry() *Registry {
	return &Registry{
		objects:   map[uint64]Object{},
		factories: map[string]Factory{},
		log:       wlog.Root().With("component", "gameobj"),
	}
}

// RegisterClass binds className to the factory that builds it, called once
// per concrete type at engine startup (NewGame registers "actor", "scene",
// "layer", "item", "inventory", "window", "button", "sprite", ...).
func (r *Registry) RegisterClass(className string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[className] = f
}

// Put inserts an already-constructed object under its own ObjectID. Used by
// persistence's load path, which constructs every object up front (first
// pass) before any property/reference is resolved (second pass).
func (r *Registry) Put(obj Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[obj.ObjectID()] = obj
}

// Remove drops obj from the registry; its handle subsequently resolves as
// "gone" to every other object still holding a reference to it.
func (r *Registry) Remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// Resolve implements vm.Host: turns a handle into a live Scriptable, or
// live=false if the object was destroyed or never existed.
func (r *Registry) Resolve(handle uint64) (vm.Scriptable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[handle]
	if !ok {
		return nil, false
	}
	return obj, true
}

// Get returns the live Object for id (the gameobj-typed counterpart of
// Resolve, for callers — Actor.WalkTo's pathfinder, persistence's
// reference-resolution pass — that need the concrete registry entry rather
// than just the vm.Scriptable view).
func (r *Registry) Get(id uint64) (Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[id]
	return obj, ok
}

// NewObject implements vm.Host: constructs className via its registered
// Factory, assigns it a fresh id, and registers it.
func (r *Registry) NewObject(className string, args []value.Value) (uint64, error) {
	r.mu.RLock()
	f, ok := r.factories[className]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("gameobj: unknown class %q", className)
	}
	obj, err := f(r, args)
	if err != nil {
		return 0, err
	}
	r.Put(obj)
	return obj.ObjectID(), nil
}

// idRestorable is implemented by every concrete class through its embedded
// Base; ConstructForLoad uses it to overwrite the factory's freshly
// allocated id with the one a save file recorded.
type idRestorable interface {
	restoreObjectID(uint64)
}

// ConstructForLoad builds className via its registered Factory and then
// forces its id to match id, the handle it was saved under. Persistence's
// two-phase load (construct every object, then run every Persist) only
// resolves ObjectRef fields correctly if every reconstructed object keeps
// its original id. It returns an Object rather than a persist.Persistable,
// so it is not itself a persist.ConstructFunc; the engine does not call it.
func (r *Registry) ConstructForLoad(className string, id uint64) (Object, error) {
	r.mu.RLock()
	f, ok := r.factories[className]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("gameobj: unknown class %q", className)
	}
	obj, err := f(r, nil)
	if err != nil {
		return nil, err
	}
	if ir, ok := obj.(idRestorable); ok {
		ir.restoreObjectID(id)
	}
	r.Put(obj)
	return obj, nil
}

// All returns every live object of className, in no particular order. Used
// by defload to find the root Game object.
func (r *Registry) All(className string) []Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Object
	for _, obj := range r.objects {
		if obj.ClassName() == className {
			out = append(out, obj)
		}
	}
	return out
}
