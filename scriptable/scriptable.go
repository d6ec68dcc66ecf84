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

// Package scriptable implements the get/set/call object protocol: every
// VM-visible game object dispatches first to class-specific,
// compile-time-known properties and methods, then falls through to a
// dynamic per-instance property bag for ad-hoc script-set fields. This
// mirrors core/state/state_object.go's split between an account's known
// fields (Balance, Nonce, ...) and its generic key/value storage slots,
// adapted from a byte-keyed trie to an in-memory string-keyed map since
// game objects never need to be merklized.
package scriptable

import (
	"strings"

	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/value"
)

// Getter reads one class-specific property.
type Getter func() value.Value

// Setter writes one class-specific property, reporting whether name is
// actually settable (a read-only property, such as an actor's computed
// IsMoving state, refuses the write by returning false; the VM discards
// that result).
type Setter func(value.Value) bool

// Method implements one class-specific method. A non-nil WaitCond marks
// the call as logically blocking, per vm.Scriptable.CallMethod.
type Method func(args []value.Value) (value.Value, vm.WaitCond, error)

// Dispatch is the compile-time-known half of one class's protocol surface:
// the set of property getters/setters and methods a concrete Go type
// registers once, typically in its constructor. Names fold to lower-case
// ASCII at registration and lookup time so dispatch is case-insensitive.
type Dispatch struct {
	getters map[string]Getter
	setters map[string]Setter
	methods map[string]Method
}

// NewDispatch returns an empty Dispatch ready for Getter/Setter/Method
// registration.
func NewDispatch() *Dispatch {
	return &Dispatch{getters: map[string]Getter{}, setters: map[string]Setter{}, methods: map[string]Method{}}
}

// AddGetter registers name's read accessor.
func (d *Dispatch) AddGetter(name string, fn Getter) { d.getters[foldName(name)] = fn }

// AddSetter registers name's write accessor.
func (d *Dispatch) AddSetter(name string, fn Setter) { d.setters[foldName(name)] = fn }

// AddMethod registers name's callable.
func (d *Dispatch) AddMethod(name string, fn Method) { d.methods[foldName(name)] = fn }

func foldName(name string) string { return strings.ToLower(name) }

// Base is embedded by every concrete game-object type to supply the
// dynamic-property-bag half of the protocol and to route known names to
// the object's own Dispatch. The concrete type's constructor must call
// Init with its populated Dispatch before the object is reachable from
// script.
type Base struct {
	dispatch *Dispatch
	bag      map[string]value.Value
}

// Init installs d as this object's class-specific dispatch table. Safe to
// call exactly once, from the concrete type's constructor.
func (b *Base) Init(d *Dispatch) { b.dispatch = d }

// GetProperty implements vm.Scriptable. Class-specific getters are tried
// first; an unregistered name falls through to the dynamic bag, returning
// ok=false only when neither has ever heard of name.
func (b *Base) GetProperty(name string) (value.Value, bool) {
	key := foldName(name)
	if b.dispatch != nil {
		if g, ok := b.dispatch.getters[key]; ok {
			return g(), true
		}
	}
	if v, ok := b.bag[key]; ok {
		return v, true
	}
	return value.Null(), false
}

// SetProperty implements vm.Scriptable. A class-specific setter, if
// registered for name, decides whether the write is accepted (a read-only
// computed property returns false); any other name is accepted into the
// dynamic bag unconditionally, since script is free to stash arbitrary
// fields on any object.
func (b *Base) SetProperty(name string, v value.Value) bool {
	key := foldName(name)
	if b.dispatch != nil {
		if s, ok := b.dispatch.setters[key]; ok {
			return s(v)
		}
	}
	if b.bag == nil {
		b.bag = map[string]value.Value{}
	}
	b.bag[key] = v
	return true
}

// CallMethod implements vm.Scriptable. The dynamic bag never holds
// callables, so a miss here always means handled=false, letting the VM
// raise the runtime "unknown method" error with file/line context.
func (b *Base) CallMethod(name string, args []value.Value) (value.Value, bool, vm.WaitCond, error) {
	key := foldName(name)
	if b.dispatch != nil {
		if m, ok := b.dispatch.methods[key]; ok {
			result, wait, err := m(args)
			return result, true, wait, err
		}
	}
	return value.Null(), false, nil, nil
}

// Properties returns the names currently held in the dynamic bag, for
// persistence to walk and serialize alongside the object's class-specific
// fields.
func (b *Base) Properties() map[string]value.Value { return b.bag }

// SetBag replaces the dynamic bag wholesale, used by the persistence layer
// when restoring an object from a save file.
func (b *Base) SetBag(bag map[string]value.Value) { b.bag = bag }
