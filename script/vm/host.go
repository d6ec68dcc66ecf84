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

package vm

import "github.com/wintermute-engine/wme/value"

// WaitCond is polled by the scheduler, once per tick, for a script
// suspended on a blocking host call (e.g. an actor's WalkTo). It never
// blocks the calling goroutine itself: the engine has exactly one thread
// of control, so "waiting" means the scheduler skips this script's
// run_slice until the condition reports done.
type WaitCond func() (done bool, result value.Value, err error)

// Scriptable is the uniform object protocol every VM-visible game object
// implements (the get/set/call contract of the scriptable-object-protocol
// component). CallMethod may answer immediately, or return a non-nil
// WaitCond when the call is logically blocking.
type Scriptable interface {
	GetProperty(name string) (value.Value, bool)
	SetProperty(name string, v value.Value) bool
	CallMethod(name string, args []value.Value) (result value.Value, handled bool, wait WaitCond, err error)
}

// Host is the VM's view of the rest of the engine: the central object
// registry (for resolving GetProperty/SetProperty/CallMethod receivers and
// constructing new objects) and the external-call provider registry.
type Host interface {
	// Resolve turns a native-object-reference handle into a live Scriptable,
	// or reports live=false if the object has been destroyed.
	Resolve(handle uint64) (obj Scriptable, live bool)

	// NewObject constructs a game object of the given class and returns its
	// handle, used by the NewObject opcode.
	NewObject(className string, args []value.Value) (handle uint64, err error)

	// CallExternal resolves and invokes an `external "lib" fn(...)` call
	// against whichever provider registered for lib. A miss (unknown lib or
	// unknown function) is always a runtime error, never a silent no-op.
	CallExternal(lib, name string, args []value.Value) (value.Value, error)
}
