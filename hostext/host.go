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

package hostext

import (
	"github.com/wintermute-engine/wme/gameobj"
	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/value"
)

// Host combines a gameobj.Registry (the object-handle half of vm.Host)
// with an external-call Registry (the provider half), so the engine's
// startup code wires exactly two pieces into one vm.Host rather than
// making gameobj.Registry itself know anything about script engines.
type Host struct {
	Objects   *gameobj.Registry
	Externals *Registry
}

// NewHost returns a Host ready to hand to every scheduler.Script's VM.
func NewHost(objects *gameobj.Registry, externals *Registry) *Host {
	return &Host{Objects: objects, Externals: externals}
}

func (h *Host) Resolve(handle uint64) (vm.Scriptable, bool) { return h.Objects.Resolve(handle) }

func (h *Host) NewObject(className string, args []value.Value) (uint64, error) {
	return h.Objects.NewObject(className, args)
}

func (h *Host) CallExternal(lib, name string, args []value.Value) (value.Value, error) {
	return h.Externals.CallExternal(lib, name, args)
}
