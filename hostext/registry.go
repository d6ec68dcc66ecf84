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
	"fmt"
	"sync"

	"github.com/wintermute-engine/wme/value"
)

// Provider answers CallExternal for one lib name. Two concrete providers
// ship with the engine (GojaProvider, DuktapeProvider); the registry itself
// is agnostic to which script engine, if any, backs a given lib.
type Provider interface {
	Call(fn string, args []value.Value) (value.Value, error)
}

// Registry is a lib-name-keyed table of Providers, the pluggable half of
// the engine's external-call mechanism — registering a second,
// third-party script engine under a new lib name requires no VM change,
// only a Register call at startup.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register binds lib to provider. A later call for the same lib replaces
// the earlier one.
func (r *Registry) Register(lib string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[lib] = provider
}

// CallExternal implements the provider half of vm.Host: an unknown lib is
// always a runtime error, matching the Host contract's "a miss
// is always a runtime error, never a silent no-op."
func (r *Registry) CallExternal(lib, name string, args []value.Value) (value.Value, error) {
	r.mu.RLock()
	p, ok := r.providers[lib]
	r.mu.RUnlock()
	if !ok {
		return value.Null(), fmt.Errorf("hostext: no provider registered for external lib %q", lib)
	}
	return p.Call(name, args)
}
