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

package gameobj

import (
	"time"

	"github.com/wintermute-engine/wme/scriptable"
	"github.com/wintermute-engine/wme/value"
)

// Game is the single root object every running instance has exactly one
// of: it holds the handle of the active Scene. It has no inventory or
// window fields of its own; other objects attach through its Children.
type Game struct {
	Base

	registry    *Registry
	ActiveScene uint64
}

// NewGame constructs the root Game object and registers every concrete
// class's Factory on r, so that both the VM's NewObject opcode and
// persistence's load path can construct any of them by class name.
func NewGame(r *Registry) *Game {
	g := &Game{Base: NewBase("game"), registry: r}
	d := scriptable.NewDispatch()
	d.AddGetter("activescene", func() value.Value { return value.Object(g.ActiveScene) })
	d.AddSetter("activescene", func(v value.Value) bool { g.ActiveScene = v.AsHandle(); return true })
	g.InitCommon(d)

	r.RegisterClass("scene", func(reg *Registry, args []value.Value) (Object, error) { return NewScene(reg), nil })
	r.RegisterClass("layer", func(reg *Registry, args []value.Value) (Object, error) { return NewLayer(reg), nil })
	r.RegisterClass("actor", func(reg *Registry, args []value.Value) (Object, error) { return NewActor(), nil })
	r.RegisterClass("item", func(reg *Registry, args []value.Value) (Object, error) { return NewItem(), nil })
	r.RegisterClass("inventory", func(reg *Registry, args []value.Value) (Object, error) { return NewInventory(reg), nil })
	r.RegisterClass("window", func(reg *Registry, args []value.Value) (Object, error) { return NewWindow(), nil })
	r.RegisterClass("button", func(reg *Registry, args []value.Value) (Object, error) { return NewButton(), nil })
	r.RegisterClass("sprite", func(reg *Registry, args []value.Value) (Object, error) { return NewSprite(), nil })

	r.Put(g)
	return g
}

// Update advances the active scene by dt, the per-tick call the runtime's
// main loop makes after the scheduler's script tick. Windows and other
// children of the Game are not updated.
func (g *Game) Update(dt time.Duration) {
	if obj, ok := g.registry.Get(g.ActiveScene); ok {
		if s, ok := obj.(*Scene); ok {
			s.Update(dt)
		}
	}
}
