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
	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/scriptable"
	"github.com/wintermute-engine/wme/value"
)

// Item is a portable object that lives either in a Scene (on the ground)
// or in an Inventory (carried).
type Item struct {
	Base

	Icon string
}

// NewItem constructs an Item with no icon set; Icon is set through the
// "icon" property (an ITEM block's ICON key, or a script).
func NewItem() *Item {
	it := &Item{Base: NewBase("item")}
	d := scriptable.NewDispatch()
	d.AddGetter("icon", func() value.Value { return value.String(it.Icon) })
	d.AddSetter("icon", func(v value.Value) bool { it.Icon = v.String(); return true })
	it.InitCommon(d)
	return it
}

// Inventory is an ordered collection of Item handles owned by an Actor or
// the Game itself (a "global inventory" shared across scenes).
type Inventory struct {
	Base

	registry *Registry
}

// NewInventory constructs an empty Inventory.
func NewInventory(r *Registry) *Inventory {
	inv := &Inventory{Base: NewBase("inventory"), registry: r}
	d := scriptable.NewDispatch()
	d.AddMethod("additem", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		if len(args) < 1 {
			return value.Bool(false), nil, nil
		}
		inv.AddChild(args[0].AsHandle())
		return value.Bool(true), nil, nil
	})
	d.AddMethod("removeitem", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		if len(args) < 1 {
			return value.Bool(false), nil, nil
		}
		inv.RemoveChild(args[0].AsHandle())
		return value.Bool(true), nil, nil
	})
	d.AddMethod("hasitem", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		if len(args) < 1 {
			return value.Bool(false), nil, nil
		}
		h := args[0].AsHandle()
		for _, id := range inv.Children() {
			if id == h {
				return value.Bool(true), nil, nil
			}
		}
		return value.Bool(false), nil, nil
	})
	d.AddGetter("count", func() value.Value { return value.Int(int64(len(inv.Children()))) })
	inv.InitCommon(d)
	return inv
}
