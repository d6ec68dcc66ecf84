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
	"github.com/wintermute-engine/wme/common"
	"github.com/wintermute-engine/wme/scriptable"
	"github.com/wintermute-engine/wme/value"
)

// Rect is an axis-aligned bounding box in scene-local coordinates.
type Rect struct{ X, Y, Width, Height float64 }

// Base is embedded by every concrete class (Scene, Layer, Actor, Item,
// Window, Sprite, ...) and provides the fields every game object shares —
// identity, visibility/activity flags, layout, and tree position — plus
// the scriptable.Base dispatch/bag machinery. Concrete types call
// NewBase from their constructor and then Init their own Dispatch on top.
type Base struct {
	scriptable.Base

	id        uint64
	className string

	Name    string
	Visible bool
	Active  bool

	RenderPriority int
	BBox           Rect
	X, Y           float64

	Owner    uint64 // the containing object (a Layer's Scene, an Actor's Scene, ...); 0 = none
	children []uint64
}

// NewBase allocates a fresh object id and starts the object visible and
// active. It installs no Dispatch entries; the common ones (name/visible/
// active/x/y/renderpriority/owner) are added by InitCommon, which every
// concrete constructor calls after registering its own entries.
func NewBase(className string) Base {
	return Base{id: common.NextObjectID(), className: className, Active: true, Visible: true}
}

func (b *Base) ObjectID() uint64  { return b.id }
func (b *Base) ClassName() string { return b.className }

// restoreObjectID overwrites the freshly allocated id with one read back
// from a save file, so ObjectRef fields elsewhere in that save keep
// resolving to this object (see Registry.ConstructForLoad).
func (b *Base) restoreObjectID(id uint64) { b.id = id }

// InitCommon installs the fields above into d and then calls b.Base.Init,
// making b itself implement vm.Scriptable. Call once from the concrete
// type's constructor, after registering any class-specific entries onto d.
func (b *Base) InitCommon(d *scriptable.Dispatch) {
	d.AddGetter("name", func() value.Value { return value.String(b.Name) })
	d.AddSetter("name", func(v value.Value) bool { b.Name = v.String(); return true })

	d.AddGetter("visible", func() value.Value { return value.Bool(b.Visible) })
	d.AddSetter("visible", func(v value.Value) bool { b.Visible = v.Truthy(); return true })

	d.AddGetter("active", func() value.Value { return value.Bool(b.Active) })
	d.AddSetter("active", func(v value.Value) bool { b.Active = v.Truthy(); return true })

	d.AddGetter("x", func() value.Value { return value.Float(b.X) })
	d.AddSetter("x", func(v value.Value) bool { b.X = asFloat(v); return true })

	d.AddGetter("y", func() value.Value { return value.Float(b.Y) })
	d.AddSetter("y", func(v value.Value) bool { b.Y = asFloat(v); return true })

	d.AddGetter("renderpriority", func() value.Value { return value.Int(int64(b.RenderPriority)) })
	d.AddSetter("renderpriority", func(v value.Value) bool { b.RenderPriority = int(asInt(v)); return true })

	d.AddGetter("owner", func() value.Value { return value.Object(b.Owner) })

	b.Base.Init(d)
}

// SetOwner records handle as this object's containing object, used by the
// definition-file loader when it parents a freshly constructed child onto
// the block it was nested inside.
func (b *Base) SetOwner(handle uint64) { b.Owner = handle }

// AddChild appends handle to this object's children, used by Scene/Layer/
// Window/Inventory composition.
func (b *Base) AddChild(handle uint64) { b.children = append(b.children, handle) }

// RemoveChild removes the first occurrence of handle, if present.
func (b *Base) RemoveChild(handle uint64) {
	for i, h := range b.children {
		if h == handle {
			b.children = append(b.children[:i], b.children[i+1:]...)
			return
		}
	}
}

// Children returns this object's child handles in insertion order.
func (b *Base) Children() []uint64 { return b.children }

func asFloat(v value.Value) float64 {
	switch v.Kind() {
	case value.KindFloat:
		return v.AsFloat()
	case value.KindInt:
		return float64(v.AsInt())
	default:
		return 0
	}
}

func asInt(v value.Value) int64 {
	switch v.Kind() {
	case value.KindInt:
		return v.AsInt()
	case value.KindFloat:
		return int64(v.AsFloat())
	default:
		return 0
	}
}
