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

	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/scriptable"
	"github.com/wintermute-engine/wme/value"
)

// Region is a named, polygonal hot zone within a Scene — the SCENE's
// nested REGION blocks — used by script to test whether a point (an
// actor's feet, a click) falls inside a named area without the engine
// itself knowing what that area means.
type Region struct {
	Name    string
	Polygon []Point
}

// Contains reports whether p falls inside r's polygon, using the
// standard even-odd ray-casting rule.
func (r *Region) Contains(p Point) bool {
	in := false
	n := len(r.Polygon)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r.Polygon[i], r.Polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// Scene is the room/screen the player currently occupies: it loads
// layers, regions, and waypoints. Its own Children (inherited from
// Base) hold Layer handles in paint order; Waypoints and Regions are
// scene-wide, not per-layer.
type Scene struct {
	Base

	registry  *Registry
	Waypoints Waypoints
	Regions   []Region
}

// NewScene constructs an empty Scene; the definition-file loader
// populates Waypoints/Regions and AddChild's its Layers afterward.
func NewScene(r *Registry) *Scene {
	s := &Scene{Base: NewBase("scene"), registry: r}
	d := scriptable.NewDispatch()
	d.AddMethod("getentity", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		if len(args) < 1 {
			return value.Null(), nil, nil
		}
		name := args[0].String()
		for _, child := range s.Children() {
			if obj, ok := r.Get(child); ok {
				if named, ok := obj.GetProperty("name"); ok && named.String() == name {
					return value.Object(obj.ObjectID()), nil, nil
				}
			}
		}
		return value.Null(), nil, nil
	})
	d.AddMethod("regionat", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		if len(args) < 2 {
			return value.Null(), nil, nil
		}
		p := Point{X: asFloat(args[0]), Y: asFloat(args[1])}
		for i := range s.Regions {
			if s.Regions[i].Contains(p) {
				return value.String(s.Regions[i].Name), nil, nil
			}
		}
		return value.Null(), nil, nil
	})
	s.InitCommon(d)
	return s
}

// Update advances every Actor and Layer directly parented to this scene by
// dt, in child (paint) order; a Layer's own actors are reached through the
// Layer's own Update.
func (s *Scene) Update(dt time.Duration) {
	for _, id := range s.Children() {
		obj, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		if a, ok := obj.(*Actor); ok {
			a.Update(dt)
		}
		if l, ok := obj.(*Layer); ok {
			l.Update(dt)
		}
	}
}
