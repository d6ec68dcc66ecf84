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
	"fmt"
	"math"
	"time"

	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/scriptable"
	"github.com/wintermute-engine/wme/value"
)

// Actor is a walking, talking game entity: it owns sprite sets keyed by
// direction and action, follows paths produced by a pathfinder, and
// speaks. Sprite sets are addressed "action/direction", e.g. "walk/n",
// "idle/s", matching the ACTOR definition block's nested SPRITE entries.
type Actor struct {
	Base

	Sprites map[string]*Sprite
	Action  string
	Dir     string
	Speed   float64 // scene units per second

	waypoints *Waypoints
	path      []Point
	speaking  bool
	speechEnd time.Time
}

// NewActor constructs an Actor with an empty sprite set; the definition-
// file loader populates Sprites and Speed after the registry has
// constructed and registered the object.
func NewActor() *Actor {
	a := &Actor{Base: NewBase("actor"), Dir: "s", Speed: 100}
	d := scriptable.NewDispatch()
	d.AddGetter("direction", func() value.Value { return value.String(a.Dir) })
	d.AddSetter("direction", func(v value.Value) bool { a.Dir = v.String(); return true })
	d.AddGetter("action", func() value.Value { return value.String(a.Action) })
	d.AddGetter("speed", func() value.Value { return value.Float(a.Speed) })
	d.AddSetter("speed", func(v value.Value) bool { a.Speed = asFloat(v); return true })
	d.AddGetter("ismoving", func() value.Value { return value.Bool(len(a.path) > 0) })
	d.AddGetter("isspeaking", func() value.Value { return value.Bool(a.speaking) })

	d.AddMethod("walkto", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		if len(args) < 2 {
			return value.Null(), nil, fmt.Errorf("gameobj: Actor.WalkTo wants (x, y)")
		}
		a.startWalk(Point{X: asFloat(args[0]), Y: asFloat(args[1])})
		wait := func() (bool, value.Value, error) { return len(a.path) == 0, value.Bool(true), nil }
		return value.Null(), wait, nil
	})
	d.AddMethod("speak", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		text := ""
		if len(args) > 0 {
			text = args[0].String()
		}
		durMS := int64(len(text)) * 60
		if durMS < 800 {
			durMS = 800
		}
		a.speaking = true
		a.speechEnd = time.Now().Add(time.Duration(durMS) * time.Millisecond)
		wait := func() (bool, value.Value, error) {
			if time.Now().Before(a.speechEnd) {
				return false, value.Value{}, nil
			}
			a.speaking = false
			return true, value.Bool(true), nil
		}
		return value.Null(), wait, nil
	})
	a.InitCommon(d)
	return a
}

// SetWaypoints binds the Scene-provided walkable graph this actor paths
// through; called by Scene when the actor is added to it.
func (a *Actor) SetWaypoints(w *Waypoints) { a.waypoints = w }

// SetSprite binds key (an "action/direction" pair, e.g. "walk/n") to s,
// populated by the definition-file loader from the ACTOR block's nested
// SPRITE entries.
func (a *Actor) SetSprite(key string, s *Sprite) {
	if a.Sprites == nil {
		a.Sprites = map[string]*Sprite{}
	}
	a.Sprites[key] = s
}

func (a *Actor) startWalk(to Point) {
	from := Point{X: a.X, Y: a.Y}
	if a.waypoints == nil {
		a.path = []Point{to}
		return
	}
	mid := a.waypoints.FindPath(from, to)
	a.path = append(append([]Point{}, mid...), to)
}

// Update moves the actor dt along its current path at Speed units/second
// and advances its active Sprite's animation.
func (a *Actor) Update(dt time.Duration) {
	a.advancePath(dt)
	if spr := a.currentSprite(); spr != nil {
		spr.Update(dt)
	}
}

func (a *Actor) advancePath(dt time.Duration) {
	if len(a.path) == 0 {
		return
	}
	remaining := a.Speed * dt.Seconds()
	for remaining > 0 && len(a.path) > 0 {
		target := a.path[0]
		dx, dy := target.X-a.X, target.Y-a.Y
		dist := distSq(Point{a.X, a.Y}, target)
		if dist == 0 {
			a.path = a.path[1:]
			continue
		}
		step := remaining
		full := math.Sqrt(dist)
		if step >= full {
			a.X, a.Y = target.X, target.Y
			a.path = a.path[1:]
			remaining -= full
			continue
		}
		a.X += dx / full * step
		a.Y += dy / full * step
		remaining = 0
	}
}

func (a *Actor) currentSprite() *Sprite {
	return a.Sprites[a.Action+"/"+a.Dir]
}
