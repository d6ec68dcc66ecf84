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

// Layer is one paint-order band of a Scene (a SCENE's nested LAYER
// blocks): background art, a row of walkable actors, foreground
// decoration. Scale/ScaleHorizon (read by ScaleAt) implement the SCALE_LEVEL block's
// distance-based actor scaling: actors parented to this layer are drawn
// at a size interpolated between Scale and 1.0 as their Y position moves
// between 0 and ScaleHorizon, the classic adventure-game depth cue.
type Layer struct {
	Base

	registry    *Registry
	Scale       float64
	ScaleHorizon float64
	MainLayer   bool
}

// NewLayer constructs a Layer with no scaling (flat, like a UI layer).
func NewLayer(r *Registry) *Layer {
	l := &Layer{Base: NewBase("layer"), registry: r, Scale: 1, ScaleHorizon: 1}
	d := scriptable.NewDispatch()
	d.AddGetter("mainlayer", func() value.Value { return value.Bool(l.MainLayer) })
	d.AddSetter("mainlayer", func(v value.Value) bool { l.MainLayer = v.Truthy(); return true })
	l.InitCommon(d)
	return l
}

// ScaleAt returns the render scale factor for an object at scene-y y,
// per this layer's SCALE_LEVEL configuration.
func (l *Layer) ScaleAt(y float64) float64 {
	if l.ScaleHorizon <= 0 {
		return l.Scale
	}
	t := y / l.ScaleHorizon
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return l.Scale + (1-l.Scale)*t
}

// Update advances every Actor and Sprite parented directly to this layer.
func (l *Layer) Update(dt time.Duration) {
	for _, id := range l.Children() {
		obj, ok := l.registry.Get(id)
		if !ok {
			continue
		}
		switch o := obj.(type) {
		case *Actor:
			o.Update(dt)
		case *Sprite:
			o.Update(dt)
		}
	}
}
