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

// Frame is one image of a Sprite's animation, named per the FRAME/SUBFRAME
// definition-file blocks: an asset path (resolved through rescache on
// first draw) plus how long it holds before advancing.
type Frame struct {
	Filename string
	Hold     time.Duration
}

// Sprite is a named, looping sequence of Frames advanced by Update — the
// class behind both an Actor's per-direction/action animations and a
// scene's standalone decorative sprites.
type Sprite struct {
	Base

	Frames  []Frame
	Looping bool

	current  int
	held     time.Duration
	Finished bool
}

// NewSprite constructs an empty sprite; Frames is populated by the
// definition-file loader before the object is reachable from script.
func NewSprite() *Sprite {
	s := &Sprite{Base: NewBase("sprite"), Looping: true}
	d := scriptable.NewDispatch()
	d.AddGetter("numframes", func() value.Value { return value.Int(int64(len(s.Frames))) })
	d.AddGetter("currentframe", func() value.Value { return value.Int(int64(s.current)) })
	d.AddSetter("currentframe", func(v value.Value) bool {
		i := int(v.AsInt())
		if i < 0 || i >= len(s.Frames) {
			return false
		}
		s.current, s.held = i, 0
		return true
	})
	d.AddGetter("looping", func() value.Value { return value.Bool(s.Looping) })
	d.AddSetter("looping", func(v value.Value) bool { s.Looping = v.Truthy(); return true })
	d.AddGetter("finished", func() value.Value { return value.Bool(s.Finished) })
	s.InitCommon(d)
	return s
}

// Update advances the animation clock by dt, rolling over to the next
// frame whenever the current one's hold expires. A non-looping sprite
// parks on its last frame and sets Finished, the signal an Actor's
// action-complete checks and a standalone Sprite's "AnimationDone" event
// both key off of.
func (s *Sprite) Update(dt time.Duration) {
	if len(s.Frames) == 0 || s.Finished {
		return
	}
	s.held += dt
	for s.held >= s.Frames[s.current].Hold {
		s.held -= s.Frames[s.current].Hold
		s.current++
		if s.current >= len(s.Frames) {
			if s.Looping {
				s.current = 0
			} else {
				s.current = len(s.Frames) - 1
				s.Finished = true
				return
			}
		}
	}
}

// CurrentFrame returns the Frame due for display right now.
func (s *Sprite) CurrentFrame() Frame { return s.Frames[s.current] }

// AddFrame appends f to this sprite's animation, in the order its
// definition-file FRAME/SUBFRAME blocks were declared.
func (s *Sprite) AddFrame(f Frame) { s.Frames = append(s.Frames, f) }
