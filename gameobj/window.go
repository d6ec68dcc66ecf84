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
	"github.com/wintermute-engine/wme/scriptable"
	"github.com/wintermute-engine/wme/value"
)

// Window is a UI surface owning Button (and other control) children with
// their own event handlers. Its own Children, inherited from Base, hold
// the control handles in tab order.
type Window struct {
	Base

	Modal bool
}

// NewWindow constructs an empty Window.
func NewWindow() *Window {
	w := &Window{Base: NewBase("window")}
	d := scriptable.NewDispatch()
	d.AddGetter("modal", func() value.Value { return value.Bool(w.Modal) })
	d.AddSetter("modal", func(v value.Value) bool { w.Modal = v.Truthy(); return true })
	w.InitCommon(d)
	return w
}

// Button is a clickable Window control. Click is called by the input
// layer on a mouse-up inside its BBox; it emits no event itself, since
// the scheduler's event dispatch is responsible for routing
// "Click"/"Press"/"Release" to whichever script subscribed.
type Button struct {
	Base

	Pressed bool
	OnClick func(btn *Button)
}

// NewButton constructs an unpressed Button.
func NewButton() *Button {
	b := &Button{Base: NewBase("button")}
	d := scriptable.NewDispatch()
	d.AddGetter("pressed", func() value.Value { return value.Bool(b.Pressed) })
	b.InitCommon(d)
	return b
}

// Click marks the button pressed-then-released and invokes OnClick, if
// the engine wired one (typically a closure that emits a scheduler
// event named after the button).
func (b *Button) Click() {
	b.Pressed = true
	if b.OnClick != nil {
		b.OnClick(b)
	}
	b.Pressed = false
}
