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

package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/wintermute-engine/wme/value"
)

// Mode selects which direction a Manager's transfer methods run.
type Mode int

const (
	ModeSave Mode = iota
	ModeLoad
)

// Persistable is implemented by every object the save system walks: each
// persistable object implements Persist(pm), which calls transfer on
// each field. ClassName/ObjectID let the Manager tag each
// object's payload so the load path can reconstruct the right concrete
// type before filling it in.
type Persistable interface {
	ClassName() string
	ObjectID() uint64
	Persist(pm *Manager) error
}

// Manager is the bidirectional transfer cursor passed to Persist. In
// ModeSave, Int64/Float64/String/Bool/Value/ObjectRef write *ref into the
// stream; in ModeLoad, they read the stream into *ref. A single object's
// Persist method runs unmodified in either direction: in save mode,
// transfer writes; in load mode, it reads.
type Manager struct {
	Mode Mode

	w *bytes.Buffer // ModeSave
	r *bytes.Reader // ModeLoad

	err error
}

func newSaveManager() *Manager { return &Manager{Mode: ModeSave, w: &bytes.Buffer{}} }
func newLoadManager(payload []byte) *Manager {
	return &Manager{Mode: ModeLoad, r: bytes.NewReader(payload)}
}

// Err returns the first error any transfer call on this Manager hit; a
// Persist method may ignore it and keep calling transfers (each becomes a
// harmless no-op once err is set) and check it once at the end.
func (m *Manager) Err() error { return m.err }

func (m *Manager) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

// Int64 transfers a signed 64-bit field. key is carried for diagnostics
// and future keyed-format evolution; the wire format itself is
// positional, so a Persist method must call its transfers in the same
// order on both save and load (normal for a method with a fixed field
// list).
func (m *Manager) Int64(key string, v *int64) {
	if m.err != nil {
		return
	}
	if m.Mode == ModeSave {
		binary.Write(m.w, binary.LittleEndian, *v)
		return
	}
	m.fail(binary.Read(m.r, binary.LittleEndian, v))
}

// Float64 transfers a float64 field.
func (m *Manager) Float64(key string, v *float64) {
	if m.err != nil {
		return
	}
	if m.Mode == ModeSave {
		binary.Write(m.w, binary.LittleEndian, *v)
		return
	}
	m.fail(binary.Read(m.r, binary.LittleEndian, v))
}

// Bool transfers a bool field.
func (m *Manager) Bool(key string, v *bool) {
	if m.err != nil {
		return
	}
	if m.Mode == ModeSave {
		b := byte(0)
		if *v {
			b = 1
		}
		m.w.WriteByte(b)
		return
	}
	b, err := m.r.ReadByte()
	if err != nil {
		m.fail(err)
		return
	}
	*v = b != 0
}

// String transfers a length-prefixed string field.
func (m *Manager) String(key string, v *string) {
	if m.err != nil {
		return
	}
	if m.Mode == ModeSave {
		writeLPString(m.w, *v)
		return
	}
	s, err := readLPString(m.r)
	if err != nil {
		m.fail(err)
		return
	}
	*v = s
}

// Value transfers a script Value field, tagged with its Kind so Load
// reconstructs the exact same dynamic type: loading f produces a state S'
// such that persist(S') == persist(S) byte-for-byte.
func (m *Manager) Value(key string, v *value.Value) {
	if m.err != nil {
		return
	}
	if m.Mode == ModeSave {
		kind := byte(v.Kind())
		m.w.WriteByte(kind)
		switch v.Kind() {
		case value.KindBool:
			b := v.AsBool()
			m.Bool(key, &b)
		case value.KindInt:
			i := v.AsInt()
			m.Int64(key, &i)
		case value.KindFloat:
			f := v.AsFloat()
			m.Float64(key, &f)
		case value.KindString:
			s := v.AsString()
			m.String(key, &s)
		case value.KindObject:
			h := v.AsHandle()
			m.ObjectRef(key, &h)
		case value.KindArray:
			elems := v.AsArray()
			n := int64(len(elems))
			m.Int64(key, &n)
			for i := range elems {
				m.Value(key, &elems[i])
			}
		}
		return
	}
	kindByte, err := m.r.ReadByte()
	if err != nil {
		m.fail(err)
		return
	}
	switch value.Kind(kindByte) {
	case value.KindNull:
		*v = value.Null()
	case value.KindBool:
		var b bool
		m.Bool(key, &b)
		*v = value.Bool(b)
	case value.KindInt:
		var i int64
		m.Int64(key, &i)
		*v = value.Int(i)
	case value.KindFloat:
		var f float64
		m.Float64(key, &f)
		*v = value.Float(f)
	case value.KindString:
		var s string
		m.String(key, &s)
		*v = value.String(s)
	case value.KindObject:
		var h uint64
		m.ObjectRef(key, &h)
		*v = value.Object(h)
	case value.KindArray:
		var n int64
		m.Int64(key, &n)
		var elems []value.Value
		for i := int64(0); i < n && m.err == nil; i++ {
			var e value.Value
			m.Value(key, &e)
			elems = append(elems, e)
		}
		*v = value.Array(elems)
	default:
		m.fail(fmt.Errorf("persist: unsupported value kind %d in save data", kindByte))
	}
}

// ObjectRef transfers a cross-object reference as a stable id: object
// references serialise as stable ids, and the loader resolves them in a
// second pass after all objects have been instantiated. Because
// decodeObjects (see store.go) constructs every object before calling
// any Persist, the id read here is already resolvable against the
// registry by the time the caller's code next touches it — no separate
// resolution pass is needed on this side of the boundary.
func (m *Manager) ObjectRef(key string, handle *uint64) {
	if m.err != nil {
		return
	}
	if m.Mode == ModeSave {
		binary.Write(m.w, binary.LittleEndian, *handle)
		return
	}
	m.fail(binary.Read(m.r, binary.LittleEndian, handle))
}

// Nested transfers an embedded Persistable inline in the same byte
// stream, for value-type sub-objects (a Scene's Waypoints, a Region's
// polygon) that are not separately registered objects and so need no id —
// the "object" here is a part of the parent rather than a reference to a
// sibling.
func (m *Manager) Nested(key string, p Persistable) {
	if m.err != nil {
		return
	}
	if err := p.Persist(m); err != nil {
		m.fail(err)
	}
}

// writeTo flushes a save-mode Manager's buffered payload to w.
func (m *Manager) writeTo(w io.Writer) error {
	_, err := w.Write(m.w.Bytes())
	return err
}
