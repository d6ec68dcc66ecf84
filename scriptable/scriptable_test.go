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

package scriptable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/value"
)

// widget is a minimal concrete Scriptable used only to exercise Base.
type widget struct {
	Base
	name string
}

func newWidget(name string) *widget {
	w := &widget{name: name}
	d := NewDispatch()
	d.AddGetter("name", func() value.Value { return value.String(w.name) })
	d.AddSetter("name", func(v value.Value) bool { w.name = v.String(); return true })
	d.AddSetter("readonly", func(value.Value) bool { return false })
	d.AddMethod("greet", func(args []value.Value) (value.Value, vm.WaitCond, error) {
		return value.String("hello " + w.name), nil, nil
	})
	w.Init(d)
	return w
}

func TestBaseKnownPropertyDispatch(t *testing.T) {
	w := newWidget("door")
	v, ok := w.GetProperty("NAME") // case-insensitive
	require.True(t, ok)
	require.Equal(t, "door", v.AsString())

	require.True(t, w.SetProperty("Name", value.String("gate")))
	require.Equal(t, "gate", w.name)
}

func TestBaseReadOnlySetterRefuses(t *testing.T) {
	w := newWidget("door")
	require.False(t, w.SetProperty("readonly", value.Int(1)))
}

func TestBaseDynamicPropertyBag(t *testing.T) {
	w := newWidget("door")
	_, ok := w.GetProperty("custom_flag")
	require.False(t, ok)

	require.True(t, w.SetProperty("custom_flag", value.Bool(true)))
	v, ok := w.GetProperty("CUSTOM_FLAG")
	require.True(t, ok)
	require.True(t, v.AsBool())
}

func TestBaseCallMethodHandledAndUnhandled(t *testing.T) {
	w := newWidget("door")
	result, handled, wait, err := w.CallMethod("greet", nil)
	require.True(t, handled)
	require.Nil(t, wait)
	require.NoError(t, err)
	require.Equal(t, "hello door", result.AsString())

	_, handled, _, _ = w.CallMethod("nonexistent", nil)
	require.False(t, handled)
}

func TestBasePropertiesRoundTripForPersistence(t *testing.T) {
	w := newWidget("door")
	w.SetProperty("score", value.Int(42))
	bag := w.Properties()
	require.Equal(t, value.Int(42), bag["score"])

	w2 := newWidget("other")
	w2.SetBag(bag)
	v, ok := w2.GetProperty("score")
	require.True(t, ok)
	require.Equal(t, int64(42), v.AsInt())
}
