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

package hostext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/gameobj"
	"github.com/wintermute-engine/wme/value"
)

func TestGojaProviderCallsTopLevelFunction(t *testing.T) {
	p, err := NewGojaProvider(`function add(a, b) { return a + b; }`)
	require.NoError(t, err)

	result, err := p.Call("add", []value.Value{value.Int(2), value.Int(3)})
	require.NoError(t, err)
	require.InDelta(t, 5.0, result.AsFloat(), 0.0001)
}

func TestGojaProviderUnknownFunction(t *testing.T) {
	p, err := NewGojaProvider(`function add(a, b) { return a + b; }`)
	require.NoError(t, err)

	_, err = p.Call("subtract", nil)
	require.Error(t, err)
}

func TestDuktapeProviderCallsGlobalFunction(t *testing.T) {
	p, err := NewDuktapeProvider(`function greet(name) { return "hi " + name; }`)
	require.NoError(t, err)

	result, err := p.Call("greet", []value.Value{value.String("wintermute")})
	require.NoError(t, err)
	require.Equal(t, "hi wintermute", result.AsString())
}

func TestRegistryReportsMissingLibAsError(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.CallExternal("nope", "fn", nil)
	require.Error(t, err)
}

func TestRegistryDispatchesToRegisteredProvider(t *testing.T) {
	gojaProv, err := NewGojaProvider(`function twice(x) { return x * 2; }`)
	require.NoError(t, err)

	reg := NewRegistry()
	reg.Register("js", gojaProv)

	result, err := reg.CallExternal("js", "twice", []value.Value{value.Int(21)})
	require.NoError(t, err)
	require.InDelta(t, 42.0, result.AsFloat(), 0.0001)
}

func TestHostCombinesObjectsAndExternals(t *testing.T) {
	reg := gameobj.NewRegistry()
	reg.RegisterClass("item", func(r *gameobj.Registry, args []value.Value) (gameobj.Object, error) {
		item := gameobj.NewItem()
		return item, nil
	})

	externals := NewRegistry()
	host := NewHost(reg, externals)

	handle, err := host.NewObject("item", nil)
	require.NoError(t, err)

	obj, live := host.Resolve(handle)
	require.True(t, live)
	require.NotNil(t, obj)

	_, err = host.CallExternal("missing", "fn", nil)
	require.Error(t, err)
}
