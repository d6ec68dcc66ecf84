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

package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/engine"
	"github.com/wintermute-engine/wme/internal/engcfg"
	"github.com/wintermute-engine/wme/value"
)

func TestParseConsoleValue(t *testing.T) {
	require.Equal(t, value.KindBool, parseConsoleValue("true").Kind())
	require.Equal(t, value.KindInt, parseConsoleValue("42").Kind())
	require.Equal(t, value.KindFloat, parseConsoleValue("1.5").Kind())
	require.Equal(t, value.KindString, parseConsoleValue("hello").Kind())
	require.Equal(t, "hello", parseConsoleValue(`"hello"`).AsString())
}

func TestDispatchConsoleLineGetSet(t *testing.T) {
	rt := engine.New(engcfg.Default)
	defer rt.Close()

	handle, err := rt.Objects.NewObject("item", nil)
	require.NoError(t, err)

	require.NoError(t, dispatchConsoleLine(rt, fmt.Sprintf("set %d icon torch.png", handle)))
	require.NoError(t, dispatchConsoleLine(rt, fmt.Sprintf("get %d icon", handle)))

	obj, live := rt.Objects.Resolve(handle)
	require.True(t, live)
	v, ok := obj.GetProperty("icon")
	require.True(t, ok)
	require.Equal(t, "torch.png", v.AsString())
}

func TestDispatchConsoleLineUnknownObject(t *testing.T) {
	rt := engine.New(engcfg.Default)
	defer rt.Close()

	err := dispatchConsoleLine(rt, "get 999999 icon")
	require.Error(t, err)
}

func TestDispatchConsoleLineEmit(t *testing.T) {
	rt := engine.New(engcfg.Default)
	defer rt.Close()

	handle, err := rt.Objects.NewObject("item", nil)
	require.NoError(t, err)

	require.NoError(t, dispatchConsoleLine(rt, fmt.Sprintf("emit %d Use", handle)))
}

func TestExitCodeForDistinguishesFatal(t *testing.T) {
	require.Equal(t, 1, exitCodeFor(fmt.Errorf("ordinary")))
	require.Equal(t, 2, exitCodeFor(fatalError{err: fmt.Errorf("boom"), fatal: true}))
}
