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

package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	require.False(t, Null().Truthy())
	require.False(t, Int(0).Truthy())
	require.False(t, String("").Truthy())
	require.True(t, Int(1).Truthy())
	require.True(t, String("x").Truthy())
	require.True(t, Bool(true).Truthy())
	require.False(t, Bool(false).Truthy())
}

func TestAddPromotesToString(t *testing.T) {
	require.Equal(t, "x5", Add(String("x"), Int(5)).String())
	require.Equal(t, Int(7), Add(Int(3), Int(4)))
	require.Equal(t, Float(3.5), Add(Float(1.5), Int(2)))
}

func TestDivByZeroYieldsZeroWithWarning(t *testing.T) {
	var warned string
	got := Div(Int(10), Int(0), func(msg string) { warned = msg })
	require.Equal(t, Int(0), got)
	require.NotEmpty(t, warned)
}

func TestModIsInteger(t *testing.T) {
	require.Equal(t, Int(1), Mod(Float(7.9), Int(3), nil))
}

func TestNullOrdering(t *testing.T) {
	require.True(t, Less(Null(), Int(-100)))
	require.False(t, Less(Null(), Null()))
	require.True(t, Equal(Null(), Null()))
}

func TestStrictEqualityIsObjectOnly(t *testing.T) {
	require.True(t, StrictEqual(Object(1), Object(1)))
	require.False(t, StrictEqual(Object(1), Object(2)))
	require.False(t, StrictEqual(Int(1), Int(1)), "strict equality is reserved for object references")
	require.True(t, Equal(Int(1), Int(1)), "coercive equality still holds for non-object values")
}

func TestArrayDynamicGrowth(t *testing.T) {
	var a Value
	a.GrowSet(3, Int(9))
	require.Equal(t, 4, a.Len())
	require.Equal(t, Int(9), a.ElemAt(3))
	require.Equal(t, Null(), a.ElemAt(0))
}

func TestArrayCopyOnAssign(t *testing.T) {
	src := []Value{Int(1), Int(2)}
	v := Array(src)
	src[0] = Int(99)
	require.Equal(t, Int(1), v.ElemAt(0), "Array must copy, not alias, its backing slice")
}

func TestComparisonCoercion(t *testing.T) {
	require.True(t, Less(Bool(false), Bool(true)))
	require.True(t, Less(Int(1), String("2")))
	require.Equal(t, 0, func() int {
		if Equal(String("3"), Int(3)) {
			return 0
		}
		return 1
	}())
}
