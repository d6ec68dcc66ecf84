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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/value"
)

func TestRegistryNewObjectUsesFactory(t *testing.T) {
	r := NewRegistry()
	NewGame(r)

	id, err := r.NewObject("actor", nil)
	require.NoError(t, err)
	require.NotZero(t, id)

	obj, ok := r.Resolve(id)
	require.True(t, ok)
	v, ok := obj.GetProperty("direction")
	require.True(t, ok)
	require.Equal(t, "s", v.AsString())
}

func TestRegistryNewObjectUnknownClass(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewObject("spaceship", nil)
	require.Error(t, err)
}

func TestRegistryRemoveMakesHandleUnresolvable(t *testing.T) {
	r := NewRegistry()
	NewGame(r)
	id, err := r.NewObject("item", nil)
	require.NoError(t, err)

	r.Remove(id)
	_, ok := r.Resolve(id)
	require.False(t, ok)
}

func TestSpriteAnimationAdvancesAndLoops(t *testing.T) {
	s := NewSprite()
	s.Frames = []Frame{
		{Filename: "a.png", Hold: 100 * time.Millisecond},
		{Filename: "b.png", Hold: 100 * time.Millisecond},
	}
	require.Equal(t, "a.png", s.CurrentFrame().Filename)
	s.Update(150 * time.Millisecond)
	require.Equal(t, "b.png", s.CurrentFrame().Filename)
	s.Update(100 * time.Millisecond)
	require.Equal(t, "a.png", s.CurrentFrame().Filename)
}

func TestSpriteNonLoopingFinishes(t *testing.T) {
	s := NewSprite()
	s.Looping = false
	s.Frames = []Frame{{Filename: "a.png", Hold: 10 * time.Millisecond}}
	s.Update(50 * time.Millisecond)
	require.True(t, s.Finished)
}

func TestWaypointsFindPathRoutesThroughGraph(t *testing.T) {
	w := &Waypoints{
		Nodes: []Point{{0, 0}, {10, 0}, {20, 0}},
		Edges: map[int][]int{0: {1}, 1: {0, 2}, 2: {1}},
	}
	path := w.FindPath(Point{0, 0}, Point{20, 0})
	require.Equal(t, []Point{{10, 0}}, path)
}

func TestActorWalkToReachesDestination(t *testing.T) {
	a := NewActor()
	a.Speed = 100
	_, handled, wait, err := a.CallMethod("walkto", []value.Value{value.Float(100), value.Float(0)})
	require.NoError(t, err)
	require.True(t, handled)
	require.NotNil(t, wait)

	done, _, err := wait()
	require.NoError(t, err)
	require.False(t, done)

	a.Update(2 * time.Second)
	done, _, err = wait()
	require.NoError(t, err)
	require.True(t, done)
	require.InDelta(t, 100, a.X, 0.001)
}

func TestRegionContainsPoint(t *testing.T) {
	r := Region{Polygon: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}
	require.True(t, r.Contains(Point{5, 5}))
	require.False(t, r.Contains(Point{15, 5}))
}

func TestInventoryAddHasRemoveItem(t *testing.T) {
	r := NewRegistry()
	NewGame(r)
	inv := NewInventory(r)
	itemID, err := r.NewObject("item", nil)
	require.NoError(t, err)

	_, handled, _, err := inv.CallMethod("additem", []value.Value{value.Object(itemID)})
	require.NoError(t, err)
	require.True(t, handled)

	v, _, _, err := inv.CallMethod("hasitem", []value.Value{value.Object(itemID)})
	require.NoError(t, err)
	require.True(t, v.AsBool())

	inv.CallMethod("removeitem", []value.Value{value.Object(itemID)})
	v, _, _, err = inv.CallMethod("hasitem", []value.Value{value.Object(itemID)})
	require.NoError(t, err)
	require.False(t, v.AsBool())
}
