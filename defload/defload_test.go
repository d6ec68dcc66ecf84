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

package defload

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/gameobj"
)

func TestLoadStringBuildsSceneLayerActorTree(t *testing.T) {
	reg := gameobj.NewRegistry()
	gameobj.NewGame(reg)
	l := New(reg)

	src := `
SCENE {
	NAME = "street"
	LAYER {
		MAINLAYER = TRUE
		SCALE_LEVEL {
			SCALE = 0.5
			HORIZON = 200
		}
		ACTOR {
			NAME = "hero"
			SPEED = 120
		}
	}
	REGION {
		NAME = "door"
	}
}
`
	handles, err := l.LoadString("test.def", src)
	require.NoError(t, err)
	require.Len(t, handles, 1)

	sceneObj, ok := reg.Get(handles[0])
	require.True(t, ok)
	scene, ok := sceneObj.(*gameobj.Scene)
	require.True(t, ok)
	require.Len(t, scene.Regions, 1)
	require.Equal(t, "door", scene.Regions[0].Name)
	require.Len(t, scene.Children(), 1)

	layerObj, ok := reg.Get(scene.Children()[0])
	require.True(t, ok)
	layer, ok := layerObj.(*gameobj.Layer)
	require.True(t, ok)
	require.True(t, layer.MainLayer)
	require.InDelta(t, 0.5, layer.Scale, 1e-9)
	require.InDelta(t, 200, layer.ScaleHorizon, 1e-9)
	require.Len(t, layer.Children(), 1)

	actorObj, ok := reg.Get(layer.Children()[0])
	require.True(t, ok)
	require.Equal(t, "actor", actorObj.ClassName())
	name, _ := actorObj.GetProperty("name")
	require.Equal(t, "hero", name.AsString())
	speed, _ := actorObj.GetProperty("speed")
	require.Equal(t, 120.0, speed.AsFloat())
}

func TestLoadStringLinksActorSpritesByKey(t *testing.T) {
	reg := gameobj.NewRegistry()
	gameobj.NewGame(reg)
	l := New(reg)

	src := `
ACTOR {
	NAME = "hero"
	SPRITE("walk/s") {
		FRAME { FILENAME = "walk1.png" HOLD = 100 }
		FRAME { FILENAME = "walk2.png" HOLD = 100 }
	}
}
`
	handles, err := l.LoadString("test.def", src)
	require.NoError(t, err)
	require.Len(t, handles, 1)

	actorObj, ok := reg.Get(handles[0])
	require.True(t, ok)
	actor, ok := actorObj.(*gameobj.Actor)
	require.True(t, ok)
	require.Contains(t, actor.Sprites, "walk/s")
	require.Len(t, actor.Sprites["walk/s"].Frames, 2)
}

func TestLoadStringAppliesGameBlockToSingletonGame(t *testing.T) {
	reg := gameobj.NewRegistry()
	game := gameobj.NewGame(reg)
	l := New(reg)

	src := `
GAME {
	NAME = "Demo Adventure"
	SCENE {
		NAME = "intro"
	}
}
`
	handles, err := l.LoadString("test.def", src)
	require.NoError(t, err)
	require.Empty(t, handles) // GAME itself never appears in the top-level handle list

	name, _ := game.GetProperty("name")
	require.Equal(t, "Demo Adventure", name.AsString())

	active, _ := game.GetProperty("activescene")
	require.NotZero(t, active.AsHandle())

	scenes := reg.All("scene")
	require.Len(t, scenes, 1)
	require.Equal(t, scenes[0].ObjectID(), active.AsHandle())
}

func TestLoadStringSkipsUnrecognizedBlock(t *testing.T) {
	reg := gameobj.NewRegistry()
	gameobj.NewGame(reg)
	l := New(reg)

	handles, err := l.LoadString("test.def", `ENTITY { NAME = "mystery" }`)
	require.NoError(t, err)
	require.Empty(t, handles)
}
