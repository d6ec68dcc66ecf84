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

package defparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleScene = `
SCENE {
	NAME = "castle-courtyard"
	WIDTH = 1024
	HEIGHT = 768

	LAYER {
		NAME = "background"
		MAIN = TRUE

		SPRITE {
			FILENAME = "backgrounds\courtyard.png"
			X = 0
			Y = 0
		}
	}

	WAYPOINT {
		X = 100
		Y = 200
	}
	WAYPOINT {
		X = 150
		Y = 240
	}
}
`

func TestParseSceneTree(t *testing.T) {
	root, warnings, err := Parse("castle.scene", sampleScene)
	require.NoError(t, err)
	require.Empty(t, warnings)

	scene := root.Child("SCENE")
	require.NotNil(t, scene)

	name, ok := scene.Get("name") // case-insensitive lookup
	require.True(t, ok)
	require.Equal(t, "castle-courtyard", name)

	width, ok := scene.Get("WIDTH")
	require.True(t, ok)
	require.Equal(t, "1024", width)

	layer := scene.Child("LAYER")
	require.NotNil(t, layer)
	sprite := layer.Child("SPRITE")
	require.NotNil(t, sprite)
	filename, ok := sprite.Get("FILENAME")
	require.True(t, ok)
	require.Equal(t, `backgrounds\courtyard.png`, filename)

	waypoints := scene.ChildrenNamed("WAYPOINT")
	require.Len(t, waypoints, 2)
	x0, _ := waypoints[0].Get("X")
	require.Equal(t, "100", x0)
	x1, _ := waypoints[1].Get("X")
	require.Equal(t, "150", x1)
}

func TestParseBlockWithArgs(t *testing.T) {
	root, _, err := Parse("button.window", `
WINDOW {
	BUTTON("ok") {
		CAPTION = "OK"
	}
}
`)
	require.NoError(t, err)
	window := root.Child("WINDOW")
	require.NotNil(t, window)
	button := window.Child("BUTTON")
	require.NotNil(t, button)
	require.Equal(t, []string{"ok"}, button.Args)
}

func TestParseUnterminatedBlockIsSyntaxError(t *testing.T) {
	_, _, err := Parse("broken.scene", `SCENE { NAME = "x"`)
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParseToleratesUnknownKeysWithoutWarningAtParseTime(t *testing.T) {
	// Unknown keys are a consumer-level concern (the scene/sprite/
	// window loader knows which keys it expects); the parser itself has no
	// schema and accepts any KEY = VALUE pair structurally. Forward-
	// compatibility warnings are emitted by the consumer walking the tree,
	// not by Parse.
	root, _, err := Parse("future.scene", `SCENE { TOTALLY_NEW_FIELD = "ok" }`)
	require.NoError(t, err)
	v, ok := root.Child("SCENE").Get("TOTALLY_NEW_FIELD")
	require.True(t, ok)
	require.Equal(t, "ok", v)
}

func TestDecodeLegacyWindows1252(t *testing.T) {
	// 0xE9 is Windows-1252 for 'é'; a UTF-8-native lexer would mis-tokenize
	// a string containing this byte sequence run through unchanged.
	raw := []byte{'"', 'c', 0xE9, '"'}
	src, err := DecodeLegacy(raw)
	require.NoError(t, err)
	require.Contains(t, src, "é")
}
