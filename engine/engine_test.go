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

package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/internal/engcfg"
)

func TestNewAssemblesRegisteredClasses(t *testing.T) {
	rt := New(engcfg.Default)
	defer rt.Close()

	require.NotNil(t, rt.Game)
	handle, err := rt.Objects.NewObject("item", nil)
	require.NoError(t, err)
	require.NotZero(t, handle)

	_, live := rt.Objects.Resolve(rt.Game.ObjectID())
	require.True(t, live)
}

func TestDefaultLoaderMountsDiskRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.txt"), []byte("hi"), 0o644))

	rt := New(engcfg.Config{CacheSoftCapBytes: 1 << 20})
	defer rt.Close()

	require.NoError(t, rt.Load(DefaultLoader{}, dir))
	require.True(t, rt.FS.Exists("hero.txt"))
}

func TestLoadDefinitionFileConstructsSceneTree(t *testing.T) {
	dir := t.TempDir()
	src := `SCENE {
		NAME = "street"
		LAYER {
			MAINLAYER = TRUE
			ACTOR {
				NAME = "hero"
			}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "street.def"), []byte(src), 0o644))

	rt := New(engcfg.Config{CacheSoftCapBytes: 1 << 20})
	defer rt.Close()
	require.NoError(t, rt.Load(DefaultLoader{}, dir))

	handles, err := rt.LoadDefinitionFile("street.def")
	require.NoError(t, err)
	require.Len(t, handles, 1)

	scene, ok := rt.Objects.Resolve(handles[0])
	require.True(t, ok)
	name, _ := scene.GetProperty("name")
	require.Equal(t, "street", name.AsString())
}

func TestTickWithoutActiveSceneDoesNotPanic(t *testing.T) {
	rt := New(engcfg.Default)
	defer rt.Close()

	rt.Tick(time.Now(), 16*time.Millisecond) // no active scene set; must not panic
}
