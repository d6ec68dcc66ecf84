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
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/value"
)

// fakeActor is a minimal Persistable used to exercise the transfer
// protocol without depending on the gameobj package.
type fakeActor struct {
	id      uint64
	Name    string
	X, Y    float64
	Holding uint64 // object reference (an Item's id)
	Score   value.Value
}

func (a *fakeActor) ClassName() string { return "actor" }
func (a *fakeActor) ObjectID() uint64   { return a.id }

func (a *fakeActor) Persist(pm *Manager) error {
	pm.String("name", &a.Name)
	pm.Float64("x", &a.X)
	pm.Float64("y", &a.Y)
	pm.ObjectRef("holding", &a.Holding)
	pm.Value("score", &a.Score)
	return nil
}

func constructFake(className string, id uint64) (Persistable, error) {
	switch className {
	case "actor":
		return &fakeActor{id: id}, nil
	default:
		return nil, fmt.Errorf("unknown class %q", className)
	}
}

func TestFlatStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "save1.wms")

	hero := &fakeActor{id: 1, Name: "hero", X: 10, Y: 20, Holding: 2, Score: value.Int(42)}
	sidekick := &fakeActor{id: 2, Name: "sidekick", X: 1, Y: 2, Holding: 0, Score: value.String("loyal")}

	header := Header{GameVersion: 3, Name: "slot1", Description: "before the bridge", Timestamp: time.Unix(1000, 0)}
	require.NoError(t, FlatStore{}.Save(path, header, []Persistable{hero, sidekick}))

	loadedHeader, objects, result, err := FlatStore{}.Load(path, constructFake)
	require.NoError(t, err)
	require.Equal(t, ResultOK, result)
	require.Equal(t, "slot1", loadedHeader.Name)
	require.Equal(t, uint16(3), loadedHeader.GameVersion)
	require.Len(t, objects, 2)

	loadedHero := objects[0].(*fakeActor)
	require.Equal(t, uint64(1), loadedHero.ObjectID())
	require.Equal(t, "hero", loadedHero.Name)
	require.Equal(t, 10.0, loadedHero.X)
	require.Equal(t, uint64(2), loadedHero.Holding)
	require.Equal(t, value.Int(42), loadedHero.Score)

	loadedSidekick := objects[1].(*fakeActor)
	require.Equal(t, "loyal", loadedSidekick.Score.AsString())
}

func TestFlatStoreBacksUpPreviousSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "save1.wms")
	header := Header{Name: "slot1"}

	require.NoError(t, FlatStore{}.Save(path, header, nil))
	require.NoError(t, FlatStore{}.Save(path, header, nil))

	require.FileExists(t, path+".bak")
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.wms")
	require.NoError(t, writeBadMagicFile(path))

	_, _, result, err := FlatStore{}.Load(path, constructFake)
	require.Error(t, err)
	require.Equal(t, ResultCorrupt, result)
}

func writeBadMagicFile(path string) error {
	return os.WriteFile(path, []byte{0, 0, 0, 0, 0, 0, 0, 0}, 0o644)
}
