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

package engcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wintermute-engine/wme/internal/wlog"
)

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	body := `
LogLevel = "debug"
DiskRoot = "/games/wintermute-demo"

[[Mounts]]
Path = "base.wmp"
Priority = 100

[[Mounts]]
Path = "patch1.wmp"
Priority = 200
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "/games/wintermute-demo", cfg.DiskRoot)
	require.Equal(t, Default.CacheSoftCapBytes, cfg.CacheSoftCapBytes)
	require.Equal(t, Default.SaveDir, cfg.SaveDir)
	require.Len(t, cfg.Mounts, 2)
	require.Equal(t, "patch1.wmp", cfg.Mounts[1].Path)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("NotARealField = 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLogLevelOrDefaultFallsBackOnBadValue(t *testing.T) {
	cfg := Config{LogLevel: "not-a-level"}
	require.Equal(t, wlog.LevelInfo, cfg.LogLevelOrDefault())

	cfg2 := Config{LogLevel: "crit"}
	require.Equal(t, wlog.LevelCrit, cfg2.LogLevelOrDefault())
}
