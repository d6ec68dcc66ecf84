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

// Package engcfg is the engine's own ambient runtime configuration — log
// level, resource cache soft cap, the package mount list, and console
// enablement — as distinct from a game project's own definition files,
// which stay a named external collaborator (ProjectLoader). Loaded with
// github.com/naoina/toml, using its NormFieldName/FieldToKey/MissingField
// hooks to make an unknown TOML key a hard startup error.
package engcfg

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"

	"github.com/wintermute-engine/wme/internal/wlog"
)

// tomlSettings uses a field-name-is-key-name convention so Config's Go
// field names are exactly the TOML keys, and an unknown key is a hard
// error rather than a silently ignored typo.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field %q is not defined in %s", field, rt.String())
	},
}

// Mount is one entry in the package mount list. Priority is passed to the
// VFS as given; a zero Priority is not derived from the entry's position
// in the list.
type Mount struct {
	Path     string
	Priority int
}

// Config is the engine's ambient settings, independent of any one game
// project.
type Config struct {
	LogLevel string // trace/debug/info/warn/error/crit, see wlog.ParseLevel

	CacheSoftCapBytes int64
	Mounts            []Mount
	DiskRoot          string // on-disk game directory, lowest VFS priority

	ConsoleEnabled bool
	SaveDir        string // overridden at runtime by the WME_SAVEDIR env var
}

// Default is the engine's built-in configuration, used when no TOML file
// is supplied: a package-level zero-file starting point that a config file
// only overrides.
var Default = Config{
	LogLevel:          "info",
	CacheSoftCapBytes: 256 * 1024 * 1024,
	ConsoleEnabled:    false,
	SaveDir:           "saves",
}

// Load reads file as TOML on top of Default, returning the merged Config.
// An unknown TOML key is an error (MissingField above); a field simply
// absent from the file keeps its Default value, since toml.Decode only
// writes the keys it finds.
func Load(file string) (Config, error) {
	cfg := Default
	f, err := os.Open(file)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return cfg, err
}

// LogLevelOrDefault resolves cfg's LogLevel string to a wlog.Level,
// falling back to LevelInfo (and logging why) on a malformed value rather
// than failing engine startup over a typo in a log level name.
func (cfg Config) LogLevelOrDefault() wlog.Level {
	lvl, err := wlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		wlog.Root().Warn("invalid log level in config, defaulting to info", "value", cfg.LogLevel, "err", err)
		return wlog.LevelInfo
	}
	return lvl
}
