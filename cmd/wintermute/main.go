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

// Command wintermute is the game runtime executable:
// `runtime <project-file> [--windowed] [--fullscreen] [--width N]
// [--height N] [--log LEVEL] [--save PATH]`, plus a `console` developer
// subcommand and `--cache-stats`/`--list` diagnostics on runtime.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/wintermute-engine/wme/engine"
	"github.com/wintermute-engine/wme/internal/engcfg"
	"github.com/wintermute-engine/wme/internal/wlog"
)

var (
	windowedFlag    = cli.BoolFlag{Name: "windowed", Usage: "run in a window rather than fullscreen"}
	fullscreenFlag  = cli.BoolFlag{Name: "fullscreen", Usage: "run fullscreen (default)"}
	widthFlag       = cli.IntFlag{Name: "width", Value: 1024, Usage: "display width in pixels"}
	heightFlag      = cli.IntFlag{Name: "height", Value: 768, Usage: "display height in pixels"}
	logFlag         = cli.StringFlag{Name: "log", Value: "info", Usage: "log level: trace/debug/info/warn/error/crit"}
	saveFlag        = cli.StringFlag{Name: "save", Usage: "save directory (overrides WME_SAVEDIR and the platform default)"}
	configFlag      = cli.StringFlag{Name: "config", Usage: "engine settings TOML file"}
	cacheStatsFlag  = cli.BoolFlag{Name: "cache-stats", Usage: "print resource cache occupancy and exit"}
	listFlag        = cli.BoolFlag{Name: "list", Usage: "print every path visible through the mounted VFS and exit"}
)

func main() {
	app := cli.NewApp()
	app.Name = "wintermute"
	app.Usage = "Wintermute adventure-game engine runtime"
	app.Commands = []cli.Command{
		runtimeCommand,
		consoleCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a startup/runtime failure to the CLI's exit code scheme:
// 0 is handled by app.Run returning nil and never reaching here, 1 is every
// ordinary startup error, 2 is any error wrapped as a fatalError (this CLI
// raises one when the project file fails to load; Tick's script errors are
// contained per-script by the scheduler and never escape as a process-level
// error).
func exitCodeFor(err error) int {
	if fe, ok := err.(fatalError); ok && fe.fatal {
		return 2
	}
	return 1
}

// fatalError marks an error as a fatal condition rather than an ordinary
// startup error, distinguishing the CLI's two exit codes.
type fatalError struct {
	err   error
	fatal bool
}

func (e fatalError) Error() string { return e.err.Error() }

var runtimeCommand = cli.Command{
	Name:      "runtime",
	Usage:     "run a game project",
	ArgsUsage: "<project-file>",
	Flags: []cli.Flag{
		windowedFlag, fullscreenFlag, widthFlag, heightFlag,
		logFlag, saveFlag, configFlag, cacheStatsFlag, listFlag,
	},
	Action: runRuntime,
}

func runRuntime(ctx *cli.Context) error {
	project := ctx.Args().First()
	if project == "" {
		return fmt.Errorf("runtime: missing <project-file> argument")
	}

	cfg := engcfg.Default
	if file := ctx.String("config"); file != "" {
		loaded, err := engcfg.Load(file)
		if err != nil {
			return fmt.Errorf("runtime: loading config %q: %w", file, err)
		}
		cfg = loaded
	}
	if ctx.IsSet("log") {
		cfg.LogLevel = ctx.String("log")
	}
	wlog.SetRootLevel(cfg.LogLevelOrDefault())

	saveDir := cfg.SaveDir
	if env := os.Getenv("WME_SAVEDIR"); env != "" {
		saveDir = env
	}
	if ctx.IsSet("save") {
		saveDir = ctx.String("save")
	}

	log := wlog.Root().With("component", "cli")
	log.Info("starting runtime", "project", project,
		"windowed", ctx.Bool("windowed"), "fullscreen", ctx.Bool("fullscreen"),
		"width", ctx.Int("width"), "height", ctx.Int("height"), "save_dir", saveDir)

	rt := engine.New(cfg)
	defer rt.Close()

	if err := rt.Load(engine.DefaultLoader{}, project); err != nil {
		// An invalid project file is a fatal condition, not an ordinary
		// startup error, and gets the dedicated exit code reserved for it.
		return fatalError{err: fmt.Errorf("runtime: %w", err), fatal: true}
	}

	if ctx.Bool("cache-stats") {
		printCacheStats(rt)
		return nil
	}
	if ctx.Bool("list") {
		return printVFSList(rt)
	}

	return runLoop(rt)
}

// runLoop ticks the engine at a fixed 60Hz cadence until interrupted. There
// is no renderer or audio mixer here; this loop drives the scheduler and
// game-object tick path the way a real frontend would drive it every frame.
func runLoop(rt *engine.Runtime) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	const frame = 16 * time.Millisecond
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			return nil
		case now := <-ticker.C:
			rt.Tick(now, frame)
		}
	}
}
