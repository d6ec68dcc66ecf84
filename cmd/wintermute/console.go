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
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/wintermute-engine/wme/engine"
	"github.com/wintermute-engine/wme/internal/engcfg"
	"github.com/wintermute-engine/wme/value"
)

var consoleCommand = cli.Command{
	Name:      "console",
	Usage:     "poke a loaded project's objects interactively",
	ArgsUsage: "<project-file>",
	Flags: []cli.Flag{
		configFlag,
	},
	Action: runConsole,
}

func runConsole(ctx *cli.Context) error {
	project := ctx.Args().First()
	if project == "" {
		return fmt.Errorf("console: missing <project-file> argument")
	}

	cfg := engcfg.Default
	if file := ctx.String("config"); file != "" {
		loaded, err := engcfg.Load(file)
		if err != nil {
			return fmt.Errorf("console: loading config %q: %w", file, err)
		}
		cfg = loaded
	}

	rt := engine.New(cfg)
	defer rt.Close()
	if err := rt.Load(engine.DefaultLoader{}, project); err != nil {
		return fatalError{err: fmt.Errorf("console: %w", err), fatal: true}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("wintermute console — get/set/call/emit/help/quit")
	for {
		input, err := line.Prompt("wme> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return fmt.Errorf("console: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := dispatchConsoleLine(rt, input); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

// dispatchConsoleLine parses one console command and runs it against rt.
// Grammar: "get <id> <prop>" | "set <id> <prop> <value>" |
// "call <id> <method> [args...]" | "emit <id> <event> [args...]" | "help" |
// "quit".
func dispatchConsoleLine(rt *engine.Runtime, input string) error {
	fields := strings.Fields(input)
	cmd := fields[0]

	switch cmd {
	case "help":
		fmt.Println("get <id> <prop>")
		fmt.Println("set <id> <prop> <value>")
		fmt.Println("call <id> <method> [args...]")
		fmt.Println("emit <id> <event> [args...]")
		fmt.Println("quit")
		return nil
	case "quit", "exit":
		os.Exit(0)
		return nil
	}

	if len(fields) < 3 {
		return fmt.Errorf("%s: too few arguments", cmd)
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad object id %q: %w", fields[1], err)
	}
	obj, live := rt.Objects.Resolve(id)
	if !live {
		return fmt.Errorf("object %d is not live", id)
	}

	switch cmd {
	case "get":
		v, ok := obj.GetProperty(fields[2])
		if !ok {
			return fmt.Errorf("no such property %q", fields[2])
		}
		fmt.Println(v.String())
		return nil

	case "set":
		if len(fields) < 4 {
			return fmt.Errorf("set: missing value")
		}
		if !obj.SetProperty(fields[2], parseConsoleValue(strings.Join(fields[3:], " "))) {
			return fmt.Errorf("property %q is read-only or unknown", fields[2])
		}
		return nil

	case "call":
		args := make([]value.Value, 0, len(fields)-3)
		for _, a := range fields[3:] {
			args = append(args, parseConsoleValue(a))
		}
		result, handled, _, err := obj.CallMethod(fields[2], args)
		if err != nil {
			return err
		}
		if !handled {
			fmt.Println("(unhandled)")
			return nil
		}
		fmt.Println(result.String())
		return nil

	case "emit":
		args := make([]value.Value, 0, len(fields)-3)
		for _, a := range fields[3:] {
			args = append(args, parseConsoleValue(a))
		}
		rt.Scheduler.EmitEvent(id, fields[2], args)
		return nil

	default:
		return fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
}

// parseConsoleValue converts one whitespace-delimited console token into a
// script Value: a quoted or bare string falls through to value.String,
// "true"/"false" to value.Bool, and anything parsing as a number to
// value.Int or value.Float.
func parseConsoleValue(tok string) value.Value {
	if tok == "true" {
		return value.Bool(true)
	}
	if tok == "false" {
		return value.Bool(false)
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return value.Int(i)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return value.Float(f)
	}
	return value.String(strings.Trim(tok, `"`))
}
