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

// Package wlog is the engine's structured logger, using a
// log.Info("msg", "k1", v1, "k2", v2) call shape. Records are leveled,
// key/value, and colorized when the destination is a terminal.
package wlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/google/uuid"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a log severity, ordered least to most severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRCE"
	case LevelDebug:
		return "DBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "EROR"
	case LevelCrit:
		return "CRIT"
	default:
		return "????"
	}
}

var levelColor = map[Level]*color.Color{
	LevelTrace: color.New(color.FgHiBlack),
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
	LevelCrit:  color.New(color.FgHiRed, color.Bold),
}

// Logger writes leveled, key-valued records to one destination.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	minLevel Level
	sessID   string
	ctx      []interface{} // key/value pairs bound to every record from this logger
}

// sessionID is a per-process correlation id stamped into every record and
// into save-file metadata (see persist package).
var sessionID = uuid.New().String()

// New creates a Logger writing to w (os.Stdout if nil). Color is auto-detected
// via mattn/go-isatty on the underlying file descriptor, wrapped through
// mattn/go-colorable so ANSI codes render correctly on Windows consoles too.
func New(w io.Writer, min Level) *Logger {
	if w == nil {
		w = os.Stdout
	}
	colorize := false
	if f, ok := w.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			w = colorable.NewColorable(f)
			colorize = true
		}
	}
	return &Logger{out: w, colorize: colorize, minLevel: min, sessID: sessionID}
}

// With returns a derived Logger that prepends the given key/value pairs to
// every record it emits, without mutating the receiver.
func (l *Logger) With(kv ...interface{}) *Logger {
	n := &Logger{out: l.out, colorize: l.colorize, minLevel: l.minLevel, sessID: l.sessID}
	n.ctx = append(append([]interface{}{}, l.ctx...), kv...)
	return n
}

func (l *Logger) log(lvl Level, msg string, kv []interface{}) {
	if lvl < l.minLevel {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("15:04:05.000")
	var line string
	if l.colorize {
		c := levelColor[lvl]
		line = fmt.Sprintf("%s[%s] %s", c.Sprint(lvl.String()), ts, msg)
	} else {
		line = fmt.Sprintf("%s[%s] %s", lvl.String(), ts, msg)
	}

	all := append(append([]interface{}{}, l.ctx...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		line += fmt.Sprintf(" %v=%v", all[i], all[i+1])
	}
	if lvl >= LevelError {
		// Call-site capture for error/crit records, matching the geth-derived
		// logger convention of attaching a stack trace to serious records.
		call := stack.Caller(2)
		line += fmt.Sprintf(" at=%+v", call)
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Trace(msg string, kv ...interface{}) { l.log(LevelTrace, msg, kv) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LevelError, msg, kv) }
func (l *Logger) Crit(msg string, kv ...interface{})  { l.log(LevelCrit, msg, kv) }

// root is the package-level default logger, used by subsystems that don't
// carry an explicit Logger reference.
var root = New(os.Stdout, LevelInfo)

// Root returns the process-wide default Logger.
func Root() *Logger { return root }

// SetRootLevel adjusts the default logger's minimum level, used by the CLI's
// --log flag.
func SetRootLevel(l Level) { root.minLevel = l }

// ParseLevel maps a CLI --log argument to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "crit", "critical":
		return LevelCrit, nil
	default:
		return LevelInfo, fmt.Errorf("wlog: unknown level %q", s)
	}
}
