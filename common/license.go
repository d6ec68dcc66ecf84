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

// Package common holds small types and error kinds shared across every
// engine subsystem: save-load result codes, error classification, and the
// monotonic game-object id allocator.
package common

import "sync/atomic"

// ErrorKind classifies an engine error per the error handling design: each
// kind has a distinct propagation contract (recoverable, fails one mount/load,
// or is fatal at startup).
type ErrorKind uint8

const (
	// KindNotFound covers a missing asset or host function: recoverable,
	// surfaced to the caller as an absent value rather than an error.
	KindNotFound ErrorKind = iota
	// KindFormat covers a malformed archive, bytecode image, or save file:
	// the one mount/load fails, the rest of the engine continues.
	KindFormat
	// KindCompile covers a script source that failed to compile.
	KindCompile
	// KindRuntime covers a VM fault (bad coercion, unknown method, stack
	// overflow, external miss): the offending script transitions to error.
	KindRuntime
	// KindFatal covers a startup failure (renderer/audio init, invalid
	// project file): the process exits non-zero.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindFormat:
		return "format-error"
	case KindCompile:
		return "compile-error"
	case KindRuntime:
		return "runtime-error"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// SaveLoadResult is the standard enum surfaced to the UI for save/load
// outcomes.
type SaveLoadResult uint8

const (
	SaveLoadOK SaveLoadResult = iota
	SaveLoadVersionTooOld
	SaveLoadVersionTooNew
	SaveLoadCorrupt
	SaveLoadIOError
)

func (r SaveLoadResult) String() string {
	switch r {
	case SaveLoadOK:
		return "ok"
	case SaveLoadVersionTooOld:
		return "version-too-old"
	case SaveLoadVersionTooNew:
		return "version-too-new"
	case SaveLoadCorrupt:
		return "corrupt"
	case SaveLoadIOError:
		return "io-error"
	default:
		return "unknown"
	}
}

// idCounter is the process-wide monotonic source for game-object ids. Ids
// are unique within a process lifetime and never reused.
var idCounter uint64

// NextObjectID returns the next stable 64-bit game-object id. Ids start at 1
// so that 0 can be used as a sentinel for "no object" in native-object-reference
// handles.
func NextObjectID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
