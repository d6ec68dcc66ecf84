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

// Package bytecode defines the in-memory compiled-script Image and the
// binary encoder/decoder for its on-disk format: a magic-tagged header
// followed by offset tables to code, functions, symbols, events,
// externals, and methods. The generate-then-patch compilation flow
// produces a symbol-table-only layout: numeric literals are inline
// immediates, and names and string literals are interned.
package bytecode

// FuncEntry describes one callable compiled unit: a script-level function,
// an object method, or an event handler. Offset is the byte offset of its
// first instruction within Code.
type FuncEntry struct {
	Name     string
	Offset   uint32
	NumArgs  int
	NumLocal int
}

// ExternEntry describes one external-library call site declared (but not
// resolved) at compile time; resolution against the host registry happens
// at call time in the VM.
type ExternEntry struct {
	Lib       string
	Name      string
	Signature string
}

// Image is a fully compiled script unit, produced by script/compiler and
// consumed by script/vm. It is the in-memory counterpart of the on-disk
// format Encode/Decode translate to and from.
type Image struct {
	FormatVersion uint16
	SourceName    string // origin file name, for diagnostics only

	Code    []byte
	Symbols []string // interned identifier/property/literal-string pool

	// GlobalCount is the number of `global`/file-scope `const` slots shared
	// across every call a VM instance makes against this image; InitOffset
	// is the byte offset of the synthetic initializer that assigns their
	// starting values, run once when a script instance is first started.
	GlobalCount int
	InitOffset  uint32
	HasInit     bool

	Functions []FuncEntry
	Methods   []FuncEntry
	Events    []FuncEntry
	Externals []ExternEntry
}

// FindFunction looks up a script-level function by name. It searches
// Functions only; methods and events are looked up through their own
// tables.
func (img *Image) FindFunction(name string) (FuncEntry, bool) {
	for _, f := range img.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FuncEntry{}, false
}

func (img *Image) FindMethod(name string) (FuncEntry, bool) {
	for _, f := range img.Methods {
		if f.Name == name {
			return f, true
		}
	}
	return FuncEntry{}, false
}

func (img *Image) FindEvent(name string) (FuncEntry, bool) {
	for _, f := range img.Events {
		if f.Name == name {
			return f, true
		}
	}
	return FuncEntry{}, false
}

// FindExternal looks up a declared `external "lib" fn(...)` entry by its
// bare name, used by the VM's Call handling when a bare call does not match
// any script-level function. Externals are declared but not resolved at
// compile time; the VM resolves them against the host registry at call
// time.
func (img *Image) FindExternal(name string) (ExternEntry, bool) {
	for _, e := range img.Externals {
		if e.Name == name {
			return e, true
		}
	}
	return ExternEntry{}, false
}

// Symbol returns the interned string at idx, used by the VM to turn a
// PushString/GetProperty/Call symbol-index operand back into a name.
func (img *Image) Symbol(idx int) string {
	if idx < 0 || idx >= len(img.Symbols) {
		return ""
	}
	return img.Symbols[idx]
}
