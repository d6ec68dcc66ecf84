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

// Package compiler drives the lex/parse/resolve/emit pipeline: it
// turns a parsed ast.Program into a bytecode.Image. Name resolution follows
// a fixed order (locals, then enclosing function params, then script
// globals, then external table) and emission uses a flat code buffer with
// a forward-jump label/patch list, targeting the stack-machine opcode set
// of script/vm.
package compiler

import (
	"fmt"

	"github.com/wintermute-engine/wme/script/ast"
	"github.com/wintermute-engine/wme/script/bytecode"
	"github.com/wintermute-engine/wme/script/parser"
	"github.com/wintermute-engine/wme/script/token"
	"github.com/wintermute-engine/wme/script/vm"
)

// CompileError is one compile-time failure, carrying the source position
// exactly as parser.SyntaxError does, so the scheduler can report
// file/line/column on a failed script load.
type CompileError struct {
	Pos token.Position
	Msg string
}

func (e *CompileError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// funcCtx is the name-resolution state for one function/method/event body.
// Locals are a flat, function-wide namespace: a nested block that
// redeclares a name reuses that name's existing slot rather than modeling
// lexical shadowing, which the language's block-scoping rules don't
// otherwise distinguish from a flat local space.
type funcCtx struct {
	locals    map[string]int
	numLocals int
}

func (fc *funcCtx) declareLocal(name string) int {
	if slot, ok := fc.locals[name]; ok {
		return slot
	}
	slot := fc.numLocals
	fc.locals[name] = slot
	fc.numLocals++
	return slot
}

func (fc *funcCtx) lookupLocal(name string) (int, bool) {
	slot, ok := fc.locals[name]
	return slot, ok
}

// newTemp allocates an anonymous slot used by the compiler itself (the
// switch discriminant, the held value of a property/index assignment
// expression) — never visible to source-level name resolution.
func (fc *funcCtx) newTemp() int {
	slot := fc.numLocals
	fc.numLocals++
	return slot
}

// loopCtx tracks one in-flight while/for/switch body so break/continue can
// patch their jumps once the construct's exit (and, for loops, its
// continue target) is known.
type loopCtx struct {
	isSwitch        bool
	breakPatches    []int
	continuePatches []int
}

type compiler struct {
	code     []byte
	symbols  []string
	symIndex map[string]int
	globals  map[string]int
	fc       *funcCtx
	loops    []*loopCtx
	img      *bytecode.Image
	errs     []error
}

func (c *compiler) errorf(pos token.Position, format string, args ...interface{}) {
	c.errs = append(c.errs, &CompileError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (c *compiler) intern(s string) uint16 {
	if idx, ok := c.symIndex[s]; ok {
		return uint16(idx)
	}
	idx := len(c.symbols)
	c.symbols = append(c.symbols, s)
	c.symIndex[s] = idx
	return uint16(idx)
}

// Compile lexes, parses, resolves, and emits src (attributed to file) into
// an executable Image. Parse errors abort before any emission; compile
// (resolution) errors are collected so one compile reports every undefined
// name instead of just the first.
func Compile(file, src string) (*bytecode.Image, []error) {
	prog, perrs := parser.Parse(file, src)
	if len(perrs) > 0 {
		return nil, perrs
	}

	c := &compiler{
		symIndex: map[string]int{},
		globals:  map[string]int{},
		img:      &bytecode.Image{SourceName: file, FormatVersion: bytecode.FormatVersion},
	}

	globalDecls := c.reserveGlobals(prog)
	c.compileGlobalInit(globalDecls)

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FunctionDecl:
			entry := c.compileFuncLike(decl.Name, decl.Params, decl.Body, false)
			c.img.Functions = append(c.img.Functions, entry)
		case *ast.MethodDecl:
			entry := c.compileFuncLike(decl.Name, decl.Params, decl.Body, false)
			c.img.Methods = append(c.img.Methods, entry)
		case *ast.EventDecl:
			entry := c.compileFuncLike(decl.Name, decl.Params, decl.Body, true)
			c.img.Events = append(c.img.Events, entry)
		case *ast.ExternalDecl:
			c.img.Externals = append(c.img.Externals, bytecode.ExternEntry{
				Lib:       decl.Lib,
				Name:      decl.Name,
				Signature: fmt.Sprintf("fn(%d)", len(decl.Params)),
			})
		case *ast.VarDecl:
			// Top-level var/global/const declarations were already reserved
			// and initialized by compileGlobalInit above.
		default:
			c.errorf(d.Pos(), "internal: unhandled declaration %T", d)
		}
	}

	if len(c.errs) > 0 {
		return nil, c.errs
	}

	c.img.Code = c.code
	c.img.Symbols = c.symbols
	c.img.GlobalCount = len(globalDecls)
	return c.img, nil
}

// reserveGlobals assigns a slot to every top-level var/global/const
// declaration in source order, before any code is emitted, so a function
// declared earlier in the file may still reference a global declared later.
func (c *compiler) reserveGlobals(prog *ast.Program) []*ast.VarDecl {
	var decls []*ast.VarDecl
	for _, d := range prog.Decls {
		if vd, ok := d.(*ast.VarDecl); ok {
			c.globals[vd.Name] = len(decls)
			decls = append(decls, vd)
		}
	}
	return decls
}

// compileGlobalInit emits the synthetic initializer that assigns every
// global/const slot its starting value, run once per VM instance before the
// script's actual entry point (see script/vm.VM.runInit).
func (c *compiler) compileGlobalInit(decls []*ast.VarDecl) {
	if len(decls) == 0 {
		return
	}
	c.fc = &funcCtx{locals: map[string]int{}}
	offset := len(c.code)
	for _, vd := range decls {
		if vd.Init != nil {
			c.compileExpr(vd.Init)
		} else {
			c.emitOp(vm.OpPushNull)
		}
		c.emitOpU16(vm.OpPopGlobal, uint16(c.globals[vd.Name]))
	}
	c.emitOpU8(vm.OpReturn, 0)
	c.fc = nil
	c.img.HasInit = true
	c.img.InitOffset = uint32(offset)
}

// compileFuncLike compiles one function/method/on-event body: params become
// locals[0:len(params)], the body is compiled against a fresh funcCtx, and a
// terminal return is appended regardless of whether every path already
// returned explicitly (dead bytecode past an executed return is harmless).
func (c *compiler) compileFuncLike(name string, params []string, body *ast.BlockStmt, isEvent bool) bytecode.FuncEntry {
	prevFc, prevLoops := c.fc, c.loops
	fc := &funcCtx{locals: map[string]int{}}
	for _, p := range params {
		fc.declareLocal(p)
	}
	c.fc = fc
	c.loops = nil

	offset := len(c.code)
	c.compileBlock(body)
	if isEvent {
		c.emitOp(vm.OpReturnEvent)
	} else {
		c.emitOpU8(vm.OpReturn, 0)
	}

	c.fc, c.loops = prevFc, prevLoops
	return bytecode.FuncEntry{Name: name, Offset: uint32(offset), NumArgs: len(params), NumLocal: fc.numLocals}
}
