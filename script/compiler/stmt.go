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

package compiler

import (
	"github.com/wintermute-engine/wme/script/ast"
	"github.com/wintermute-engine/wme/script/vm"
)

func (c *compiler) compileBlock(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		c.compileStmt(s)
	}
}

func (c *compiler) compileStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.VarDecl:
		slot := c.fc.declareLocal(st.Name)
		if st.Init != nil {
			c.compileExpr(st.Init)
			c.emitOpU16(vm.OpPopVar, uint16(slot))
		}

	case *ast.ExprStmt:
		c.compileExpr(st.X)
		c.emitOp(vm.OpPopEmpty)

	case *ast.BlockStmt:
		c.compileBlock(st)

	case *ast.IfStmt:
		c.compileExpr(st.Cond)
		jFalse := c.emitJump(vm.OpJumpIfFalse)
		c.compileBlock(st.Then)
		if st.Else != nil {
			jEnd := c.emitJump(vm.OpJump)
			c.patchJump(jFalse)
			switch e := st.Else.(type) {
			case *ast.BlockStmt:
				c.compileBlock(e)
			case *ast.IfStmt:
				c.compileStmt(e)
			default:
				c.errorf(st.Pos(), "internal: unexpected else clause %T", st.Else)
			}
			c.patchJump(jEnd)
		} else {
			c.patchJump(jFalse)
		}

	case *ast.WhileStmt:
		lc := &loopCtx{}
		c.loops = append(c.loops, lc)
		condStart := len(c.code)
		c.compileExpr(st.Cond)
		jExit := c.emitJump(vm.OpJumpIfFalse)
		c.compileBlock(st.Body)
		for _, p := range lc.continuePatches {
			c.patchJumpTo(p, condStart)
		}
		c.emitJumpTo(condStart)
		c.patchJump(jExit)
		for _, p := range lc.breakPatches {
			c.patchJump(p)
		}
		c.loops = c.loops[:len(c.loops)-1]

	case *ast.ForStmt:
		lc := &loopCtx{}
		c.loops = append(c.loops, lc)
		if st.Init != nil {
			c.compileStmt(st.Init)
		}
		condStart := len(c.code)
		var jExit int
		hasCond := st.Cond != nil
		if hasCond {
			c.compileExpr(st.Cond)
			jExit = c.emitJump(vm.OpJumpIfFalse)
		}
		c.compileBlock(st.Body)
		postStart := len(c.code)
		if st.Post != nil {
			c.compileStmt(st.Post)
		}
		for _, p := range lc.continuePatches {
			c.patchJumpTo(p, postStart)
		}
		c.emitJumpTo(condStart)
		if hasCond {
			c.patchJump(jExit)
		}
		for _, p := range lc.breakPatches {
			c.patchJump(p)
		}
		c.loops = c.loops[:len(c.loops)-1]

	case *ast.SwitchStmt:
		c.compileSwitch(st)

	case *ast.ReturnStmt:
		if st.Value != nil {
			c.compileExpr(st.Value)
			c.emitOpU8(vm.OpReturn, 1)
		} else {
			c.emitOpU8(vm.OpReturn, 0)
		}

	case *ast.BreakStmt:
		if len(c.loops) == 0 {
			c.errorf(st.Pos(), "break outside of a loop or switch")
			return
		}
		lc := c.loops[len(c.loops)-1]
		p := c.emitJump(vm.OpJump)
		lc.breakPatches = append(lc.breakPatches, p)

	case *ast.ContinueStmt:
		idx := len(c.loops) - 1
		for idx >= 0 && c.loops[idx].isSwitch {
			idx--
		}
		if idx < 0 {
			c.errorf(st.Pos(), "continue outside of a loop")
			return
		}
		p := c.emitJump(vm.OpJump)
		c.loops[idx].continuePatches = append(c.loops[idx].continuePatches, p)

	default:
		c.errorf(s.Pos(), "internal: unhandled statement %T", s)
	}
}

// compileSwitch lowers a switch into a chain of tag comparisons that jump
// into the matching case's body, with bodies laid out sequentially so a
// case without a trailing break falls through into the next one, same as
// the source language's switch semantics.
func (c *compiler) compileSwitch(st *ast.SwitchStmt) {
	lc := &loopCtx{isSwitch: true}
	c.loops = append(c.loops, lc)

	tagTemp := c.fc.newTemp()
	c.compileExpr(st.Tag)
	c.emitOpU16(vm.OpPopVar, uint16(tagTemp))

	type caseJump struct {
		patch    int
		caseIdx  int
	}
	var jumps []caseJump
	for ci, cc := range st.Cases {
		for _, v := range cc.Values {
			c.emitOpU16(vm.OpPushVar, uint16(tagTemp))
			c.compileExpr(v)
			c.emitOp(vm.OpEq)
			p := c.emitJump(vm.OpJumpIfTrue)
			jumps = append(jumps, caseJump{patch: p, caseIdx: ci})
		}
	}
	noMatchJump := c.emitJump(vm.OpJump)

	bodyStarts := make([]int, len(st.Cases))
	defaultIdx := -1
	for ci, cc := range st.Cases {
		bodyStarts[ci] = len(c.code)
		if len(cc.Values) == 0 {
			defaultIdx = ci
		}
		for _, bs := range cc.Body {
			c.compileStmt(bs)
		}
	}
	endPos := len(c.code)

	for _, j := range jumps {
		c.patchJumpTo(j.patch, bodyStarts[j.caseIdx])
	}
	if defaultIdx >= 0 {
		c.patchJumpTo(noMatchJump, bodyStarts[defaultIdx])
	} else {
		c.patchJumpTo(noMatchJump, endPos)
	}
	for _, p := range lc.breakPatches {
		c.patchJumpTo(p, endPos)
	}

	c.loops = c.loops[:len(c.loops)-1]
}
