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
	"github.com/wintermute-engine/wme/script/token"
	"github.com/wintermute-engine/wme/script/vm"
)

// compileAssign compiles an assignment expression so the assigned value
// (not the target's storage location) is left as its one net stack value,
// since assignment is itself an expression in this language (`x = y = 1;`
// is legal). The instruction set has no Dup, so every target kind routes
// the computed value through a scratch local it can re-push from.
func (c *compiler) compileAssign(a *ast.AssignExpr) {
	switch t := a.Target.(type) {
	case *ast.Ident:
		c.compileAssignIdent(t, a)
	case *ast.MemberExpr:
		c.compileAssignMember(t, a)
	case *ast.IndexExpr:
		c.compileAssignIndex(t, a)
	default:
		c.errorf(a.Pos(), "invalid assignment target %T", a.Target)
	}
}

// storeAndKeep pops a value already on top of the stack into slot (local or
// global), then pushes it back by way of temp, leaving it as the
// expression's result.
func (c *compiler) storeAndKeep(slot int, isGlobal bool) {
	temp := c.fc.newTemp()
	c.emitOpU16(vm.OpPopVar, uint16(temp))
	c.emitOpU16(vm.OpPushVar, uint16(temp))
	if isGlobal {
		c.emitOpU16(vm.OpPopGlobal, uint16(slot))
	} else {
		c.emitOpU16(vm.OpPopVar, uint16(slot))
	}
	c.emitOpU16(vm.OpPushVar, uint16(temp))
}

func (c *compiler) compileAssignIdent(t *ast.Ident, a *ast.AssignExpr) {
	slot, isGlobal, ok := c.resolveVarSlot(t.Name)
	if !ok {
		c.errorf(t.Pos(), "undefined identifier %q", t.Name)
		return
	}
	if a.Op == token.ASSIGN {
		c.compileExpr(a.Value)
	} else {
		if isGlobal {
			c.emitOpU16(vm.OpPushGlobal, uint16(slot))
		} else {
			c.emitOpU16(vm.OpPushVar, uint16(slot))
		}
		c.compileExpr(a.Value)
		c.emitOp(compoundOp(a.Op))
	}
	c.storeAndKeep(slot, isGlobal)
}

func (c *compiler) compileAssignMember(t *ast.MemberExpr, a *ast.AssignExpr) {
	propIdx := c.intern(t.Name)

	if a.Op == token.ASSIGN {
		c.compileExpr(a.Value)
		temp := c.fc.newTemp()
		c.emitOpU16(vm.OpPopVar, uint16(temp))
		c.compileExpr(t.X)
		c.emitOpU16(vm.OpPushVar, uint16(temp))
		c.emitOpU16(vm.OpSetProperty, propIdx)
		c.emitOpU16(vm.OpPushVar, uint16(temp))
		return
	}

	tempRecv := c.fc.newTemp()
	tempVal := c.fc.newTemp()
	c.compileExpr(t.X)
	c.emitOpU16(vm.OpPopVar, uint16(tempRecv))
	c.emitOpU16(vm.OpPushVar, uint16(tempRecv))
	c.emitOpU16(vm.OpGetProperty, propIdx)
	c.compileExpr(a.Value)
	c.emitOp(compoundOp(a.Op))
	c.emitOpU16(vm.OpPopVar, uint16(tempVal))
	c.emitOpU16(vm.OpPushVar, uint16(tempRecv))
	c.emitOpU16(vm.OpPushVar, uint16(tempVal))
	c.emitOpU16(vm.OpSetProperty, propIdx)
	c.emitOpU16(vm.OpPushVar, uint16(tempVal))
}

// compileAssignIndex assigns arr[idx]. Arrays are copy-on-assign value
// types, so OpSetElem's mutated copy must be written back into
// whatever location actually holds the array — the target's own base
// expression — or the mutation is invisible to every later read of it.
func (c *compiler) compileAssignIndex(t *ast.IndexExpr, a *ast.AssignExpr) {
	tempArr := c.fc.newTemp()
	tempIdx := c.fc.newTemp()
	tempVal := c.fc.newTemp()

	c.compileExpr(t.X)
	c.emitOpU16(vm.OpPopVar, uint16(tempArr))
	c.compileExpr(t.Index)
	c.emitOpU16(vm.OpPopVar, uint16(tempIdx))

	if a.Op == token.ASSIGN {
		c.compileExpr(a.Value)
	} else {
		c.emitOpU16(vm.OpPushVar, uint16(tempArr))
		c.emitOpU16(vm.OpPushVar, uint16(tempIdx))
		c.emitOp(vm.OpGetElem)
		c.compileExpr(a.Value)
		c.emitOp(compoundOp(a.Op))
	}
	c.emitOpU16(vm.OpPopVar, uint16(tempVal))

	c.emitOpU16(vm.OpPushVar, uint16(tempArr))
	c.emitOpU16(vm.OpPushVar, uint16(tempIdx))
	c.emitOpU16(vm.OpPushVar, uint16(tempVal))
	c.emitOp(vm.OpSetElem) // leaves the mutated array on top of the stack
	c.emitOpU16(vm.OpPopVar, uint16(tempArr))

	c.writeBack(t.X, tempArr)
	c.emitOpU16(vm.OpPushVar, uint16(tempVal))
}

// writeBack stores the value held in local slot srcTemp into the
// assignable location described by target, recursing through nested
// member/index chains (e.g. `a[i][j] = v` writes the inner array back into
// a[i], then that result back into a).
func (c *compiler) writeBack(target ast.Expression, srcTemp int) {
	switch t := target.(type) {
	case *ast.Ident:
		slot, isGlobal, ok := c.resolveVarSlot(t.Name)
		if !ok {
			c.errorf(t.Pos(), "undefined identifier %q", t.Name)
			return
		}
		c.emitOpU16(vm.OpPushVar, uint16(srcTemp))
		if isGlobal {
			c.emitOpU16(vm.OpPopGlobal, uint16(slot))
		} else {
			c.emitOpU16(vm.OpPopVar, uint16(slot))
		}

	case *ast.MemberExpr:
		propIdx := c.intern(t.Name)
		c.compileExpr(t.X)
		c.emitOpU16(vm.OpPushVar, uint16(srcTemp))
		c.emitOpU16(vm.OpSetProperty, propIdx)

	case *ast.IndexExpr:
		innerArr := c.fc.newTemp()
		innerIdx := c.fc.newTemp()
		c.compileExpr(t.X)
		c.emitOpU16(vm.OpPopVar, uint16(innerArr))
		c.compileExpr(t.Index)
		c.emitOpU16(vm.OpPopVar, uint16(innerIdx))
		c.emitOpU16(vm.OpPushVar, uint16(innerArr))
		c.emitOpU16(vm.OpPushVar, uint16(innerIdx))
		c.emitOpU16(vm.OpPushVar, uint16(srcTemp))
		c.emitOp(vm.OpSetElem)
		c.emitOpU16(vm.OpPopVar, uint16(innerArr))
		c.writeBack(t.X, innerArr)

	default:
		c.errorf(target.Pos(), "invalid assignment target %T", target)
	}
}
