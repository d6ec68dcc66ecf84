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

// resolveVarSlot looks up name against the current function's locals first,
// then the script's globals (externals are resolved separately, only at a
// bare-call site).
func (c *compiler) resolveVarSlot(name string) (slot int, isGlobal, ok bool) {
	if c.fc != nil {
		if s, found := c.fc.lookupLocal(name); found {
			return s, false, true
		}
	}
	if s, found := c.globals[name]; found {
		return s, true, true
	}
	return 0, false, false
}

// compileExpr compiles e so that exactly one net value is left on the
// operand stack, regardless of e's shape — the invariant every statement
// and sub-expression compiler in this package relies on instead of a Dup
// opcode (the instruction set has none).
func (c *compiler) compileExpr(e ast.Expression) {
	switch ex := e.(type) {
	case *ast.Ident:
		slot, isGlobal, ok := c.resolveVarSlot(ex.Name)
		if !ok {
			c.errorf(ex.Pos(), "undefined identifier %q", ex.Name)
			c.emitOp(vm.OpPushNull)
			return
		}
		if isGlobal {
			c.emitOpU16(vm.OpPushGlobal, uint16(slot))
		} else {
			c.emitOpU16(vm.OpPushVar, uint16(slot))
		}

	case *ast.IntLit:
		c.emitPushInt(ex.Value)
	case *ast.FloatLit:
		c.emitPushFloat(ex.Value)
	case *ast.StringLit:
		c.emitOpU16(vm.OpPushString, c.intern(ex.Value))
	case *ast.BoolLit:
		c.emitPushBool(ex.Value)
	case *ast.NullLit:
		c.emitOp(vm.OpPushNull)
	case *ast.ThisExpr:
		c.emitOp(vm.OpPushThis)

	case *ast.ArrayLit:
		c.emitOpU16(vm.OpNewArray, uint16(len(ex.Elems)))
		for i, el := range ex.Elems {
			c.emitPushInt(int64(i))
			c.compileExpr(el)
			c.emitOp(vm.OpSetElem)
		}

	case *ast.UnaryExpr:
		c.compileExpr(ex.X)
		switch ex.Op {
		case token.MINUS:
			c.emitOp(vm.OpNeg)
		case token.NOT:
			c.emitOp(vm.OpNot)
		default:
			c.errorf(ex.Pos(), "internal: unhandled unary operator %s", ex.Op)
		}

	case *ast.BinaryExpr:
		c.compileExpr(ex.X)
		c.compileExpr(ex.Y)
		c.emitOp(binaryOpcode(ex.Op))

	case *ast.LogicalExpr:
		c.compileLogical(ex)

	case *ast.TernaryExpr:
		c.compileExpr(ex.Cond)
		jFalse := c.emitJump(vm.OpJumpIfFalse)
		c.compileExpr(ex.Then)
		jEnd := c.emitJump(vm.OpJump)
		c.patchJump(jFalse)
		c.compileExpr(ex.Else)
		c.patchJump(jEnd)

	case *ast.AssignExpr:
		c.compileAssign(ex)

	case *ast.MemberExpr:
		c.compileExpr(ex.X)
		c.emitOpU16(vm.OpGetProperty, c.intern(ex.Name))

	case *ast.IndexExpr:
		c.compileExpr(ex.X)
		c.compileExpr(ex.Index)
		c.emitOp(vm.OpGetElem)

	case *ast.CallExpr:
		if ex.Recv != nil {
			c.compileExpr(ex.Recv)
			for _, a := range ex.Args {
				c.compileExpr(a)
			}
			c.emitOpU16U8(vm.OpCallMethod, c.intern(ex.Name), uint8(len(ex.Args)))
		} else {
			for _, a := range ex.Args {
				c.compileExpr(a)
			}
			c.emitOpU16U8(vm.OpCall, c.intern(ex.Name), uint8(len(ex.Args)))
		}

	case *ast.NewExpr:
		for _, a := range ex.Args {
			c.compileExpr(a)
		}
		c.emitOpU16U8(vm.OpNewObject, c.intern(ex.Class), uint8(len(ex.Args)))

	default:
		c.errorf(e.Pos(), "internal: unhandled expression %T", e)
		c.emitOp(vm.OpPushNull)
	}
}

func binaryOpcode(op token.Type) vm.Opcode {
	switch op {
	case token.PLUS:
		return vm.OpAdd
	case token.MINUS:
		return vm.OpSub
	case token.STAR:
		return vm.OpMul
	case token.SLASH:
		return vm.OpDiv
	case token.PERCENT:
		return vm.OpMod
	case token.EQ:
		return vm.OpEq
	case token.NEQ:
		return vm.OpNe
	case token.STRICT_EQ:
		return vm.OpStrictEq
	case token.STRICT_NEQ:
		return vm.OpStrictNe
	case token.LT:
		return vm.OpLt
	case token.GT:
		return vm.OpGt
	case token.LE:
		return vm.OpLe
	case token.GE:
		return vm.OpGe
	default:
		return vm.OpAdd
	}
}

// compoundOp maps a compound-assignment token to the arithmetic opcode that
// combines the target's current value with the assignment's right-hand
// side; it is never called for a plain "=".
func compoundOp(op token.Type) vm.Opcode {
	switch op {
	case token.PLUS_ASSIGN:
		return vm.OpAdd
	case token.MINUS_ASSIGN:
		return vm.OpSub
	case token.STAR_ASSIGN:
		return vm.OpMul
	case token.SLASH_ASSIGN:
		return vm.OpDiv
	case token.PERCENT_ASSIGN:
		return vm.OpMod
	default:
		return vm.OpAdd
	}
}

// compileLogical lowers && and || to a short-circuiting test that
// synthesizes a fresh bool literal as its result rather than threading
// either operand's raw value through: `0 && anything` compiles to exactly
// the bool false, never the int 0.
func (c *compiler) compileLogical(ex *ast.LogicalExpr) {
	var shortCircuit vm.Opcode
	var shortValue bool
	if ex.Op == token.AND_AND {
		shortCircuit, shortValue = vm.OpJumpIfFalse, false
	} else {
		shortCircuit, shortValue = vm.OpJumpIfTrue, true
	}

	c.compileExpr(ex.X)
	j1 := c.emitJump(shortCircuit)
	c.compileExpr(ex.Y)
	j2 := c.emitJump(shortCircuit)
	c.emitPushBool(!shortValue)
	jEnd := c.emitJump(vm.OpJump)
	c.patchJump(j1)
	c.patchJump(j2)
	c.emitPushBool(shortValue)
	c.patchJump(jEnd)
}
