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
	"encoding/binary"
	"math"

	"github.com/wintermute-engine/wme/script/vm"
)

// ---- raw byte emission -----------------------------------------------------

func (c *compiler) emitOp(op vm.Opcode) {
	c.code = append(c.code, byte(op))
}

func (c *compiler) emitOpU8(op vm.Opcode, v uint8) {
	c.code = append(c.code, byte(op), v)
}

func (c *compiler) emitOpU16(op vm.Opcode, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	c.code = append(c.code, byte(op), buf[0], buf[1])
}

func (c *compiler) emitOpU16U8(op vm.Opcode, idx uint16, argc uint8) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], idx)
	c.code = append(c.code, byte(op), buf[0], buf[1], argc)
}

func (c *compiler) emitPushInt(n int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	c.code = append(c.code, byte(vm.OpPushInt))
	c.code = append(c.code, buf[:]...)
}

func (c *compiler) emitPushFloat(f float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	c.code = append(c.code, byte(vm.OpPushFloat))
	c.code = append(c.code, buf[:]...)
}

func (c *compiler) emitPushBool(b bool) {
	v := uint8(0)
	if b {
		v = 1
	}
	c.code = append(c.code, byte(vm.OpPushBool), v)
}

// ---- forward-jump label/patch idiom ----------------------------------------
//
// A jump is emitted with a placeholder operand, its instruction offset is
// remembered, and once the real target is known the placeholder is overwritten in
// place. Jump targets in this instruction set are absolute byte offsets
// into the single shared code buffer (matching vm.go's Jump/JumpIfFalse/
// JumpIfTrue, which load the operand directly as the new ip).

// emitJump appends a jump of the given kind with a zero placeholder operand
// and returns the buffer offset of that operand, to be filled in later by
// patchJump.
func (c *compiler) emitJump(op vm.Opcode) int {
	c.code = append(c.code, byte(op), 0, 0, 0, 0)
	return len(c.code) - 4
}

// patchJump overwrites the placeholder operand at patchPos so the jump
// lands on the next instruction to be emitted.
func (c *compiler) patchJump(patchPos int) {
	c.patchJumpTo(patchPos, len(c.code))
}

// patchJumpTo overwrites the placeholder operand at patchPos with an
// explicit target offset, used when the target was already fixed before the
// jump itself was emitted (e.g. a loop's back-edge to its own test).
func (c *compiler) patchJumpTo(patchPos, target int) {
	binary.LittleEndian.PutUint32(c.code[patchPos:patchPos+4], uint32(target))
}

// emitJumpTo emits an unconditional jump whose target offset is already
// known, skipping the patch step entirely.
func (c *compiler) emitJumpTo(target int) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(target))
	c.code = append(c.code, byte(vm.OpJump), buf[0], buf[1], buf[2], buf[3])
}
