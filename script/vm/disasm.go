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

package vm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/wintermute-engine/wme/script/bytecode"
)

// Disassemble renders an Image's code section as one line per instruction,
// resolving symbol-table operands to names, for the developer console's
// `disasm` command.
func Disassemble(img *bytecode.Image) string {
	var b strings.Builder
	code := img.Code
	ip := 0
	for ip < len(code) {
		op := Opcode(code[ip])
		if !op.IsValid() {
			fmt.Fprintf(&b, "%06d  <bad opcode 0x%02X>\n", ip, code[ip])
			ip++
			continue
		}
		width := op.OperandWidth()
		if ip+1+width > len(code) {
			fmt.Fprintf(&b, "%06d  %-14s <truncated>\n", ip, op)
			break
		}
		body := code[ip+1 : ip+1+width]
		fmt.Fprintf(&b, "%06d  %-14s%s\n", ip, op, operandText(img, op, body))
		ip += 1 + width
	}
	return b.String()
}

func operandText(img *bytecode.Image, op Opcode, body []byte) string {
	switch op {
	case OpPushInt:
		return fmt.Sprintf("%d", int64(binary.LittleEndian.Uint64(body)))
	case OpPushFloat:
		return fmt.Sprintf("%g", math.Float64frombits(binary.LittleEndian.Uint64(body)))
	case OpPushString, OpGetProperty, OpSetProperty:
		idx := binary.LittleEndian.Uint16(body)
		return fmt.Sprintf("%q", img.Symbol(int(idx)))
	case OpPushBool:
		return fmt.Sprintf("%v", body[0] != 0)
	case OpPushVar, OpPopVar, OpPushGlobal, OpPopGlobal:
		return fmt.Sprintf("#%d", binary.LittleEndian.Uint16(body))
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		return fmt.Sprintf("-> %06d", int32(binary.LittleEndian.Uint32(body)))
	case OpCall, OpCallMethod, OpNewObject:
		idx := binary.LittleEndian.Uint16(body[:2])
		return fmt.Sprintf("%s/%d", img.Symbol(int(idx)), body[2])
	case OpReturn:
		return fmt.Sprintf("hasValue=%v", body[0] != 0)
	case OpNewArray:
		return fmt.Sprintf("cap=%d", binary.LittleEndian.Uint16(body))
	default:
		return ""
	}
}
