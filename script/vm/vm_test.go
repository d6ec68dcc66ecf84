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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wintermute-engine/wme/script/bytecode"
	"github.com/wintermute-engine/wme/value"
)

// fakeHost is a minimal Host for tests that don't exercise object dispatch.
type fakeHost struct {
	objects map[uint64]Scriptable
}

func newFakeHost() *fakeHost { return &fakeHost{objects: map[uint64]Scriptable{}} }

func (h *fakeHost) Resolve(handle uint64) (Scriptable, bool) {
	o, ok := h.objects[handle]
	return o, ok
}
func (h *fakeHost) NewObject(className string, args []value.Value) (uint64, error) {
	return 0, nil
}
func (h *fakeHost) CallExternal(lib, name string, args []value.Value) (value.Value, error) {
	return value.Null(), nil
}

func pushInt(n int64) []byte {
	buf := make([]byte, 9)
	buf[0] = byte(OpPushInt)
	binary.LittleEndian.PutUint64(buf[1:], uint64(n))
	return buf
}

func TestAddTwoLiterals(t *testing.T) {
	var code []byte
	code = append(code, pushInt(2)...)
	code = append(code, pushInt(3)...)
	code = append(code, byte(OpAdd))
	code = append(code, byte(OpReturn), 1)

	img := &bytecode.Image{
		Code:      code,
		Functions: []bytecode.FuncEntry{{Name: "main", Offset: 0, NumArgs: 0, NumLocal: 0}},
	}
	m := New(img, newFakeHost(), 1)
	entry, ok := img.FindFunction("main")
	require.True(t, ok)
	require.NoError(t, m.Start(entry, nil))

	m.RunSlice(100)
	require.Equal(t, StateFinished, m.State())

	result, err := m.ops.pop()
	require.NoError(t, err)
	require.Equal(t, value.Int(5), result)
}

func TestSleepSuspendsAndResumes(t *testing.T) {
	var code []byte
	code = append(code, pushInt(10)...)
	code = append(code, byte(OpSleep))
	code = append(code, byte(OpReturn), 0)

	img := &bytecode.Image{
		Code:      code,
		Functions: []bytecode.FuncEntry{{Name: "main", Offset: 0, NumArgs: 0, NumLocal: 0}},
	}
	m := New(img, newFakeHost(), 1)
	entry, _ := img.FindFunction("main")
	require.NoError(t, m.Start(entry, nil))

	m.RunSlice(100)
	require.Equal(t, StateSleeping, m.State())

	m.ResumeIfDue(time.Now())
	require.Equal(t, StateSleeping, m.State(), "must not wake before the deadline")

	m.ResumeIfDue(m.WakeAt().Add(time.Millisecond))
	require.Equal(t, StateReady, m.State())

	m.RunSlice(100)
	require.Equal(t, StateFinished, m.State())
}

func TestStackOverflowIsScriptError(t *testing.T) {
	var code []byte
	loopStart := 0
	code = append(code, pushInt(1)...)
	jumpBackOffset := int32(loopStart)
	code = append(code, byte(OpJump))
	jumpPos := len(code)
	code = append(code, 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(code[jumpPos:], uint32(jumpBackOffset))

	img := &bytecode.Image{
		Code:      code,
		Functions: []bytecode.FuncEntry{{Name: "main", Offset: 0, NumArgs: 0, NumLocal: 0}},
	}
	m := New(img, newFakeHost(), 1)
	entry, _ := img.FindFunction("main")
	require.NoError(t, m.Start(entry, nil))

	m.RunSlice(2*MaxOperandStack + 10) // two instructions per push
	require.Equal(t, StateError, m.State())
	require.ErrorIs(t, m.Err(), ErrStackOverflow)
}

func TestDisassembleRendersLiterals(t *testing.T) {
	var code []byte
	code = append(code, pushInt(42)...)
	code = append(code, byte(OpReturn), 1)
	img := &bytecode.Image{Code: code}

	out := Disassemble(img)
	require.Contains(t, out, "PushInt")
	require.Contains(t, out, "42")
	require.Contains(t, out, "Return")
}
