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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/value"
)

type fakeHost struct {
	externCalls int
	lastLib     string
	lastName    string
}

func (h *fakeHost) Resolve(handle uint64) (vm.Scriptable, bool) { return nil, false }
func (h *fakeHost) NewObject(className string, args []value.Value) (uint64, error) {
	return 0, nil
}
func (h *fakeHost) CallExternal(lib, name string, args []value.Value) (value.Value, error) {
	h.externCalls++
	h.lastLib, h.lastName = lib, name
	if len(args) > 0 {
		return args[0], nil
	}
	return value.Null(), nil
}

// run compiles src, executes its "main" function to completion, and returns
// the single result left on the stack by its `return`.
func run(t *testing.T, src string) (value.Value, *vm.VM) {
	t.Helper()
	img, errs := Compile("test.wms", src)
	require.Empty(t, errs)

	h := &fakeHost{}
	m := vm.New(img, h, 1)
	entry, ok := img.FindFunction("main")
	require.True(t, ok, "source must declare function main()")
	require.NoError(t, m.Start(entry, nil))
	m.RunSlice(100000)
	require.Equal(t, vm.StateFinished, m.State(), "vm error: %v", m.Err())

	return m.LastResult(), m
}

func TestArithmeticAndLocals(t *testing.T) {
	result, _ := run(t, `
		function main() {
			var x = 2;
			var y = 3;
			return x + y * 4;
		}
	`)
	require.Equal(t, value.Int(14), result)
}

func TestIfElse(t *testing.T) {
	result, _ := run(t, `
		function main() {
			var x = 5;
			if (x > 10) {
				return 1;
			} else if (x > 3) {
				return 2;
			} else {
				return 3;
			}
		}
	`)
	require.Equal(t, value.Int(2), result)
}

func TestWhileLoopWithBreakAndContinue(t *testing.T) {
	result, _ := run(t, `
		function main() {
			var i = 0;
			var sum = 0;
			while (i < 10) {
				i = i + 1;
				if (i == 5) {
					continue;
				}
				if (i > 8) {
					break;
				}
				sum = sum + i;
			}
			return sum;
		}
	`)
	// 1+2+3+4 + 6+7+8 = 31
	require.Equal(t, value.Int(31), result)
}

func TestForLoop(t *testing.T) {
	result, _ := run(t, `
		function main() {
			var total = 0;
			for (var i = 0; i < 5; i = i + 1) {
				total = total + i;
			}
			return total;
		}
	`)
	require.Equal(t, value.Int(10), result)
}

func TestSwitchFallthrough(t *testing.T) {
	result, _ := run(t, `
		function main() {
			var x = 1;
			var out = 0;
			switch (x) {
			case 1:
				out = out + 1;
			case 2:
				out = out + 10;
				break;
			default:
				out = out + 100;
			}
			return out;
		}
	`)
	require.Equal(t, value.Int(11), result, "case 1 falls through into case 2's body")
}

func TestLogicalShortCircuitSynthesizesBool(t *testing.T) {
	result, _ := run(t, `
		function main() {
			var x = 0;
			return x != 0 && 1 / x > 1;
		}
	`)
	require.Equal(t, value.Bool(false), result)
}

func TestGlobalsPersistAcrossCalls(t *testing.T) {
	img, errs := Compile("test.wms", `
		global counter = 0;

		function bump() {
			counter = counter + 1;
			return counter;
		}

		function main() {
			bump();
			bump();
			return bump();
		}
	`)
	require.Empty(t, errs)
	require.Equal(t, 1, img.GlobalCount)

	h := &fakeHost{}
	m := vm.New(img, h, 1)
	entry, ok := img.FindFunction("main")
	require.True(t, ok)
	require.NoError(t, m.Start(entry, nil))
	m.RunSlice(100000)
	require.Equal(t, vm.StateFinished, m.State())
	require.Equal(t, value.Int(3), m.LastResult())
}

func TestArrayIndexAssignment(t *testing.T) {
	result, _ := run(t, `
		function main() {
			var arr = [1, 2, 3];
			arr[1] = arr[1] + 100;
			return arr[1];
		}
	`)
	require.Equal(t, value.Int(102), result)
}

func TestExternalCallDispatchesToHost(t *testing.T) {
	img, errs := Compile("test.wms", `
		external "math" sqrt(n);

		function main() {
			return sqrt(9);
		}
	`)
	require.Empty(t, errs)
	require.Len(t, img.Externals, 1)
	require.Equal(t, "math", img.Externals[0].Lib)

	h := &fakeHost{}
	m := vm.New(img, h, 1)
	entry, _ := img.FindFunction("main")
	require.NoError(t, m.Start(entry, nil))
	m.RunSlice(1000)
	require.Equal(t, vm.StateFinished, m.State())
	require.Equal(t, 1, h.externCalls)
	require.Equal(t, "sqrt", h.lastName)
}

func TestUndefinedIdentifierIsCompileError(t *testing.T) {
	_, errs := Compile("test.wms", `
		function main() {
			return undeclaredThing;
		}
	`)
	require.NotEmpty(t, errs)
}
