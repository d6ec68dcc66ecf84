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

package hostext

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/wintermute-engine/wme/value"
)

// GojaProvider is the "js" external lib: a sandboxed ECMAScript runtime
// whose top-level function declarations become callable external
// functions. One Runtime is reused across calls, so a lib script may keep
// module-level state between invocations within a single game session.
type GojaProvider struct {
	rt *goja.Runtime
}

// NewGojaProvider evaluates src once (defining its top-level functions and
// any module state) and returns a Provider that dispatches CallExternal
// calls into it.
func NewGojaProvider(src string) (*GojaProvider, error) {
	rt := goja.New()
	if _, err := rt.RunString(src); err != nil {
		return nil, fmt.Errorf("hostext: goja: loading script: %w", err)
	}
	return &GojaProvider{rt: rt}, nil
}

// Call invokes fn, a top-level function in the loaded script, with args
// marshaled to native JS values and the result marshaled back.
func (p *GojaProvider) Call(fn string, args []value.Value) (value.Value, error) {
	callable, ok := goja.AssertFunction(p.rt.Get(fn))
	if !ok {
		return value.Null(), fmt.Errorf("hostext: goja: %q is not a function", fn)
	}

	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		native, err := toNative(a)
		if err != nil {
			return value.Null(), err
		}
		jsArgs[i] = p.rt.ToValue(native)
	}

	result, err := callable(goja.Undefined(), jsArgs...)
	if err != nil {
		return value.Null(), fmt.Errorf("hostext: goja: %s: %w", fn, err)
	}
	return fromNative(result.Export())
}
