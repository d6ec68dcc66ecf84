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
	"sync"

	duktape "gopkg.in/olebedev/go-duktape.v3"

	"github.com/wintermute-engine/wme/value"
)

// DuktapeProvider is the "duk" external lib, a second ECMAScript engine
// registered under its own lib name to demonstrate the provider registry
// is swappable rather than hard-wired to one implementation. Calls
// are serialized: a duktape Context is not safe for concurrent use, and
// the engine's own run loop is single-threaded anyway, so this is
// only a defensive lock against a future caller breaking that invariant.
type DuktapeProvider struct {
	mu  sync.Mutex
	ctx *duktape.Context
}

// NewDuktapeProvider evaluates src in a fresh Duktape heap.
func NewDuktapeProvider(src string) (*DuktapeProvider, error) {
	ctx := duktape.New()
	if err := ctx.PevalString(src); err != nil {
		return nil, fmt.Errorf("hostext: duktape: loading script: %w", err)
	}
	ctx.Pop() // PevalString leaves the eval result on the stack
	return &DuktapeProvider{ctx: ctx}, nil
}

// Call invokes fn, a global function defined by the loaded script.
func (p *DuktapeProvider) Call(fn string, args []value.Value) (value.Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ctx.GetGlobalString(fn) {
		return value.Null(), fmt.Errorf("hostext: duktape: %q is not defined", fn)
	}
	for _, a := range args {
		if err := p.pushArg(a); err != nil {
			return value.Null(), err
		}
	}
	if err := p.ctx.Pcall(len(args)); err != nil {
		msg := p.ctx.SafeToString(-1)
		p.ctx.Pop()
		return value.Null(), fmt.Errorf("hostext: duktape: %s: %s", fn, msg)
	}
	result := p.readResult()
	p.ctx.Pop()
	return result, nil
}

func (p *DuktapeProvider) pushArg(a value.Value) error {
	native, err := toNative(a)
	if err != nil {
		return err
	}
	switch t := native.(type) {
	case nil:
		p.ctx.PushNull()
	case bool:
		p.ctx.PushBoolean(t)
	case int64:
		p.ctx.PushNumber(float64(t))
	case float64:
		p.ctx.PushNumber(t)
	case string:
		p.ctx.PushString(t)
	}
	return nil
}

// readResult reads the top-of-stack call result left by Pcall, without
// popping it — the caller pops once the value has been read.
func (p *DuktapeProvider) readResult() value.Value {
	switch {
	case p.ctx.IsNull(-1) || p.ctx.IsUndefined(-1):
		return value.Null()
	case p.ctx.IsBoolean(-1):
		return value.Bool(p.ctx.ToBoolean(-1))
	case p.ctx.IsNumber(-1):
		return value.Float(p.ctx.GetNumber(-1))
	default:
		return value.String(p.ctx.ToString(-1))
	}
}
