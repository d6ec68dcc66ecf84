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
	"time"

	"github.com/wintermute-engine/wme/common"
	"github.com/wintermute-engine/wme/script/bytecode"
	"github.com/wintermute-engine/wme/value"
)

// State is the cooperative-scheduling status of one VM instance, the
// states the script scheduler's tick loop switches on.
type State int

const (
	StateReady         State = iota // runnable, not yet started this tick
	StateRunning                    // mid run_slice (only set while Step executes)
	StateSleeping                   // suspended until wakeAt
	StateWaitingObject              // suspended until wait() reports done
	StateFinished                   // returned normally; scheduler may recycle
	StateError                      // trapped a runtime error; scheduler logs and kills
)

// VM is one script instance: its own instruction pointer, operand stack,
// and call stack, executing against a shared, read-only compiled Image.
// Its fetch-decode-dispatch loop drives the activationRecord/operandStack
// pair above.
type VM struct {
	img  *bytecode.Image
	host Host

	ip      int
	ops     *operandStack
	calls   *callStack
	this    value.Value
	globals []value.Value // one slot per img.GlobalCount, private to this instance

	Owner uint64 // handle of the game object that owns this script instance

	state  State
	wakeAt time.Time
	wait   WaitCond
	err    error

	// Warn receives non-fatal diagnostics: division by zero, array index
	// out of range, and similar runtime oddities that log rather than trap.
	Warn func(msg string, kv ...interface{})
}

// New creates a VM bound to img and host, with no frame active. Call Start
// to begin executing a function/method/event entry point.
func New(img *bytecode.Image, host Host, owner uint64) *VM {
	m := &VM{
		img:     img,
		host:    host,
		ops:     newOperandStack(),
		calls:   newCallStack(),
		globals: make([]value.Value, img.GlobalCount),
		Owner:   owner,
		state:   StateReady,
		this:    value.Object(owner),
	}
	m.runInit()
	return m
}

// runInit executes the image's synthetic global initializer once, if it
// has one: each `global`/file-scope `const` slot is assigned its starting
// value here. It runs to completion before the instance is ever
// handed to the scheduler, so it never suspends: an initializer that calls
// a blocking host method is a script bug, not a VM concern, and is left to
// surface as a runtime error the first time the owning script actually runs.
func (m *VM) runInit() {
	if !m.img.HasInit {
		return
	}
	fr := activationRecord{returnAddr: -1, savedThis: m.this, watermark: 0, funcName: "<init>"}
	if err := m.calls.push(fr); err != nil {
		m.fail(err)
		return
	}
	m.ip = int(m.img.InitOffset)
	m.state = StateReady
	for i := 0; i < MaxOperandStack; i++ {
		if m.state != StateReady {
			break
		}
		if err := m.Step(); err != nil {
			m.fail(err)
			return
		}
	}
	if m.state == StateFinished {
		m.state = StateReady
	}
	m.ip = 0
}

func (m *VM) State() State  { return m.state }
func (m *VM) Err() error    { return m.err }
func (m *VM) IP() int       { return m.ip }
func (m *VM) WakeAt() time.Time { return m.wakeAt }

// LastResult returns the top of the operand stack, where the outermost
// return leaves its value, or null if the stack is empty.
func (m *VM) LastResult() value.Value {
	v, _ := m.ops.peek()
	return v
}

// Start pushes the initial activation record for entry and seeds its
// locals with args, then marks the VM runnable.
func (m *VM) Start(entry bytecode.FuncEntry, args []value.Value) error {
	locals := make([]value.Value, entry.NumLocal)
	for i := 0; i < entry.NumArgs && i < len(args) && i < len(locals); i++ {
		locals[i] = args[i]
	}
	fr := activationRecord{returnAddr: -1, savedThis: m.this, locals: locals, watermark: 0, funcName: entry.Name}
	if err := m.calls.push(fr); err != nil {
		return err
	}
	m.ip = int(entry.Offset)
	m.state = StateReady
	return nil
}

// RunSlice executes Step repeatedly until budget instructions have run, or
// the script suspends, finishes, or errors, whichever comes first. This is
// the scheduler's run_slice(script, budget) primitive. A VM with no active
// frame (idle between events) runs nothing.
func (m *VM) RunSlice(budget int) {
	if m.frame() == nil {
		return
	}
	for i := 0; i < budget; i++ {
		switch m.state {
		case StateReady:
			// fallthrough to Step
		default:
			return
		}
		if err := m.Step(); err != nil {
			m.fail(err)
			return
		}
		if m.state != StateReady {
			return
		}
	}
}

// ResumeIfDue transitions a sleeping VM back to ready once wakeAt has
// passed, called by the scheduler's per-tick sleeper sweep.
func (m *VM) ResumeIfDue(now time.Time) {
	if m.state == StateSleeping && !now.Before(m.wakeAt) {
		m.state = StateReady
	}
}

// PollWait evaluates a waiting VM's WaitCond once, called by the
// scheduler's per-tick waiter sweep. If done, the result is pushed and the
// VM becomes ready again.
func (m *VM) PollWait() {
	if m.state != StateWaitingObject || m.wait == nil {
		return
	}
	done, result, err := m.wait()
	if err != nil {
		m.fail(err)
		return
	}
	if !done {
		return
	}
	m.wait = nil
	m.ops.push(result)
	m.state = StateReady
}

func (m *VM) fail(err error) {
	m.err = err
	m.state = StateError
	if m.Warn != nil {
		m.Warn("script fault", "err", err, "ip", m.ip)
	}
}

// ---- fetch helpers -----------------------------------------------------------

func (m *VM) fetchOp() (Opcode, error) {
	if m.ip < 0 || m.ip >= len(m.img.Code) {
		return 0, fmt.Errorf("%w: ip out of range", common.ErrMalformed)
	}
	op := Opcode(m.img.Code[m.ip])
	if !op.IsValid() {
		return 0, fmt.Errorf("%w: opcode 0x%02X", common.ErrMalformed, op)
	}
	return op, nil
}

func (m *VM) operandBytes(width int) []byte {
	start := m.ip + 1
	return m.img.Code[start : start+width]
}

func (m *VM) frame() *activationRecord { return m.calls.top() }

// Step executes exactly one instruction. It is the primitive RunSlice
// loops over, and is also exposed directly for single-stepping tools.
func (m *VM) Step() error {
	if m.frame() == nil {
		return fmt.Errorf("vm: no active frame")
	}
	// A full operand stack traps before the next instruction runs, so no
	// push below is ever silently dropped.
	if m.ops.depth() >= MaxOperandStack {
		return ErrStackOverflow
	}
	op, err := m.fetchOp()
	if err != nil {
		return err
	}
	width := op.OperandWidth()
	body := m.operandBytes(width)
	next := m.ip + 1 + width

	switch op {
	case OpPushInt:
		m.ops.push(value.Int(int64(binary.LittleEndian.Uint64(body))))
	case OpPushFloat:
		bits := binary.LittleEndian.Uint64(body)
		m.ops.push(value.Float(math.Float64frombits(bits)))
	case OpPushString:
		idx := binary.LittleEndian.Uint16(body)
		m.ops.push(value.String(m.img.Symbol(int(idx))))
	case OpPushBool:
		m.ops.push(value.Bool(body[0] != 0))
	case OpPushNull:
		m.ops.push(value.Null())
	case OpPushVar:
		idx := int(binary.LittleEndian.Uint16(body))
		fr := m.frame()
		if idx < 0 || idx >= len(fr.locals) {
			return fmt.Errorf("vm: local slot %d out of range", idx)
		}
		m.ops.push(fr.locals[idx])
	case OpPopVar:
		idx := int(binary.LittleEndian.Uint16(body))
		v, err := m.ops.pop()
		if err != nil {
			return err
		}
		fr := m.frame()
		if idx < 0 || idx >= len(fr.locals) {
			return fmt.Errorf("vm: local slot %d out of range", idx)
		}
		fr.locals[idx] = v
	case OpPopEmpty:
		if _, err := m.ops.pop(); err != nil {
			return err
		}
	case OpPushGlobal:
		idx := int(binary.LittleEndian.Uint16(body))
		if idx < 0 || idx >= len(m.globals) {
			return fmt.Errorf("vm: global slot %d out of range", idx)
		}
		m.ops.push(m.globals[idx])
	case OpPopGlobal:
		idx := int(binary.LittleEndian.Uint16(body))
		v, err := m.ops.pop()
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(m.globals) {
			return fmt.Errorf("vm: global slot %d out of range", idx)
		}
		m.globals[idx] = v
	case OpPushThis:
		m.ops.push(m.frame().savedThis)
	case OpPopThis:
		v, err := m.ops.pop()
		if err != nil {
			return err
		}
		m.frame().savedThis = v

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		b, err := m.ops.pop()
		if err != nil {
			return err
		}
		a, err := m.ops.pop()
		if err != nil {
			return err
		}
		m.ops.push(m.binArith(op, a, b))
	case OpNeg:
		a, err := m.ops.pop()
		if err != nil {
			return err
		}
		m.ops.push(value.Neg(a))

	case OpEq, OpNe, OpStrictEq, OpStrictNe, OpLt, OpGt, OpLe, OpGe:
		b, err := m.ops.pop()
		if err != nil {
			return err
		}
		a, err := m.ops.pop()
		if err != nil {
			return err
		}
		m.ops.push(value.Bool(m.compareOp(op, a, b)))
	case OpNot:
		a, err := m.ops.pop()
		if err != nil {
			return err
		}
		m.ops.push(value.Bool(!a.Truthy()))

	case OpJump:
		next = int(int32(binary.LittleEndian.Uint32(body)))
	case OpJumpIfFalse:
		v, err := m.ops.pop()
		if err != nil {
			return err
		}
		if !v.Truthy() {
			next = int(int32(binary.LittleEndian.Uint32(body)))
		}
	case OpJumpIfTrue:
		v, err := m.ops.pop()
		if err != nil {
			return err
		}
		if v.Truthy() {
			next = int(int32(binary.LittleEndian.Uint32(body)))
		}

	case OpCall:
		symIdx := binary.LittleEndian.Uint16(body[:2])
		argc := int(body[2])
		name := m.img.Symbol(int(symIdx))
		if err := m.doCall(name, argc, next); err != nil {
			return err
		}
		return nil // doCall sets m.ip itself
	case OpCallMethod:
		symIdx := binary.LittleEndian.Uint16(body[:2])
		argc := int(body[2])
		name := m.img.Symbol(int(symIdx))
		if err := m.doCallMethod(name, argc, next); err != nil {
			return err
		}
		return nil
	case OpReturn:
		hasValue := body[0] != 0
		var ret value.Value
		if hasValue {
			var err error
			ret, err = m.ops.pop()
			if err != nil {
				return err
			}
		}
		return m.doReturn(ret)
	case OpReturnEvent:
		return m.doReturn(value.Null())

	case OpGetProperty:
		symIdx := binary.LittleEndian.Uint16(body)
		name := m.img.Symbol(int(symIdx))
		recv, err := m.ops.pop()
		if err != nil {
			return err
		}
		v, err := m.getProperty(recv, name)
		if err != nil {
			return err
		}
		m.ops.push(v)
	case OpSetProperty:
		symIdx := binary.LittleEndian.Uint16(body)
		name := m.img.Symbol(int(symIdx))
		val, err := m.ops.pop()
		if err != nil {
			return err
		}
		recv, err := m.ops.pop()
		if err != nil {
			return err
		}
		if err := m.setProperty(recv, name, val); err != nil {
			return err
		}
	case OpNewObject:
		symIdx := binary.LittleEndian.Uint16(body[:2])
		argc := int(body[2])
		className := m.img.Symbol(int(symIdx))
		args, err := m.popN(argc)
		if err != nil {
			return err
		}
		handle, err := m.host.NewObject(className, args)
		if err != nil {
			return fmt.Errorf("vm: new %s: %w", className, err)
		}
		m.ops.push(value.Object(handle))
	case OpGetElem:
		idx, err := m.ops.pop()
		if err != nil {
			return err
		}
		arr, err := m.ops.pop()
		if err != nil {
			return err
		}
		m.ops.push(arr.ElemAt(int(idx.AsInt())))
	case OpSetElem:
		val, err := m.ops.pop()
		if err != nil {
			return err
		}
		idx, err := m.ops.pop()
		if err != nil {
			return err
		}
		arr, err := m.ops.pop()
		if err != nil {
			return err
		}
		arr.GrowSet(int(idx.AsInt()), val)
		m.ops.push(arr)
	case OpNewArray:
		capHint := int(binary.LittleEndian.Uint16(body))
		m.ops.push(value.NewArray(capHint))

	case OpSleep:
		durMs, err := m.ops.pop()
		if err != nil {
			return err
		}
		m.wakeAt = time.Now().Add(time.Duration(durMs.AsInt()) * time.Millisecond)
		m.state = StateSleeping
		m.ip = next
		return nil
	case OpYield:
		m.state = StateReady // scheduler re-enqueues at the back of the round-robin order
		m.ip = next
		return nil

	default:
		return fmt.Errorf("vm: unimplemented opcode %s", op)
	}

	m.ip = next
	return nil
}

func (m *VM) popN(n int) ([]value.Value, error) {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := m.ops.pop()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *VM) binArith(op Opcode, a, b value.Value) value.Value {
	warn := func(msg string) {
		if m.Warn != nil {
			m.Warn(msg, "ip", m.ip)
		}
	}
	switch op {
	case OpAdd:
		return value.Add(a, b)
	case OpSub:
		return value.Sub(a, b)
	case OpMul:
		return value.Mul(a, b)
	case OpDiv:
		return value.Div(a, b, warn)
	case OpMod:
		return value.Mod(a, b, warn)
	default:
		return value.Null()
	}
}

func (m *VM) compareOp(op Opcode, a, b value.Value) bool {
	switch op {
	case OpEq:
		return value.Equal(a, b)
	case OpNe:
		return !value.Equal(a, b)
	case OpStrictEq:
		return value.StrictEqual(a, b)
	case OpStrictNe:
		return !value.StrictEqual(a, b)
	case OpLt:
		return value.Less(a, b)
	case OpGt:
		return value.Greater(a, b)
	case OpLe:
		return value.LessEq(a, b)
	case OpGe:
		return value.GreaterEq(a, b)
	default:
		return false
	}
}

// doCall handles a bare call: N argc values are popped (in reverse) to
// become the callee's arguments. If name matches a script-level function,
// a new activationRecord is pushed and ip jumps into the callee. Otherwise
// it is resolved against the image's externals table and dispatched
// through the Host: a lib or function the host registry does not
// recognize is always a runtime error, never a silent no-op.
func (m *VM) doCall(name string, argc int, returnTo int) error {
	args, err := m.popN(argc)
	if err != nil {
		return err
	}
	if entry, ok := m.img.FindFunction(name); ok {
		locals := make([]value.Value, entry.NumLocal)
		copy(locals, args)
		fr := activationRecord{returnAddr: returnTo, savedThis: m.this, locals: locals, watermark: m.ops.depth(), funcName: name}
		if err := m.calls.push(fr); err != nil {
			return err
		}
		m.ip = int(entry.Offset)
		return nil
	}
	if ext, ok := m.img.FindExternal(name); ok {
		result, err := m.host.CallExternal(ext.Lib, ext.Name, args)
		if err != nil {
			return fmt.Errorf("%w: external %s.%s: %v", common.ErrNotFound, ext.Lib, ext.Name, err)
		}
		m.ops.push(result)
		m.ip = returnTo
		return nil
	}
	return fmt.Errorf("%w: function %q", common.ErrNotFound, name)
}

// doCallMethod dispatches to either a script-defined method (found with
// FindMethod, called directly) or, if the name is not one of the
// image's own methods, to the receiver's native Scriptable.CallMethod —
// which may itself resolve an `external "lib" fn()` declaration via the
// Host. The receiver is the argc+1'th value down the stack.
func (m *VM) doCallMethod(name string, argc int, returnTo int) error {
	args, err := m.popN(argc)
	if err != nil {
		return err
	}
	recv, err := m.ops.pop()
	if err != nil {
		return err
	}

	if entry, ok := m.img.FindMethod(name); ok {
		locals := make([]value.Value, entry.NumLocal)
		copy(locals, args)
		fr := activationRecord{returnAddr: returnTo, savedThis: recv, locals: locals, watermark: m.ops.depth(), funcName: name}
		if err := m.calls.push(fr); err != nil {
			return err
		}
		m.ip = int(entry.Offset)
		return nil
	}

	if recv.Kind() != value.KindObject {
		return fmt.Errorf("%w: cannot call method %q on non-object", common.ErrMalformed, name)
	}
	obj, live := m.host.Resolve(recv.AsHandle())
	if !live {
		if m.Warn != nil {
			m.Warn("call on gone object", "method", name, "handle", recv.AsHandle())
		}
		m.ops.push(value.Null())
		m.ip = returnTo
		return nil
	}
	result, handled, wait, err := obj.CallMethod(name, args)
	if err != nil {
		return err
	}
	if !handled {
		return fmt.Errorf("%w: method %q", common.ErrNotFound, name)
	}
	if wait != nil {
		m.wait = wait
		m.state = StateWaitingObject
		m.ip = returnTo
		return nil
	}
	m.ops.push(result)
	m.ip = returnTo
	return nil
}

// doReturn pops the current frame, restores the caller's operand-stack
// watermark, pushes the return value (if any) back for the caller, and
// either resumes the caller or finishes the script if this was the
// outermost frame.
func (m *VM) doReturn(ret value.Value) error {
	fr, err := m.calls.pop()
	if err != nil {
		return err
	}
	m.ops.truncate(fr.watermark)
	if fr.returnAddr < 0 {
		m.ops.push(ret)
		m.state = StateFinished
		return nil
	}
	m.ops.push(ret)
	m.ip = fr.returnAddr
	return nil
}

func (m *VM) getProperty(recv value.Value, name string) (value.Value, error) {
	if recv.Kind() != value.KindObject {
		return value.Null(), fmt.Errorf("%w: property %q on non-object", common.ErrMalformed, name)
	}
	obj, live := m.host.Resolve(recv.AsHandle())
	if !live {
		if m.Warn != nil {
			m.Warn("get on gone object", "property", name, "handle", recv.AsHandle())
		}
		return value.Null(), nil // a "gone" handle reads as null, never traps
	}
	if v, ok := obj.GetProperty(name); ok {
		return v, nil
	}
	return value.Null(), nil
}

func (m *VM) setProperty(recv value.Value, name string, val value.Value) error {
	if recv.Kind() != value.KindObject {
		return fmt.Errorf("%w: property %q on non-object", common.ErrMalformed, name)
	}
	obj, live := m.host.Resolve(recv.AsHandle())
	if !live {
		if m.Warn != nil {
			m.Warn("set on gone object", "property", name, "handle", recv.AsHandle())
		}
		return nil // writes to a gone object are silently dropped
	}
	obj.SetProperty(name, val)
	return nil
}
