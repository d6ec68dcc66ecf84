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

// Package value implements the dynamically-typed Value every script-visible
// quantity is made of: a tagged union over {null, bool, int, float, string,
// object reference, array}, with its own coercion, comparison, and
// truthiness rules.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind discriminates the Value union.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Resolver resolves a native-object handle to a live object, or reports that
// the handle has gone: it either resolves to a live object or to "gone".
// The VM/scriptable packages supply the concrete implementation backed by the
// central object registry; Value itself only stores the opaque handle so
// that this package has no dependency on the game-object tree.
type Resolver interface {
	Resolve(handle uint64) (obj interface{}, live bool)
}

// Value is a copy-on-assign tagged union. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	h    uint64  // object handle, valid when kind == KindObject
	arr  []Value // valid when kind == KindArray; copied on assignment by callers
}

func Null() Value                { return Value{kind: KindNull} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Int(i int64) Value          { return Value{kind: KindInt, i: i} }
func Float(f float64) Value      { return Value{kind: KindFloat, f: f} }
func String(s string) Value      { return Value{kind: KindString, s: s} }
func Object(handle uint64) Value { return Value{kind: KindObject, h: handle} }

// Array builds an array Value from a slice, copying it so later mutation of
// elems does not alias the Value's backing store.
func Array(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// NewArray returns an empty array Value of the given initial capacity,
// matching the VM's NewArray opcode.
func NewArray(capHint int) Value {
	return Value{kind: KindArray, arr: make([]Value, 0, capHint)}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) AsBool() bool   { return v.b }
func (v Value) AsInt() int64   { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsString() string { return v.s }
func (v Value) AsHandle() uint64 { return v.h }
func (v Value) AsArray() []Value { return v.arr }

// Len returns the element count for arrays and the byte length for strings;
// it is 0 for every other kind. Used by the VM's length-ish helpers.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindString:
		return len(v.s)
	default:
		return 0
	}
}

// GrowSet stores elem at idx, growing the array with null padding if idx is
// beyond the current length: arrays grow dynamically. A non-array v is
// replaced by an empty array first.
func (v *Value) GrowSet(idx int, elem Value) {
	if v.kind != KindArray {
		*v = Value{kind: KindArray}
	}
	for len(v.arr) <= idx {
		v.arr = append(v.arr, Null())
	}
	v.arr[idx] = elem
}

// ElemAt returns the element at idx, or null if idx is out of range (out of
// range is not an error at this layer; the VM decides whether to warn).
func (v Value) ElemAt(idx int) Value {
	if v.kind != KindArray || idx < 0 || idx >= len(v.arr) {
		return Null()
	}
	return v.arr[idx]
}

// Truthy implements the language's truthiness rule: null and 0 and '' are
// false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindObject:
		return v.h != 0
	case KindArray:
		return true
	default:
		return false
	}
}

func (v Value) isNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) numAsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// String renders the Value for string-concatenation and diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindObject:
		return fmt.Sprintf("[object #%d]", v.h)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// ---- Arithmetic --------------------------------------------------------

// Add implements +: numeric addition, or string concatenation if either
// operand is a string ("+ concatenates if either operand is string").
func Add(a, b Value) Value {
	if a.kind == KindString || b.kind == KindString {
		return String(a.String() + b.String())
	}
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i + b.i)
	}
	return Float(a.numAsFloat() + b.numAsFloat())
}

func Sub(a, b Value) Value { return arith(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y }) }
func Mul(a, b Value) Value { return arith(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }) }

// Div implements ÷; division by zero yields the defined value 0 with a
// warning rather than trapping. warn is invoked (if non-nil) so
// the caller (the VM) can log the diagnostic with script file/line context.
func Div(a, b Value, warn func(string)) Value {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			if warn != nil {
				warn("division by zero")
			}
			return Int(0)
		}
		return Int(a.i / b.i)
	}
	bf := b.numAsFloat()
	if bf == 0 {
		if warn != nil {
			warn("division by zero")
		}
		return Int(0)
	}
	return Float(a.numAsFloat() / bf)
}

// Mod implements %, which is always integer.
func Mod(a, b Value, warn func(string)) Value {
	bi := toInt(b)
	if bi == 0 {
		if warn != nil {
			warn("modulo by zero")
		}
		return Int(0)
	}
	return Int(toInt(a) % bi)
}

func Neg(a Value) Value {
	if a.kind == KindInt {
		return Int(-a.i)
	}
	return Float(-a.numAsFloat())
}

func arith(a, b Value, iop func(int64, int64) int64, fop func(float64, float64) float64) Value {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(iop(a.i, b.i))
	}
	return Float(fop(a.numAsFloat(), b.numAsFloat()))
}

func toInt(v Value) int64 {
	if v.kind == KindInt {
		return v.i
	}
	if v.kind == KindFloat {
		return int64(v.f)
	}
	if v.kind == KindString {
		n, _ := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		return n
	}
	if v.kind == KindBool && v.b {
		return 1
	}
	return 0
}

// ---- Comparison ---------------------------------------------------------

// Equal implements coercive == (not identity): "Equality is strict only when
// both operands are native-object-references (identity); otherwise it
// coerces."
func Equal(a, b Value) bool {
	if a.kind == KindObject && b.kind == KindObject {
		return StrictEqual(a, b)
	}
	return compare(a, b) == 0
}

// StrictEqual implements ===, reserved for native-object-references:
// same-identity only. Non-object operands are never strictly equal, even
// to themselves of the same kind.
func StrictEqual(a, b Value) bool {
	if a.kind != KindObject || b.kind != KindObject {
		return false
	}
	return a.h == b.h
}

// Less, LessEq, Greater, GreaterEq implement <, <=, >, >= with the same
// coercion table as Compare.
func Less(a, b Value) bool      { return compare(a, b) < 0 }
func LessEq(a, b Value) bool    { return compare(a, b) <= 0 }
func Greater(a, b Value) bool   { return compare(a, b) > 0 }
func GreaterEq(a, b Value) bool { return compare(a, b) >= 0 }

// compare returns <0, 0, >0: comparisons coerce numerically, compare
// strings lexicographically, compare booleans numerically, and treat
// null < everything except null.
func compare(a, b Value) int {
	if a.kind == KindNull && b.kind == KindNull {
		return 0
	}
	if a.kind == KindNull {
		return -1
	}
	if b.kind == KindNull {
		return 1
	}
	if a.kind == KindString && b.kind == KindString {
		return strings.Compare(a.s, b.s)
	}
	if a.kind == KindString || b.kind == KindString {
		// One side is string, the other isn't: coerce both to string per the
		// same "promote to string on string+anything" family of rules.
		return strings.Compare(a.String(), b.String())
	}
	af, bf := numericOf(a), numericOf(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

func numericOf(v Value) float64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		return 0
	}
}

// IsFiniteFloat reports whether v is a float Value holding a finite number,
// used by the persistence layer to reject NaN/Inf before serializing.
func IsFiniteFloat(v Value) bool {
	return v.kind != KindFloat || !math.IsNaN(v.f) && !math.IsInf(v.f, 0)
}
