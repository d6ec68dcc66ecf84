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

// Package hostext implements the external-call side of the scripting
// runtime: a pluggable registry of `external "lib" fn(...)` providers plugged into a
// vm.Host, plus the adapter that combines a gameobj.Registry (the
// id-handle half of Host) with that provider registry into the complete
// Host every script VM runs against.
package hostext

import (
	"fmt"

	"github.com/wintermute-engine/wme/value"
)

// toNative converts a script Value to a plain Go value a script engine's
// own marshaling (goja's reflection-based ToValue, duktape's explicit
// Push* calls) can consume. Arrays and objects are not supported as
// external-call arguments; `external` calls are scoped to scalar
// marshaling.
func toNative(v value.Value) (interface{}, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		return v.AsBool(), nil
	case value.KindInt:
		return v.AsInt(), nil
	case value.KindFloat:
		return v.AsFloat(), nil
	case value.KindString:
		return v.AsString(), nil
	default:
		return nil, fmt.Errorf("hostext: external calls cannot marshal a %s argument", v.Kind())
	}
}

// fromNative converts a script engine's result back into a script Value.
// Only the scalar kinds toNative produces are expected back; anything else
// (an object, a function) is reported as a runtime error rather than
// silently coerced.
func fromNative(x interface{}) (value.Value, error) {
	switch t := x.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(t), nil
	case int64:
		return value.Int(t), nil
	case int:
		return value.Int(int64(t)), nil
	case float64:
		return value.Float(t), nil
	case string:
		return value.String(t), nil
	default:
		return value.Null(), fmt.Errorf("hostext: external call returned unsupported type %T", x)
	}
}
