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

package bytecode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleImage() *Image {
	return &Image{
		SourceName: "room1.wms",
		Code:       []byte{0x01, 0x02, 0x03, 0x04},
		Symbols:    []string{"x", "y", "onEnter"},
		Functions:  []FuncEntry{{Name: "main", Offset: 0, NumArgs: 0, NumLocal: 2}},
		Methods:    []FuncEntry{{Name: "walkTo", Offset: 4, NumArgs: 2, NumLocal: 0}},
		Events:     []FuncEntry{{Name: "onEnter", Offset: 8, NumArgs: 0, NumLocal: 0}},
		Externals:  []ExternEntry{{Lib: "math", Name: "sqrt", Signature: "f(f)"}},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := sampleImage()
	blob := Encode(img)

	got, err := Decode(blob, "room1.wms")
	require.NoError(t, err)
	require.Equal(t, img.Code, got.Code)
	require.Equal(t, img.Symbols, got.Symbols)
	require.Equal(t, img.Functions, got.Functions)
	require.Equal(t, img.Methods, got.Methods)
	require.Equal(t, img.Events, got.Events)
	require.Equal(t, img.Externals, got.Externals)
	require.Equal(t, img.SourceName, got.SourceName)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	blob := Encode(sampleImage())
	binary.LittleEndian.PutUint32(blob, 0xBADBADBA)
	_, err := Decode(blob, "room1.wms")
	require.Error(t, err)
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	blob := Encode(sampleImage())
	binary.LittleEndian.PutUint16(blob[4:], FormatVersion+1)
	_, err := Decode(blob, "room1.wms")
	require.Error(t, err)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, "short.wms")
	require.Error(t, err)
}

func TestFindLookups(t *testing.T) {
	img := sampleImage()
	fn, ok := img.FindFunction("main")
	require.True(t, ok)
	require.Equal(t, uint32(0), fn.Offset)

	_, ok = img.FindMethod("nope")
	require.False(t, ok)

	ev, ok := img.FindEvent("onEnter")
	require.True(t, ok)
	require.Equal(t, uint32(8), ev.Offset)
}
