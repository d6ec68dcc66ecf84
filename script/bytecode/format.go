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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/wintermute-engine/wme/common"
)

// Magic identifies a compiled script image; FormatVersion is the version
// this build writes and reads natively. Images tagged with any version
// newer than FormatVersion, or older than minLoadVersion, fail to load
// rather than risk misreading an unknown layout; versions in between are
// decoded with the current layout.
const (
	Magic          uint32 = 0xDEC0ADDE
	FormatVersion  uint16 = 0x0102
	minLoadVersion uint16 = 0x0100
)

type tableSpan struct{ off, length uint32 }

// Encode serializes img to the on-disk layout: a fixed header of offset/
// length pairs per table, followed by the table bytes themselves in the
// same order the header lists them.
func Encode(img *Image) []byte {
	var code, symbols, functions, methods, events, externals, srcName bytes.Buffer

	code.Write(img.Code)
	writeStringTable(&symbols, img.Symbols)
	writeFuncTable(&functions, img.Functions)
	writeFuncTable(&methods, img.Methods)
	writeFuncTable(&events, img.Events)
	writeExternTable(&externals, img.Externals)
	srcName.WriteString(img.SourceName)

	sections := []*bytes.Buffer{&code, &symbols, &functions, &methods, &events, &externals, &srcName}
	spans := make([]tableSpan, len(sections))
	offset := uint32(headerSize)
	for i, s := range sections {
		spans[i] = tableSpan{off: offset, length: uint32(s.Len())}
		offset += uint32(s.Len())
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, Magic)
	binary.Write(&out, binary.LittleEndian, FormatVersion)
	binary.Write(&out, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&out, binary.LittleEndian, uint16(img.GlobalCount))
	binary.Write(&out, binary.LittleEndian, img.InitOffset)
	hasInit := uint8(0)
	if img.HasInit {
		hasInit = 1
	}
	binary.Write(&out, binary.LittleEndian, hasInit)
	binary.Write(&out, binary.LittleEndian, uint8(0)) // pad
	for _, sp := range spans {
		binary.Write(&out, binary.LittleEndian, sp.off)
		binary.Write(&out, binary.LittleEndian, sp.length)
	}
	for _, s := range sections {
		out.Write(s.Bytes())
	}
	return out.Bytes()
}

// headerSize is magic(4) + version(2) + reserved(2) + globalCount(2) +
// initOffset(4) + hasInit(1) + pad(1) + 7 table spans * 8 bytes.
const headerSize = 4 + 2 + 2 + 2 + 4 + 1 + 1 + 7*8

// Decode parses a compiled image from raw bytes, classifying any failure
// as a format error per the engine's error taxonomy.
func Decode(data []byte, sourcePath string) (*Image, error) {
	if len(data) < headerSize {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, 0, fmt.Errorf("%w: truncated header", common.ErrMalformed))
	}
	r := bytes.NewReader(data)

	var magic uint32
	var version, reserved, globalCount uint16
	var initOffset uint32
	var hasInit, pad uint8
	binary.Read(r, binary.LittleEndian, &magic)
	binary.Read(r, binary.LittleEndian, &version)
	binary.Read(r, binary.LittleEndian, &reserved)
	if magic != Magic {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, 0, fmt.Errorf("%w: bad magic 0x%08X", common.ErrMalformed, magic))
	}
	if version > FormatVersion {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, 4, fmt.Errorf("%w: image version 0x%04X newer than runtime 0x%04X", common.ErrVersion, version, FormatVersion))
	}
	if version < minLoadVersion {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, 4, fmt.Errorf("%w: image version 0x%04X too old", common.ErrVersion, version))
	}
	binary.Read(r, binary.LittleEndian, &globalCount)
	binary.Read(r, binary.LittleEndian, &initOffset)
	binary.Read(r, binary.LittleEndian, &hasInit)
	binary.Read(r, binary.LittleEndian, &pad)

	spans := make([]tableSpan, 7)
	for i := range spans {
		binary.Read(r, binary.LittleEndian, &spans[i].off)
		binary.Read(r, binary.LittleEndian, &spans[i].length)
	}

	section := func(sp tableSpan) ([]byte, error) {
		end := uint64(sp.off) + uint64(sp.length)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: table span out of range", common.ErrMalformed)
		}
		return data[sp.off:end], nil
	}

	img := &Image{FormatVersion: version, GlobalCount: int(globalCount), InitOffset: initOffset, HasInit: hasInit != 0}
	var err error
	if img.Code, err = section(spans[0]); err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[0].off), err)
	}
	symBytes, err := section(spans[1])
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[1].off), err)
	}
	if img.Symbols, err = readStringTable(symBytes); err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[1].off), err)
	}
	fnBytes, err := section(spans[2])
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[2].off), err)
	}
	if img.Functions, err = readFuncTable(fnBytes); err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[2].off), err)
	}
	mdBytes, err := section(spans[3])
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[3].off), err)
	}
	if img.Methods, err = readFuncTable(mdBytes); err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[3].off), err)
	}
	evBytes, err := section(spans[4])
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[4].off), err)
	}
	if img.Events, err = readFuncTable(evBytes); err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[4].off), err)
	}
	extBytes, err := section(spans[5])
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[5].off), err)
	}
	if img.Externals, err = readExternTable(extBytes); err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[5].off), err)
	}
	nameBytes, err := section(spans[6])
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "bytecode", sourcePath, int64(spans[6].off), err)
	}
	img.SourceName = string(nameBytes)

	return img, nil
}

// ---- table codecs -----------------------------------------------------------

func writeLPString(w *bytes.Buffer, s string) {
	binary.Write(w, binary.LittleEndian, uint16(len(s)))
	w.WriteString(s)
}

func readLPString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", io.ErrUnexpectedEOF
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", io.ErrUnexpectedEOF
	}
	return string(buf), nil
}

func writeStringTable(w *bytes.Buffer, strs []string) {
	binary.Write(w, binary.LittleEndian, uint32(len(strs)))
	for _, s := range strs {
		writeLPString(w, s)
	}
}

func readStringTable(data []byte) ([]string, error) {
	r := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s, err := readLPString(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func writeFuncTable(w *bytes.Buffer, fns []FuncEntry) {
	binary.Write(w, binary.LittleEndian, uint32(len(fns)))
	for _, f := range fns {
		writeLPString(w, f.Name)
		binary.Write(w, binary.LittleEndian, f.Offset)
		binary.Write(w, binary.LittleEndian, uint16(f.NumArgs))
		binary.Write(w, binary.LittleEndian, uint16(f.NumLocal))
	}
}

func readFuncTable(data []byte) ([]FuncEntry, error) {
	r := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]FuncEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := readLPString(r)
		if err != nil {
			return nil, err
		}
		var off uint32
		var nargs, nlocal uint16
		if err := binary.Read(r, binary.LittleEndian, &off); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &nargs); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &nlocal); err != nil {
			return nil, err
		}
		out = append(out, FuncEntry{Name: name, Offset: off, NumArgs: int(nargs), NumLocal: int(nlocal)})
	}
	return out, nil
}

func writeExternTable(w *bytes.Buffer, exts []ExternEntry) {
	binary.Write(w, binary.LittleEndian, uint32(len(exts)))
	for _, e := range exts {
		writeLPString(w, e.Lib)
		writeLPString(w, e.Name)
		writeLPString(w, e.Signature)
	}
}

func readExternTable(data []byte) ([]ExternEntry, error) {
	r := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]ExternEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		lib, err := readLPString(r)
		if err != nil {
			return nil, err
		}
		name, err := readLPString(r)
		if err != nil {
			return nil, err
		}
		sig, err := readLPString(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ExternEntry{Lib: lib, Name: name, Signature: sig})
	}
	return out, nil
}
