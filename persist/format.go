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

// Package persist implements the save-game persistence protocol: a
// bidirectional transfer interface every Persistable implements
// once and that runs both directions depending on the Manager's Mode,
// grounded on core/state/journal.go's "one list of operations, replayed
// forward or as an undo" shape and the length-prefixed binary idioms of
// script/bytecode/format.go.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/wintermute-engine/wme/common"
)

// Magic identifies a save file; EngineVersion is the persistence wire
// format this build writes and is willing to load. GameVersion is the
// caller's own save-schema version (bumped when a game's own object
// layout changes), checked by the caller after Load returns the header.
const (
	Magic         uint32 = 0xDEC0ADDE
	EngineVersion uint16 = 1
)

// Header is the save file's fixed preamble: magic, save-format version,
// name string, description string, timestamp int64, thumbnail byte-array.
type Header struct {
	EngineVersion uint16
	GameVersion   uint16
	Name          string
	Description   string
	Timestamp     time.Time
	Thumbnail     []byte
}

// Result is the standard save/load outcome enum: ok, version-too-old,
// version-too-new, corrupt, io-error.
type Result int

const (
	ResultOK Result = iota
	ResultVersionTooOld
	ResultVersionTooNew
	ResultCorrupt
	ResultIOError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultVersionTooOld:
		return "version-too-old"
	case ResultVersionTooNew:
		return "version-too-new"
	case ResultCorrupt:
		return "corrupt"
	case ResultIOError:
		return "io-error"
	default:
		return "unknown"
	}
}

func writeHeader(w io.Writer, h Header) error {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, Magic)
	binary.Write(buf, binary.LittleEndian, EngineVersion)
	binary.Write(buf, binary.LittleEndian, h.GameVersion)
	writeLPString(buf, h.Name)
	writeLPString(buf, h.Description)
	binary.Write(buf, binary.LittleEndian, h.Timestamp.Unix())
	binary.Write(buf, binary.LittleEndian, uint32(len(h.Thumbnail)))
	buf.Write(h.Thumbnail)
	_, err := w.Write(buf.Bytes())
	return err
}

// readHeader reads and validates the fixed preamble, classifying a
// version mismatch without ever touching the caller's live state: loading
// an incompatible version returns a clear error and does not touch live
// state.
func readHeader(r io.Reader) (Header, Result, error) {
	var h Header
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return h, ResultIOError, err
	}
	if magic != Magic {
		return h, ResultCorrupt, fmt.Errorf("%w: bad save magic 0x%08X", common.ErrMalformed, magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &h.EngineVersion); err != nil {
		return h, ResultIOError, err
	}
	if h.EngineVersion < EngineVersion {
		return h, ResultVersionTooOld, fmt.Errorf("%w: save engine version %d, want %d", common.ErrVersion, h.EngineVersion, EngineVersion)
	}
	if h.EngineVersion > EngineVersion {
		return h, ResultVersionTooNew, fmt.Errorf("%w: save engine version %d, want %d", common.ErrVersion, h.EngineVersion, EngineVersion)
	}
	if err := binary.Read(r, binary.LittleEndian, &h.GameVersion); err != nil {
		return h, ResultIOError, err
	}
	name, err := readLPString(r)
	if err != nil {
		return h, ResultCorrupt, err
	}
	desc, err := readLPString(r)
	if err != nil {
		return h, ResultCorrupt, err
	}
	var ts int64
	if err := binary.Read(r, binary.LittleEndian, &ts); err != nil {
		return h, ResultIOError, err
	}
	var thumbLen uint32
	if err := binary.Read(r, binary.LittleEndian, &thumbLen); err != nil {
		return h, ResultIOError, err
	}
	thumb := make([]byte, thumbLen)
	if _, err := io.ReadFull(r, thumb); err != nil {
		return h, ResultCorrupt, err
	}
	h.Name, h.Description, h.Timestamp, h.Thumbnail = name, desc, time.Unix(ts, 0).UTC(), thumb
	return h, ResultOK, nil
}

func writeLPString(w *bytes.Buffer, s string) {
	binary.Write(w, binary.LittleEndian, uint32(len(s)))
	w.WriteString(s)
}

func readLPString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
