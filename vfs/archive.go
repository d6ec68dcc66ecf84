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

package vfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"

	"github.com/wintermute-engine/wme/common"
)

// Package-archive header magics and the format-version threshold at which
// the per-entry second timestamp field was added.
const (
	magic1            uint32 = 0xDEC0ADDE
	magic2            uint32 = 0x4B4E554A
	version2Timestamp uint32 = 0x200

	// snappyTag marks a compressed entry's payload: compressed-length of 0
	// or == length means "stored" (no codec), anything else is snappy-compressed
	// with this leading 4-byte tag.
	snappyTag uint32 = 0x01534E50 // "PNS\x01", little-endian
)

// Header is the package archive's fixed preamble.
type Header struct {
	FormatVersion uint32
	GameVersion   uint32
	Priority      byte
	CDNumber      byte
	Master        bool
	Timestamp     int32
	Description   string
}

// rawEntry is one decoded directory entry, flattened under its owning
// directory's name before being exposed as a public vfs.Entry.
type rawEntry struct {
	name             string
	offset           uint32
	length           uint32
	compressedLength uint32
	flags            uint32
}

// Package is one mounted archive: its parsed header/directory table plus
// the bytes needed to satisfy a raw read without reopening the file. The
// whole file is memory-mapped at mount time (edsrzf/mmap-go) so a "bounded
// read" is just a slice of already-resident memory; readMu still guards the
// read-plus-decompress section as one unit, holding each package file
// handle under a mutex for the duration of one raw read + decompress, even
// though no real file descriptor is touched per read.
type Package struct {
	ID       int
	Path     string
	Header   Header
	Priority int

	entries map[string]rawEntry // normalized "dir/name" -> entry
	order   []string            // insertion order, for deterministic Enumerate

	data    mmap.MMap
	backing *os.File
	readMu  sync.Mutex

	Digest [blake2b.Size256]byte // blake2b-256 of everything after the fixed header, computed at open; nothing compares it
}

// OpenPackage parses path's header and directory table and mmaps its body.
// A malformed magic/version is reported as a format error and never aborts
// other mounts.
func OpenPackage(id int, path string, priority int) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "vfs", path, 0, err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, common.Wrap(common.KindFormat, "vfs", path, 0, fmt.Errorf("mmap: %w", err))
	}

	p := &Package{ID: id, Path: path, Priority: priority, entries: map[string]rawEntry{}, data: data, backing: f}
	if err := p.parseDirectory(); err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	p.Digest = blake2b.Sum256(data[headerFixedSize():])
	return p, nil
}

// Close unmaps the archive and releases its file handle.
func (p *Package) Close() error {
	p.readMu.Lock()
	defer p.readMu.Unlock()
	err := p.data.Unmap()
	if cerr := p.backing.Close(); err == nil {
		err = cerr
	}
	return err
}

func headerFixedSize() int { return 4 + 4 + 4 + 4 + 1 + 1 + 1 + 4 + 100 + 4 }

// parseDirectory reads the header and every directory's entry table,
// flattening "directory/entry" into p.entries keyed by normalized path.
func (p *Package) parseDirectory() error {
	r := bytes.NewReader(p.data)

	var m1, m2 uint32
	binary.Read(r, binary.LittleEndian, &m1)
	binary.Read(r, binary.LittleEndian, &m2)
	if m1 != magic1 || m2 != magic2 {
		return common.Wrap(common.KindFormat, "vfs", p.Path, 0, fmt.Errorf("%w: bad package magic", common.ErrMalformed))
	}

	var formatVersion, gameVersion uint32
	binary.Read(r, binary.LittleEndian, &formatVersion)
	binary.Read(r, binary.LittleEndian, &gameVersion)

	var priority, cdNumber, master byte
	binary.Read(r, binary.LittleEndian, &priority)
	binary.Read(r, binary.LittleEndian, &cdNumber)
	binary.Read(r, binary.LittleEndian, &master)

	var timestamp int32
	binary.Read(r, binary.LittleEndian, &timestamp)

	descBuf := make([]byte, 100)
	if _, err := io.ReadFull(r, descBuf); err != nil {
		return common.Wrap(common.KindFormat, "vfs", p.Path, 0, fmt.Errorf("%w: truncated description", common.ErrMalformed))
	}

	var dirCount uint32
	if err := binary.Read(r, binary.LittleEndian, &dirCount); err != nil {
		return common.Wrap(common.KindFormat, "vfs", p.Path, 0, fmt.Errorf("%w: truncated directory count", common.ErrMalformed))
	}

	p.Header = Header{
		FormatVersion: formatVersion,
		GameVersion:   gameVersion,
		Priority:      priority,
		CDNumber:      cdNumber,
		Master:        master != 0,
		Timestamp:     timestamp,
		Description:   string(bytes.TrimRight(descBuf, "\x00")),
	}

	hasSecondTimestamp := formatVersion >= version2Timestamp

	for d := uint32(0); d < dirCount; d++ {
		dirName, err := readPString(r)
		if err != nil {
			return common.Wrap(common.KindFormat, "vfs", p.Path, 0, fmt.Errorf("%w: directory name", common.ErrMalformed))
		}
		var dirCD byte
		binary.Read(r, binary.LittleEndian, &dirCD)
		var entryCount uint32
		if err := binary.Read(r, binary.LittleEndian, &entryCount); err != nil {
			return common.Wrap(common.KindFormat, "vfs", p.Path, 0, fmt.Errorf("%w: entry count", common.ErrMalformed))
		}

		for e := uint32(0); e < entryCount; e++ {
			name, err := readPString(r)
			if err != nil {
				return common.Wrap(common.KindFormat, "vfs", p.Path, 0, fmt.Errorf("%w: entry name", common.ErrMalformed))
			}
			var offset, length, clen, flags, ts1 uint32
			binary.Read(r, binary.LittleEndian, &offset)
			binary.Read(r, binary.LittleEndian, &length)
			binary.Read(r, binary.LittleEndian, &clen)
			binary.Read(r, binary.LittleEndian, &flags)
			binary.Read(r, binary.LittleEndian, &ts1)
			if hasSecondTimestamp {
				var ts2 uint32
				binary.Read(r, binary.LittleEndian, &ts2)
			}

			full := dirName
			if full != "" {
				full += "/"
			}
			full += name
			norm := NormalizePath(full)
			p.entries[norm] = rawEntry{name: full, offset: offset, length: length, compressedLength: clen, flags: flags}
			p.order = append(p.order, norm)
		}
	}
	return nil
}

func readPString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Stat looks up a normalized path without reading its bytes.
func (p *Package) Stat(norm string) (Entry, bool) {
	re, ok := p.entries[norm]
	if !ok {
		return Entry{}, false
	}
	return Entry{Path: norm, PackageID: p.ID, Offset: re.offset, UncompressedSize: re.length, CompressedSize: re.compressedLength, Flags: re.flags, Priority: p.Priority}, true
}

// Names returns every normalized path this package contributes, in
// directory-table order.
func (p *Package) Names() []string { return p.order }

// Read performs one bounded raw read of norm's bytes and decompresses them
// if needed, returning a standalone, archive-independent copy: it never
// returns a stream that references the archive file.
func (p *Package) Read(norm string) ([]byte, error) {
	re, ok := p.entries[norm]
	if !ok {
		return nil, common.ErrNotFound
	}

	p.readMu.Lock()
	defer p.readMu.Unlock()

	end := uint64(re.offset) + uint64(re.compressedLength)
	if re.compressedLength == 0 {
		end = uint64(re.offset) + uint64(re.length)
	}
	if end > uint64(len(p.data)) {
		return nil, common.Wrap(common.KindFormat, "vfs", p.Path, int64(re.offset), fmt.Errorf("%w: entry %q out of range", common.ErrMalformed, re.name))
	}
	raw := make([]byte, end-uint64(re.offset))
	copy(raw, p.data[re.offset:end])

	stored := re.compressedLength == 0 || re.compressedLength == re.length
	if stored {
		return raw, nil
	}
	if len(raw) < 4 {
		return nil, common.Wrap(common.KindFormat, "vfs", p.Path, int64(re.offset), fmt.Errorf("%w: entry %q missing compression tag", common.ErrMalformed, re.name))
	}
	tag := binary.LittleEndian.Uint32(raw[:4])
	if tag != snappyTag {
		return nil, common.Wrap(common.KindFormat, "vfs", p.Path, int64(re.offset), fmt.Errorf("%w: entry %q unknown compression tag 0x%08X", common.ErrMalformed, re.name, tag))
	}
	out, err := snappy.Decode(nil, raw[4:])
	if err != nil {
		return nil, common.Wrap(common.KindFormat, "vfs", p.Path, int64(re.offset), fmt.Errorf("snappy decode %q: %w", re.name, err))
	}
	return out, nil
}
