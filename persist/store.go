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

package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/cp"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/wintermute-engine/wme/internal/wlog"
)

// ConstructFunc builds an empty instance of className with the given id,
// the id being the handle this object was saved under so ObjectRef fields
// elsewhere in the save keep resolving to it after load. The engine does
// not supply one; gameobj.Registry.ConstructForLoad builds objects with
// their saved id and returns a gameobj.Object, which a caller adapts.
type ConstructFunc func(className string, id uint64) (Persistable, error)

var storeLog = wlog.Root().With("component", "persist")

// encodeObjects writes an object count, then one record per object: its
// class name, id, and length-prefixed Persist payload.
func encodeObjects(objects []Persistable) ([]byte, error) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(len(objects)))
	for _, obj := range objects {
		mgr := newSaveManager()
		if err := obj.Persist(mgr); err != nil {
			return nil, fmt.Errorf("persist: object #%d (%s): %w", obj.ObjectID(), obj.ClassName(), err)
		}
		if mgr.Err() != nil {
			return nil, fmt.Errorf("persist: object #%d (%s): %w", obj.ObjectID(), obj.ClassName(), mgr.Err())
		}
		writeLPString(buf, obj.ClassName())
		binary.Write(buf, binary.LittleEndian, obj.ObjectID())
		payload := mgr.w.Bytes()
		binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
		buf.Write(payload)
	}
	return buf.Bytes(), nil
}

// decodeObjects runs the required two-phase load: every object is
// constructed first (so its id is resolvable), then every object's
// Persist is run to fill its fields, by which point any ObjectRef it
// reads already names a live, constructed Persistable.
func decodeObjects(data []byte, construct ConstructFunc) ([]Persistable, error) {
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	type pending struct {
		obj     Persistable
		payload []byte
	}
	items := make([]pending, 0, count)

	for i := uint32(0); i < count; i++ {
		className, err := readLPString(r)
		if err != nil {
			return nil, err
		}
		var id uint64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		var payloadLen uint32
		if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
			return nil, err
		}
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		obj, err := construct(className, id)
		if err != nil {
			return nil, fmt.Errorf("persist: object #%d: %w", id, err)
		}
		items = append(items, pending{obj: obj, payload: payload})
	}

	objects := make([]Persistable, len(items))
	for i, it := range items {
		mgr := newLoadManager(it.payload)
		if err := it.obj.Persist(mgr); err != nil {
			return nil, fmt.Errorf("persist: object #%d (%s): %w", it.obj.ObjectID(), it.obj.ClassName(), err)
		}
		if mgr.Err() != nil {
			return nil, fmt.Errorf("persist: object #%d (%s): %w", it.obj.ObjectID(), it.obj.ClassName(), mgr.Err())
		}
		objects[i] = it.obj
	}
	return objects, nil
}

// FlatStore persists one save per file, using the header/body shape of
// the save-game format. Writes are atomic (temp file + rename) so a
// crash mid-write never corrupts the previous save; if a save already
// exists at the target path it is first copied to a ".bak" sibling via
// cespare/cp, giving every overwrite a one-deep rollback.
type FlatStore struct{}

// Save writes header and objects to path.
func (FlatStore) Save(path string, header Header, objects []Persistable) error {
	opID := uuid.New()
	storeLog.Info("save starting", "op", opID, "path", path, "objects", len(objects))

	body, err := encodeObjects(objects)
	if err != nil {
		storeLog.Error("save failed", "op", opID, "err", err)
		return err
	}

	buf := &bytes.Buffer{}
	if err := writeHeader(buf, header); err != nil {
		return err
	}
	buf.Write(body)

	if _, err := os.Stat(path); err == nil {
		if err := cp.CopyAll(path+".bak", path); err != nil {
			storeLog.Warn("could not back up previous save", "op", opID, "path", path, "err", err)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".save-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	storeLog.Info("save complete", "op", opID, "path", path)
	return nil
}

// Load reads and validates path's header, then runs the two-phase object
// decode, constructing each object via construct.
func (FlatStore) Load(path string, construct ConstructFunc) (Header, []Persistable, Result, error) {
	opID := uuid.New()
	storeLog.Info("load starting", "op", opID, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		storeLog.Error("load failed", "op", opID, "err", err)
		return Header{}, nil, ResultIOError, err
	}
	r := bytes.NewReader(data)
	header, result, err := readHeader(r)
	if err != nil {
		storeLog.Error("load failed", "op", opID, "result", result, "err", err)
		return header, nil, result, err
	}
	rest := data[len(data)-r.Len():]
	objects, err := decodeObjects(rest, construct)
	if err != nil {
		storeLog.Error("load failed", "op", opID, "err", err)
		return header, nil, ResultCorrupt, err
	}
	storeLog.Info("load complete", "op", opID, "objects", len(objects))
	return header, objects, ResultOK, nil
}

// LevelStore keeps many save "slots" in one on-disk LevelDB instance,
// each slot's header and body stored under key prefixes "h:"+name and
// "b:"+name — an alternative to FlatStore for platforms (consoles,
// mobile) that favor one managed store over many loose files.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens (creating if absent) the LevelDB instance at dir.
func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Close() error { return s.db.Close() }

// Save writes header and objects under slot name.
func (s *LevelStore) Save(name string, header Header, objects []Persistable) error {
	opID := uuid.New()
	storeLog.Info("save starting", "op", opID, "slot", name, "objects", len(objects))

	body, err := encodeObjects(objects)
	if err != nil {
		return err
	}
	hbuf := &bytes.Buffer{}
	if err := writeHeader(hbuf, header); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte("h:"+name), hbuf.Bytes())
	batch.Put([]byte("b:"+name), body)
	if err := s.db.Write(batch, nil); err != nil {
		storeLog.Error("save failed", "op", opID, "slot", name, "err", err)
		return err
	}
	storeLog.Info("save complete", "op", opID, "slot", name)
	return nil
}

// Load reads slot name.
func (s *LevelStore) Load(name string, construct ConstructFunc) (Header, []Persistable, Result, error) {
	opID := uuid.New()
	storeLog.Info("load starting", "op", opID, "slot", name)

	hdata, err := s.db.Get([]byte("h:"+name), nil)
	if err != nil {
		return Header{}, nil, ResultIOError, err
	}
	header, result, err := readHeader(bytes.NewReader(hdata))
	if err != nil {
		return header, nil, result, err
	}
	body, err := s.db.Get([]byte("b:"+name), nil)
	if err != nil {
		return header, nil, ResultIOError, err
	}
	objects, err := decodeObjects(body, construct)
	if err != nil {
		return header, nil, ResultCorrupt, err
	}
	storeLog.Info("load complete", "op", opID, "slot", name, "objects", len(objects))
	return header, objects, ResultOK, nil
}
