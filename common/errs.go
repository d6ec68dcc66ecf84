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

package common

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across subsystems. Subsystem-local errors wrap these
// with fmt.Errorf("...: %w", ...) so callers can errors.Is against the
// general category while logs keep the specific detail.
var (
	ErrNotFound      = errors.New("not found")
	ErrMalformed     = errors.New("malformed data")
	ErrVersion       = errors.New("unsupported format version")
	ErrClosed        = errors.New("already closed")
	ErrOutOfBudget   = errors.New("instruction budget exhausted")
	ErrCancelled     = errors.New("cancelled")
)

// KindError pairs an ErrorKind with an underlying cause and optional source
// location, so every error category can be logged with structured fields
// (category, source, path, offset where relevant).
type KindError struct {
	Kind   ErrorKind
	Source string // subsystem or script file
	Path   string // asset path / archive name, if relevant
	Offset int64  // byte/line offset, if relevant
	Err    error
}

func (e *KindError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Kind, e.Err)
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Path)
	}
	return msg
}

func (e *KindError) Unwrap() error { return e.Err }

// Wrap builds a KindError, the one constructor every subsystem should use so
// that error classification stays centralized.
func Wrap(kind ErrorKind, source, path string, offset int64, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Source: source, Path: path, Offset: offset, Err: err}
}
