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

package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wintermute-engine/wme/script/compiler"
	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/value"
)

// fakeHost is a minimal vm.Host stub: no native objects, no externals.
type fakeHost struct{}

func (fakeHost) Resolve(uint64) (vm.Scriptable, bool)                      { return nil, false }
func (fakeHost) NewObject(string, []value.Value) (uint64, error)           { return 0, nil }
func (fakeHost) CallExternal(string, string, []value.Value) (value.Value, error) { return value.Null(), nil }

func TestSchedulerEmitEventStartsMatchingHandler(t *testing.T) {
	sched := New(fakeHost{}, 1000, rate.Inf)
	defer sched.Close()

	src := `global ran = false; on "Use" { ran = true; }`
	img, errs := compiler.Compile("door.script", src)
	require.Empty(t, errs)

	sc := sched.Load(img, 42)
	sched.EmitEvent(42, "Use", nil)
	sched.Tick(time.Now(), 16*time.Millisecond) // drains the event: starts the handler
	sched.Tick(time.Now(), 16*time.Millisecond) // runs the handler

	require.Equal(t, vm.StateFinished, sc.VM.State())
}

func TestSchedulerIgnoresEventForDifferentOwner(t *testing.T) {
	sched := New(fakeHost{}, 1000, rate.Inf)
	defer sched.Close()

	src := `on "Use" { var x = 1; }`
	img, errs := compiler.Compile("door.script", src)
	require.Empty(t, errs)

	sc := sched.Load(img, 1)
	sched.EmitEvent(2, "Use", nil)
	sched.Tick(time.Now(), 16*time.Millisecond)

	require.Equal(t, vm.StateReady, sc.VM.State())
}

func TestSchedulerPauseStopsExecution(t *testing.T) {
	sched := New(fakeHost{}, 1000, rate.Inf)
	defer sched.Close()

	src := `on "Use" { var x = 1; }`
	img, errs := compiler.Compile("door.script", src)
	require.Empty(t, errs)

	sc := sched.Load(img, 1)
	sched.Pause(sc)
	sched.EmitEvent(1, "Use", nil)
	sched.Tick(time.Now(), 16*time.Millisecond)

	// EmitEvent still starts the frame (drainEvents is unconditional); Pause
	// only withholds RunSlice, so the frame is pushed but never stepped.
	require.Equal(t, vm.StateReady, sc.VM.State())
}

func TestSchedulerKillRemovesScriptFromRoundRobin(t *testing.T) {
	sched := New(fakeHost{}, 1000, rate.Inf)
	defer sched.Close()

	src := `on "Use" { var x = 1; }`
	img, errs := compiler.Compile("door.script", src)
	require.Empty(t, errs)

	sc := sched.Load(img, 1)
	sched.Kill(sc)
	require.Empty(t, sched.order)
	require.NotContains(t, sched.scripts, sc.ID)
}

func TestSchedulerAttachEventCrossObjectSubscription(t *testing.T) {
	sched := New(fakeHost{}, 1000, rate.Inf)
	defer sched.Close()

	src := `global notified = false; on "Opened" { notified = true; }`
	img, errs := compiler.Compile("listener.script", src)
	require.Empty(t, errs)

	listener := sched.Load(img, 99) // owned by 99, but listens to 5's "Opened"
	sched.AttachEvent(5, "Opened", listener)
	sched.EmitEvent(5, "Opened", nil)
	sched.Tick(time.Now(), 16*time.Millisecond) // drains the event: starts the handler
	sched.Tick(time.Now(), 16*time.Millisecond) // runs the handler

	require.Equal(t, vm.StateFinished, listener.VM.State())
}
