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

// Package scheduler implements the script scheduler: it owns every
// loaded script, hands each a per-tick instruction budget in round-robin
// order, and turns emitted events into new call frames on the scripts
// that subscribe to them.
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wintermute-engine/wme/internal/wlog"
	"github.com/wintermute-engine/wme/script/bytecode"
	"github.com/wintermute-engine/wme/script/vm"
	"github.com/wintermute-engine/wme/value"
)

// Script is one loaded script instance: a persistent VM bound to one
// owner object. Between events its call stack is empty and it sits idle;
// emit_event pushes a new frame onto the same VM at the matching event's
// entry point, so nested/reentrant event handling is just a nested call,
// not a second VM.
type Script struct {
	ID    uint64
	Image *bytecode.Image
	Owner uint64
	VM    *vm.VM

	paused bool
	killed bool
}

type attachment struct {
	Object uint64
	Event  string
	Script uint64
}

type queuedEvent struct {
	Object  uint64
	Event   string
	Payload []value.Value
}

// Scheduler owns the live script set and the instruction budget each
// runnable script is granted per tick.
type Scheduler struct {
	mu sync.Mutex

	host            vm.Host
	budgetPerScript int

	scripts     map[uint64]*Script
	order       []uint64 // round-robin order, stable across ticks
	attachments []attachment
	events      []queuedEvent
	nextID      uint64

	log *wlog.Logger

	preloadLimiter *rate.Limiter
	preloadCh      chan func()
	closeOnce      sync.Once
	done           chan struct{}
}

// New creates a Scheduler bound to host (the shared vm.Host every loaded
// script's VM dispatches against) with budgetPerScript instructions
// granted to each runnable script per tick. preloadRate caps how many
// background Preload requests run per second, so a scene transition that
// queues dozens of upcoming assets never starves the cache's
// foreground, blocking loads.
func New(host vm.Host, budgetPerScript int, preloadRate rate.Limit) *Scheduler {
	s := &Scheduler{
		host:            host,
		budgetPerScript: budgetPerScript,
		scripts:         map[uint64]*Script{},
		log:             wlog.Root().With("component", "scheduler"),
		preloadLimiter:  rate.NewLimiter(preloadRate, 1),
		preloadCh:       make(chan func(), 64),
		done:            make(chan struct{}),
	}
	go s.preloadLoop()
	return s
}

// Close stops the background preload worker. Safe to call once.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Scheduler) preloadLoop() {
	ctx := context.Background()
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.preloadCh:
			if err := s.preloadLimiter.Wait(ctx); err != nil {
				return
			}
			fn()
		}
	}
}

// Preload queues fn (typically an rescache.Acquire call whose result is
// discarded except for its caching side effect) to run in the background,
// throttled to preloadRate. It never blocks the calling script.
func (s *Scheduler) Preload(fn func()) {
	select {
	case s.preloadCh <- func() { fn() }:
	default:
		s.log.Warn("preload queue full, dropping request")
	}
}

// Load compiles-loads img onto a fresh persistent VM owned by owner and
// registers it as a live script. Resolving a definition-file path to an
// Image is the caller's concern
// (vfs + rescache + bytecode.Decode); Load only needs the Image itself,
// keeping the scheduler decoupled from the asset pipeline.
func (s *Scheduler) Load(img *bytecode.Image, owner uint64) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sc := &Script{ID: s.nextID, Image: img, Owner: owner, VM: vm.New(img, s.host, owner)}
	s.scripts[sc.ID] = sc
	s.order = append(s.order, sc.ID)
	return sc
}

// AttachEvent subscribes script to event_name fired against object,
// beyond the implicit subscription every script already has to its own
// owner's events-table. Used for a script that wants to observe another
// object's events.
func (s *Scheduler) AttachEvent(object uint64, eventName string, script *Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, attachment{Object: object, Event: eventName, Script: script.ID})
}

// EmitEvent queues (object, eventName, payload) for dispatch at the end
// of the current tick. Emission within a tick is deterministic FIFO, and
// events never interrupt a running script's slice.
func (s *Scheduler) EmitEvent(object uint64, eventName string, payload []value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, queuedEvent{Object: object, Event: eventName, Payload: payload})
}

// Pause suspends script from the round-robin pass without touching its
// VM state; a sleeping or waiting script stays paused in place and
// resumes exactly where it left off.
func (s *Scheduler) Pause(script *Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	script.paused = true
}

// Resume reverses Pause.
func (s *Scheduler) Resume(script *Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	script.paused = false
}

// Kill marks script killed and releases it from the scheduler; its VM's
// State is left unchanged (it does not become StateFinished).
// The VM itself is not stepped again; dropping it here releases its
// locals' native-object references and any pending wait the next GC pass
// collects.
func (s *Scheduler) Kill(script *Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	script.killed = true
	s.removeScriptLocked(script.ID)
}

// removeScriptLocked drops id from the live script set and round-robin
// order, releasing its VM (and any native-object references its locals
// hold) to the garbage collector, and prunes any AttachEvent
// subscriptions pointed at it. Caller must hold s.mu.
func (s *Scheduler) removeScriptLocked(id uint64) {
	delete(s.scripts, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if len(s.attachments) == 0 {
		return
	}
	kept := s.attachments[:0]
	for _, a := range s.attachments {
		if a.Script != id {
			kept = append(kept, a)
		}
	}
	s.attachments = kept
}

// Tick runs one scheduler frame: resume due sleepers, run_slice every
// runnable script round-robin, collect finished/errored scripts and
// release them, then drain queued events into fresh call frames. A
// script that errors is logged once and removed so it does not re-log
// and re-occupy the round-robin set on every later tick. A script that
// finishes with no declared event handlers can never be resumed and is
// removed the same way; one with event handlers stays live, idle between
// events, since dispatch reuses its VM for each new call frame rather
// than spawning a second one.
func (s *Scheduler) Tick(now time.Time, dt time.Duration) {
	s.mu.Lock()
	order := append([]uint64(nil), s.order...)
	s.mu.Unlock()

	var done []uint64
	for _, id := range order {
		s.mu.Lock()
		sc, ok := s.scripts[id]
		s.mu.Unlock()
		if !ok || sc.paused || sc.killed {
			continue
		}

		sc.VM.ResumeIfDue(now)
		sc.VM.PollWait()
		if sc.VM.State() == vm.StateReady {
			sc.VM.RunSlice(s.budgetPerScript)
		}

		switch sc.VM.State() {
		case vm.StateError:
			s.log.Warn("script runtime error", "script", sc.ID, "owner", sc.Owner, "err", sc.VM.Err())
			done = append(done, sc.ID)
		case vm.StateFinished:
			if len(sc.Image.Events) == 0 {
				done = append(done, sc.ID)
			}
		}
	}

	if len(done) > 0 {
		s.mu.Lock()
		for _, id := range done {
			s.removeScriptLocked(id)
		}
		s.mu.Unlock()
	}

	s.drainEvents()
}

// drainEvents implements step (iv): every queued event spawns a new call
// frame on each script whose owner matches (the implicit subscription)
// or whose explicit AttachEvent binding matches, provided the script's
// Image actually declares that event.
func (s *Scheduler) drainEvents() {
	s.mu.Lock()
	pending := s.events
	s.events = nil
	targets := append([]attachment(nil), s.attachments...)
	scripts := make(map[uint64]*Script, len(s.scripts))
	for id, sc := range s.scripts {
		scripts[id] = sc
	}
	s.mu.Unlock()

	for _, ev := range pending {
		dispatched := map[uint64]bool{}
		for _, sc := range scripts {
			if sc.killed || sc.Owner != ev.Object {
				continue
			}
			s.dispatchIfSubscribed(sc, ev)
			dispatched[sc.ID] = true
		}
		for _, a := range targets {
			if a.Object != ev.Object || a.Event != ev.Event || dispatched[a.Script] {
				continue
			}
			if sc, ok := scripts[a.Script]; ok && !sc.killed {
				s.dispatchIfSubscribed(sc, ev)
			}
		}
	}
}

func (s *Scheduler) dispatchIfSubscribed(sc *Script, ev queuedEvent) {
	entry, ok := sc.Image.FindEvent(ev.Event)
	if !ok {
		return
	}
	if err := sc.VM.Start(entry, ev.Payload); err != nil {
		s.log.Warn("failed to start event handler", "script", sc.ID, "event", ev.Event, "err", err)
	}
}
