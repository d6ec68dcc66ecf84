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

// Package defload walks a defparser.Block tree and constructs the
// gameobj.Registry objects it describes: game objects are created either
// by parsing a definition file or by a script calling a constructor, and
// this package implements the former. Scene, Layer, Actor, Item, Window,
// Button, and Sprite blocks become registry objects linked by
// AddChild/SetOwner; FRAME/SUBFRAME, REGION, WAYPOINTS, and SCALE_LEVEL
// are consumed directly into their parent's own fields rather than
// becoming registry objects themselves, since they have no independent
// script-visible identity.
package defload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wintermute-engine/wme/defparser"
	"github.com/wintermute-engine/wme/gameobj"
	"github.com/wintermute-engine/wme/internal/wlog"
	"github.com/wintermute-engine/wme/value"
)

// classBlocks are the definition-file block names that become their own
// registry object: the top-level block names known to the engine,
// restricted to the ones with a registered gameobj.Factory.
var classBlocks = map[string]bool{
	"scene": true, "layer": true, "actor": true, "item": true,
	"window": true, "button": true, "sprite": true,
}

// Loader constructs gameobj.Registry objects from parsed definition text.
type Loader struct {
	reg *gameobj.Registry
	log *wlog.Logger
}

// New returns a Loader that populates reg.
func New(reg *gameobj.Registry) *Loader {
	return &Loader{reg: reg, log: wlog.Root().With("component", "defload")}
}

// LoadString parses src (named filename for diagnostics) and constructs
// every SCENE/ACTOR/... block it contains, returning the handles of the
// top-level objects created. A top-level GAME block is handled specially:
// there is exactly one Game per registry (gameobj.NewGame's singleton), so
// GAME's key-values and nested blocks are applied directly to it instead
// of constructing a second one; its first nested SCENE becomes the active
// scene.
func (l *Loader) LoadString(filename, src string) ([]uint64, error) {
	root, warnings, err := defparser.Parse(filename, src)
	if err != nil {
		return nil, fmt.Errorf("defload: parsing %s: %w", filename, err)
	}
	for _, w := range warnings {
		l.log.Warn("definition file warning", "pos", w.Pos.String(), "msg", w.Msg)
	}

	var handles []uint64
	for _, child := range root.Children {
		if strings.ToLower(child.Name) == "game" {
			if err := l.loadGameBlock(child); err != nil {
				return handles, err
			}
			continue
		}
		handle, err := l.loadBlock(child, 0)
		if err != nil {
			return handles, err
		}
		if handle != 0 {
			handles = append(handles, handle)
		}
	}
	return handles, nil
}

// loadGameBlock applies block's key-values and nested scenes/windows to
// the registry's existing singleton Game object rather than constructing
// a new one.
func (l *Loader) loadGameBlock(block *defparser.Block) error {
	games := l.reg.All("game")
	if len(games) == 0 {
		return fmt.Errorf("defload: GAME block at %s but registry has no root Game object", block.Pos)
	}
	game := games[0]

	for _, kv := range block.KeyVals {
		game.SetProperty(kv.Key, coerce(kv))
	}

	for _, child := range block.Children {
		handle, err := l.loadBlock(child, game.ObjectID())
		if err != nil {
			return err
		}
		if handle != 0 && strings.ToLower(child.Name) == "scene" {
			if g, ok := game.GetProperty("activescene"); !ok || g.AsHandle() == 0 {
				game.SetProperty("activescene", value.Object(handle))
			}
		}
	}
	return nil
}

// loadBlock constructs block's object (if its name names a registered
// class), applies its key-values and nested blocks, parents it under
// owner, and returns its handle (0 if block's name isn't a class block —
// GAME itself has no class, its key-values apply to the caller's root
// Game object instead).
func (l *Loader) loadBlock(block *defparser.Block, owner uint64) (uint64, error) {
	class := strings.ToLower(block.Name)
	if !classBlocks[class] {
		l.log.Warn("unrecognized definition block, skipping", "block", block.Name, "pos", block.Pos.String())
		return 0, nil
	}

	handle, err := l.reg.NewObject(class, nil)
	if err != nil {
		return 0, fmt.Errorf("defload: constructing %s at %s: %w", block.Name, block.Pos, err)
	}
	obj, _ := l.reg.Get(handle)

	for _, kv := range block.KeyVals {
		obj.SetProperty(kv.Key, coerce(kv))
	}

	if owner != 0 {
		if parent, ok := l.reg.Get(owner); ok {
			parent.(interface{ AddChild(uint64) }).AddChild(handle)
		}
		obj.(interface{ SetOwner(uint64) }).SetOwner(owner)
	}

	if err := l.loadNested(obj, block, handle); err != nil {
		return handle, err
	}
	return handle, nil
}

// loadNested dispatches block's nested blocks: class blocks recurse
// through loadBlock and get parented under handle; the remaining known
// block kinds (FRAME/SUBFRAME, REGION, WAYPOINTS, SCALE_LEVEL) are
// consumed directly into obj's own fields by class-specific helpers.
func (l *Loader) loadNested(obj gameobj.Object, block *defparser.Block, handle uint64) error {
	for _, child := range block.Children {
		kind := strings.ToLower(child.Name)
		switch kind {
		case "frame", "subframe":
			sprite, ok := obj.(*gameobj.Sprite)
			if !ok {
				l.log.Warn("frame block on non-sprite object, skipping", "pos", child.Pos.String())
				continue
			}
			sprite.AddFrame(frameFrom(child))
			continue
		case "region":
			scene, ok := obj.(*gameobj.Scene)
			if !ok {
				l.log.Warn("region block on non-scene object, skipping", "pos", child.Pos.String())
				continue
			}
			scene.Regions = append(scene.Regions, regionFrom(child))
			continue
		case "waypoints":
			scene, ok := obj.(*gameobj.Scene)
			if !ok {
				l.log.Warn("waypoints block on non-scene object, skipping", "pos", child.Pos.String())
				continue
			}
			scene.Waypoints = waypointsFrom(child)
			continue
		case "scale_level":
			layer, ok := obj.(*gameobj.Layer)
			if !ok {
				l.log.Warn("scale_level block on non-layer object, skipping", "pos", child.Pos.String())
				continue
			}
			if s, ok := child.Get("SCALE"); ok {
				layer.Scale, _ = strconv.ParseFloat(s, 64)
			}
			if s, ok := child.Get("HORIZON"); ok {
				layer.ScaleHorizon, _ = strconv.ParseFloat(s, 64)
			}
			continue
		case "string_table":
			continue // parsed but not consumed: nothing in the engine reads string tables
		}

		if !classBlocks[kind] {
			l.log.Warn("unrecognized nested definition block, skipping", "block", child.Name, "pos", child.Pos.String())
			continue
		}

		childHandle, err := l.loadBlock(child, handle)
		if err != nil {
			return err
		}
		if actor, ok := obj.(*gameobj.Actor); ok && kind == "sprite" && len(child.Args) > 0 {
			if spr, ok := l.reg.Get(childHandle); ok {
				actor.SetSprite(strings.ToLower(child.Args[0]), spr.(*gameobj.Sprite))
			}
		}
	}
	return nil
}

func frameFrom(block *defparser.Block) gameobj.Frame {
	f := gameobj.Frame{}
	if fn, ok := block.Get("FILENAME"); ok {
		f.Filename = fn
	}
	if ms, ok := block.Get("HOLD"); ok {
		if n, err := strconv.Atoi(ms); err == nil {
			f.Hold = time.Duration(n) * time.Millisecond
		}
	}
	return f
}

func regionFrom(block *defparser.Block) gameobj.Region {
	r := gameobj.Region{Name: block.Name}
	if name, ok := block.Get("NAME"); ok {
		r.Name = name
	}
	for _, pt := range block.ChildrenNamed("POINT") {
		x, _ := strconv.ParseFloat(firstOr(pt, "X", "0"), 64)
		y, _ := strconv.ParseFloat(firstOr(pt, "Y", "0"), 64)
		r.Polygon = append(r.Polygon, gameobj.Point{X: x, Y: y})
	}
	return r
}

func waypointsFrom(block *defparser.Block) gameobj.Waypoints {
	w := gameobj.Waypoints{Edges: map[int][]int{}}
	for i, node := range block.ChildrenNamed("NODE") {
		x, _ := strconv.ParseFloat(firstOr(node, "X", "0"), 64)
		y, _ := strconv.ParseFloat(firstOr(node, "Y", "0"), 64)
		w.Nodes = append(w.Nodes, gameobj.Point{X: x, Y: y})
		for _, e := range node.ChildrenNamed("EDGE") {
			if to, ok := e.Get("TO"); ok {
				if n, err := strconv.Atoi(to); err == nil {
					w.Edges[i] = append(w.Edges[i], n)
				}
			}
		}
	}
	return w
}

func firstOr(b *defparser.Block, key, def string) string {
	if v, ok := b.Get(key); ok {
		return v
	}
	return def
}

// coerce converts a definition-file key-value's raw literal into the Value
// kind its token type implies. An IDENT bareword other than TRUE/FALSE is
// kept as a string, matching how script-visible dynamic bag entries would
// interpret the same literal.
func coerce(kv defparser.KeyValue) value.Value {
	switch kv.Type {
	case defparser.INT:
		n, _ := strconv.ParseInt(kv.Value, 10, 64)
		return value.Int(n)
	case defparser.FLOAT:
		f, _ := strconv.ParseFloat(kv.Value, 64)
		return value.Float(f)
	case defparser.IDENT:
		switch strings.ToUpper(kv.Value) {
		case "TRUE":
			return value.Bool(true)
		case "FALSE":
			return value.Bool(false)
		}
		return value.String(kv.Value)
	default:
		return value.String(kv.Value)
	}
}
