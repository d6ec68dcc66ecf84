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

package gameobj

import (
	mapset "github.com/deckarep/golang-set"
)

// Point is a scene-local coordinate, used both for an Actor's current
// position and for a Scene's WAYPOINTS nodes.
type Point struct{ X, Y float64 }

// Waypoints is the walkable-area graph a Scene exposes: named nodes plus
// the edges between them that a straight line may cross without leaving
// the walkable region. FindPath never inspects pixel geometry itself —
// the definition-file loader is responsible for only linking waypoints
// whose connecting segment is actually walkable.
type Waypoints struct {
	Nodes []Point
	Edges map[int][]int
}

// FindPath runs a breadth-first search from the graph node nearest from
// to the node nearest to, returning the intermediate nodes to walk
// through in order (from and to themselves are not included; the caller
// prepends/appends them). Breadth-first is sufficient here since every
// edge is unweighted — walk time is governed by an Actor's own speed,
// not by edge length.
func (w *Waypoints) FindPath(from, to Point) []Point {
	if len(w.Nodes) == 0 {
		return nil
	}
	start := w.nearest(from)
	goal := w.nearest(to)
	if start == goal {
		return nil
	}

	visited := mapset.NewSet()
	visited.Add(start)
	queue := []int{start}
	prev := map[int]int{start: -1}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == goal {
			return w.reconstruct(prev, goal)
		}
		for _, next := range w.Edges[n] {
			if visited.Contains(next) {
				continue
			}
			visited.Add(next)
			prev[next] = n
			queue = append(queue, next)
		}
	}
	return nil
}

// reconstruct walks prev back from goal to the start node and returns the
// path's interior nodes only, in travel order — the start and goal
// themselves are the actor's actual from/to points, not graph nodes, so
// FindPath's caller supplies those and reconstruct contributes just the
// waypoints strictly between them.
func (w *Waypoints) reconstruct(prev map[int]int, goal int) []Point {
	var idx []int
	for n := goal; n != -1; n = prev[n] {
		idx = append(idx, n)
	}
	if len(idx) <= 2 {
		return nil
	}
	idx = idx[:len(idx)-1] // drop the start node; idx is goal-to-start order
	idx = idx[1:]          // drop the goal node (idx[0])
	out := make([]Point, len(idx))
	for i, n := range idx {
		out[len(idx)-1-i] = w.Nodes[n]
	}
	return out
}

func (w *Waypoints) nearest(p Point) int {
	best, bestDist := 0, distSq(p, w.Nodes[0])
	for i := 1; i < len(w.Nodes); i++ {
		d := distSq(p, w.Nodes[i])
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distSq(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
