// Package planner implements space-time A* search over a roadnet.Graph: a
// path is a sequence of cells such that cell i is occupied at time t0+i,
// avoiding both the reservation table and any idle robot parked in the way.
package planner

import (
	"container/heap"
	"errors"

	"fleetplanner/reservation"
	"fleetplanner/roadnet"
)

// ErrNoPath is returned when the frontier is exhausted, or the depth bound
// is reached, before a goal state is found.
var ErrNoPath = errors.New("planner: no path found")

// DefaultWaitPenalty is the extra cost of waiting one tick in place, over
// moving to a neighbor, when the caller does not override it. A positive
// bias so the search prefers progress over idling when both are safe.
const DefaultWaitPenalty = 1.1

// DefaultMaxSteps bounds search depth (in discrete ticks) when the caller
// does not override it.
const DefaultMaxSteps = 60

// Blockers reports whether cell is occupied, at any time, by an idle robot
// other than self — idle robots are static obstacles the search must route
// around rather than wait behind indefinitely.
type Blockers interface {
	IdleRobotAt(cell roadnet.Cell, self reservation.RobotID) bool
}

// Request describes a single space-time A* search.
type Request struct {
	Graph    *roadnet.Graph
	Table    *reservation.Table
	Blockers Blockers
	Start    roadnet.Cell
	Goal     roadnet.Cell
	T0       int64
	Robot    reservation.RobotID
	MaxSteps int

	// WaitPenalty is the extra cost of waiting one tick in place, over
	// moving to a neighbor. Zero means DefaultWaitPenalty.
	WaitPenalty float64
}

// node is a single open-set entry: the cell/time state plus the path of
// cells taken to reach it. insertion is a monotonically increasing counter
// assigned at push time, used only to break f-cost ties deterministically.
type node struct {
	cell      roadnet.Cell
	g         float64
	f         float64
	path      []roadnet.Cell
	insertion int
	index     int
}

type openHeap []*node

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].insertion < h[j].insertion
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

type visitedKey struct {
	cell roadnet.Cell
	time int64
}

// FindPath runs space-time A* for req and returns the cell sequence from
// Start to Goal, including both endpoints. cells[i] is occupied at time
// T0+i.
func FindPath(req Request) ([]roadnet.Cell, error) {
	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	waitPenalty := req.WaitPenalty
	if waitPenalty <= 0 {
		waitPenalty = DefaultWaitPenalty
	}

	open := &openHeap{}
	heap.Init(open)

	counter := 0
	push := func(n *node) {
		n.insertion = counter
		counter++
		heap.Push(open, n)
	}

	push(&node{
		cell: req.Start,
		g:    0,
		f:    float64(req.Graph.ManhattanDistance(req.Start, req.Goal)),
		path: []roadnet.Cell{req.Start},
	})

	visited := make(map[visitedKey]bool)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)

		if cur.cell == req.Goal {
			return cur.path, nil
		}
		if len(cur.path)-1 >= maxSteps {
			continue
		}

		currentTime := req.T0 + int64(len(cur.path)-1)

		neighbors, err := req.Graph.Neighbors(cur.cell)
		if err != nil {
			return nil, err
		}
		candidates := make([]roadnet.Cell, 0, len(neighbors)+1)
		for _, nb := range neighbors {
			candidates = append(candidates, nb)
		}
		candidates = append(candidates, cur.cell) // wait-in-place

		nextTime := currentTime + 1
		for _, nb := range candidates {
			vk := visitedKey{cell: nb, time: nextTime}
			if visited[vk] {
				continue
			}
			if !isSafe(req, nb, nextTime) {
				continue
			}
			visited[vk] = true

			step := 1.0
			if nb == cur.cell {
				step += waitPenalty
			}
			g := cur.g + step
			h := float64(req.Graph.ManhattanDistance(nb, req.Goal))

			nextPath := make([]roadnet.Cell, len(cur.path)+1)
			copy(nextPath, cur.path)
			nextPath[len(cur.path)] = nb

			push(&node{cell: nb, g: g, f: g + h, path: nextPath})
		}
	}

	return nil, ErrNoPath
}

// isSafe reports whether (cell, at) is free of reservation conflicts and
// idle-robot blockers for req.Robot.
func isSafe(req Request, cell roadnet.Cell, at int64) bool {
	if owner, ok := req.Table.Owner(cell, at); ok && owner != req.Robot {
		return false
	}
	if req.Blockers != nil && req.Blockers.IdleRobotAt(cell, req.Robot) {
		return false
	}
	return true
}
