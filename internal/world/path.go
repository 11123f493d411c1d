// A* pathfinding over the walkable tile grid.
// Four-directional movement, Manhattan heuristic, uniform edge cost.
package world

import "container/heap"

// pathNode is an entry in the A* open set.
type pathNode struct {
	pos   Point
	g     int // Cost from start
	f     int // g + heuristic
	index int // Heap index
}

type nodeHeap []*pathNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)        { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

var neighborOffsets = [4]Point{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// FindPath returns a path from start to goal, excluding the start cell and
// including the goal cell. If the goal itself is not walkable, the nearest
// walkable neighbor of the goal is substituted. Returns an empty path when no
// route exists within maxIterations — callers treat that as "stay put".
func (g *Grid) FindPath(start, goal Point, maxIterations int) []Point {
	if !g.IsWalkable(start.X, start.Y) {
		return nil
	}
	if !g.IsWalkable(goal.X, goal.Y) {
		sub, ok := g.nearestWalkableNeighbor(goal)
		if !ok {
			return nil
		}
		goal = sub
	}
	if start == goal {
		return nil
	}

	open := &nodeHeap{}
	heap.Init(open)
	startNode := &pathNode{pos: start, g: 0, f: start.ManhattanTo(goal)}
	heap.Push(open, startNode)

	cameFrom := make(map[Point]Point)
	gScore := map[Point]int{start: 0}
	closed := make(map[Point]bool)

	for iter := 0; open.Len() > 0 && iter < maxIterations; iter++ {
		current := heap.Pop(open).(*pathNode)
		if current.pos == goal {
			return reconstructPath(cameFrom, goal)
		}
		if closed[current.pos] {
			continue
		}
		closed[current.pos] = true

		for _, off := range neighborOffsets {
			next := Point{X: current.pos.X + off.X, Y: current.pos.Y + off.Y}
			if closed[next] || !g.IsWalkable(next.X, next.Y) {
				continue
			}
			tentative := current.g + 1
			if prev, seen := gScore[next]; seen && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = current.pos
			heap.Push(open, &pathNode{
				pos: next,
				g:   tentative,
				f:   tentative + next.ManhattanTo(goal),
			})
		}
	}

	return nil
}

// nearestWalkableNeighbor finds the closest walkable cell adjacent to p,
// widening the search ring up to a small radius.
func (g *Grid) nearestWalkableNeighbor(p Point) (Point, bool) {
	for radius := 1; radius <= 3; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				c := Point{X: p.X + dx, Y: p.Y + dy}
				if g.IsWalkable(c.X, c.Y) {
					return c, true
				}
			}
		}
	}
	return Point{}, false
}

func reconstructPath(cameFrom map[Point]Point, goal Point) []Point {
	var reversed []Point
	cur := goal
	for {
		reversed = append(reversed, cur)
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	// reversed ends with the start cell; drop it and flip.
	path := make([]Point, 0, len(reversed)-1)
	for i := len(reversed) - 2; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}
