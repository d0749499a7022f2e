// Package algorithm implements the graph traversal and analysis
// operations of spec.md §4.5: BFS/DFS, Tarjan SCC, path enumeration, and
// the higher-level impact-analysis helpers built on them.
package algorithm

import "github.com/viant/codegraph/graphstore"

// BFS visits nodes reachable from start in the given direction, optionally
// bounded by maxDepth (<=0 means unbounded), and returns their IDs
// excluding start. Cycles terminate the walk via a visited set.
func BFS(store *graphstore.Store, start uint64, dir graphstore.Direction, maxDepth int) []uint64 {
	visited := map[uint64]bool{start: true}
	type frame struct {
		id    uint64
		depth int
	}
	queue := []frame{{id: start, depth: 0}}
	var out []uint64

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		for _, next := range store.GetNeighbors(cur.id, dir) {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			queue = append(queue, frame{id: next, depth: cur.depth + 1})
		}
	}
	return out
}

// DFS visits nodes reachable from start in the given direction, optionally
// bounded by maxDepth, and returns their IDs excluding start. It is
// iterative (an explicit stack) to bound native stack usage on deep
// graphs, per spec.md §4.5.
func DFS(store *graphstore.Store, start uint64, dir graphstore.Direction, maxDepth int) []uint64 {
	visited := map[uint64]bool{start: true}
	type frame struct {
		id    uint64
		depth int
	}
	stack := []frame{{id: start, depth: 0}}
	var out []uint64

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		neighbors := store.GetNeighbors(cur.id, dir)
		for i := len(neighbors) - 1; i >= 0; i-- {
			next := neighbors[i]
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			stack = append(stack, frame{id: next, depth: cur.depth + 1})
		}
	}
	return out
}
