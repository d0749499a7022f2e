package algorithm

import "github.com/viant/codegraph/graphstore"

// FindAllPaths enumerates every simple path (no repeated vertex) from src
// to dst with length (edge count) at most maxLen, following edges of the
// given direction. It is depth-first with the current path doubling as
// the visited set, backtracking on each step.
func FindAllPaths(store *graphstore.Store, src, dst uint64, dir graphstore.Direction, maxLen int) [][]uint64 {
	var paths [][]uint64
	path := []uint64{src}
	onPath := map[uint64]bool{src: true}

	var walk func(cur uint64)
	walk = func(cur uint64) {
		if cur == dst && len(path) > 1 {
			paths = append(paths, append([]uint64(nil), path...))
			return
		}
		if len(path)-1 >= maxLen {
			return
		}
		for _, next := range store.GetNeighbors(cur, dir) {
			if onPath[next] {
				continue
			}
			onPath[next] = true
			path = append(path, next)
			walk(next)
			path = path[:len(path)-1]
			onPath[next] = false
		}
	}
	walk(src)
	return paths
}

// FindAllPathsOverEdgeType is FindAllPaths restricted to a single edge
// type, used by CallChain for Calls-only traversal.
func FindAllPathsOverEdgeType(store *graphstore.Store, src, dst uint64, edgeType graphstore.EdgeType, maxLen int) [][]uint64 {
	var paths [][]uint64
	path := []uint64{src}
	onPath := map[uint64]bool{src: true}

	var walk func(cur uint64)
	walk = func(cur uint64) {
		if cur == dst && len(path) > 1 {
			paths = append(paths, append([]uint64(nil), path...))
			return
		}
		if len(path)-1 >= maxLen {
			return
		}
		for _, next := range store.GetNeighbors(cur, graphstore.DirOut) {
			if !hasEdgeOfType(store, cur, next, edgeType) {
				continue
			}
			if onPath[next] {
				continue
			}
			onPath[next] = true
			path = append(path, next)
			walk(next)
			path = path[:len(path)-1]
			onPath[next] = false
		}
	}
	walk(src)
	return paths
}
