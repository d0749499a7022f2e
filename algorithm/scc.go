package algorithm

import "github.com/viant/codegraph/graphstore"

// tarjanState carries the iterative Tarjan bookkeeping for one run.
type tarjanState struct {
	store   *graphstore.Store
	index   int
	indices map[uint64]int
	lowlink map[uint64]int
	onStack map[uint64]bool
	stack   []uint64
	result  [][]uint64
}

// callFrame models one level of the explicit recursion stack used to keep
// Tarjan's algorithm iterative (avoids overflowing the native call stack
// on large import/call graphs).
type callFrame struct {
	node         uint64
	neighbors    []uint64
	neighborIdx  int
}

// FindStronglyConnectedComponents partitions every node in the graph into
// strongly connected components via Tarjan's algorithm, following edges
// of the given type only (so callers can run it over Calls, Imports, or
// any other edge type). Every node appears in exactly one component.
func FindStronglyConnectedComponents(store *graphstore.Store, edgeType graphstore.EdgeType) [][]uint64 {
	st := &tarjanState{
		store:   store,
		indices: make(map[uint64]int),
		lowlink: make(map[uint64]int),
		onStack: make(map[uint64]bool),
	}

	filteredNeighbors := func(id uint64) []uint64 {
		var out []uint64
		for _, n := range store.GetNeighbors(id, graphstore.DirOut) {
			if hasEdgeOfType(store, id, n, edgeType) {
				out = append(out, n)
			}
		}
		return out
	}

	for _, id := range store.AllNodeIDs() {
		if _, seen := st.indices[id]; !seen {
			st.strongConnect(id, filteredNeighbors)
		}
	}
	return st.result
}

func hasEdgeOfType(store *graphstore.Store, src, dst uint64, edgeType graphstore.EdgeType) bool {
	for _, eid := range store.GetEdgesBetween(src, dst) {
		e, err := store.GetEdge(eid)
		if err == nil && e.EdgeType == edgeType {
			return true
		}
	}
	return false
}

func (st *tarjanState) strongConnect(root uint64, neighborsOf func(uint64) []uint64) {
	st.indices[root] = st.index
	st.lowlink[root] = st.index
	st.index++
	st.stack = append(st.stack, root)
	st.onStack[root] = true

	frames := []*callFrame{{node: root, neighbors: neighborsOf(root)}}

	for len(frames) > 0 {
		top := frames[len(frames)-1]

		if top.neighborIdx < len(top.neighbors) {
			w := top.neighbors[top.neighborIdx]
			top.neighborIdx++

			if _, seen := st.indices[w]; !seen {
				st.indices[w] = st.index
				st.lowlink[w] = st.index
				st.index++
				st.stack = append(st.stack, w)
				st.onStack[w] = true
				frames = append(frames, &callFrame{node: w, neighbors: neighborsOf(w)})
			} else if st.onStack[w] {
				if st.indices[w] < st.lowlink[top.node] {
					st.lowlink[top.node] = st.indices[w]
				}
			}
			continue
		}

		// all neighbors processed: pop this frame, propagate lowlink to parent
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			parent := frames[len(frames)-1]
			if st.lowlink[top.node] < st.lowlink[parent.node] {
				st.lowlink[parent.node] = st.lowlink[top.node]
			}
		}

		if st.lowlink[top.node] == st.indices[top.node] {
			var component []uint64
			for {
				n := len(st.stack) - 1
				w := st.stack[n]
				st.stack = st.stack[:n]
				st.onStack[w] = false
				component = append(component, w)
				if w == top.node {
					break
				}
			}
			st.result = append(st.result, component)
		}
	}
}
