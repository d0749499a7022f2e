package algorithm

import "github.com/viant/codegraph/graphstore"

// TransitiveDependencies returns every node reachable from node by
// following Imports/ImportsFrom edges outward, up to maxDepth.
func TransitiveDependencies(store *graphstore.Store, node uint64, maxDepth int) []uint64 {
	return bfsOverEdgeTypes(store, node, graphstore.DirOut, maxDepth, graphstore.EdgeImports, graphstore.EdgeImportsFrom)
}

// TransitiveDependents returns every node that transitively imports node,
// up to maxDepth.
func TransitiveDependents(store *graphstore.Store, node uint64, maxDepth int) []uint64 {
	return bfsOverEdgeTypes(store, node, graphstore.DirIn, maxDepth, graphstore.EdgeImports, graphstore.EdgeImportsFrom)
}

// CallChain enumerates every simple call path from srcFn to dstFn over
// Calls edges, up to maxLen hops.
func CallChain(store *graphstore.Store, srcFn, dstFn uint64, maxLen int) [][]uint64 {
	return FindAllPathsOverEdgeType(store, srcFn, dstFn, graphstore.EdgeCalls, maxLen)
}

// GetCallers returns the functions that call fn.
func GetCallers(store *graphstore.Store, fn uint64) []uint64 {
	return neighborsOfType(store, fn, graphstore.DirIn, graphstore.EdgeCalls)
}

// GetCallees returns the functions that fn calls.
func GetCallees(store *graphstore.Store, fn uint64) []uint64 {
	return neighborsOfType(store, fn, graphstore.DirOut, graphstore.EdgeCalls)
}

// GetFunctionsInFile returns the Function-typed nodes contained by file.
func GetFunctionsInFile(store *graphstore.Store, file uint64) []uint64 {
	var out []uint64
	for _, id := range neighborsOfType(store, file, graphstore.DirOut, graphstore.EdgeContains) {
		n, err := store.GetNode(id)
		if err == nil && n.NodeType == graphstore.NodeFunction {
			out = append(out, id)
		}
	}
	return out
}

// GetFileDependencies returns the files/modules that file imports.
func GetFileDependencies(store *graphstore.Store, file uint64) []uint64 {
	return neighborsOfType(store, file, graphstore.DirOut, graphstore.EdgeImports)
}

// GetFileDependents returns the files that import file.
func GetFileDependents(store *graphstore.Store, file uint64) []uint64 {
	return neighborsOfType(store, file, graphstore.DirIn, graphstore.EdgeImports)
}

// CircularDeps returns the strongly connected components of size >= 2 (or
// a single-node self-loop) over the Imports/ImportsFrom edges between
// CodeFile nodes — the import-cycle detector of spec.md §4.5/§8.
func CircularDeps(store *graphstore.Store) [][]uint64 {
	var out [][]uint64
	for _, edgeType := range []graphstore.EdgeType{graphstore.EdgeImports, graphstore.EdgeImportsFrom} {
		for _, comp := range FindStronglyConnectedComponents(store, edgeType) {
			if !allCodeFiles(store, comp) {
				continue
			}
			if len(comp) >= 2 || (len(comp) == 1 && hasEdgeOfType(store, comp[0], comp[0], edgeType)) {
				out = append(out, comp)
			}
		}
	}
	return out
}

func allCodeFiles(store *graphstore.Store, ids []uint64) bool {
	for _, id := range ids {
		n, err := store.GetNode(id)
		if err != nil || n.NodeType != graphstore.NodeCodeFile {
			return false
		}
	}
	return true
}

func neighborsOfType(store *graphstore.Store, id uint64, dir graphstore.Direction, edgeType graphstore.EdgeType) []uint64 {
	var out []uint64
	for _, n := range store.GetNeighbors(id, dir) {
		var src, dst uint64
		if dir == graphstore.DirOut {
			src, dst = id, n
		} else {
			src, dst = n, id
		}
		if hasEdgeOfType(store, src, dst, edgeType) {
			out = append(out, n)
		}
	}
	return out
}

func bfsOverEdgeTypes(store *graphstore.Store, start uint64, dir graphstore.Direction, maxDepth int, edgeTypes ...graphstore.EdgeType) []uint64 {
	visited := map[uint64]bool{start: true}
	type frame struct {
		id    uint64
		depth int
	}
	queue := []frame{{id: start, depth: 0}}
	var out []uint64

	matches := func(src, dst uint64) bool {
		for _, t := range edgeTypes {
			if hasEdgeOfType(store, src, dst, t) {
				return true
			}
		}
		return false
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		for _, next := range store.GetNeighbors(cur.id, dir) {
			var src, dst uint64
			if dir == graphstore.DirOut {
				src, dst = cur.id, next
			} else {
				src, dst = next, cur.id
			}
			if !matches(src, dst) {
				continue
			}
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
