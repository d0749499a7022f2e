package graphstore

import (
	"sort"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// AddNode assigns the next monotonic ID, persists the node, and returns
// its ID. It fails with a GraphError on an underlying I/O failure.
func (s *Store) AddNode(nodeType NodeType, props PropertyMap) (uint64, error) {
	if props == nil {
		props = NewPropertyMap()
	}
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = seq
		n := &Node{ID: id, NodeType: nodeType, Properties: props}
		data, err := encodeNode(n)
		if err != nil {
			return err
		}
		return b.Put(nodeKey(id), data)
	})
	if err != nil {
		return 0, newGraphError("add-node", err)
	}

	s.mu.Lock()
	s.indexNodeLocked(&Node{ID: id, NodeType: nodeType})
	s.mu.Unlock()
	return id, nil
}

// AddEdge validates that both endpoints exist, persists the edge, and
// returns its ID. It fails with an InvalidEdgeError if either endpoint is
// missing.
func (s *Store) AddEdge(sourceID, targetID uint64, edgeType EdgeType, props PropertyMap) (uint64, error) {
	s.mu.RLock()
	_, srcOK := s.nodeAlive[sourceID]
	_, dstOK := s.nodeAlive[targetID]
	s.mu.RUnlock()
	if !srcOK {
		return 0, &InvalidEdgeError{SourceID: sourceID, TargetID: targetID, Missing: sourceID}
	}
	if !dstOK {
		return 0, &InvalidEdgeError{SourceID: sourceID, TargetID: targetID, Missing: targetID}
	}

	if props == nil {
		props = NewPropertyMap()
	}
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEdges)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = seq
		e := &Edge{ID: id, SourceID: sourceID, TargetID: targetID, EdgeType: edgeType, Properties: props}
		data, err := encodeEdge(e)
		if err != nil {
			return err
		}
		return b.Put(nodeKey(id), data)
	})
	if err != nil {
		return 0, newGraphError("add-edge", err)
	}

	s.mu.Lock()
	s.indexEdgeLocked(&Edge{ID: id, SourceID: sourceID, TargetID: targetID, EdgeType: edgeType})
	s.mu.Unlock()
	return id, nil
}

// NodeSpec/EdgeSpec describe a single item in a batch add.
type NodeSpec struct {
	NodeType   NodeType
	Properties PropertyMap
}

type EdgeSpec struct {
	SourceID, TargetID uint64
	EdgeType           EdgeType
	Properties         PropertyMap
}

// AddNodesBatch atomically applies every node in specs (all-or-nothing
// with respect to readers) and returns their IDs in input order; IDs
// within the batch are contiguous.
func (s *Store) AddNodesBatch(specs []NodeSpec) ([]uint64, error) {
	batchID := uuid.NewString()
	s.log.Debugw("add nodes batch", "batch_id", batchID, "count", len(specs))
	ids := make([]uint64, len(specs))
	nodes := make([]Node, len(specs))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		for i, spec := range specs {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			props := spec.Properties
			if props == nil {
				props = NewPropertyMap()
			}
			n := Node{ID: seq, NodeType: spec.NodeType, Properties: props}
			data, err := encodeNode(&n)
			if err != nil {
				return err
			}
			if err := b.Put(nodeKey(seq), data); err != nil {
				return err
			}
			ids[i] = seq
			nodes[i] = n
		}
		return nil
	})
	if err != nil {
		s.log.Errorw("add nodes batch failed", "batch_id", batchID, "error", err)
		return nil, newGraphError("add-nodes-batch", err)
	}

	s.mu.Lock()
	for i := range nodes {
		s.indexNodeLocked(&nodes[i])
	}
	s.mu.Unlock()
	return ids, nil
}

// AddEdgesBatch atomically applies every edge in specs and returns their
// IDs in input order. It validates all endpoints before writing anything;
// if any endpoint is missing, no edge in the batch is written.
func (s *Store) AddEdgesBatch(specs []EdgeSpec) ([]uint64, error) {
	batchID := uuid.NewString()
	s.log.Debugw("add edges batch", "batch_id", batchID, "count", len(specs))
	s.mu.RLock()
	for _, spec := range specs {
		if _, ok := s.nodeAlive[spec.SourceID]; !ok {
			s.mu.RUnlock()
			return nil, &InvalidEdgeError{SourceID: spec.SourceID, TargetID: spec.TargetID, Missing: spec.SourceID}
		}
		if _, ok := s.nodeAlive[spec.TargetID]; !ok {
			s.mu.RUnlock()
			return nil, &InvalidEdgeError{SourceID: spec.SourceID, TargetID: spec.TargetID, Missing: spec.TargetID}
		}
	}
	s.mu.RUnlock()

	ids := make([]uint64, len(specs))
	edges := make([]Edge, len(specs))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEdges)
		for i, spec := range specs {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			props := spec.Properties
			if props == nil {
				props = NewPropertyMap()
			}
			e := Edge{ID: seq, SourceID: spec.SourceID, TargetID: spec.TargetID, EdgeType: spec.EdgeType, Properties: props}
			data, err := encodeEdge(&e)
			if err != nil {
				return err
			}
			if err := b.Put(nodeKey(seq), data); err != nil {
				return err
			}
			ids[i] = seq
			edges[i] = e
		}
		return nil
	})
	if err != nil {
		s.log.Errorw("add edges batch failed", "batch_id", batchID, "error", err)
		return nil, newGraphError("add-edges-batch", err)
	}

	s.mu.Lock()
	for i := range edges {
		s.indexEdgeLocked(&edges[i])
	}
	s.mu.Unlock()
	return ids, nil
}

// GetNode returns a clone of the node with the given ID, or a
// NotFoundError if it does not exist.
func (s *Store) GetNode(id uint64) (*Node, error) {
	var n Node
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNodes).Get(nodeKey(id))
		if data == nil {
			return nil
		}
		found = true
		return decodeNode(data, &n)
	})
	if err != nil {
		return nil, newGraphError("get-node", err)
	}
	if !found {
		return nil, &NotFoundError{Kind: "node", ID: id}
	}
	return n.Clone(), nil
}

// GetEdge returns a clone of the edge with the given ID, or a
// NotFoundError if it does not exist.
func (s *Store) GetEdge(id uint64) (*Edge, error) {
	var e Edge
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketEdges).Get(nodeKey(id))
		if data == nil {
			return nil
		}
		found = true
		return decodeEdge(data, &e)
	})
	if err != nil {
		return nil, newGraphError("get-edge", err)
	}
	if !found {
		return nil, &NotFoundError{Kind: "edge", ID: id}
	}
	return e.Clone(), nil
}

// UpdateNodeProperties replaces a node's property map wholesale. A
// replacement whose content hash matches the stored one is skipped, so a
// caller that recomputes the same properties on every pass (a re-parse of
// an unchanged file, say) doesn't force a bolt write.
func (s *Store) UpdateNodeProperties(id uint64, props PropertyMap) error {
	found := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data := b.Get(nodeKey(id))
		if data == nil {
			return nil
		}
		found = true
		var n Node
		if err := decodeNode(data, &n); err != nil {
			return err
		}
		oldHash, err := propertyHash(n.Properties)
		if err != nil {
			return err
		}
		newHash, err := propertyHash(props)
		if err != nil {
			return err
		}
		if oldHash == newHash {
			return nil
		}
		n.Properties = props
		out, err := encodeNode(&n)
		if err != nil {
			return err
		}
		return b.Put(nodeKey(id), out)
	})
	if err != nil {
		return newGraphError("update-node-properties", err)
	}
	if !found {
		return &NotFoundError{Kind: "node", ID: id}
	}
	return nil
}

// DeleteNode removes a node and cascades to every edge that references it
// as source or target. Deleting an already-absent node is a no-op.
func (s *Store) DeleteNode(id uint64) error {
	s.mu.Lock()
	_, alive := s.nodeAlive[id]
	var toDelete []uint64
	if alive {
		for _, ref := range s.outIdx[id] {
			toDelete = append(toDelete, ref.edgeID)
		}
		for _, ref := range s.inIdx[id] {
			toDelete = append(toDelete, ref.edgeID)
		}
	}
	s.mu.Unlock()
	if !alive {
		return nil
	}

	var node Node
	err := s.db.Update(func(tx *bolt.Tx) error {
		nb := tx.Bucket(bucketNodes)
		eb := tx.Bucket(bucketEdges)

		data := nb.Get(nodeKey(id))
		if data != nil {
			_ = decodeNode(data, &node)
		}
		for _, eid := range toDelete {
			if err := eb.Delete(nodeKey(eid)); err != nil {
				return err
			}
		}
		return nb.Delete(nodeKey(id))
	})
	if err != nil {
		return newGraphError("delete-node", err)
	}

	s.mu.Lock()
	for _, ref := range append(append([]edgeRef{}, s.outIdx[id]...), s.inIdx[id]...) {
		s.edgeDeletedLocked(ref.edgeID)
	}
	node.ID = id
	s.unindexNodeLocked(&node)
	delete(s.outIdx, id)
	delete(s.inIdx, id)
	s.mu.Unlock()
	return nil
}

// edgeDeletedLocked removes an edge from both adjacency indices given only
// its ID, by scanning the (small) per-node ref lists. Caller holds s.mu.
func (s *Store) edgeDeletedLocked(edgeID uint64) {
	delete(s.edgeAlive, edgeID)
	for src, refs := range s.outIdx {
		s.outIdx[src] = removeEdgeRef(refs, edgeID)
	}
	for dst, refs := range s.inIdx {
		s.inIdx[dst] = removeEdgeRef(refs, edgeID)
	}
}

// GetNeighbors returns neighbor node IDs in edge-insertion order.
func (s *Store) GetNeighbors(id uint64, dir Direction) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []uint64
	switch dir {
	case DirOut:
		for _, ref := range s.outIdx[id] {
			out = append(out, ref.nodeID)
		}
	case DirIn:
		for _, ref := range s.inIdx[id] {
			out = append(out, ref.nodeID)
		}
	case DirBoth:
		for _, ref := range s.outIdx[id] {
			out = append(out, ref.nodeID)
		}
		for _, ref := range s.inIdx[id] {
			out = append(out, ref.nodeID)
		}
	}
	return out
}

// GetEdgesBetween returns all edge IDs with the given endpoint pair
// (source -> target, directional).
func (s *Store) GetEdgesBetween(src, dst uint64) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []uint64
	for _, ref := range s.outIdx[src] {
		if ref.nodeID == dst {
			out = append(out, ref.edgeID)
		}
	}
	return out
}

// NodeCount returns the number of live nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodeAlive)
}

// EdgeCount returns the number of live edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edgeAlive)
}

// NodeIDsByType returns the live node IDs of the given type, ascending.
// Used by the query engine as the entry index for node_type scans.
func (s *Store) NodeIDsByType(t NodeType) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.nodeTypeIdx[t]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortUint64(ids)
	return ids
}

// AllNodeIDs returns every live node ID, ascending (insertion/ID order).
func (s *Store) AllNodeIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.nodeAlive))
	for id := range s.nodeAlive {
		ids = append(ids, id)
	}
	sortUint64(ids)
	return ids
}

func sortUint64(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// WithNodeMut loads the node with the given ID, passes it to fn for
// in-place property mutation, and persists the result atomically. It is
// the Go equivalent of get_node_mut: since Go has no borrow checker, the
// mutation is expressed as a callback scoped to a single transaction
// rather than a returned mutable reference.
func (s *Store) WithNodeMut(id uint64, fn func(n *Node)) error {
	found := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data := b.Get(nodeKey(id))
		if data == nil {
			return nil
		}
		found = true
		var n Node
		if err := decodeNode(data, &n); err != nil {
			return err
		}
		beforeHash, err := propertyHash(n.Properties)
		if err != nil {
			return err
		}
		fn(&n)
		afterHash, err := propertyHash(n.Properties)
		if err != nil {
			return err
		}
		if beforeHash == afterHash {
			return nil
		}
		out, err := encodeNode(&n)
		if err != nil {
			return err
		}
		return b.Put(nodeKey(id), out)
	})
	if err != nil {
		return newGraphError("with-node-mut", err)
	}
	if !found {
		return &NotFoundError{Kind: "node", ID: id}
	}
	return nil
}
