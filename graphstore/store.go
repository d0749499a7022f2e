package graphstore

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"os"
	"sync"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	bucketNodes = []byte("nodes")
	bucketEdges = []byte("edges")
)

// edgeRef is one entry in an adjacency index: the neighbor edge's ID and
// the node at the far end, kept in edge-insertion order as spec.md §3.1
// requires for get_neighbors.
type edgeRef struct {
	edgeID uint64
	nodeID uint64
}

// Store is a single-writer, multi-reader persistent property graph backed
// by an embedded log-structured key-value store (bbolt). See spec.md §4.1.
type Store struct {
	db  *bolt.DB
	log *zap.SugaredLogger

	mu          sync.RWMutex
	nodeTypeIdx map[NodeType]map[uint64]struct{}
	outIdx      map[uint64][]edgeRef
	inIdx       map[uint64][]edgeRef
	nodeAlive   map[uint64]struct{}
	edgeAlive   map[uint64]struct{}

	tempPath string
}

// Option configures a Store at open time.
type Option func(*Store)

// WithLogger attaches a structured logger; nil disables logging.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens (creating if absent) a graph backed by an embedded bbolt
// database at path, replaying its write-ahead log and rebuilding the
// in-memory secondary indices so that every committed write since the
// database was last closed is visible (spec.md §8 crash-recovery
// property).
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, newGraphError("open", err)
	}
	s := newStore(db, opts...)
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// InMemory opens a Store backed by a temporary bbolt file that exists only
// for the lifetime of the process; used by tests and ephemeral tooling.
// bbolt has no true in-memory mode (it is mmap-backed), so this creates a
// throwaway file under the OS temp directory and removes it on Close.
func InMemory(opts ...Option) (*Store, error) {
	f, err := os.CreateTemp("", "codegraph-*.graph")
	if err != nil {
		return nil, newGraphError("open", err)
	}
	path := f.Name()
	_ = f.Close()

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		_ = os.Remove(path)
		return nil, newGraphError("open", err)
	}
	s := newStore(db, opts...)
	s.tempPath = path
	if err := s.init(); err != nil {
		_ = db.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return s, nil
}

func newStore(db *bolt.DB, opts ...Option) *Store {
	s := &Store{
		db:          db,
		log:         zap.NewNop().Sugar(),
		nodeTypeIdx: make(map[NodeType]map[uint64]struct{}),
		outIdx:      make(map[uint64][]edgeRef),
		inIdx:       make(map[uint64][]edgeRef),
		nodeAlive:   make(map[uint64]struct{}),
		edgeAlive:   make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) init() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketNodes); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketEdges); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return newGraphError("init", err)
	}
	return s.rebuildIndices()
}

// rebuildIndices scans both buckets in ascending key (= ascending ID)
// order and reconstructs the secondary indices. This is the recovery
// step: bbolt's own durability guarantees every committed transaction is
// present in the buckets, so replaying them reproduces get_neighbors /
// node_type ordering exactly as if the process had never restarted.
func (s *Store) rebuildIndices() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := 0
	edges := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		nb := tx.Bucket(bucketNodes)
		if err := nb.ForEach(func(k, v []byte) error {
			var n Node
			if err := decodeNode(v, &n); err != nil {
				return err
			}
			s.indexNodeLocked(&n)
			nodes++
			return nil
		}); err != nil {
			return err
		}

		eb := tx.Bucket(bucketEdges)
		return eb.ForEach(func(k, v []byte) error {
			var e Edge
			if err := decodeEdge(v, &e); err != nil {
				return err
			}
			s.indexEdgeLocked(&e)
			edges++
			return nil
		})
	})
	if err != nil {
		return newGraphError("rebuild-indices", err)
	}
	s.log.Debugw("graphstore recovered", "nodes", nodes, "edges", edges)
	return nil
}

func (s *Store) indexNodeLocked(n *Node) {
	s.nodeAlive[n.ID] = struct{}{}
	set, ok := s.nodeTypeIdx[n.NodeType]
	if !ok {
		set = make(map[uint64]struct{})
		s.nodeTypeIdx[n.NodeType] = set
	}
	set[n.ID] = struct{}{}
}

func (s *Store) unindexNodeLocked(n *Node) {
	delete(s.nodeAlive, n.ID)
	if set, ok := s.nodeTypeIdx[n.NodeType]; ok {
		delete(set, n.ID)
	}
}

func (s *Store) indexEdgeLocked(e *Edge) {
	s.edgeAlive[e.ID] = struct{}{}
	s.outIdx[e.SourceID] = append(s.outIdx[e.SourceID], edgeRef{edgeID: e.ID, nodeID: e.TargetID})
	s.inIdx[e.TargetID] = append(s.inIdx[e.TargetID], edgeRef{edgeID: e.ID, nodeID: e.SourceID})
}

func (s *Store) unindexEdgeLocked(e *Edge) {
	delete(s.edgeAlive, e.ID)
	s.outIdx[e.SourceID] = removeEdgeRef(s.outIdx[e.SourceID], e.ID)
	s.inIdx[e.TargetID] = removeEdgeRef(s.inIdx[e.TargetID], e.ID)
}

func removeEdgeRef(refs []edgeRef, edgeID uint64) []edgeRef {
	for i, r := range refs {
		if r.edgeID == edgeID {
			return append(refs[:i:i], refs[i+1:]...)
		}
	}
	return refs
}

// Close releases the underlying database handle, removing the backing
// file if this Store was opened with InMemory.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.tempPath != "" {
		_ = os.Remove(s.tempPath)
	}
	if err != nil {
		return newGraphError("close", err)
	}
	return nil
}

// Flush forces the write-ahead log to durable storage.
func (s *Store) Flush() error {
	if err := s.db.Sync(); err != nil {
		return newGraphError("flush", err)
	}
	return nil
}

func nodeKey(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func encodeNode(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeNode(b []byte, n *Node) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(n)
}

func encodeEdge(e *Edge) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEdge(b []byte, e *Edge) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(e)
}
