// Package query provides a fluent predicate builder over a graphstore.Store.
package query

import (
	"strings"

	"github.com/viant/codegraph/graphstore"
)

// Predicate is a single filter applied to a candidate node.
type Predicate func(n *graphstore.Node) bool

// Builder accumulates predicates and a limit, then evaluates them against
// a Store via Execute/Count/Exists. It is language-agnostic: all it knows
// about a node is its NodeType and PropertyMap.
type Builder struct {
	store      *graphstore.Store
	nodeType   *graphstore.NodeType
	predicates []Predicate
	limit      int
}

// New starts a fluent query against store.
func New(store *graphstore.Store) *Builder {
	return &Builder{store: store}
}

// NodeType restricts the scan to the node-type secondary index.
func (b *Builder) NodeType(t graphstore.NodeType) *Builder {
	b.nodeType = &t
	return b
}

// InFile filters to nodes whose "file" property equals path exactly.
func (b *Builder) InFile(path string) *Builder {
	return b.Custom(func(n *graphstore.Node) bool {
		v, ok := n.Properties.GetString("file")
		return ok && v == path
	})
}

// FilePattern filters to nodes whose "file" property matches a glob-style
// pattern (only the first "*" acts as a wildcard, a lightweight glob rather
// than pulling in a third dependency for simple substring/prefix/suffix
// matching).
func (b *Builder) FilePattern(pattern string) *Builder {
	return b.Custom(func(n *graphstore.Node) bool {
		v, ok := n.Properties.GetString("file")
		if !ok {
			return false
		}
		return globMatch(pattern, v)
	})
}

// Property filters to nodes whose property at key equals value.
func (b *Builder) Property(key string, value graphstore.PropertyValue) *Builder {
	return b.Custom(func(n *graphstore.Node) bool {
		v, ok := n.Properties[key]
		return ok && propertyEqual(v, value)
	})
}

// NameContains filters to nodes whose "name" property contains substring,
// case-insensitively.
func (b *Builder) NameContains(substr string) *Builder {
	lower := strings.ToLower(substr)
	return b.Custom(func(n *graphstore.Node) bool {
		v, ok := n.Properties.GetString("name")
		return ok && strings.Contains(strings.ToLower(v), lower)
	})
}

// Custom adds an arbitrary predicate function.
func (b *Builder) Custom(p Predicate) *Builder {
	b.predicates = append(b.predicates, p)
	return b
}

// Limit caps the number of IDs Execute collects.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// candidateIDs returns the starting ID set: the node_type index if set,
// else a full ascending node scan.
func (b *Builder) candidateIDs() []uint64 {
	if b.nodeType != nil {
		return b.store.NodeIDsByType(*b.nodeType)
	}
	return b.store.AllNodeIDs()
}

func (b *Builder) matches(n *graphstore.Node) bool {
	for _, p := range b.predicates {
		if !p(n) {
			return false
		}
	}
	return true
}

// Execute collects matching node IDs, in ascending ID order, up to Limit.
func (b *Builder) Execute() ([]uint64, error) {
	var out []uint64
	for _, id := range b.candidateIDs() {
		if b.limit > 0 && len(out) >= b.limit {
			break
		}
		n, err := b.store.GetNode(id)
		if err != nil {
			continue
		}
		if b.matches(n) {
			out = append(out, id)
		}
	}
	return out, nil
}

// Count behaves like Execute but never materializes the result list.
func (b *Builder) Count() (int, error) {
	count := 0
	for _, id := range b.candidateIDs() {
		if b.limit > 0 && count >= b.limit {
			break
		}
		n, err := b.store.GetNode(id)
		if err != nil {
			continue
		}
		if b.matches(n) {
			count++
		}
	}
	return count, nil
}

// Exists short-circuits on the first match.
func (b *Builder) Exists() (bool, error) {
	for _, id := range b.candidateIDs() {
		n, err := b.store.GetNode(id)
		if err != nil {
			continue
		}
		if b.matches(n) {
			return true, nil
		}
	}
	return false, nil
}

func propertyEqual(a, b graphstore.PropertyValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case graphstore.KindString:
		return a.StringVal == b.StringVal
	case graphstore.KindInt:
		return a.IntVal == b.IntVal
	case graphstore.KindFloat:
		return a.FloatVal == b.FloatVal
	case graphstore.KindBool:
		return a.BoolVal == b.BoolVal
	default:
		return false
	}
}

// globMatch supports a single "*" wildcard anywhere in pattern, sufficient
// for file_pattern's intended use ("src/*.go", "*_test.go").
func globMatch(pattern, s string) bool {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return pattern == s
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	return strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) && len(s) >= len(prefix)+len(suffix)
}
