package codeir

import (
	"bytes"
	"fmt"

	"github.com/minio/highwayhash"
)

// hashKey is fixed so a function's hash is stable across runs and across
// re-parses of an unchanged file; it is a fingerprint, not a secret.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash fingerprints the parts of a function that constitute its observable
// shape: name, signature, parameter list and source span. Two parses of
// the same function body produce the same hash, so a caller persisting it
// on the function's graph node (see parser.addFunctionNode) can tell a
// genuine edit from a no-op re-parse without diffing every property.
// Mirrors the graph.Function.Hash approach of hashing a function's
// serialized node form to detect a genuine change.
func (fn FunctionEntity) Hash() uint64 {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\x00%s\x00%d\x00%d\x00", fn.Name, fn.Signature, fn.LineStart, fn.LineEnd)
	for _, p := range fn.Parameters {
		fmt.Fprintf(&buf, "%s:%s\x00", p.Name, p.Type)
	}

	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// hashKey is a fixed 32-byte constant, this cannot fail.
		panic(err)
	}
	h.Write(buf.Bytes())
	return h.Sum64()
}
