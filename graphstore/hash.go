package graphstore

import (
	"bytes"
	"encoding/gob"
	"sort"

	"github.com/minio/highwayhash"
)

// hashKey is fixed so content hashes are stable across process restarts;
// this is a fingerprint for change detection, not a secret. Adapted from
// inspector/graph/hash.go's Hash.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// propertyHash fingerprints a node's or edge's property map so callers can
// tell whether a mutation actually changed anything before paying for a
// bolt write. Gob encoding is already used for on-disk node/edge storage,
// so it is reused here with no new codec; entries are encoded one by one
// in sorted key order, since gob writes a map in its random iteration
// order and the hash input would otherwise not be deterministic.
func propertyHash(props PropertyMap) (uint64, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	for _, k := range keys {
		if err := enc.Encode(k); err != nil {
			return 0, err
		}
		if err := enc.Encode(props[k]); err != nil {
			return 0, err
		}
	}
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
