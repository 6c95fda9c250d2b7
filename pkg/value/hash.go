package value

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// tag bytes for the canonical encoding fed to the digest. int and float
// share a tag because Hash must agree with Equal's integer/float
// unification: 1 and 1.0 hash identically.
const (
	tagNull byte = iota
	tagBool
	tagNumber
	tagString
	tagArray
	tagObject
)

// Hash returns a stable hash of v for use by the set-semantics operators
// (distinct, intersection, difference) and the join build-side index.
// Objects hash over sorted keys so hashing is independent of insertion
// order, matching Equal. Follows the reusable-digest pattern of
// pkg/engine/internal/executor/aggregator.go in grafana/loki: a single
// *xxhash.Digest is fed a canonical byte encoding rather than hashing via
// fmt.Sprintf.
func Hash(v Value) uint64 {
	d := xxhash.New()
	writeCanonical(d, v)
	return d.Sum64()
}

// HashInto feeds v's canonical encoding into an existing digest, letting
// callers (e.g. a multi-column grouping key) combine several values into
// one hash without allocating an intermediate byte slice per value.
func HashInto(d *xxhash.Digest, v Value) {
	writeCanonical(d, v)
}

func writeCanonical(d *xxhash.Digest, v Value) {
	var buf [9]byte
	switch v.kind {
	case KindNull:
		buf[0] = tagNull
		d.Write(buf[:1])
	case KindBool:
		buf[0] = tagBool
		if v.b {
			buf[1] = 1
		}
		d.Write(buf[:2])
	case KindInt, KindFloat:
		buf[0] = tagNumber
		binary.BigEndian.PutUint64(buf[1:9], math.Float64bits(v.AsFloat()))
		d.Write(buf[:9])
	case KindString:
		buf[0] = tagString
		d.Write(buf[:1])
		d.Write([]byte(v.s))
	case KindArray:
		buf[0] = tagArray
		d.Write(buf[:1])
		for _, e := range v.arr {
			writeCanonical(d, e)
		}
	case KindObject:
		buf[0] = tagObject
		d.Write(buf[:1])
		for _, k := range v.obj.SortedKeys() {
			d.Write([]byte(k))
			val, _ := v.obj.Get(k)
			writeCanonical(d, val)
		}
	}
}

// HashTuple hashes an ordered tuple of Values as a single combined key,
// used by group_by's multi-key bucketing and join's build-side index —
// both need the tuple hash to agree with element-wise Equal, in particular
// integer/float unification per element.
func HashTuple(vals []Value) uint64 {
	d := xxhash.New()
	for _, v := range vals {
		writeCanonical(d, v)
	}
	return d.Sum64()
}
