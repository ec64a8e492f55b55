package index

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// murmurHashBytes hashes b with murmur3's 64-bit variant; the hash and
// composite-hash indexes feed the result to their Bloom-filter guards.
func murmurHashBytes(b []byte) uint64 {
	return murmur3.Sum64(b)
}

// encodeComparable produces a stable byte encoding of an arbitrary
// comparable key, hashed with murmur3 as the Hash index's Bloom-filter guard
// input; the buckets themselves are keyed by K. It is not an
// ordering-preserving encoding. Composite keys use CompositeKey.encode instead.
func encodeComparable[K comparable](key K) []byte {
	switch v := any(key).(type) {
	case string:
		return []byte(v)
	case int:
		return encodeInt64(int64(v))
	case int32:
		return encodeInt64(int64(v))
	case int64:
		return encodeInt64(v)
	case uint64:
		return encodeInt64(int64(v))
	case bool:
		if v {
			return []byte{1}
		}
		return []byte{0}
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}

func encodeInt64(v int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return buf[:]
}
