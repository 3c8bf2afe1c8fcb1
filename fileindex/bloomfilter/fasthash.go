// Package bloomfilter implements the bloom-filter file index (spec §3.7,
// §4.2): a fixed-size bit set probed by a per-type hash, answering only
// VisitEqual with a possible-membership test.
package bloomfilter

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// HashFunc maps one non-null literal to the int64 hash fed to the bit set,
// grounded on original_source/bloomfilter/fast_hash.cpp's per-type dispatch.
type HashFunc func(l literal.Literal) (int64, error)

// HashFunctionFor returns the hash function for a field type, or an error
// for types the bloom-filter index does not support (spec §3.7: numeric,
// date, timestamp, string, binary).
func HashFunctionFor(t literal.FieldType) (HashFunc, error) {
	switch t {
	case literal.TINYINT, literal.SMALLINT, literal.INT, literal.DATE, literal.BIGINT:
		return func(l literal.Literal) (int64, error) {
			v, err := l.AsInt64()
			if err != nil {
				return 0, err
			}
			return longHash(v), nil
		}, nil
	case literal.FLOAT:
		return func(l literal.Literal) (int64, error) {
			// fast_hash.cpp passes the 32-bit pattern through an int32_t,
			// so the widening to int64_t sign-extends; int64(uint32) here
			// would zero-extend instead, diverging on negative floats.
			bits := int64(int32(math.Float32bits(l.Float32Value())))
			return longHash(bits), nil
		}, nil
	case literal.DOUBLE:
		return func(l literal.Literal) (int64, error) {
			bits := int64(math.Float64bits(l.Float64Value()))
			return longHash(bits), nil
		}, nil
	case literal.TIMESTAMP:
		return func(l literal.Literal) (int64, error) {
			ts := l.TimestampValue()
			var value int64
			if ts.Precision <= 3 {
				value = ts.Millisecond
			} else {
				value = ts.Millisecond*1000 + ts.NanoOfMillisecond/1000
			}
			return longHash(value), nil
		}, nil
	case literal.STRING, literal.BINARY:
		return func(l literal.Literal) (int64, error) {
			return int64(xxhash.Sum64(l.BytesValue())), nil
		}, nil
	default:
		return nil, fmt.Errorf("bloom filter index does not support %s", t)
	}
}

// longHash is Thomas Wang's 64-bit integer mixer, reproduced arithmetic
// step-for-step from FastHash::GetLongHash.
func longHash(key int64) int64 {
	key = (^key) + (key << 21) // key = (key << 21) - key - 1
	key = key ^ int64(uint64(key)>>24)
	key = (key + (key << 3)) + (key << 8) // key * 265
	key = key ^ int64(uint64(key)>>14)
	key = (key + (key << 2)) + (key << 4) // key * 21
	key = key ^ int64(uint64(key)>>28)
	key = key + (key << 31)
	return key
}
