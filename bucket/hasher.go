package bucket

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// RowHasher reduces a row's bucket-key values to a single uint32 hash, which
// CalculateBucketID then folds into [0, numBuckets) via
// (hash & 0x7fffffff) % numBuckets.
//
// Spec §4.7 requires this hash to be bit-compatible with the JVM reference:
// the same value the Java FixedBucketRowKeyExtractor produces for the same
// row. That value is the hash code of the row's on-wire BinaryRow encoding
// (null-bit header, one 8-byte slot per field, variable-length data appended
// after the fixed part), run through the word-at-a-time MurmurHash3 x86_32
// variant Flink/Paimon call MurmurHashUtils.hashBytesByWords. DefaultRowHasher
// below rebuilds both: binaryRowBytes lays the row out the way BinaryRow does,
// and murmurHash32 is that exact 32-bit mix (seed 42, x86 block size 4).
type RowHasher interface {
	Hash(bucketKey []literal.Literal) (uint32, error)
}

// DefaultRowHasher hashes the BinaryRow encoding of a row's bucket-key
// values with murmurHash32, seed 42 — the JVM's row hash code.
type DefaultRowHasher struct{}

func (DefaultRowHasher) Hash(bucketKey []literal.Literal) (uint32, error) {
	row, err := binaryRowBytes(bucketKey)
	if err != nil {
		return 0, err
	}
	return murmurHash32(row, murmurDefaultSeed), nil
}

const murmurDefaultSeed uint32 = 42

// nullBitSetWidthInBytes mirrors BinaryRow's header sizing: one byte is
// reserved ahead of the null bits (the row-kind byte in the JVM layout),
// and the whole header is padded up to a multiple of 8 bytes.
func nullBitSetWidthInBytes(arity int) int {
	return ((arity + 63 + 8) / 64) * 8
}

// binaryRowBytes serializes bucketKey the way BinaryRowWriter does: a
// null-bit header, then one 8-byte slot per field holding either the value
// itself (fixed-width types) or an (offset, size) pair pointing into the
// variable-length part appended after the fixed part. String and binary
// values of 7 bytes or fewer are instead packed into their slot directly
// (the JVM's "compact" string/binary encoding). Timestamps and decimals
// always take BinaryRow's non-compact form, whatever their precision: a
// timestamp's millisecond goes to the variable part and its
// nano-of-millisecond into the slot, and a decimal's unscaled bytes fill a
// 16-byte variable-part area.
func binaryRowBytes(bucketKey []literal.Literal) ([]byte, error) {
	arity := len(bucketKey)
	nullWidth := nullBitSetWidthInBytes(arity)
	fixed := make([]byte, nullWidth+8*arity)
	var variable []byte
	cursor := len(fixed)

	for i, l := range bucketKey {
		slot := fixed[nullWidth+8*i : nullWidth+8*i+8]
		if l.IsNull() {
			bit := 8 + i
			fixed[bit/8] |= 1 << uint(bit%8)
			continue
		}
		switch l.Type() {
		case literal.BOOLEAN:
			if l.BoolValue() {
				slot[0] = 1
			}
		case literal.TINYINT:
			slot[0] = byte(l.Int64Value())
		case literal.SMALLINT:
			binary.LittleEndian.PutUint16(slot, uint16(l.Int64Value()))
		case literal.INT, literal.DATE:
			binary.LittleEndian.PutUint32(slot, uint32(l.Int64Value()))
		case literal.BIGINT:
			binary.LittleEndian.PutUint64(slot, uint64(l.Int64Value()))
		case literal.FLOAT:
			binary.LittleEndian.PutUint32(slot, math.Float32bits(l.Float32Value()))
		case literal.DOUBLE:
			binary.LittleEndian.PutUint64(slot, math.Float64bits(l.Float64Value()))
		case literal.TIMESTAMP:
			ts := l.TimestampValue()
			variable = binary.LittleEndian.AppendUint64(variable, uint64(ts.Millisecond))
			binary.LittleEndian.PutUint64(slot, uint64(cursor)<<32|uint64(uint32(ts.NanoOfMillisecond)))
			cursor += 8
		case literal.DECIMAL:
			dec := l.DecimalValue()
			unscaled := minimalTwosComplement(decimal128ToBigInt(dec.High, dec.Low))
			var area [16]byte
			copy(area[:], unscaled)
			variable = append(variable, area[:]...)
			binary.LittleEndian.PutUint64(slot, uint64(cursor)<<32|uint64(len(unscaled)))
			cursor += 16
		case literal.STRING, literal.BINARY, literal.BLOB:
			cursor = writeVarPart(slot, &variable, cursor, l.BytesValue())
		default:
			return nil, fmt.Errorf("bucket key does not support type %s", l.Type())
		}
	}
	return append(fixed, variable...), nil
}

// decimal128ToBigInt recomposes a signed 128-bit value from its high/low
// words (two's complement, dec.High holding the sign).
func decimal128ToBigInt(high int64, low uint64) *big.Int {
	v := new(big.Int).Lsh(big.NewInt(high), 64)
	v.Or(v, new(big.Int).SetUint64(low))
	return v
}

// writeVarPart stores data inline in slot when it fits in 7 bytes (the
// high byte marks the length with its top bit set), otherwise appends it to
// *variable (8-byte aligned, per BinaryRowWriter's word-rounding) and
// records (offset, size) in slot. It returns the cursor advanced past
// whatever was appended.
func writeVarPart(slot []byte, variable *[]byte, cursor int, data []byte) int {
	if len(data) <= 7 {
		copy(slot, data)
		slot[7] = byte(len(data)) | 0x80
		return cursor
	}
	binary.LittleEndian.PutUint32(slot[0:4], uint32(len(data)))
	binary.LittleEndian.PutUint32(slot[4:8], uint32(cursor))
	padded := roundUpToWord(len(data))
	*variable = append(*variable, data...)
	*variable = append(*variable, make([]byte, padded-len(data))...)
	return cursor + padded
}

func roundUpToWord(n int) int {
	return (n + 7) / 8 * 8
}

// minimalTwosComplement renders v as the shortest big-endian two's-complement
// byte string that round-trips it, matching java.math.BigInteger.toByteArray
// (what Decimal.toUnscaledBytes delegates to for non-compact precisions).
func minimalTwosComplement(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	bitLen := v.BitLen()
	if v.Sign() < 0 {
		// BigInteger.bitLength of a negative value is the bit length of
		// ^v (= -v-1), so -128 fits in one byte and -129 needs two.
		bitLen = new(big.Int).Not(v).BitLen()
	}
	nbytes := bitLen/8 + 1
	if v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(nbytes*8))
		twos := new(big.Int).Add(v, mod)
		b := twos.Bytes()
		out := make([]byte, nbytes)
		copy(out[nbytes-len(b):], b)
		return out
	}
	b := v.Bytes()
	out := make([]byte, nbytes)
	copy(out[nbytes-len(b):], b)
	return out
}

const (
	murmurC1 uint32 = 0xcc9e2d51
	murmurC2 uint32 = 0x1b873593
)

// murmurHash32 is MurmurHash3's x86_32 variant as Flink/Paimon's
// MurmurHashUtils implement it: hashBytesByWords mixes the data one 4-byte
// little-endian word at a time, any trailing 1-3 bytes are folded in
// byte-by-byte, and the result is finalized with the standard fmix32.
func murmurHash32(data []byte, seed uint32) uint32 {
	h1 := seed
	nblocks := len(data) / 4
	for i := 0; i < nblocks; i++ {
		k1 := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		h1 = mixH1(h1, mixK1(k1))
	}
	tail := data[nblocks*4:]
	var k1 uint32
	switch len(tail) {
	case 3:
		k1 ^= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint32(tail[0])
		h1 ^= mixK1(k1)
	}
	return fmix32(h1, uint32(len(data)))
}

func mixK1(k1 uint32) uint32 {
	k1 *= murmurC1
	k1 = (k1 << 15) | (k1 >> 17)
	k1 *= murmurC2
	return k1
}

func mixH1(h1, k1 uint32) uint32 {
	h1 ^= k1
	h1 = (h1 << 13) | (h1 >> 19)
	return h1*5 + 0xe6546b64
}

func fmix32(h1, length uint32) uint32 {
	h1 ^= length
	h1 ^= h1 >> 16
	h1 *= 0x85ebca6b
	h1 ^= h1 >> 13
	h1 *= 0xc2b2ae35
	h1 ^= h1 >> 16
	return h1
}
