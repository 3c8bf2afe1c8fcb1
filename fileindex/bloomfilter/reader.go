package bloomfilter

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paimon-io/paimon-fileindex-go/fileindex"
	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
)

// IndexKind is the directory string this reader factory registers under.
const IndexKind = "bloom-filter"

func init() {
	fileindex.Register(IndexKind, func(ft literal.FieldType, offset, length int32, src io.ReaderAt) (fileindex.Reader, error) {
		return Open(ft, offset, length, src)
	})
}

// Reader answers VisitEqual against a bloom-filter blob: null and
// not-conclusively-absent both Remain, a confirmed absence Skips (spec
// §4.2, §8.1 "bloom filter is one-directional").
type Reader struct {
	fileindex.BaseReader
	hash   HashFunc
	filter *filter
}

var _ fileindex.Visitor = (*Reader)(nil)

// Open reads num_hash_functions (big-endian byte assembly despite the
// upstream "little endian" comment — see original_source/
// bloom_filter_file_index.cpp: "compatible with java, little endian" next to
// an expression that is in fact big-endian byte order) followed immediately
// by the bit-set bytes.
func Open(fieldType literal.FieldType, offset, length int32, src io.ReaderAt) (*Reader, error) {
	if length < 4 {
		return nil, fmt.Errorf("bloom filter index blob too short: %d bytes", length)
	}
	buf := make([]byte, length)
	if _, err := src.ReadAt(buf, int64(offset)); err != nil {
		return nil, fmt.Errorf("reading bloom filter index blob: %w", err)
	}
	numHashFunctions := int32(binary.BigEndian.Uint32(buf[:4]))
	bits := newBitSet(buf, 4)
	hashFn, err := HashFunctionFor(fieldType)
	if err != nil {
		return nil, err
	}
	return &Reader{
		hash:   hashFn,
		filter: newFilter(numHashFunctions, bits),
	}, nil
}

func (r *Reader) Close() error { return nil }

func (r *Reader) Evaluate(p predicate.LeafPredicate) (fileindex.Result, error) {
	return fileindex.Dispatch(r, p)
}

// VisitEqual: a bloom filter can only assert "definitely absent"; anything
// else, including a probe the filter can't rule out and any null literal,
// Remains (spec §4.2).
func (r *Reader) VisitEqual(p predicate.LeafPredicate) (fileindex.Result, error) {
	l := p.Literals[0]
	if l.IsNull() {
		return fileindex.Remain(), nil
	}
	hash, err := r.hash(l)
	if err != nil {
		return fileindex.Result{}, err
	}
	if r.filter.TestHash(hash) {
		return fileindex.Remain(), nil
	}
	return fileindex.Skip(), nil
}
