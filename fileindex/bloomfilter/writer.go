package bloomfilter

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/options"
)

// OptionItems and OptionFpp size the filter at write time (spec §4.2's
// writer contract): expected distinct-item count and target false-positive
// probability, matching BloomFilter64's sizing constructor.
const (
	OptionItems = "items"
	OptionFpp   = "fpp"

	defaultItems = 1 << 20
	defaultFpp   = 0.01
)

// Writer accumulates distinct literals into a bloom filter and serializes
// num_hash_functions (big-endian uint32) followed by the bit-set bytes.
type Writer struct {
	fieldType literal.FieldType
	hash      HashFunc
	filter    *filter
}

// NewWriter builds a Writer sized from opts (items: decimal count, fpp:
// decimal probability in (0,1); both optional).
func NewWriter(fieldType literal.FieldType, opts map[string]string) (*Writer, error) {
	items := int64(defaultItems)
	if v, ok := opts[OptionItems]; ok {
		parsed, err := options.ParseMemorySize(v + "b")
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", OptionItems, err)
		}
		items = parsed
	}
	fpp := defaultFpp
	if v, ok := opts[OptionFpp]; ok {
		if _, err := fmt.Sscanf(v, "%g", &fpp); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", OptionFpp, err)
		}
	}
	hashFn, err := HashFunctionFor(fieldType)
	if err != nil {
		return nil, err
	}
	return &Writer{
		fieldType: fieldType,
		hash:      hashFn,
		filter:    newFilterForCapacity(items, fpp),
	}, nil
}

// Add records one value; nulls are not represented in the filter (spec
// §4.2: VisitEqual treats null as Remain unconditionally).
func (w *Writer) Add(value literal.Literal) error {
	if value.IsNull() {
		return nil
	}
	hash, err := w.hash(value)
	if err != nil {
		return err
	}
	w.filter.AddHash(hash)
	return nil
}

// SerializedBytes produces the on-disk body of spec §3.7.
func (w *Writer) SerializedBytes() []byte {
	var buf bytes.Buffer
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(w.filter.numHashFunctions))
	buf.Write(hdr[:])
	buf.Write(w.filter.bits.data)
	return buf.Bytes()
}
