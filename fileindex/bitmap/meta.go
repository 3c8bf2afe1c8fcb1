package bitmap

import (
	"bytes"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// Entry is a dictionary entry: a distinct value plus the location of its
// serialized roaring bitmap within the bitmap-body region (spec §3.5/§3.6).
// Length == -1 marks an inline singleton whose sole element is recoverable
// from Offset (offset = -1 - element); see original_source/
// bitmap_file_index_meta_v1.cpp.
type Entry struct {
	Key    literal.Literal
	Offset int32
	Length int32
}

// Meta is the shared dictionary contract implemented by MetaV1 and MetaV2:
// find an entry for a (possibly null) bitmap id and report the row count
// recorded at write time.
type Meta interface {
	FindEntry(id literal.Literal) (*Entry, error)
	RowCount() int32
}

// keyString renders a literal's fixed-width/length-prefixed on-disk
// encoding as a Go string so it can key a map — literal.Literal itself is
// not comparable (it carries a []byte payload), so every dictionary in this
// package keys entries by this encoded form rather than the literal value
// directly.
func keyString(t literal.FieldType, l literal.Literal) (string, error) {
	w, err := valueWriter(t)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := w(&buf, l); err != nil {
		return "", err
	}
	return buf.String(), nil
}
