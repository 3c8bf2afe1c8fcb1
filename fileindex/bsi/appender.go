package bsi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// version1 is the only on-disk layout this package writes or reads.
const version1 = int8(1)

// Appender builds one RoaringBitmap incrementally (spec §4.3's writer
// contract), mirroring BitSliceIndexRoaringBitmap::Appender.
type Appender struct {
	bsi  *RoaringBitmap
	seen map[uint32]struct{}
}

// NewAppender creates an Appender for values known in advance to fall in
// [min, max].
func NewAppender(min, max int64) *Appender {
	bitCount := bitCountFor(min, max)
	slices := make([]*roaringwrap.Bitmap, bitCount)
	for i := range slices {
		slices[i] = roaringwrap.New()
	}
	return &Appender{
		bsi: &RoaringBitmap{
			min:    min,
			max:    max,
			ebm:    roaringwrap.New(),
			slices: slices,
		},
		seen: make(map[uint32]struct{}),
	}
}

// Append records value at row rid; rid must not have been appended already
// and value must fall within [min, max].
func (a *Appender) Append(rid uint32, value int64) error {
	if value > a.bsi.max {
		return fmt.Errorf("value %d is too large for append to BitSliceIndexRoaringBitmap", value)
	}
	if value < a.bsi.min {
		return fmt.Errorf("value %d is too small for append to BitSliceIndexRoaringBitmap", value)
	}
	if _, ok := a.seen[rid]; ok {
		return fmt.Errorf("rid %d already exists for append to BitSliceIndexRoaringBitmap", rid)
	}
	a.seen[rid] = struct{}{}
	a.bsi.ebm.Add(rid)
	v := value - a.bsi.min
	for i, slice := range a.bsi.slices {
		if (v>>uint(i))&1 == 1 {
			slice.Add(rid)
		}
	}
	return nil
}

// IsNotEmpty reports whether any value has been appended.
func (a *Appender) IsNotEmpty() bool { return !a.bsi.ebm.IsEmpty() }

// Build returns the accumulated index, usable directly without a
// serialize/deserialize round trip.
func (a *Appender) Build() *RoaringBitmap { return a.bsi }

// Serialize writes version(1B) + min(8B BE) + max(8B BE) +
// ebm(len-prefixed roaring frame) + slice_count(4B BE) + per-slice
// len-prefixed roaring frames, a layout reconstructed for this module (the
// upstream on-disk byte layout was not present in the retrieved sources,
// only its access pattern) but read back exactly by Create below.
func (a *Appender) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(version1))
	var i64 [8]byte
	binary.BigEndian.PutUint64(i64[:], uint64(a.bsi.min))
	buf.Write(i64[:])
	binary.BigEndian.PutUint64(i64[:], uint64(a.bsi.max))
	buf.Write(i64[:])
	if err := writeLenPrefixedBitmap(&buf, a.bsi.ebm); err != nil {
		return nil, err
	}
	var i32 [4]byte
	binary.BigEndian.PutUint32(i32[:], uint32(len(a.bsi.slices)))
	buf.Write(i32[:])
	for _, s := range a.bsi.slices {
		if err := writeLenPrefixedBitmap(&buf, s); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeLenPrefixedBitmap(buf *bytes.Buffer, bm *roaringwrap.Bitmap) error {
	ser, err := bm.Serialize()
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(ser)))
	buf.Write(lenBuf[:])
	buf.Write(ser)
	return nil
}

func readLenPrefixedBitmap(r io.Reader) (*roaringwrap.Bitmap, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return roaringwrap.Deserialize(data)
}

// Create parses a RoaringBitmap from the layout Serialize produces.
func Create(r io.Reader) (*RoaringBitmap, error) {
	var versionByte [1]byte
	if _, err := io.ReadFull(r, versionByte[:]); err != nil {
		return nil, fmt.Errorf("reading bsi slice version: %w", err)
	}
	if int8(versionByte[0]) > version1 {
		return nil, fmt.Errorf("read bsi index file fail, do not support version %d", versionByte[0])
	}
	var i64 [8]byte
	if _, err := io.ReadFull(r, i64[:]); err != nil {
		return nil, fmt.Errorf("reading bsi min: %w", err)
	}
	min := int64(binary.BigEndian.Uint64(i64[:]))
	if _, err := io.ReadFull(r, i64[:]); err != nil {
		return nil, fmt.Errorf("reading bsi max: %w", err)
	}
	max := int64(binary.BigEndian.Uint64(i64[:]))
	ebm, err := readLenPrefixedBitmap(r)
	if err != nil {
		return nil, fmt.Errorf("reading bsi ebm: %w", err)
	}
	var i32 [4]byte
	if _, err := io.ReadFull(r, i32[:]); err != nil {
		return nil, fmt.Errorf("reading bsi slice count: %w", err)
	}
	count := binary.BigEndian.Uint32(i32[:])
	slices := make([]*roaringwrap.Bitmap, count)
	for i := range slices {
		s, err := readLenPrefixedBitmap(r)
		if err != nil {
			return nil, fmt.Errorf("reading bsi slice %d: %w", i, err)
		}
		slices[i] = s
	}
	return &RoaringBitmap{min: min, max: max, ebm: ebm, slices: slices}, nil
}
