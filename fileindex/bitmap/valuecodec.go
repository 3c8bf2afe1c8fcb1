// Package bitmap implements the bitmap file index (spec §3.5/§3.6/§4.1):
// value -> compressed row-id bitmap, with V1 (monolithic dictionary) and V2
// (two-level sparse block index) on-disk layouts.
package bitmap

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// valueWriter serializes one literal's key bytes per the fixed-width table
// of spec §4.1 (TIMESTAMP is normalized to BIGINT at the meta level before
// reaching here, per §3.5).
func valueWriter(t literal.FieldType) (func(w io.Writer, l literal.Literal) error, error) {
	switch t {
	case literal.BOOLEAN:
		return func(w io.Writer, l literal.Literal) error {
			v := byte(0)
			if l.BoolValue() {
				v = 1
			}
			_, err := w.Write([]byte{v})
			return err
		}, nil
	case literal.TINYINT:
		return func(w io.Writer, l literal.Literal) error {
			_, err := w.Write([]byte{byte(l.Int64Value())})
			return err
		}, nil
	case literal.SMALLINT:
		return func(w io.Writer, l literal.Literal) error {
			var b [2]byte
			binary.BigEndian.PutUint16(b[:], uint16(l.Int64Value()))
			_, err := w.Write(b[:])
			return err
		}, nil
	case literal.INT, literal.DATE:
		return func(w io.Writer, l literal.Literal) error {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], uint32(l.Int64Value()))
			_, err := w.Write(b[:])
			return err
		}, nil
	case literal.BIGINT, literal.TIMESTAMP:
		return func(w io.Writer, l literal.Literal) error {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], uint64(l.Int64Value()))
			_, err := w.Write(b[:])
			return err
		}, nil
	case literal.STRING, literal.BINARY:
		return func(w io.Writer, l literal.Literal) error {
			v := l.BytesValue()
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
			if _, err := w.Write(lenBuf[:]); err != nil {
				return err
			}
			_, err := w.Write(v)
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unsupported bitmap index field type %s", t)
	}
}

// valueReader parses one literal back out of a stream, matching valueWriter.
func valueReader(t literal.FieldType) (func(r io.Reader) (literal.Literal, error), error) {
	switch t {
	case literal.BOOLEAN:
		return func(r io.Reader) (literal.Literal, error) {
			var b [1]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return literal.Literal{}, err
			}
			return literal.Bool(b[0] != 0), nil
		}, nil
	case literal.TINYINT:
		return func(r io.Reader) (literal.Literal, error) {
			var b [1]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return literal.Literal{}, err
			}
			return literal.TinyInt(int8(b[0])), nil
		}, nil
	case literal.SMALLINT:
		return func(r io.Reader) (literal.Literal, error) {
			var b [2]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return literal.Literal{}, err
			}
			return literal.SmallInt(int16(binary.BigEndian.Uint16(b[:]))), nil
		}, nil
	case literal.INT:
		return func(r io.Reader) (literal.Literal, error) {
			var b [4]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return literal.Literal{}, err
			}
			return literal.Int(int32(binary.BigEndian.Uint32(b[:]))), nil
		}, nil
	case literal.DATE:
		return func(r io.Reader) (literal.Literal, error) {
			var b [4]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return literal.Literal{}, err
			}
			return literal.Date(int32(binary.BigEndian.Uint32(b[:]))), nil
		}, nil
	case literal.BIGINT, literal.TIMESTAMP:
		return func(r io.Reader) (literal.Literal, error) {
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return literal.Literal{}, err
			}
			return literal.BigInt(int64(binary.BigEndian.Uint64(b[:]))), nil
		}, nil
	case literal.STRING:
		return func(r io.Reader) (literal.Literal, error) {
			v, err := readLenPrefixed(r)
			if err != nil {
				return literal.Literal{}, err
			}
			return literal.Str(string(v)), nil
		}, nil
	case literal.BINARY:
		return func(r io.Reader) (literal.Literal, error) {
			v, err := readLenPrefixed(r)
			if err != nil {
				return literal.Literal{}, err
			}
			return literal.Binary(v), nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported bitmap index field type %s", t)
	}
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	v := make([]byte, n)
	if _, err := io.ReadFull(r, v); err != nil {
		return nil, err
	}
	return v, nil
}

// keyBytes returns the fixed serialized size of a literal's key encoding,
// per BitmapFileIndexMetaV2::GetKeyBytes in original_source/: fixed widths
// for numerics, 4+len for STRING (and, by this module's extension, BINARY,
// since spec §4.1's value-encoding table treats them identically).
func keyBytes(l literal.Literal) (int32, error) {
	switch l.Type() {
	case literal.BOOLEAN, literal.TINYINT:
		return 1, nil
	case literal.SMALLINT:
		return 2, nil
	case literal.DATE, literal.INT:
		return 4, nil
	case literal.BIGINT, literal.TIMESTAMP:
		return 8, nil
	case literal.FLOAT:
		return 4, nil
	case literal.DOUBLE:
		return 8, nil
	case literal.STRING, literal.BINARY:
		return 4 + int32(len(l.BytesValue())), nil
	default:
		return 0, fmt.Errorf("invalid index field type %s", l.Type())
	}
}
