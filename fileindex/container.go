package fileindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/valyala/bytebufferpool"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/metrics"
)

// Magic is the first eight bytes of every file-index blob (spec §3.4),
// matching the C++ source's file_index_format.cpp constant exactly.
const Magic int64 = 1493475289347502

// Version is the only header version this reader understands.
const Version int32 = 1

// ColumnSchema reports whether a column name is known, the minimal piece
// of "schema" the container needs to validate ReadColumnIndex calls (spec
// §4.5 step 1); the column's field type is passed to ReadColumnIndex
// separately.
type ColumnSchema interface {
	HasColumn(name string) bool
}

// MapSchema is the common ColumnSchema: a set of known column names.
type MapSchema map[string]struct{}

func (s MapSchema) HasColumn(name string) bool { _, ok := s[name]; return ok }

// indexEntry is one (index_kind, offset, length) triple within a column's
// directory.
type indexEntry struct {
	kind   string
	offset int32
	length int32
}

// columnEntry is one column's directory of index entries, order-preserving
// (spec §8.2 S8: readers are returned "in registration order").
type columnEntry struct {
	name    string
	indexes []indexEntry
}

// Factory constructs a Reader for one index-kind entry. offset/length locate
// the entry's body slice within the blob; offset == -1 is handled by the
// container itself (EmptyReader) and never reaches a Factory.
type Factory func(fieldType literal.FieldType, offset, length int32, src io.ReaderAt) (Reader, error)

var registry = map[string]Factory{}

// Register installs a reader factory for an index-kind string. Call from an
// init() in the bitmap/bloomfilter/bsi packages; spec §9 "Factory
// registration" prescribes a compile-time dispatch table rather than
// runtime global mutable state discovered via macros, which this
// map-plus-init achieves well enough for a single-process reader.
func Register(kind string, f Factory) { registry[kind] = f }

// Container is a parsed file-index blob: an ordered list of columns, each
// with an ordered list of (kind, offset, length) entries, backed by a
// shared io.ReaderAt for lazy per-column reader construction.
type Container struct {
	columns []columnEntry
	src     io.ReaderAt

	// BlobID identifies this blob for ReaderCache keying (e.g. a file
	// path); irrelevant when ReaderCache is nil.
	BlobID string
	// ReaderCache, when non-nil, caches constructed readers across
	// repeated ReadColumnIndex calls for the same (BlobID, column, kind)
	// (§C.3). Left nil by Open; callers opt in explicitly.
	ReaderCache *ReaderCache
}

// Open parses the fixed header (spec §3.4) from src, which must expose the
// whole blob (body slices are addressed by absolute offset from blob
// start).
func Open(src io.ReaderAt) (*Container, error) {
	var headFixed [16]byte
	if _, err := src.ReadAt(headFixed[:], 0); err != nil {
		return nil, fmt.Errorf("reading file-index header: %w", err)
	}
	magic := int64(binary.BigEndian.Uint64(headFixed[0:8]))
	if magic != Magic {
		return nil, fmt.Errorf("file-index magic mismatch: got %d, want %d", magic, Magic)
	}
	version := int32(binary.BigEndian.Uint32(headFixed[8:12]))
	if version != Version {
		return nil, fmt.Errorf("file-index version mismatch: got %d, want %d", version, Version)
	}
	headLength := int32(binary.BigEndian.Uint32(headFixed[12:16]))
	if headLength < 16 {
		return nil, fmt.Errorf("file-index head_length %d smaller than fixed header", headLength)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.Reset()
	buf.Set(make([]byte, headLength-16))
	if _, err := src.ReadAt(buf.B, 16); err != nil {
		return nil, fmt.Errorf("reading file-index inner header: %w", err)
	}

	r := newBigEndianReader(buf.B)
	columnCount, err := r.readInt32()
	if err != nil {
		return nil, fmt.Errorf("reading column_count: %w", err)
	}
	columns := make([]columnEntry, 0, columnCount)
	for i := int32(0); i < columnCount; i++ {
		name, err := r.readString()
		if err != nil {
			return nil, fmt.Errorf("reading column name %d: %w", i, err)
		}
		indexCount, err := r.readInt32()
		if err != nil {
			return nil, fmt.Errorf("reading index_count for column %q: %w", name, err)
		}
		indexes := make([]indexEntry, 0, indexCount)
		for j := int32(0); j < indexCount; j++ {
			kind, err := r.readString()
			if err != nil {
				return nil, fmt.Errorf("reading index_kind %d for column %q: %w", j, name, err)
			}
			offset, err := r.readInt32()
			if err != nil {
				return nil, fmt.Errorf("reading offset for %q/%q: %w", name, kind, err)
			}
			length, err := r.readInt32()
			if err != nil {
				return nil, fmt.Errorf("reading length for %q/%q: %w", name, kind, err)
			}
			indexes = append(indexes, indexEntry{kind: kind, offset: offset, length: length})
		}
		columns = append(columns, columnEntry{name: name, indexes: indexes})
	}
	metrics.ContainerOpensTotal.Inc()
	return &Container{columns: columns, src: src}, nil
}

// ReadColumnIndex implements spec §4.5's algorithm: look up the column in
// the schema, then construct one reader per recorded index entry, skipping
// unregistered kinds silently and propagating errors from registered
// factories.
func (c *Container) ReadColumnIndex(column string, schema ColumnSchema, fieldType literal.FieldType) ([]Reader, error) {
	if !schema.HasColumn(column) {
		return nil, fmt.Errorf("cannot find column %s in schema", column)
	}
	var col *columnEntry
	for i := range c.columns {
		if c.columns[i].name == column {
			col = &c.columns[i]
			break
		}
	}
	if col == nil {
		return nil, nil
	}
	readers := make([]Reader, 0, len(col.indexes))
	for _, e := range col.indexes {
		if e.offset == -1 {
			readers = append(readers, NewEmptyReader())
			continue
		}
		factory, ok := registry[e.kind]
		if !ok {
			continue
		}
		entry := e
		reader, err := c.ReaderCache.getOrBuild(c.BlobID, column, entry.kind, func() (Reader, error) {
			return factory(fieldType, entry.offset, entry.length, c.src)
		})
		if err != nil {
			return nil, fmt.Errorf("constructing reader for %q/%q: %w", column, e.kind, err)
		}
		metrics.ColumnIndexReadsByKind.WithLabelValues(entry.kind).Inc()
		readers = append(readers, reader)
	}
	return readers, nil
}

// ColumnNames returns every column recorded in the directory, in file
// order; used by introspection tools (cmd/fileindexctl inspect) rather
// than by the read path, which always goes through ReadColumnIndex.
func (c *Container) ColumnNames() []string {
	names := make([]string, len(c.columns))
	for i, col := range c.columns {
		names[i] = col.name
	}
	return names
}

// IndexKinds returns the index-kind strings recorded for column, in file
// order, without constructing any reader.
func (c *Container) IndexKinds(column string) []string {
	for i := range c.columns {
		if c.columns[i].name == column {
			kinds := make([]string, len(c.columns[i].indexes))
			for j, e := range c.columns[i].indexes {
				kinds[j] = e.kind
			}
			return kinds
		}
	}
	return nil
}

// CloseAll calls Close on every reader in readers (for example the slice
// one ReadColumnIndex call returned), continuing past failures, and returns
// the first error.
func CloseAll(readers []Reader) error {
	var firstErr error
	for _, r := range readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// bigEndianReader is a tiny scratch-buffer cursor used while parsing the
// fixed header; kept local since nothing else in this module needs
// streaming big-endian reads of this shape.
type bigEndianReader struct {
	buf []byte
	pos int
}

func newBigEndianReader(buf []byte) *bigEndianReader { return &bigEndianReader{buf: buf} }

func (r *bigEndianReader) readInt32() (int32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4]))
	r.pos += 4
	return v, nil
}

func (r *bigEndianReader) readString() (string, error) {
	n, err := r.readInt32()
	if err != nil {
		return "", err
	}
	if n < 0 || r.pos+int(n) > len(r.buf) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ---- Writer ----

// WriteColumn describes one column's worth of index bodies to emit.
type WriteColumn struct {
	Name    string
	Indexes []WriteIndex
}

// WriteIndex is one (kind, body) pair; Body may be nil to emit an
// offset == -1 empty-index entry.
type WriteIndex struct {
	Kind string
	Body []byte
}

// Write serializes a full file-index blob per spec §3.4: fixed header,
// inner directory, then the concatenated bodies in column/index order.
// Offsets are recorded relative to blob start, so the directory is built in
// two passes: first with body-relative offsets, then patched once
// head_length is known.
func Write(w io.Writer, columns []WriteColumn) error {
	var inner bufWriter
	inner.writeInt32(int32(len(columns)))
	bodyOffset := int32(0)

	type offsetFixup struct{ pos int }
	var fixups []offsetFixup
	type pendingBody struct{ b []byte }
	var bodies []pendingBody

	for _, col := range columns {
		inner.writeString(col.Name)
		inner.writeInt32(int32(len(col.Indexes)))
		for _, idx := range col.Indexes {
			inner.writeString(idx.Kind)
			if idx.Body == nil {
				inner.writeInt32(-1)
				inner.writeInt32(0)
				continue
			}
			fixups = append(fixups, offsetFixup{pos: len(inner.buf)})
			inner.writeInt32(bodyOffset)
			inner.writeInt32(int32(len(idx.Body)))
			bodyOffset += int32(len(idx.Body))
			bodies = append(bodies, pendingBody{b: idx.Body})
		}
	}

	headLength := int32(16 + len(inner.buf))
	for _, fx := range fixups {
		local := int32(binary.BigEndian.Uint32(inner.buf[fx.pos : fx.pos+4]))
		binary.BigEndian.PutUint32(inner.buf[fx.pos:fx.pos+4], uint32(local+headLength))
	}

	var fixed [16]byte
	binary.BigEndian.PutUint64(fixed[0:8], uint64(Magic))
	binary.BigEndian.PutUint32(fixed[8:12], uint32(Version))
	binary.BigEndian.PutUint32(fixed[12:16], uint32(headLength))

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(fixed[:]); err != nil {
		return fmt.Errorf("writing file-index fixed header: %w", err)
	}
	if _, err := bw.Write(inner.buf); err != nil {
		return fmt.Errorf("writing file-index inner header: %w", err)
	}
	for _, b := range bodies {
		if _, err := bw.Write(b.b); err != nil {
			return fmt.Errorf("writing file-index body: %w", err)
		}
	}
	return bw.Flush()
}

type bufWriter struct{ buf []byte }

func (w *bufWriter) writeInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *bufWriter) writeString(s string) {
	w.writeInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// SortColumnsByName is a convenience for callers that build a directory
// incrementally and want deterministic output ordering.
func SortColumnsByName(columns []WriteColumn) {
	sort.Slice(columns, func(i, j int) bool { return columns[i].Name < columns[j].Name })
}
