package batchreader

import (
	"fmt"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/metrics"
)

// DataEvolutionFileReader assembles one output batch from k child readers
// for schema-evolved tables, where a single logical row is physically
// split across k files, each carrying a subset of fields (spec §4.6).
//
// readerOffsets[i]/fieldOffsets[i] (length = len(outputNames)) say, for
// output field i, which child reader and which field index within that
// child it comes from; readerOffsets[i] == -1 means the field is absent
// from every child and is filled with a typed null. A nil entry in
// children means that child is absent; every output position referencing
// it must also be -1 in readerOffsets.
type DataEvolutionFileReader struct {
	children      []Reader
	readerOffsets []int
	fieldOffsets  []int
	outputNames   []string
	outputTypes   []literal.FieldType
	readBatchSize int

	leftover []*Batch // per-child cached remainder, parallel to children
}

func NewDataEvolutionFileReader(
	children []Reader,
	readerOffsets, fieldOffsets []int,
	outputNames []string,
	outputTypes []literal.FieldType,
	readBatchSize int,
) (*DataEvolutionFileReader, error) {
	if len(readerOffsets) != len(outputNames) || len(fieldOffsets) != len(outputNames) || len(outputTypes) != len(outputNames) {
		return nil, fmt.Errorf("batchreader: DataEvolutionFileReader offsets/names/types length mismatch")
	}
	for i, ro := range readerOffsets {
		if ro == -1 {
			continue
		}
		if ro < 0 || ro >= len(children) {
			return nil, fmt.Errorf("batchreader: reader_offsets[%d]=%d out of range", i, ro)
		}
		if children[ro] == nil {
			return nil, fmt.Errorf("batchreader: reader_offsets[%d] refers to absent child %d", i, ro)
		}
	}
	return &DataEvolutionFileReader{
		children:      children,
		readerOffsets: readerOffsets,
		fieldOffsets:  fieldOffsets,
		outputNames:   outputNames,
		outputTypes:   outputTypes,
		readBatchSize: readBatchSize,
		leftover:      make([]*Batch, len(children)),
	}, nil
}

// pullChild returns up to readBatchSize rows from child i, drawing from a
// cached leftover first and truncating+caching any surplus, per spec §4.6
// ("truncating and caching leftovers").
func (r *DataEvolutionFileReader) pullChild(i int) (*Batch, error) {
	if r.children[i] == nil {
		return nil, nil
	}
	if r.leftover[i] != nil && r.leftover[i].Length > 0 {
		b := r.leftover[i]
		r.leftover[i] = nil
		if b.Length > r.readBatchSize {
			head := selectRows(b, indexRange(0, r.readBatchSize))
			tail := selectRows(b, indexRange(r.readBatchSize, b.Length))
			tail.FirstRowNumber = b.FirstRowNumber + int64(r.readBatchSize)
			r.leftover[i] = tail
			return head, nil
		}
		return b, nil
	}
	batch, err := r.children[i].NextBatch()
	if err != nil {
		return nil, err
	}
	if batch.Length > r.readBatchSize {
		head := selectRows(batch, indexRange(0, r.readBatchSize))
		tail := selectRows(batch, indexRange(r.readBatchSize, batch.Length))
		tail.FirstRowNumber = batch.FirstRowNumber + int64(r.readBatchSize)
		r.leftover[i] = tail
		return head, nil
	}
	return batch, nil
}

func indexRange(lo, hi int) []int {
	out := make([]int, hi-lo)
	for i := range out {
		out[i] = lo + i
	}
	return out
}

func (r *DataEvolutionFileReader) NextBatch() (*Batch, error) {
	childBatches := make([]*Batch, len(r.children))
	var firstRowNumber int64
	var length = -1
	anyLive := false
	for i := range r.children {
		if r.children[i] == nil {
			continue
		}
		b, err := r.pullChild(i)
		if err == EOF {
			return nil, EOF
		}
		if err != nil {
			return nil, err
		}
		anyLive = true
		if length == -1 {
			length = b.Length
			firstRowNumber = b.FirstRowNumber
		} else if b.Length != length {
			return nil, fmt.Errorf("batchreader: DataEvolutionFileReader child %d row count %d differs from %d", i, b.Length, length)
		}
		childBatches[i] = b
	}
	if !anyLive {
		return nil, EOF
	}

	columns := make([]Array, len(r.outputNames))
	for i, ro := range r.readerOffsets {
		if ro == -1 {
			columns[i] = ConstantArray{Value: literal.Null(r.outputTypes[i]), Length: length}
			continue
		}
		fo := r.fieldOffsets[i]
		col := childBatches[ro].Columns[fo]
		columns[i] = col
	}
	return &Batch{
		FirstRowNumber: firstRowNumber,
		Names:          append([]string(nil), r.outputNames...),
		Columns:        columns,
		Length:         length,
	}, nil
}

func (r *DataEvolutionFileReader) GetReaderMetrics() *metrics.MetricsImpl {
	out := metrics.NewMetricsImpl()
	for _, c := range r.children {
		if c != nil {
			out.Merge(c.GetReaderMetrics())
		}
	}
	return out
}

func (r *DataEvolutionFileReader) Close() error {
	var firstErr error
	for _, c := range r.children {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
