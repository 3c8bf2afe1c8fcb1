package batchreader

import (
	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/metrics"
)

// RowKindColumn is the reserved column name carrying each row's change
// kind (insert/update-before/update-after/delete), per spec §4.6.
const RowKindColumn = "_VALUE_KIND"

// RowKind mirrors the four-valued changelog row kind.
type RowKind int8

const (
	RowKindInsert RowKind = iota
	RowKindUpdateBefore
	RowKindUpdateAfter
	RowKindDelete
)

// CompleteRowKindBatchReader passes a batch through unchanged if it already
// carries a _VALUE_KIND column; otherwise it prepends a constant
// insert-valued _VALUE_KIND column sized to the batch (spec §4.6), reusing
// one ConstantArray rather than materializing per-row values.
type CompleteRowKindBatchReader struct {
	inner Reader
}

func NewCompleteRowKindBatchReader(inner Reader) *CompleteRowKindBatchReader {
	return &CompleteRowKindBatchReader{inner: inner}
}

func (r *CompleteRowKindBatchReader) NextBatch() (*Batch, error) {
	batch, err := r.inner.NextBatch()
	if err != nil {
		return nil, err
	}
	if _, ok := batch.Column(RowKindColumn); ok {
		return batch, nil
	}
	names := make([]string, 0, len(batch.Names)+1)
	columns := make([]Array, 0, len(batch.Columns)+1)
	names = append(names, RowKindColumn)
	columns = append(columns, ConstantArray{
		Value:  literal.TinyInt(int8(RowKindInsert)),
		Length: batch.Length,
	})
	names = append(names, batch.Names...)
	columns = append(columns, batch.Columns...)
	return &Batch{
		FirstRowNumber: batch.FirstRowNumber,
		Names:          names,
		Columns:        columns,
		Length:         batch.Length,
	}, nil
}

func (r *CompleteRowKindBatchReader) GetReaderMetrics() *metrics.MetricsImpl {
	return r.inner.GetReaderMetrics()
}

func (r *CompleteRowKindBatchReader) Close() error { return r.inner.Close() }
