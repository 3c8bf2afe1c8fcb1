package batchreader

import "github.com/paimon-io/paimon-fileindex-go/metrics"

// ConcatBatchReader chains readers sequentially (spec §4.6): a reader is
// closed as soon as it reports EOF, metrics merge across all children, and
// the input sequence's order is preserved.
type ConcatBatchReader struct {
	readers []Reader
	idx     int
	merged  *metrics.MetricsImpl
}

func NewConcatBatchReader(readers ...Reader) *ConcatBatchReader {
	return &ConcatBatchReader{readers: readers, merged: metrics.NewMetricsImpl()}
}

func (r *ConcatBatchReader) NextBatch() (*Batch, error) {
	for r.idx < len(r.readers) {
		cur := r.readers[r.idx]
		batch, err := cur.NextBatch()
		if err == nil {
			return batch, nil
		}
		if err != EOF {
			return nil, err
		}
		r.merged.Merge(cur.GetReaderMetrics())
		if closeErr := cur.Close(); closeErr != nil {
			return nil, closeErr
		}
		r.idx++
	}
	return nil, EOF
}

func (r *ConcatBatchReader) GetReaderMetrics() *metrics.MetricsImpl {
	out := metrics.NewMetricsImpl()
	out.Merge(r.merged)
	if r.idx < len(r.readers) {
		out.Merge(r.readers[r.idx].GetReaderMetrics())
	}
	return out
}

func (r *ConcatBatchReader) Close() error {
	var firstErr error
	for ; r.idx < len(r.readers); r.idx++ {
		r.merged.Merge(r.readers[r.idx].GetReaderMetrics())
		if err := r.readers[r.idx].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
