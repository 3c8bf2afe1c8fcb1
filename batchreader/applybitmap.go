package batchreader

import (
	"github.com/paimon-io/paimon-fileindex-go/metrics"
	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// ApplyBitmapIndexBatchReader wraps a file-level Reader with a precomputed
// row-id bitmap (spec §4.6): each batch is intersected with the bitmap over
// the window [batch.FirstRowNumber, batch.FirstRowNumber+batch.Length), and
// batches whose intersection is empty are dropped in favor of the next one.
type ApplyBitmapIndexBatchReader struct {
	inner  Reader
	bitmap *roaringwrap.Bitmap
}

func NewApplyBitmapIndexBatchReader(inner Reader, bitmap *roaringwrap.Bitmap) *ApplyBitmapIndexBatchReader {
	return &ApplyBitmapIndexBatchReader{inner: inner, bitmap: bitmap}
}

func (r *ApplyBitmapIndexBatchReader) NextBatch() (*Batch, error) {
	for {
		batch, err := r.inner.NextBatch()
		if err != nil {
			return nil, err
		}
		filtered := ApplyBitmap(batch, r.bitmap)
		if filtered.Length == 0 {
			continue
		}
		return filtered, nil
	}
}

func (r *ApplyBitmapIndexBatchReader) GetReaderMetrics() *metrics.MetricsImpl {
	return r.inner.GetReaderMetrics()
}

func (r *ApplyBitmapIndexBatchReader) Close() error { return r.inner.Close() }
