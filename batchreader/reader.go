package batchreader

import (
	"errors"

	"github.com/paimon-io/paimon-fileindex-go/metrics"
	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// EOF is the sentinel NextBatch/NextBatchWithBitmap return once a reader is
// exhausted (spec's GLOSSARY: "EOF batch: a sentinel indicating end-of-stream
// from a batch reader").
var EOF = errors.New("batchreader: EOF")

// Reader is the uniform contract of spec §3.9: NextBatch returns a batch
// with every row implicitly valid, or EOF.
type Reader interface {
	NextBatch() (*Batch, error)
	GetReaderMetrics() *metrics.MetricsImpl
	Close() error
}

// BitmapReader is a Reader that can also report which rows in the next
// batch are valid without the caller paying to materialize a narrowed
// batch; NextBatch's default behavior (see ApplyBitmap below) is exactly
// this call followed by a filter step.
type BitmapReader interface {
	Reader
	NextBatchWithBitmap() (*Batch, *roaringwrap.Bitmap, error)
}

// ApplyBitmap narrows batch to the rows present in bitmap, per spec §3.9's
// default NextBatch implementation: "NextBatchWithBitmap followed by an
// apply-bitmap step that, if the bitmap is partial, concatenates the valid
// row slices into a fresh contiguous batch". A nil bitmap means "every row
// valid" and batch is returned unchanged.
func ApplyBitmap(batch *Batch, bitmap *roaringwrap.Bitmap) *Batch {
	if bitmap == nil {
		return batch
	}
	lo := uint32(batch.FirstRowNumber)
	hi := uint64(batch.FirstRowNumber) + uint64(batch.Length)
	positions := make([]int, 0, batch.Length)
	it := bitmap.EqualOrLarger(lo)
	for it.HasNext() {
		row := it.Next()
		if uint64(row) >= hi {
			break
		}
		positions = append(positions, int(uint64(row)-uint64(batch.FirstRowNumber)))
	}
	return selectRows(batch, positions)
}
