package batchreader

import (
	"fmt"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/metrics"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// PredicateBatchReader holds an in-batch predicate filter: it evaluates a
// compound leaf predicate tree against each batch's arrays directly (not
// against a file-index bitmap) and intersects its pointwise result with the
// upstream bitmap, if any (spec §4.6).
type PredicateBatchReader struct {
	inner     Reader
	predicate predicate.Predicate
	upstream  *roaringwrap.Bitmap
}

func NewPredicateBatchReader(inner Reader, p predicate.Predicate, upstream *roaringwrap.Bitmap) *PredicateBatchReader {
	return &PredicateBatchReader{inner: inner, predicate: p, upstream: upstream}
}

func (r *PredicateBatchReader) NextBatch() (*Batch, error) {
	for {
		batch, err := r.inner.NextBatch()
		if err != nil {
			return nil, err
		}
		if r.upstream != nil {
			batch = ApplyBitmap(batch, r.upstream)
			if batch.Length == 0 {
				continue
			}
		}
		positions := make([]int, 0, batch.Length)
		for i := 0; i < batch.Length; i++ {
			ok, err := evaluateRow(r.predicate, batch, i)
			if err != nil {
				return nil, err
			}
			if ok {
				positions = append(positions, i)
			}
		}
		if len(positions) == 0 {
			continue
		}
		return selectRows(batch, positions), nil
	}
}

func (r *PredicateBatchReader) GetReaderMetrics() *metrics.MetricsImpl {
	return r.inner.GetReaderMetrics()
}

func (r *PredicateBatchReader) Close() error { return r.inner.Close() }

// evaluateRow tests predicate p against row i of batch, dispatching
// compound AND/OR nodes and leaf kinds directly against literal.Literal
// (unlike the index-reader visitor, this never produces a bitmap, only a
// bool, since it inspects one row's actual value rather than a summary).
func evaluateRow(p predicate.Predicate, batch *Batch, row int) (bool, error) {
	if p.Compound != nil {
		switch p.Compound.Op {
		case predicate.AND:
			for _, c := range p.Compound.Children {
				ok, err := evaluateRow(c, batch, row)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		case predicate.OR:
			for _, c := range p.Compound.Children {
				ok, err := evaluateRow(c, batch, row)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		}
		return false, fmt.Errorf("batchreader: unknown compound op %v", p.Compound.Op)
	}
	if p.Leaf == nil {
		return false, fmt.Errorf("batchreader: predicate has neither leaf nor compound set")
	}
	leaf := *p.Leaf
	if leaf.FieldIndex < 0 || leaf.FieldIndex >= len(batch.Columns) {
		return false, fmt.Errorf("batchreader: field index %d out of range for batch with %d columns", leaf.FieldIndex, len(batch.Columns))
	}
	value := batch.Columns[leaf.FieldIndex].Get(row)
	return evaluateLeaf(leaf, value)
}

func evaluateLeaf(leaf predicate.LeafPredicate, value literal.Literal) (bool, error) {
	switch leaf.Kind {
	case predicate.IS_NULL:
		return value.IsNull(), nil
	case predicate.IS_NOT_NULL:
		return !value.IsNull(), nil
	}
	if value.IsNull() {
		return false, nil
	}
	switch leaf.Kind {
	case predicate.EQ:
		return value.Equal(leaf.Literals[0]), nil
	case predicate.NEQ:
		return !value.Equal(leaf.Literals[0]), nil
	case predicate.LT, predicate.LE, predicate.GT, predicate.GE:
		cmp, err := value.CompareTo(leaf.Literals[0])
		if err != nil {
			return false, err
		}
		switch leaf.Kind {
		case predicate.LT:
			return cmp < 0, nil
		case predicate.LE:
			return cmp <= 0, nil
		case predicate.GT:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case predicate.IN:
		for _, l := range leaf.Literals {
			if value.Equal(l) {
				return true, nil
			}
		}
		return false, nil
	case predicate.NOT_IN:
		for _, l := range leaf.Literals {
			if value.Equal(l) {
				return false, nil
			}
		}
		return true, nil
	case predicate.STARTS_WITH:
		return hasPrefix(value.BytesValue(), leaf.Literals[0].BytesValue()), nil
	case predicate.ENDS_WITH:
		return hasSuffix(value.BytesValue(), leaf.Literals[0].BytesValue()), nil
	case predicate.CONTAINS:
		return contains(value.BytesValue(), leaf.Literals[0].BytesValue()), nil
	default:
		return false, fmt.Errorf("batchreader: unsupported leaf kind %s", leaf.Kind)
	}
}

func hasPrefix(s, prefix []byte) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

func hasSuffix(s, suffix []byte) bool {
	if len(suffix) > len(s) {
		return false
	}
	off := len(s) - len(suffix)
	for i := range suffix {
		if s[off+i] != suffix[i] {
			return false
		}
	}
	return true
}

func contains(s, sub []byte) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if hasPrefix(s[i:], sub) {
			return true
		}
	}
	return false
}
