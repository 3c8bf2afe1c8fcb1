package fileindex

import (
	"github.com/paimon-io/paimon-fileindex-go/predicate"
)

// Reader is the uniform visitor interface every index kind implements
// (spec §9 "Visitor polymorphism"): a single entry point dispatching on the
// leaf predicate's Kind, rather than one virtual method per kind as in the
// C++ source. Unsupported kinds default to Remain via BaseReader.
type Reader interface {
	Evaluate(p predicate.LeafPredicate) (Result, error)
	Close() error
}

// BaseReader supplies a default Visit* method for every kind, each returning
// Remain. Concrete readers embed BaseReader, override only the Visit*
// methods they support, and implement Evaluate themselves by calling
// Dispatch on the reader; spec §3.4 requires the empty-index
// reader to do exactly this for its negative-predicate fallthrough.
type BaseReader struct{}

func (BaseReader) VisitEqual(predicate.LeafPredicate) (Result, error)       { return Remain(), nil }
func (BaseReader) VisitNotEqual(predicate.LeafPredicate) (Result, error)    { return Remain(), nil }
func (BaseReader) VisitLessThan(predicate.LeafPredicate) (Result, error)    { return Remain(), nil }
func (BaseReader) VisitLessOrEqual(predicate.LeafPredicate) (Result, error) { return Remain(), nil }
func (BaseReader) VisitGreaterThan(predicate.LeafPredicate) (Result, error) { return Remain(), nil }
func (BaseReader) VisitGreaterOrEqual(predicate.LeafPredicate) (Result, error) {
	return Remain(), nil
}
func (BaseReader) VisitIn(predicate.LeafPredicate) (Result, error)        { return Remain(), nil }
func (BaseReader) VisitNotIn(predicate.LeafPredicate) (Result, error)     { return Remain(), nil }
func (BaseReader) VisitIsNull(predicate.LeafPredicate) (Result, error)    { return Remain(), nil }
func (BaseReader) VisitIsNotNull(predicate.LeafPredicate) (Result, error) { return Remain(), nil }
func (BaseReader) VisitStartsWith(predicate.LeafPredicate) (Result, error) { return Remain(), nil }
func (BaseReader) VisitEndsWith(predicate.LeafPredicate) (Result, error)   { return Remain(), nil }
func (BaseReader) VisitContains(predicate.LeafPredicate) (Result, error)   { return Remain(), nil }

// Visitor is implemented by every concrete reader; Dispatch below routes a
// LeafPredicate to the matching Visit* method.
type Visitor interface {
	VisitEqual(predicate.LeafPredicate) (Result, error)
	VisitNotEqual(predicate.LeafPredicate) (Result, error)
	VisitLessThan(predicate.LeafPredicate) (Result, error)
	VisitLessOrEqual(predicate.LeafPredicate) (Result, error)
	VisitGreaterThan(predicate.LeafPredicate) (Result, error)
	VisitGreaterOrEqual(predicate.LeafPredicate) (Result, error)
	VisitIn(predicate.LeafPredicate) (Result, error)
	VisitNotIn(predicate.LeafPredicate) (Result, error)
	VisitIsNull(predicate.LeafPredicate) (Result, error)
	VisitIsNotNull(predicate.LeafPredicate) (Result, error)
	VisitStartsWith(predicate.LeafPredicate) (Result, error)
	VisitEndsWith(predicate.LeafPredicate) (Result, error)
	VisitContains(predicate.LeafPredicate) (Result, error)
}

// Dispatch routes p to the matching Visit* method of v.
func Dispatch(v Visitor, p predicate.LeafPredicate) (Result, error) {
	switch p.Kind {
	case predicate.EQ:
		return v.VisitEqual(p)
	case predicate.NEQ:
		return v.VisitNotEqual(p)
	case predicate.LT:
		return v.VisitLessThan(p)
	case predicate.LE:
		return v.VisitLessOrEqual(p)
	case predicate.GT:
		return v.VisitGreaterThan(p)
	case predicate.GE:
		return v.VisitGreaterOrEqual(p)
	case predicate.IN:
		return v.VisitIn(p)
	case predicate.NOT_IN:
		return v.VisitNotIn(p)
	case predicate.IS_NULL:
		return v.VisitIsNull(p)
	case predicate.IS_NOT_NULL:
		return v.VisitIsNotNull(p)
	case predicate.STARTS_WITH:
		return v.VisitStartsWith(p)
	case predicate.ENDS_WITH:
		return v.VisitEndsWith(p)
	case predicate.CONTAINS:
		return v.VisitContains(p)
	default:
		return Remain(), nil
	}
}
