package fileindex

import "github.com/paimon-io/paimon-fileindex-go/predicate"

// EmptyReader answers every positive predicate with Skip (the file is known
// to contain no rows for this column) and leaves negative predicates
// (NEQ, IS_NULL, NOT_IN) to the BaseReader default of Remain, matching
// empty_file_index_reader.h in original_source/ exactly: only the listed
// methods are overridden.
type EmptyReader struct {
	BaseReader
}

var _ Visitor = EmptyReader{}

func NewEmptyReader() EmptyReader { return EmptyReader{} }

func (EmptyReader) VisitEqual(predicate.LeafPredicate) (Result, error)       { return Skip(), nil }
func (EmptyReader) VisitIsNotNull(predicate.LeafPredicate) (Result, error)   { return Skip(), nil }
func (EmptyReader) VisitStartsWith(predicate.LeafPredicate) (Result, error)  { return Skip(), nil }
func (EmptyReader) VisitEndsWith(predicate.LeafPredicate) (Result, error)    { return Skip(), nil }
func (EmptyReader) VisitContains(predicate.LeafPredicate) (Result, error)    { return Skip(), nil }
func (EmptyReader) VisitLessThan(predicate.LeafPredicate) (Result, error)    { return Skip(), nil }
func (EmptyReader) VisitGreaterOrEqual(predicate.LeafPredicate) (Result, error) {
	return Skip(), nil
}
func (EmptyReader) VisitLessOrEqual(predicate.LeafPredicate) (Result, error)    { return Skip(), nil }
func (EmptyReader) VisitGreaterThan(predicate.LeafPredicate) (Result, error)    { return Skip(), nil }
func (EmptyReader) VisitIn(predicate.LeafPredicate) (Result, error)             { return Skip(), nil }

func (r EmptyReader) Evaluate(p predicate.LeafPredicate) (Result, error) { return Dispatch(r, p) }
func (EmptyReader) Close() error                                         { return nil }
