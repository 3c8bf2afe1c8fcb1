// Package predicate implements the leaf/compound predicate model of spec
// §3.2: LeafPredicate kinds, the AND/OR compound tree, and NOT lowering via
// predicate algebra at construction time.
package predicate

import (
	"fmt"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// Kind is the closed set of leaf predicate operators.
type Kind int

const (
	EQ Kind = iota
	NEQ
	LT
	LE
	GT
	GE
	IN
	NOT_IN
	IS_NULL
	IS_NOT_NULL
	STARTS_WITH
	ENDS_WITH
	CONTAINS
)

func (k Kind) String() string {
	names := [...]string{"EQ", "NEQ", "LT", "LE", "GT", "GE", "IN", "NOT_IN",
		"IS_NULL", "IS_NOT_NULL", "STARTS_WITH", "ENDS_WITH", "CONTAINS"}
	if int(k) < len(names) {
		return names[k]
	}
	return "UNKNOWN"
}

// LeafPredicate binds (field_index, field_name, field_type, kind, literals).
type LeafPredicate struct {
	FieldIndex int
	FieldName  string
	FieldType  literal.FieldType
	Kind       Kind
	Literals   []literal.Literal
}

// NewLeaf validates the invariants of spec §3.2 before returning a leaf:
// literal count matches the kind's arity, no literal is null, and every
// literal's type equals the field type.
func NewLeaf(fieldIndex int, fieldName string, fieldType literal.FieldType, kind Kind, lits ...literal.Literal) (LeafPredicate, error) {
	switch kind {
	case IS_NULL, IS_NOT_NULL:
		if len(lits) != 0 {
			return LeafPredicate{}, fmt.Errorf("%s takes no literals", kind)
		}
	case IN, NOT_IN:
		if len(lits) == 0 {
			return LeafPredicate{}, fmt.Errorf("%s requires at least one literal", kind)
		}
	default:
		if len(lits) != 1 {
			return LeafPredicate{}, fmt.Errorf("%s requires exactly one literal", kind)
		}
	}
	for _, l := range lits {
		if l.IsNull() {
			return LeafPredicate{}, fmt.Errorf("leaf predicate literal may not be null; use IS_NULL/IS_NOT_NULL")
		}
		if l.Type() != fieldType {
			return LeafPredicate{}, fmt.Errorf("literal type %s does not match field type %s", l.Type(), fieldType)
		}
	}
	return LeafPredicate{
		FieldIndex: fieldIndex,
		FieldName:  fieldName,
		FieldType:  fieldType,
		Kind:       kind,
		Literals:   lits,
	}, nil
}

// Negate returns the De Morgan / kind-level negation of a leaf, used by NOT
// lowering: NOT EQ = NEQ, NOT LT = GE, and so on.
func (p LeafPredicate) Negate() (LeafPredicate, error) {
	negated := p
	switch p.Kind {
	case EQ:
		negated.Kind = NEQ
	case NEQ:
		negated.Kind = EQ
	case LT:
		negated.Kind = GE
	case LE:
		negated.Kind = GT
	case GT:
		negated.Kind = LE
	case GE:
		negated.Kind = LT
	case IN:
		negated.Kind = NOT_IN
	case NOT_IN:
		negated.Kind = IN
	case IS_NULL:
		negated.Kind = IS_NOT_NULL
	case IS_NOT_NULL:
		negated.Kind = IS_NULL
	default:
		return LeafPredicate{}, fmt.Errorf("kind %s has no leaf-level negation", p.Kind)
	}
	return negated, nil
}

// Op is the compound operator: AND or OR. NOT is never represented; it is
// lowered during construction (NewNot).
type Op int

const (
	AND Op = iota
	OR
)

func (o Op) String() string {
	if o == AND {
		return "AND"
	}
	return "OR"
}

// Predicate is either a LeafPredicate or a CompoundPredicate; exactly one of
// Leaf/Compound is set.
type Predicate struct {
	Leaf     *LeafPredicate
	Compound *CompoundPredicate
}

// CompoundPredicate is an AND/OR tree; NOT is never stored here.
type CompoundPredicate struct {
	Op       Op
	Children []Predicate
}

func FromLeaf(l LeafPredicate) Predicate { return Predicate{Leaf: &l} }

func And(children ...Predicate) Predicate {
	return Predicate{Compound: &CompoundPredicate{Op: AND, Children: children}}
}

func Or(children ...Predicate) Predicate {
	return Predicate{Compound: &CompoundPredicate{Op: OR, Children: children}}
}

// Not lowers NOT at construction time: NOT(leaf) negates the leaf's kind;
// NOT(AND[...]) = OR[NOT(...)...] and NOT(OR[...]) = AND[NOT(...)...], per
// De Morgan's laws, so the resulting tree never contains a NOT node.
func Not(p Predicate) (Predicate, error) {
	switch {
	case p.Leaf != nil:
		negated, err := p.Leaf.Negate()
		if err != nil {
			return Predicate{}, err
		}
		return FromLeaf(negated), nil
	case p.Compound != nil:
		children := make([]Predicate, len(p.Compound.Children))
		for i, c := range p.Compound.Children {
			nc, err := Not(c)
			if err != nil {
				return Predicate{}, err
			}
			children[i] = nc
		}
		switch p.Compound.Op {
		case AND:
			return Or(children...), nil
		case OR:
			return And(children...), nil
		}
	}
	return Predicate{}, fmt.Errorf("predicate has neither leaf nor compound set")
}

// IsLeaf reports whether p is a leaf predicate.
func (p Predicate) IsLeaf() bool { return p.Leaf != nil }
