package predicate

import (
	"regexp"
	"strings"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/domain/errors"
)

// PredicateFunc is a function that tests whether a record matches certain criteria
type PredicateFunc func(*data.Record) bool

// Schema is what the builder needs to know about the target table
type Schema struct {
	Table string
	Kinds map[string]data.Kind // column → declared kind
}

// Build compiles condition groups into a single predicate.
// Every operator and operand is checked against the schema up front, so a
// malformed query fails even when the table is empty.
// No groups is an empty OR and matches nothing; an empty group matches everything.
func Build(groups []Group, s Schema) (PredicateFunc, error) {
	if len(groups) == 0 {
		return func(*data.Record) bool { return false }, nil
	}

	compiled := make([]PredicateFunc, 0, len(groups))
	for _, g := range groups {
		pred, err := buildGroup(g, s)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, pred)
	}

	// OR across groups, short-circuit on the first match
	return func(r *data.Record) bool {
		for _, pred := range compiled {
			if pred(r) {
				return true
			}
		}
		return false
	}, nil
}

// buildGroup ANDs the conditions of one group
func buildGroup(g Group, s Schema) (PredicateFunc, error) {
	preds := make([]PredicateFunc, 0, len(g))
	for _, c := range g {
		pred, err := buildCondition(c, s)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}

	return func(r *data.Record) bool {
		for _, pred := range preds {
			if !pred(r) {
				return false
			}
		}
		return true
	}, nil
}

// buildCondition builds a predicate for a single comparison
func buildCondition(c Condition, s Schema) (PredicateFunc, error) {
	kind, ok := s.Kinds[c.Column]
	if !ok {
		return nil, &errors.ColumnNotFoundError{TableName: s.Table, ColumnName: c.Column}
	}

	op := c.Op
	if lower := strings.ToLower(op); lower == OpIn || lower == OpLike {
		op = lower
	}

	switch op {
	case OpEq, OpNe:
		if c.Operand.IsList() {
			return nil, errors.NewUnsupportedOperand(c.Column, c.Op, c.Operand.String(), "list operand is only valid with IN")
		}
		want := c.Operand.Scalar
		negate := op == OpNe
		return func(r *data.Record) bool {
			val, _ := r.Get(c.Column)
			return val.Equal(want) != negate
		}, nil

	case OpGt, OpLt, OpGe, OpLe:
		return buildOrdering(c, op, kind)

	case OpIn:
		if !c.Operand.IsList() {
			return nil, errors.NewUnsupportedOperand(c.Column, c.Op, c.Operand.String(), "IN requires a list operand")
		}
		set := make(map[data.Value]struct{}, len(c.Operand.List))
		for _, v := range c.Operand.List {
			set[v] = struct{}{}
		}
		return func(r *data.Record) bool {
			val, _ := r.Get(c.Column)
			_, found := set[val]
			return found
		}, nil

	case OpLike:
		pattern, isString := c.Operand.Scalar.AsString()
		if c.Operand.IsList() || !isString {
			return nil, errors.NewUnsupportedOperand(c.Column, c.Op, c.Operand.String(), "LIKE requires a TEXT pattern")
		}
		re := compileLike(pattern)
		return func(r *data.Record) bool {
			val, ok := r.Get(c.Column)
			if !ok || !val.IsValid() {
				return false
			}
			return re.MatchString(val.String())
		}, nil
	}

	return nil, errors.NewUnsupportedOperator(c.Column, c.Op)
}

// buildOrdering handles <, >, <=, >=. The operand must share the column's
// declared kind and that kind must be orderable.
func buildOrdering(c Condition, op string, kind data.Kind) (PredicateFunc, error) {
	operand := c.Operand.Scalar
	switch {
	case c.Operand.IsList():
		return nil, errors.NewUnsupportedOperand(c.Column, c.Op, c.Operand.String(), "list operand is only valid with IN")
	case !kind.Orderable():
		return nil, errors.NewUnsupportedOperand(c.Column, c.Op, operand.String(), "column type "+kind.String()+" is not ordered")
	case operand.Kind() != kind:
		return nil, errors.NewUnsupportedOperand(c.Column, c.Op, operand.String(),
			"cannot compare "+kind.String()+" with "+operand.Kind().String())
	}

	var accept func(cmp int) bool
	switch op {
	case OpGt:
		accept = func(cmp int) bool { return cmp > 0 }
	case OpLt:
		accept = func(cmp int) bool { return cmp < 0 }
	case OpGe:
		accept = func(cmp int) bool { return cmp >= 0 }
	default:
		accept = func(cmp int) bool { return cmp <= 0 }
	}

	return func(r *data.Record) bool {
		val, _ := r.Get(c.Column)
		cmp, ok := val.Compare(operand)
		return ok && accept(cmp)
	}, nil
}

// compileLike turns a SQL LIKE pattern into an anchored regexp.
// % matches any run of characters (including newlines); everything else is literal.
func compileLike(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "%")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?s)^` + strings.Join(parts, ".*") + `$`)
}
