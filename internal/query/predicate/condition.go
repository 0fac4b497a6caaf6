package predicate

import (
	"fmt"
	"strings"

	"github.com/leengari/memstore/internal/domain/data"
)

// Operator tokens understood by the evaluator
const (
	OpEq   = "=="
	OpNe   = "!="
	OpGt   = ">"
	OpLt   = "<"
	OpGe   = ">="
	OpLe   = "<="
	OpIn   = "in"
	OpLike = "like"
)

// Operand is the right-hand side of a condition: a scalar, or a list for IN
type Operand struct {
	Scalar data.Value
	List   []data.Value
	isList bool
}

// Scalar wraps a single value
func Scalar(v data.Value) Operand {
	return Operand{Scalar: v}
}

// List wraps a container operand for IN
func List(values ...data.Value) Operand {
	list := make([]data.Value, len(values))
	copy(list, values)
	return Operand{List: list, isList: true}
}

// IsList reports whether the operand is a container
func (o Operand) IsList() bool { return o.isList }

func (o Operand) String() string {
	if !o.isList {
		return o.Scalar.String()
	}
	parts := make([]string, len(o.List))
	for i, v := range o.List {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Condition is a single (column, operator, operand) triple
type Condition struct {
	Column  string
	Op      string
	Operand Operand
}

// Cond builds a scalar condition
func Cond(column, op string, v data.Value) Condition {
	return Condition{Column: column, Op: op, Operand: Scalar(v)}
}

// In builds a membership condition
func In(column string, values ...data.Value) Condition {
	return Condition{Column: column, Op: OpIn, Operand: List(values...)}
}

// Like builds a SQL-style pattern condition (% matches any substring)
func Like(column, pattern string) Condition {
	return Condition{Column: column, Op: OpLike, Operand: Scalar(data.String(pattern))}
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Operand)
}

// Group is a conjunction of conditions
type Group []Condition

// Query is the extended select: groups are OR-ed together, conditions inside
// a group are AND-ed. An empty Groups slice matches no record; a single
// empty group matches every record.
type Query struct {
	Groups     []Group
	OrderBy    string
	Descending bool
	Limit      *int // nil means unlimited
}

// Limit returns a pointer suitable for Query.Limit
func Limit(n int) *int {
	return &n
}
