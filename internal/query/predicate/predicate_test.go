package predicate

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/memstore/internal/domain/data"
	domainerrors "github.com/leengari/memstore/internal/domain/errors"
)

var people = Schema{
	Table: "people",
	Kinds: map[string]data.Kind{
		"name":   data.KindString,
		"age":    data.KindInt,
		"score":  data.KindFloat,
		"active": data.KindBool,
	},
}

func person(name string, age int64, score float64, active bool) *data.Record {
	return &data.Record{ID: name, Values: map[string]data.Value{
		"name":   data.String(name),
		"age":    data.Int(age),
		"score":  data.Float(score),
		"active": data.Bool(active),
	}}
}

func TestBuildMatches(t *testing.T) {
	ann := person("ann", 30, 7.5, true)

	tests := []struct {
		name   string
		groups []Group
		want   bool
	}{
		{"no groups", nil, false},
		{"empty groups", []Group{}, false},
		{"one empty group", []Group{{}}, true},
		{"empty group or-ed", []Group{{Cond("name", OpEq, data.String("bob"))}, {}}, true},
		{"eq", []Group{{Cond("name", OpEq, data.String("ann"))}}, true},
		{"eq is exact on kind", []Group{{Cond("age", OpEq, data.Float(30))}}, false},
		{"ne", []Group{{Cond("active", OpNe, data.Bool(false))}}, true},
		{"gt float", []Group{{Cond("score", OpGt, data.Float(7))}}, true},
		{"le int", []Group{{Cond("age", OpLe, data.Int(29))}}, false},
		{"and fails", []Group{{Cond("age", OpGe, data.Int(30)), Cond("name", OpEq, data.String("bob"))}}, false},
		{"or succeeds", []Group{{Cond("name", OpEq, data.String("bob"))}, {Cond("age", OpLt, data.Int(31))}}, true},
		{"in", []Group{{In("name", data.String("bob"), data.String("ann"))}}, true},
		{"in uppercase", []Group{{Condition{Column: "age", Op: "IN", Operand: List(data.Int(1))}}}, false},
		{"like", []Group{{Like("name", "a%")}}, true},
		{"like uppercase", []Group{{Condition{Column: "name", Op: "LIKE", Operand: Scalar(data.String("%n"))}}}, true},
		{"like on int column", []Group{{Like("age", "3%")}}, true},
		{"like escapes regexp", []Group{{Like("name", "a.n")}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Build(tt.groups, people)
			assert.NilError(t, err)
			assert.Equal(t, pred(ann), tt.want)
		})
	}
}

func TestBuildRejects(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		want error
	}{
		{"unknown column", Cond("email", OpEq, data.String("x")), domainerrors.ErrUnknownColumn},
		{"unknown operator", Cond("age", "<>", data.Int(1)), domainerrors.ErrUnsupportedOperator},
		{"ordering on bool", Cond("active", OpGt, data.Bool(false)), domainerrors.ErrUnsupportedOperand},
		{"ordering across kinds", Cond("age", OpGt, data.Float(1)), domainerrors.ErrUnsupportedOperand},
		{"eq with list", Condition{Column: "age", Op: OpEq, Operand: List(data.Int(1))}, domainerrors.ErrUnsupportedOperand},
		{"in with scalar", Cond("age", OpIn, data.Int(1)), domainerrors.ErrUnsupportedOperand},
		{"like with int pattern", Cond("name", OpLike, data.Int(1)), domainerrors.ErrUnsupportedOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]Group{{tt.cond}}, people)
			assert.Assert(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSortRecords(t *testing.T) {
	a := person("a", 3, 0, true)
	b := person("b", 1, 0, false)
	c := person("c", 3, 0, false)
	missing := &data.Record{ID: "m", Values: map[string]data.Value{}}

	records := []*data.Record{a, b, missing, c}
	SortRecords(records, "age", false)
	assert.DeepEqual(t, recordIDs(records), []string{"m", "b", "a", "c"})

	SortRecords(records, "age", true)
	// stable: a stays ahead of c
	assert.DeepEqual(t, recordIDs(records), []string{"a", "c", "b", "m"})

	SortRecords(records, "active", false)
	assert.DeepEqual(t, recordIDs(records), []string{"m", "c", "b", "a"})
}

func recordIDs(records []*data.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
