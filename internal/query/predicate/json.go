package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/leengari/memstore/internal/domain/data"
)

// ConditionJSON is the wire form of a Condition
type ConditionJSON struct {
	Column string          `json:"column" validate:"required"`
	Op     string          `json:"op" validate:"required"`
	Value  json.RawMessage `json:"value" validate:"required"`
}

// QueryJSON is the wire form of a Query, shared by the HTTP API and the shell.
//
//	{"groups": [[{"column": "age", "op": ">", "value": 30}]],
//	 "order_by": "age", "descending": true, "limit": 10}
type QueryJSON struct {
	// Groups are OR-ed; the conditions inside a group are AND-ed
	Groups     [][]ConditionJSON `json:"groups" validate:"dive,dive"`
	OrderBy    string            `json:"order_by"`
	Descending bool              `json:"descending"`
	Limit      *int              `json:"limit"`
}

// Query decodes every operand with the column kinds as number hints.
// Operator and kind checks are left to Build.
func (b QueryJSON) Query(kinds map[string]data.Kind) (Query, error) {
	q := Query{
		Groups:     make([]Group, 0, len(b.Groups)),
		OrderBy:    b.OrderBy,
		Descending: b.Descending,
		Limit:      b.Limit,
	}
	for gi, g := range b.Groups {
		group := make(Group, 0, len(g))
		for ci, c := range g {
			operand, err := DecodeOperand(c.Value, kinds[c.Column])
			if err != nil {
				return Query{}, fmt.Errorf("groups[%d][%d]: %w", gi, ci, err)
			}
			group = append(group, Condition{Column: c.Column, Op: c.Op, Operand: operand})
		}
		q.Groups = append(q.Groups, group)
	}
	return q, nil
}

// DecodeOperand reads a condition operand: a JSON array becomes a list
// (for IN), anything else a scalar.
func DecodeOperand(raw json.RawMessage, hint data.Kind) (Operand, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		v, err := data.ParseJSON(raw, hint)
		if err != nil {
			return Operand{}, err
		}
		return Scalar(v), nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Operand{}, err
	}
	list := make([]data.Value, 0, len(items))
	for _, item := range items {
		v, err := data.ParseJSON(item, hint)
		if err != nil {
			return Operand{}, err
		}
		list = append(list, v)
	}
	return List(list...), nil
}
