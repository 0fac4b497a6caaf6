package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which scalar a Value holds
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "TEXT"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindBool:
		return "BOOL"
	default:
		return "INVALID"
	}
}

// Orderable reports whether values of this kind support <, >, <=, >=
func (k Kind) Orderable() bool {
	return k == KindString || k == KindInt || k == KindFloat
}

// Value is a single cell: a closed tagged variant over string, int64,
// float64 and bool. Values are comparable and can be used as map keys.
// The zero Value has KindInvalid and is never stored in a record.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

func String(s string) Value   { return Value{kind: KindString, s: s} }
func Int(i int64) Value       { return Value{kind: KindInt, i: i} }
func Float(f float64) Value   { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsString returns the payload when v is a string
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the payload when v is an int
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the payload when v is a float
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the payload when v is a bool
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// Interface unwraps the value into a plain Go scalar (nil for invalid)
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	}
	return nil
}

// String renders the value the way LIKE matching and the shell see it
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "NULL"
}

// Finite is false for NaN and ±Inf floats, which can neither be indexed
// (NaN != NaN) nor written to a snapshot.
func (v Value) Finite() bool {
	return v.kind != KindFloat || !(math.IsNaN(v.f) || math.IsInf(v.f, 0))
}

// Equal is exact equality: kinds must match, there is no numeric widening.
func (v Value) Equal(other Value) bool {
	return v == other
}

// Compare orders two values of the same orderable kind.
// ok is false when the kinds differ or are not orderable.
func (v Value) Compare(other Value) (cmp int, ok bool) {
	if v.kind != other.kind || !v.kind.Orderable() {
		return 0, false
	}
	switch v.kind {
	case KindString:
		switch {
		case v.s < other.s:
			return -1, true
		case v.s > other.s:
			return 1, true
		}
	case KindInt:
		switch {
		case v.i < other.i:
			return -1, true
		case v.i > other.i:
			return 1, true
		}
	case KindFloat:
		switch {
		case v.f < other.f:
			return -1, true
		case v.f > other.f:
			return 1, true
		}
	}
	return 0, true
}

// FromInterface wraps a plain Go scalar. Integer types are widened to int64
// and float32 to float64; anything else is rejected.
func FromInterface(x interface{}) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case float32:
		return finiteFloat(float64(v))
	case float64:
		return finiteFloat(v)
	}
	return Value{}, fmt.Errorf("unsupported value type %T", x)
}

func finiteFloat(f float64) (Value, error) {
	v := Float(f)
	if !v.Finite() {
		return Value{}, fmt.Errorf("non-finite float %v", f)
	}
	return v, nil
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("cannot encode non-finite float %v", v.f)
		}
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

// ParseJSON decodes a JSON scalar into a Value. Strings stay strings and
// booleans stay booleans whatever the hint says; the hint only decides how a
// JSON number is read: FLOAT hints produce floats, otherwise integral numbers
// become ints and fractional ones floats.
func ParseJSON(raw json.RawMessage, hint Kind) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, fmt.Errorf("empty value")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return String(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case 'n':
		return Value{}, fmt.Errorf("null is not a valid value")
	case '{', '[':
		return Value{}, fmt.Errorf("expected a scalar, got %s", raw)
	}

	num := json.Number(raw)
	if hint != KindFloat {
		if i, err := num.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := num.Float64()
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %s: %w", raw, err)
	}
	return Float(f), nil
}
