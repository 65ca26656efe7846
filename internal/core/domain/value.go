// Package domain defines the core domain models for PredKV.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the primitive kind carried by a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindComplex
)

// String returns the kind name as it appears in query type casts.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	default:
		return "str"
	}
}

// Value is a tagged union over the primitive kinds the store accepts:
// integers, floats, complex numbers and strings.
//
// Value is comparable and usable as a map key. Two Values are identical
// as map keys only when both kind and payload match; numeric equality
// across kinds is handled by Equal, not by key identity.
type Value struct {
	kind Kind
	i    int64
	f    float64
	c    complex128
	s    string
}

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Complex returns a complex-number Value.
func Complex(c complex128) Value { return Value{kind: KindComplex, c: c} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the primitive kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IntVal returns the integer payload. Valid only for KindInt.
func (v Value) IntVal() int64 { return v.i }

// FloatVal returns the float payload. Valid only for KindFloat.
func (v Value) FloatVal() float64 { return v.f }

// ComplexVal returns the complex payload. Valid only for KindComplex.
func (v Value) ComplexVal() complex128 { return v.c }

// StrVal returns the string payload. Valid only for KindString.
func (v Value) StrVal() string { return v.s }

// Format renders the value the way a client would have typed it.
func (v Value) Format() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindComplex:
		return strconv.FormatComplex(v.c, 'g', -1, 128)
	default:
		return v.s
	}
}

// asComplex promotes any numeric kind to complex128.
func (v Value) asComplex() (complex128, bool) {
	switch v.kind {
	case KindInt:
		return complex(float64(v.i), 0), true
	case KindFloat:
		return complex(v.f, 0), true
	case KindComplex:
		return v.c, true
	default:
		return 0, false
	}
}

// asFloat promotes an orderable numeric kind to float64.
// Complex values are not orderable.
func (v Value) asFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal reports numeric equality across int/float/complex, and exact
// equality for strings. A numeric compared against a string is never
// equal.
func (v Value) Equal(o Value) bool {
	if v.kind == KindString || o.kind == KindString {
		return v.kind == KindString && o.kind == KindString && v.s == o.s
	}
	a, _ := v.asComplex()
	b, _ := o.asComplex()
	return a == b
}

// Compare orders v against o. The boolean result is false when the two
// kinds have no natural total order between them: complex values and
// string/numeric mixes are unordered. Callers treat unordered pairs as
// non-matches rather than errors.
func (v Value) Compare(o Value) (int, bool) {
	if v.kind == KindString && o.kind == KindString {
		return strings.Compare(v.s, o.s), true
	}
	a, aok := v.asFloat()
	b, bok := o.asFloat()
	if !aok || !bok {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	default:
		return 0, true
	}
}

// Contains reports whether v contains o. For the primitive kinds the
// store holds this is a substring test, defined only when both operands
// are strings; every other combination is a non-match.
func (v Value) Contains(o Value) bool {
	if v.kind != KindString || o.kind != KindString {
		return false
	}
	return strings.Contains(v.s, o.s)
}

// valueJSON is the self-describing wire/snapshot form of a Value.
// int and float travel as JSON numbers; complex has no JSON number
// form and travels as a string, as does str.
type valueJSON struct {
	Kind string          `json:"kind"`
	V    json.RawMessage `json:"v"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	switch v.kind {
	case KindInt:
		raw = json.RawMessage(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b, err := json.Marshal(v.f)
		if err != nil {
			return nil, fmt.Errorf("domain: marshal float value: %w", err)
		}
		raw = b
	case KindComplex:
		b, err := json.Marshal(strconv.FormatComplex(v.c, 'g', -1, 128))
		if err != nil {
			return nil, err
		}
		raw = b
	default:
		b, err := json.Marshal(v.s)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(valueJSON{Kind: v.kind.String(), V: raw})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "int":
		var i int64
		if err := json.Unmarshal(raw.V, &i); err != nil {
			return fmt.Errorf("domain: decode int value: %w", err)
		}
		*v = Int(i)
	case "float":
		var f float64
		if err := json.Unmarshal(raw.V, &f); err != nil {
			return fmt.Errorf("domain: decode float value: %w", err)
		}
		*v = Float(f)
	case "complex":
		var s string
		if err := json.Unmarshal(raw.V, &s); err != nil {
			return fmt.Errorf("domain: decode complex value: %w", err)
		}
		c, err := strconv.ParseComplex(s, 128)
		if err != nil {
			return fmt.Errorf("domain: decode complex value: %w", err)
		}
		*v = Complex(c)
	case "str":
		var s string
		if err := json.Unmarshal(raw.V, &s); err != nil {
			return fmt.Errorf("domain: decode string value: %w", err)
		}
		*v = String(s)
	default:
		return fmt.Errorf("domain: unknown value kind %q", raw.Kind)
	}
	return nil
}
