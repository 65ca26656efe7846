// Package query implements the ad-hoc query surface of PredKV: a small
// fixed grammar parsed into a predicate, and an executor that evaluates
// the predicate against the store.
//
// Grammar (whitespace-separated tokens, case-sensitive keywords):
//
//	query    := action element operator value
//	action   := "read" | "delete"
//	element  := "key" | "value"
//	operator := "<=" | ">=" | "<" | ">" | "=" | "contains"
//	value    := literal | typeName "(" literal ")"
//	typeName := "int" | "float" | "complex" | "str"
//
// Examples: "read key > 1234", "delete value contains Mihai",
// "read key > int ( 5 )". An untyped literal is a string.
package query

import (
	"strconv"
	"strings"

	"github.com/predkv/predkv/internal/core/domain"
)

// Action selects what happens to matched entries.
type Action uint8

const (
	ActionRead Action = iota
	ActionDelete
)

// Element selects which side of the pair the predicate applies to.
type Element uint8

const (
	ElementKey Element = iota
	ElementValue
)

// Operator is the comparison applied between the selected element and
// the query value.
type Operator uint8

const (
	OpEq Operator = iota
	OpLt
	OpGt
	OpLe
	OpGe
	OpContains
)

// ParsedQuery is the structured result of parsing a query string. It is
// consumed immediately by the executor and never persisted.
type ParsedQuery struct {
	Action   Action
	Element  Element
	Operator Operator
	Value    domain.Value
}

// Parse converts a query string into a ParsedQuery. Any deviation from
// the grammar, including a failed type conversion, yields
// domain.ErrInvalidQuerySyntax.
func Parse(s string) (ParsedQuery, error) {
	var q ParsedQuery

	tokens := strings.Fields(s)
	// Either "action element operator literal" or
	// "action element operator typeName ( literal )".
	if len(tokens) != 4 && len(tokens) != 7 {
		return q, domain.ErrInvalidQuerySyntax.WithDetails("expected 4 or 7 tokens, got " + strconv.Itoa(len(tokens)))
	}

	switch tokens[0] {
	case "read":
		q.Action = ActionRead
	case "delete":
		q.Action = ActionDelete
	default:
		return q, domain.ErrInvalidQuerySyntax.WithDetails("unknown action " + strconv.Quote(tokens[0]))
	}

	switch tokens[1] {
	case "key":
		q.Element = ElementKey
	case "value":
		q.Element = ElementValue
	default:
		return q, domain.ErrInvalidQuerySyntax.WithDetails("unknown element " + strconv.Quote(tokens[1]))
	}

	switch tokens[2] {
	case "=":
		q.Operator = OpEq
	case "<":
		q.Operator = OpLt
	case ">":
		q.Operator = OpGt
	case "<=":
		q.Operator = OpLe
	case ">=":
		q.Operator = OpGe
	case "contains":
		q.Operator = OpContains
	default:
		return q, domain.ErrInvalidQuerySyntax.WithDetails("unknown operator " + strconv.Quote(tokens[2]))
	}

	if len(tokens) == 4 {
		q.Value = domain.String(tokens[3])
		return q, nil
	}

	if tokens[4] != "(" || tokens[6] != ")" {
		return q, domain.ErrInvalidQuerySyntax.WithDetails("malformed typed value")
	}
	v, err := convertLiteral(tokens[5], tokens[3])
	if err != nil {
		return q, err
	}
	q.Value = v
	return q, nil
}

// convertLiteral casts a literal token to the named type.
func convertLiteral(literal, typeName string) (domain.Value, error) {
	switch typeName {
	case "int":
		i, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return domain.Value{}, domain.ErrInvalidQuerySyntax.WithDetails("not an int: " + strconv.Quote(literal)).WithCause(err)
		}
		return domain.Int(i), nil
	case "float":
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return domain.Value{}, domain.ErrInvalidQuerySyntax.WithDetails("not a float: " + strconv.Quote(literal)).WithCause(err)
		}
		return domain.Float(f), nil
	case "complex":
		c, err := strconv.ParseComplex(literal, 128)
		if err != nil {
			return domain.Value{}, domain.ErrInvalidQuerySyntax.WithDetails("not a complex: " + strconv.Quote(literal)).WithCause(err)
		}
		return domain.Complex(c), nil
	case "str":
		return domain.String(literal), nil
	default:
		return domain.Value{}, domain.ErrInvalidQuerySyntax.WithDetails("unknown type " + strconv.Quote(typeName))
	}
}
