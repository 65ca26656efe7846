package query

import (
	"errors"
	"testing"

	"github.com/predkv/predkv/internal/core/domain"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		query string
		want  ParsedQuery
	}{
		{"read key = 1234", ParsedQuery{ActionRead, ElementKey, OpEq, domain.String("1234")}},
		{"delete value contains Mihai", ParsedQuery{ActionDelete, ElementValue, OpContains, domain.String("Mihai")}},
		{"read key > int ( 5 )", ParsedQuery{ActionRead, ElementKey, OpGt, domain.Int(5)}},
		{"read value < float ( 4.5 )", ParsedQuery{ActionRead, ElementValue, OpLt, domain.Float(4.5)}},
		{"read value = complex ( 1+2i )", ParsedQuery{ActionRead, ElementValue, OpEq, domain.Complex(1 + 2i)}},
		{"read value >= str ( abc )", ParsedQuery{ActionRead, ElementValue, OpGe, domain.String("abc")}},
		{"read key <= 10", ParsedQuery{ActionRead, ElementKey, OpLe, domain.String("10")}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.query, err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	queries := []string{
		"",
		"read",
		"read key =",
		"read key = 1 extra",
		"read something > int ( 5 )", // wrong element keyword
		"write key = 1",              // wrong action keyword
		"read key ~ 1",               // wrong operator
		"READ key = 1",               // keywords are case-sensitive
		"read key = int ( abc )",     // failed cast
		"read key = int [ 5 ]",       // malformed parenthesization
		"read key = int ( 5",         // unbalanced
		"read key = uint ( 5 )",      // unknown type name
		"read key = float ( 1..2 )",  // failed cast
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			_, err := Parse(q)
			if !errors.Is(err, domain.ErrInvalidQuerySyntax) {
				t.Fatalf("Parse(%q) err = %v, want ErrInvalidQuerySyntax", q, err)
			}
		})
	}
}

func TestParseUntypedLiteralIsString(t *testing.T) {
	q, err := Parse("read key > 1234")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q.Value.Kind() != domain.KindString {
		t.Fatalf("untyped literal kind = %v, want str", q.Value.Kind())
	}
}
