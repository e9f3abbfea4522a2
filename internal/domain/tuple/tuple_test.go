package tuple

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestInt_AcceptsJSONNumbers(t *testing.T) {
	cases := []any{3, int64(3), float64(3), json.Number("3")}
	for _, c := range cases {
		got, ok := Int(c)
		if !ok || got != 3 {
			t.Fatalf("Int(%T) mismatch: got=%d ok=%v", c, got, ok)
		}
	}
	if _, ok := Int(3.5); ok {
		t.Fatalf("expected fractional float to be rejected")
	}
}

func TestInt_RejectsUnrepresentableFloats(t *testing.T) {
	cases := []any{math.Inf(1), math.Inf(-1), math.NaN(), 1e19, -1e19, float64(1 << 63), json.Number("9223372036854775808")}
	for _, c := range cases {
		if got, ok := Int(c); ok {
			t.Fatalf("Int(%v) accepted: got=%d", c, got)
		}
	}
	if got, ok := Int(float64(-1 << 53)); !ok || got != -1<<53 {
		t.Fatalf("Int(-2^53) mismatch: got=%d ok=%v", got, ok)
	}
}

func TestReader_IntRejectsInfinity(t *testing.T) {
	r := NewReader(Tuple{math.Inf(1)})
	_ = r.Int("x")
	if !errors.Is(r.Err(), ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", r.Err())
	}
}

func TestReader_ShortTupleReadsAsEmpty(t *testing.T) {
	r := NewReader(Tuple{1})
	if got := r.Int("a"); got != 1 {
		t.Fatalf("first field mismatch: got=%d", got)
	}
	if got := r.OptInt("b"); got != nil {
		t.Fatalf("expected nil optional, got=%v", *got)
	}
	if got := r.List("c"); got != nil {
		t.Fatalf("expected nil list, got=%v", got)
	}
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
}

func TestReader_MissingRequiredField(t *testing.T) {
	r := NewReader(Tuple{})
	_ = r.Int("x")
	if !errors.Is(r.Err(), ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", r.Err())
	}
	var me *MalformedError
	if !errors.As(r.Err(), &me) || me.Field != "x" {
		t.Fatalf("expected malformed field x, got %v", r.Err())
	}
}

func TestReader_BoolRejectsOtherNumbers(t *testing.T) {
	r := NewReader(Tuple{2})
	_ = r.Bool("flag")
	if !errors.Is(r.Err(), ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", r.Err())
	}
}

func TestAsList_AcceptsBothForms(t *testing.T) {
	if _, ok := AsList(Tuple{1}); !ok {
		t.Fatalf("tuple should be a list")
	}
	if _, ok := AsList([]any{1}); !ok {
		t.Fatalf("decoded array should be a list")
	}
	if _, ok := AsList("x"); ok {
		t.Fatalf("string is not a list")
	}
}
