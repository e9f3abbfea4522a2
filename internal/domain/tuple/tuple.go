// Package tuple holds the positional array form shared by every compact
// wire encoding. Tuples are built from ints, nested tuples and nil, and must
// decode the same whether they come straight from an encoder or back out of
// encoding/json (float64 / json.Number).
package tuple

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

type Tuple = []any

var ErrMalformed = errors.New("malformed tuple")

type MalformedError struct {
	Field string
	Value any
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: field %q: unexpected value %v", ErrMalformed.Error(), e.Field, e.Value)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case float64:
		// NaN fails the Trunc comparison; 2^63 is the first float64 past MaxInt64.
		if n != math.Trunc(n) || math.IsInf(n, 0) || n < math.MinInt64 || n >= 1<<63 {
			return 0, false
		}
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < math.MinInt || i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func Bool(b bool) int {
	if b {
		return 1
	}
	return 0
}

// List stores an empty list as an untyped nil so it encodes as null and
// compares equal to an absent slot.
func List(t Tuple) any {
	if len(t) == 0 {
		return nil
	}
	return t
}

// AsList accepts both decoded JSON arrays and tuples built in memory.
func AsList(v any) (Tuple, bool) {
	l, ok := v.([]any)
	return l, ok
}

func OptInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// Reader walks a tuple left to right. The first failure sticks; later reads
// return zero values so decoders can check Err once at the end.
type Reader struct {
	t   Tuple
	pos int
	err error
}

func NewReader(t Tuple) *Reader {
	return &Reader{t: t}
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(field string, v any) {
	if r.err == nil {
		r.err = &MalformedError{Field: field, Value: v}
	}
}

// Value returns the next slot, or nil when the tuple is short.
func (r *Reader) Value() any {
	if r.err != nil || r.pos >= len(r.t) {
		r.pos++
		return nil
	}
	v := r.t[r.pos]
	r.pos++
	return v
}

func (r *Reader) Int(field string) int {
	if r.err == nil && r.pos >= len(r.t) {
		r.fail(field, "<missing>")
		return 0
	}
	v := r.Value()
	n, ok := Int(v)
	if !ok {
		r.fail(field, v)
	}
	return n
}

func (r *Reader) OptInt(field string) *int {
	v := r.Value()
	if v == nil {
		return nil
	}
	n, ok := Int(v)
	if !ok {
		r.fail(field, v)
		return nil
	}
	return &n
}

func (r *Reader) Bool(field string) bool {
	v := r.Value()
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	}
	n, ok := Int(v)
	if !ok || (n != 0 && n != 1) {
		r.fail(field, v)
	}
	return n == 1
}

// List returns the next slot as a tuple. nil and a missing slot both read as
// an empty list.
func (r *Reader) List(field string) Tuple {
	v := r.Value()
	if v == nil {
		return nil
	}
	l, ok := AsList(v)
	if !ok {
		r.fail(field, v)
		return nil
	}
	return l
}

func (r *Reader) String(field string) string {
	v := r.Value()
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, v)
	}
	return s
}

// Fail lets callers record a domain-level problem with a decoded value.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
