package bean

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is a sealed interface over the primitive field types a bean may hold.
// Only Null, Int, Float, String, Bool and Bytes implement it.
type Value interface {
	beanValue() // Sealed - only these types implement it

	// Any returns the Go value handed to database/sql as a query argument.
	Any() any
}

// Null is the absent/NULL field value.
// Using an explicit type ensures a missing column still satisfies Value.
type Null struct{}

func (Null) beanValue() {}

// Any implements Value.
func (Null) Any() any { return nil }

// Int is a 64-bit integer field value.
type Int int64

func (Int) beanValue() {}

// Any implements Value.
func (v Int) Any() any { return int64(v) }

// Float is a 64-bit floating point field value.
type Float float64

func (Float) beanValue() {}

// Any implements Value.
func (v Float) Any() any { return float64(v) }

// String is a text field value.
type String string

func (String) beanValue() {}

// Any implements Value.
func (v String) Any() any { return string(v) }

// Bool is a boolean field value.
type Bool bool

func (Bool) beanValue() {}

// Any implements Value.
func (v Bool) Any() any { return bool(v) }

// Bytes is a binary field value.
type Bytes []byte

func (Bytes) beanValue() {}

// Any implements Value.
func (v Bytes) Any() any { return []byte(v) }

// NewString creates a String value.
func NewString(s string) String {
	return String(s)
}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewFloat creates a Float value.
func NewFloat(f float64) Float {
	return Float(f)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewBytes creates a Bytes value. The slice is copied.
func NewBytes(b []byte) Bytes {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Bytes(cp)
}

// FromAny converts a database/sql driver value (or a plain Go value) into the
// matching Value variant.
//
// Driver values: nil, int64, float64, bool, []byte, string, time.Time.
// time.Time is stored as an RFC 3339 string since beans carry no time variant.
// Other integer widths are widened to Int.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case int64:
		return Int(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float64:
		return Float(val), nil
	case float32:
		return Float(val), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case []byte:
		return NewBytes(val), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// Equal reports whether two values hold the same variant and content.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	case nil:
		return b == nil
	default:
		return a == b
	}
}

// Text renders a value the way it would appear in a plain-text listing.
// Null renders as the empty string; binary renders as its byte length.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case String:
		return string(val)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Bytes:
		return fmt.Sprintf("<%d bytes>", len(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Kind names the variant of v. Backends use it to pick a column affinity.
func Kind(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case Int:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "boolean"
	case Bytes:
		return "binary"
	default:
		return "unknown"
	}
}
