package view

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
// Kinds are ordered: values of a lower kind sort before values of a higher kind.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is the closed set of cell values a column accessor can produce.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value. Negative zero is stored as zero.
func Number(n float64) Value {
	if n == 0 {
		n = 0
	}
	return Value{kind: KindNumber, n: n}
}

// Int returns a numeric value for an integer.
func Int(i int64) Value { return Number(float64(i)) }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns the boolean held by v, or false for other kinds.
func (v Value) BoolValue() bool { return v.kind == KindBool && v.b }

// NumberValue returns the number held by v, or 0 for other kinds.
func (v Value) NumberValue() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.n
}

// StringValue returns the string held by v, or "" for other kinds.
func (v Value) StringValue() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Canonical returns the string form used for filter matching:
// Null is "", numbers use the shortest plain decimal form ("30", "2.5"),
// booleans are "true" or "false", strings are returned unchanged.
func (v Value) Canonical() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// String implements fmt.Stringer using the canonical form.
func (v Value) String() string { return v.Canonical() }

// Equal reports whether v and other are equal under Compare.
func (v Value) Equal(other Value) bool { return Compare(v, other) == 0 }

// formatNumber renders n without exponent or locale grouping.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Compare defines the total order over values.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
//
// Across kinds: Null < Bool < Number < String.
// Within a kind: false < true, numeric order with NaN after every other
// number, byte-wise lexicographic order for strings.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}

	switch a.kind {
	case KindBool:
		return compareBools(a.b, b.b)
	case KindNumber:
		return compareNumbers(a.n, b.n)
	case KindString:
		return strings.Compare(a.s, b.s)
	default:
		return 0
	}
}

// compareBools orders false before true.
func compareBools(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

// compareNumbers orders numerically; NaN values are equal to each other and
// greater than every other number.
func compareNumbers(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
