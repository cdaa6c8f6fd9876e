package core

// convert.go turns raw cell values into view values.
//
// Cells arrive in three shapes:
//   - native Go values from built-in tables (string, int, float64, bool, time.Time)
//   - values decoded by pgx (int32, int64, float64, time.Time, pgtype.Numeric, [16]byte)
//   - pgtype wrappers (pgtype.Text, pgtype.Date, ...) with a Valid flag
//
// String cells are coerced by the field type, so "$25,000" in a numeric
// column sorts as 25000 and "yes" in a bool column filters as "true".
// Anything that cannot be coerced stays a string.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/gridview/internal/view"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// DateLayout is the form every date cell takes once converted.
const DateLayout = "2006-01-02"

// timestampLayout renders times that carry a time of day.
const timestampLayout = "2006-01-02 15:04:05"

// Date layouts accepted in string cells, tried in order.
var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "2006.01.02",
	"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
	"Jan 2, 2006", "2 Jan 2006",
	time.RFC3339,
	"20060102",
}

// CellValue converts a raw cell into a view.Value according to the field type.
func CellValue(v any, t FieldType) view.Value {
	if v == nil {
		return view.Null()
	}

	switch val := v.(type) {
	case view.Value:
		return val
	case string:
		return coerceString(val, t)
	case []byte:
		return coerceString(string(val), t)
	case bool:
		return view.Bool(val)
	case int:
		return view.Int(int64(val))
	case int8:
		return view.Int(int64(val))
	case int16:
		return view.Int(int64(val))
	case int32:
		return view.Int(int64(val))
	case int64:
		return view.Int(val)
	case uint:
		return view.Number(float64(val))
	case uint8:
		return view.Number(float64(val))
	case uint16:
		return view.Number(float64(val))
	case uint32:
		return view.Number(float64(val))
	case uint64:
		return view.Number(float64(val))
	case float32:
		return view.Number(float64(val))
	case float64:
		return view.Number(val)
	case time.Time:
		return timeValue(val, t)
	case [16]byte:
		return view.String(uuid.UUID(val).String())
	case uuid.UUID:
		return view.String(val.String())

	case pgtype.Text:
		if !val.Valid {
			return view.Null()
		}
		return coerceString(val.String, t)
	case pgtype.Bool:
		if !val.Valid {
			return view.Null()
		}
		return view.Bool(val.Bool)
	case pgtype.Int2:
		if !val.Valid {
			return view.Null()
		}
		return view.Int(int64(val.Int16))
	case pgtype.Int4:
		if !val.Valid {
			return view.Null()
		}
		return view.Int(int64(val.Int32))
	case pgtype.Int8:
		if !val.Valid {
			return view.Null()
		}
		return view.Int(val.Int64)
	case pgtype.Float4:
		if !val.Valid {
			return view.Null()
		}
		return view.Number(float64(val.Float32))
	case pgtype.Float8:
		if !val.Valid {
			return view.Null()
		}
		return view.Number(val.Float64)
	case pgtype.Numeric:
		return numericValue(val)
	case pgtype.Date:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return view.Null()
		}
		return view.String(val.Time.Format(DateLayout))
	case pgtype.Timestamptz:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return view.Null()
		}
		return timeValue(val.Time, t)
	case pgtype.Timestamp:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return view.Null()
		}
		return timeValue(val.Time, t)
	case pgtype.UUID:
		if !val.Valid {
			return view.Null()
		}
		return view.String(uuid.UUID(val.Bytes).String())

	case fmt.Stringer:
		return coerceString(val.String(), t)
	default:
		return view.String(fmt.Sprint(val))
	}
}

// FormatCell renders a cell for display and export.
// Render, when set, wins; otherwise the coerced value's canonical form is used.
func FormatCell(v any, spec FieldSpec) string {
	if spec.Render != nil && v != nil {
		return spec.Render(v)
	}
	return CellValue(v, spec.Type).Canonical()
}

// coerceString applies the field type to a string cell.
func coerceString(s string, t FieldType) view.Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return view.Null()
	}

	switch t {
	case FieldNumeric:
		if n, ok := ParseNumber(trimmed); ok {
			return view.Number(n)
		}
	case FieldBool:
		if b, ok := ParseBool(trimmed); ok {
			return view.Bool(b)
		}
	case FieldDate:
		if d, ok := ParseDate(trimmed); ok {
			return view.String(d.Format(DateLayout))
		}
	}
	return view.String(trimmed)
}

// ParseNumber parses a user-formatted number.
// Handles currency symbols, thousands separators, and accounting format (parentheses for negative).
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols and thousands separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if isNegative {
		n = -n
	}
	return n, true
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0.
func ParseBool(s string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// ParseDate parses the common date layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// numericValue converts a pgtype.Numeric, keeping NaN and infinities.
func numericValue(n pgtype.Numeric) view.Value {
	if !n.Valid {
		return view.Null()
	}
	if n.NaN {
		return view.Number(math.NaN())
	}
	switch n.InfinityModifier {
	case pgtype.Infinity:
		return view.Number(math.Inf(1))
	case pgtype.NegativeInfinity:
		return view.Number(math.Inf(-1))
	}

	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return view.Null()
	}
	return view.Number(f.Float64)
}

// timeValue renders dates as YYYY-MM-DD and other times with their clock.
func timeValue(t time.Time, ft FieldType) view.Value {
	if t.IsZero() {
		return view.Null()
	}
	if ft == FieldDate || (t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0) {
		return view.String(t.Format(DateLayout))
	}
	return view.String(t.Format(timestampLayout))
}

// Currency renders a numeric cell as "$1,234.50". Non-numeric cells are
// returned in canonical form.
func Currency(v any) string {
	val := CellValue(v, FieldNumeric)
	if val.Kind() != view.KindNumber {
		return val.Canonical()
	}
	n := val.NumberValue()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return val.Canonical()
	}

	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	whole := strconv.FormatFloat(math.Floor(n), 'f', 0, 64)
	cents := int(math.Round((n - math.Floor(n)) * 100))
	if cents == 100 {
		whole = strconv.FormatFloat(math.Floor(n)+1, 'f', 0, 64)
		cents = 0
	}
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(whole), cents)
}

// Percent renders a numeric cell as "25%".
func Percent(v any) string {
	val := CellValue(v, FieldNumeric)
	if val.Kind() != view.KindNumber {
		return val.Canonical()
	}
	return val.Canonical() + "%"
}

// YesNo renders a boolean cell as "Yes" or "No".
func YesNo(v any) string {
	val := CellValue(v, FieldBool)
	if val.Kind() != view.KindBool {
		return val.Canonical()
	}
	if val.BoolValue() {
		return "Yes"
	}
	return "No"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
