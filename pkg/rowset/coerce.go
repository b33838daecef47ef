package rowset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted when coercing text-stored temporal values. Fractional
// seconds are optional.
const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05.999999999"
	timestampLayout = "2006-01-02 15:04:05.999999999"
)

var timestampLayouts = []string{
	timestampLayout,
	time.RFC3339Nano,
	dateLayout,
}

var errOutOfRange = errors.New("value out of range")

// read fetches the raw value at col for the current row and updates the
// was-null flag. col is a 1-based index (int) or a label (string).
func (rs *RowSet) read(op string, col any) (any, error) {
	if rs.pos < 0 || rs.pos >= len(rs.rows) {
		return nil, &CursorStateError{Op: op, Position: rs.pos, RowCount: len(rs.rows)}
	}
	var index int
	switch c := col.(type) {
	case int:
		index = c
	case string:
		i, err := rs.FindColumn(c)
		if err != nil {
			return nil, err
		}
		index = i
	default:
		return nil, &ColumnAccessError{Name: fmt.Sprint(col), Count: len(rs.columns), SQL: rs.sql}
	}
	if index < 1 || index > len(rs.columns) {
		return nil, &ColumnAccessError{Index: index, Count: len(rs.columns), SQL: rs.sql}
	}
	v := rs.rows[rs.pos][index-1]
	rs.wasNull = v == nil
	return v, nil
}

// Value returns the raw stored value, cloning byte slices. NULL returns nil.
func (rs *RowSet) Value(col any) (any, error) {
	v, err := rs.read("value", col)
	if err != nil {
		return nil, err
	}
	if b, ok := v.([]byte); ok {
		return append([]byte(nil), b...), nil
	}
	return v, nil
}

// String returns the value formatted as text. NULL returns "".
func (rs *RowSet) String(col any) (string, error) {
	v, err := rs.read("string", col)
	if err != nil || v == nil {
		return "", err
	}
	return formatString(v), nil
}

// Bool returns the value as a boolean. Numeric values compare exactly with
// zero, so 0.0 and -0.0 are false and any other value is true; text parses
// with strconv.ParseBool. NULL returns false.
func (rs *RowSet) Bool(col any) (bool, error) {
	v, err := rs.read("bool", col)
	if err != nil || v == nil {
		return false, err
	}
	return toBool(v)
}

// Int returns the value as an int. NULL returns 0.
func (rs *RowSet) Int(col any) (int, error) {
	n, err := rs.narrowInt(col, "int", math.MinInt, math.MaxInt)
	return int(n), err
}

// Int8 returns the value as an int8. NULL returns 0.
func (rs *RowSet) Int8(col any) (int8, error) {
	n, err := rs.narrowInt(col, "int8", math.MinInt8, math.MaxInt8)
	return int8(n), err
}

// Int16 returns the value as an int16. NULL returns 0.
func (rs *RowSet) Int16(col any) (int16, error) {
	n, err := rs.narrowInt(col, "int16", math.MinInt16, math.MaxInt16)
	return int16(n), err
}

// Int32 returns the value as an int32. NULL returns 0.
func (rs *RowSet) Int32(col any) (int32, error) {
	n, err := rs.narrowInt(col, "int32", math.MinInt32, math.MaxInt32)
	return int32(n), err
}

// Int64 returns the value as an int64. NULL returns 0.
func (rs *RowSet) Int64(col any) (int64, error) {
	return rs.narrowInt(col, "int64", math.MinInt64, math.MaxInt64)
}

func (rs *RowSet) narrowInt(col any, target string, min, max int64) (int64, error) {
	v, err := rs.read(target, col)
	if err != nil || v == nil {
		return 0, err
	}
	n, err := toInt64(v, target)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, &ConversionError{Value: v, Target: target, Err: errOutOfRange}
	}
	return n, nil
}

// Uint64 returns the value as a uint64; negative values are out of range.
// NULL returns 0.
func (rs *RowSet) Uint64(col any) (uint64, error) {
	v, err := rs.read("uint64", col)
	if err != nil || v == nil {
		return 0, err
	}
	switch x := v.(type) {
	case uint64:
		return x, nil
	case string:
		return parseUint64(x, v)
	case []byte:
		return parseUint64(string(x), v)
	}
	n, err := toInt64(v, "uint64")
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &ConversionError{Value: v, Target: "uint64", Err: errOutOfRange}
	}
	return uint64(n), nil
}

// Float32 returns the value as a float32. NULL returns 0.
func (rs *RowSet) Float32(col any) (float32, error) {
	v, err := rs.read("float32", col)
	if err != nil || v == nil {
		return 0, err
	}
	f, err := toFloat64(v, "float32")
	if err != nil {
		return 0, err
	}
	if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return 0, &ConversionError{Value: v, Target: "float32", Err: errOutOfRange}
	}
	return float32(f), nil
}

// Float64 returns the value as a float64. NULL returns 0.
func (rs *RowSet) Float64(col any) (float64, error) {
	v, err := rs.read("float64", col)
	if err != nil || v == nil {
		return 0, err
	}
	return toFloat64(v, "float64")
}

// Bytes returns the value as a byte slice, cloned so the caller cannot
// alter the stored row. NULL returns nil.
func (rs *RowSet) Bytes(col any) ([]byte, error) {
	v, err := rs.read("bytes", col)
	if err != nil || v == nil {
		return nil, err
	}
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		return []byte(x), nil
	default:
		return nil, &ConversionError{Value: v, Target: "bytes"}
	}
}

// Time returns the value as a timestamp. Text parses with the timestamp
// layouts; NULL returns the zero time.
func (rs *RowSet) Time(col any) (time.Time, error) {
	v, err := rs.read("time", col)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	return toTime(v, "time", timestampLayouts...)
}

// Date returns the value as a calendar date, truncated to midnight. NULL
// returns the zero time.
func (rs *RowSet) Date(col any) (time.Time, error) {
	v, err := rs.read("date", col)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	t, err := toTime(v, "date", append([]string{dateLayout}, timestampLayouts...)...)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
}

// TimeOfDay returns the value's clock reading, placed on the zero date.
// NULL returns the zero time.
func (rs *RowSet) TimeOfDay(col any) (time.Time, error) {
	v, err := rs.read("time of day", col)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	t, err := toTime(v, "time of day", append([]string{timeLayout}, timestampLayouts...)...)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()), nil
}

// Get reads the value at col coerced to T. NULL yields T's zero value; use
// WasNull to distinguish it from a stored zero.
func Get[T any](rs *RowSet, col any) (T, error) {
	var zero T
	var v any
	var err error
	switch any(zero).(type) {
	case string:
		v, err = rs.String(col)
	case bool:
		v, err = rs.Bool(col)
	case int:
		v, err = rs.Int(col)
	case int8:
		v, err = rs.Int8(col)
	case int16:
		v, err = rs.Int16(col)
	case int32:
		v, err = rs.Int32(col)
	case int64:
		v, err = rs.Int64(col)
	case uint64:
		v, err = rs.Uint64(col)
	case float32:
		v, err = rs.Float32(col)
	case float64:
		v, err = rs.Float64(col)
	case []byte:
		v, err = rs.Bytes(col)
	case time.Time:
		v, err = rs.Time(col)
	default:
		raw, err := rs.Value(col)
		if err != nil {
			return zero, err
		}
		if raw == nil {
			return zero, nil
		}
		t, ok := raw.(T)
		if !ok {
			return zero, &ConversionError{Value: raw, Target: fmt.Sprintf("%T", zero)}
		}
		return t, nil
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func formatString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return x.Format(timestampLayout)
	default:
		return fmt.Sprint(v)
	}
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case int32:
		return x != 0, nil
	case int16:
		return x != 0, nil
	case int8:
		return x != 0, nil
	case uint64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case float32:
		return x != 0, nil
	case string:
		return parseBool(x, v)
	case []byte:
		return parseBool(string(x), v)
	default:
		return false, &ConversionError{Value: v, Target: "bool"}
	}
}

func parseBool(s string, v any) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, &ConversionError{Value: v, Target: "bool", Err: err}
	}
	return b, nil
}

func toInt64(v any, target string) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, &ConversionError{Value: v, Target: target, Err: errOutOfRange}
		}
		return int64(x), nil
	case float64:
		return floatToInt64(x, v, target)
	case float32:
		return floatToInt64(float64(x), v, target)
	case string:
		return parseInt64(x, v, target)
	case []byte:
		return parseInt64(string(x), v, target)
	default:
		return 0, &ConversionError{Value: v, Target: target}
	}
}

// floatToInt64 truncates toward zero, rejecting values outside the int64
// range.
func floatToInt64(f float64, v any, target string) (int64, error) {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, &ConversionError{Value: v, Target: target, Err: errOutOfRange}
	}
	return int64(f), nil
}

func parseInt64(s string, v any, target string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &ConversionError{Value: v, Target: target, Err: err}
	}
	return n, nil
}

func parseUint64(s string, v any) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &ConversionError{Value: v, Target: "uint64", Err: err}
	}
	return n, nil
}

func toFloat64(v any, target string) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		return parseFloat64(x, v, target)
	case []byte:
		return parseFloat64(string(x), v, target)
	default:
		return 0, &ConversionError{Value: v, Target: target}
	}
}

func parseFloat64(s string, v any, target string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ConversionError{Value: v, Target: target, Err: err}
	}
	return f, nil
}

func toTime(v any, target string, layouts ...string) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseTime(x, v, target, layouts)
	case []byte:
		return parseTime(string(x), v, target, layouts)
	default:
		return time.Time{}, &ConversionError{Value: v, Target: target}
	}
}

func parseTime(s string, v any, target string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &ConversionError{Value: v, Target: target, Err: lastErr}
}
