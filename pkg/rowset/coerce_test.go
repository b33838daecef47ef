package rowset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleRow(t *testing.T, v any) *RowSet {
	t.Helper()
	rs := newRowSet(t, []Column{{Label: "v"}}, [][]any{{v}})
	require.True(t, rs.First())
	return rs
}

func TestReadRequiresRow(t *testing.T) {
	rs := numbered(t, 1)

	_, err := rs.String(1)
	var serr *CursorStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, -1, serr.Position)

	rs.AfterLast()
	_, err = rs.Int64(1)
	require.ErrorAs(t, err, &serr)
}

func TestReadChecksColumnIndex(t *testing.T) {
	rs := numbered(t, 1)
	require.True(t, rs.First())

	var cerr *ColumnAccessError
	_, err := rs.String(0)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 0, cerr.Index)

	_, err = rs.String(2)
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "out of range")
}

func TestWasNull(t *testing.T) {
	rs := newRowSet(t, []Column{{Label: "a"}, {Label: "b"}}, [][]any{{nil, "x"}})
	require.True(t, rs.First())

	s, err := rs.String(1)
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.True(t, rs.WasNull())

	s, err = rs.String("b")
	require.NoError(t, err)
	assert.Equal(t, "x", s)
	assert.False(t, rs.WasNull())

	n, err := rs.Int64("a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.True(t, rs.WasNull())
}

func TestStringFormats(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"text", "hi", "hi"},
		{"bytes", []byte("ab"), "ab"},
		{"int", int64(42), "42"},
		{"float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"uint", uint64(7), "7"},
		{"time", time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC), "2026-01-02 03:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := singleRow(t, tt.value)
			got, err := rs.String(1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoolCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"true", true, true},
		{"zero int", int64(0), false},
		{"negative int", int64(-3), true},
		{"zero float", 0.0, false},
		{"negative zero float", math.Copysign(0, -1), false}, // compares equal to +0.0
		{"small nonzero float", 0.1, true},
		{"text true", "true", true},
		{"text zero", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := singleRow(t, tt.value)
			got, err := rs.Bool(1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unparsable text", func(t *testing.T) {
		rs := singleRow(t, "yes please")
		_, err := rs.Bool(1)
		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("incompatible kind", func(t *testing.T) {
		rs := singleRow(t, time.Now())
		_, err := rs.Bool(1)
		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, err.Error(), "time.Time")
		assert.Contains(t, err.Error(), "bool")
	})
}

func TestIntCoercion(t *testing.T) {
	t.Run("widening", func(t *testing.T) {
		rs := singleRow(t, int8(7))
		n, err := rs.Int64(1)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	t.Run("narrowing in range", func(t *testing.T) {
		rs := singleRow(t, int64(300))
		n, err := rs.Int16(1)
		require.NoError(t, err)
		assert.Equal(t, int16(300), n)
	})

	t.Run("narrowing out of range", func(t *testing.T) {
		rs := singleRow(t, int64(300))
		_, err := rs.Int8(1)
		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
		assert.ErrorIs(t, err, errOutOfRange)
	})

	t.Run("float truncates toward zero", func(t *testing.T) {
		rs := singleRow(t, 3.9)
		n, err := rs.Int(1)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		rs = singleRow(t, -3.9)
		n, err = rs.Int(1)
		require.NoError(t, err)
		assert.Equal(t, -3, n)
	})

	t.Run("float out of range", func(t *testing.T) {
		rs := singleRow(t, 1e19)
		_, err := rs.Int64(1)
		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("text parses", func(t *testing.T) {
		rs := singleRow(t, " 12 ")
		n, err := rs.Int32(1)
		require.NoError(t, err)
		assert.Equal(t, int32(12), n)
	})

	t.Run("unparsable text", func(t *testing.T) {
		rs := singleRow(t, "abc")
		_, err := rs.Int64(1)
		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, err.Error(), "int64")
	})

	t.Run("huge uint", func(t *testing.T) {
		rs := singleRow(t, uint64(math.MaxUint64))
		_, err := rs.Int64(1)
		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
	})
}

func TestUint64Coercion(t *testing.T) {
	rs := singleRow(t, "18446744073709551615")
	n, err := rs.Uint64(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), n)

	rs = singleRow(t, int64(-1))
	_, err = rs.Uint64(1)
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, errOutOfRange)

	rs = singleRow(t, 7.2)
	n, err = rs.Uint64(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestFloatCoercion(t *testing.T) {
	rs := singleRow(t, "3.25")
	f, err := rs.Float64(1)
	require.NoError(t, err)
	assert.Equal(t, 3.25, f)

	rs = singleRow(t, int64(2))
	f32, err := rs.Float32(1)
	require.NoError(t, err)
	assert.Equal(t, float32(2), f32)

	rs = singleRow(t, 1e300)
	_, err = rs.Float32(1)
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, errOutOfRange)
}

func TestBytesClonedOnRead(t *testing.T) {
	rs := singleRow(t, []byte("abc"))

	b, err := rs.Bytes(1)
	require.NoError(t, err)
	b[0] = 'X'

	again, err := rs.Bytes(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)

	s, err := rs.String(1)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	rs = singleRow(t, int64(1))
	_, err = rs.Bytes(1)
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
}

func TestTimeCoercion(t *testing.T) {
	native := time.Date(2026, time.August, 25, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"native", native, native},
		{"timestamp text", "2026-08-25 10:30:00", native},
		{"fractional seconds", "2026-08-25 10:30:00.25", native.Add(250 * time.Millisecond)},
		{"rfc3339", "2026-08-25T10:30:00Z", native},
		{"date only", "2026-08-25", time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := singleRow(t, tt.value)
			got, err := rs.Time(1)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}

	t.Run("incompatible kind", func(t *testing.T) {
		rs := singleRow(t, int64(1700000000))
		_, err := rs.Time(1)
		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
	})
}

func TestDateTruncatesToMidnight(t *testing.T) {
	rs := singleRow(t, "2026-08-25 10:30:00")
	got, err := rs.Date(1)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC).Equal(got))
}

func TestTimeOfDay(t *testing.T) {
	rs := singleRow(t, "10:30:05")
	got, err := rs.TimeOfDay(1)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, 5, got.Second())

	rs = singleRow(t, time.Date(2026, time.August, 25, 23, 59, 58, 0, time.UTC))
	got, err = rs.TimeOfDay(1)
	require.NoError(t, err)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 0, got.Year())
}

func TestValueClonesBytes(t *testing.T) {
	rs := singleRow(t, []byte("abc"))

	v, err := rs.Value(1)
	require.NoError(t, err)
	b, ok := v.([]byte)
	require.True(t, ok)
	b[0] = 'X'

	v, err = rs.Value(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)
}

func TestGetGeneric(t *testing.T) {
	rs := newRowSet(t, []Column{{Label: "n"}, {Label: "s"}, {Label: "nul"}},
		[][]any{{int64(1), "42", nil}})
	require.True(t, rs.First())

	b, err := Get[bool](rs, "n")
	require.NoError(t, err)
	assert.True(t, b)

	n, err := Get[int64](rs, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	s, err := Get[string](rs, 1)
	require.NoError(t, err)
	assert.Equal(t, "1", s)

	f, err := Get[float64](rs, "s")
	require.NoError(t, err)
	assert.Equal(t, 42.0, f)

	zero, err := Get[int](rs, "nul")
	require.NoError(t, err)
	assert.Equal(t, 0, zero)
	assert.True(t, rs.WasNull())

	_, err = Get[time.Time](rs, "s")
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
}
