package sqltype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromDatabaseTypeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Code
	}{
		{"boolean", "BOOLEAN", Boolean},
		{"sqlite lowercase", "integer", Integer},
		{"precision suffix ignored", "VARCHAR(255)", Varchar},
		{"decimal with scale", "DECIMAL(10, 2)", Decimal},
		{"postgres int8", "INT8", BigInt},
		{"postgres bytea", "BYTEA", Blob},
		{"postgres timestamptz", "TIMESTAMPTZ", Timestamp},
		{"postgres array prefix", "_INT4", Array},
		{"duckdb array suffix", "INTEGER[]", Array},
		{"duckdb hugeint", "HUGEINT", BigInt},
		{"double precision", "DOUBLE PRECISION", Double},
		{"real is float", "REAL", Float},
		{"datetime", "DATETIME", Timestamp},
		{"json", "JSONB", Struct},
		{"empty", "", Unknown},
		{"unrecognized", "GEOMETRY", Unknown},
		{"whitespace", "  TEXT  ", Varchar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromDatabaseTypeName(tt.in))
		})
	}
}

func TestCodePredicates(t *testing.T) {
	assert.True(t, BigInt.IsNumeric())
	assert.True(t, Decimal.IsNumeric())
	assert.False(t, Varchar.IsNumeric())
	assert.False(t, Boolean.IsNumeric())

	assert.True(t, Date.IsTemporal())
	assert.True(t, Timestamp.IsTemporal())
	assert.False(t, BigInt.IsTemporal())

	assert.True(t, Blob.IsLargeObject())
	assert.True(t, Clob.IsLargeObject())
	assert.True(t, Array.IsLargeObject())
	assert.False(t, Varchar.IsLargeObject())
	assert.False(t, Integer.IsLargeObject())
}

func TestOf(t *testing.T) {
	assert.Equal(t, Boolean, Of(true))
	assert.Equal(t, BigInt, Of(42))
	assert.Equal(t, BigInt, Of(int64(42)))
	assert.Equal(t, Integer, Of(int32(42)))
	assert.Equal(t, Double, Of(3.14))
	assert.Equal(t, Varchar, Of("hello"))
	assert.Equal(t, Blob, Of([]byte{0x01}))
	assert.Equal(t, Timestamp, Of(time.Now()))
	assert.Equal(t, Unknown, Of(nil))
	assert.Equal(t, Unknown, Of(struct{}{}))
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "bigint", BigInt.String())
	assert.Equal(t, "varchar", Varchar.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Code(99).String())
}
