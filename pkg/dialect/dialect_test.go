package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

func TestFormatPlaceholder(t *testing.T) {
	question := NewDialect("q").PlaceholderStyle(PlaceholderQuestion).Build()
	dollar := NewDialect("d").PlaceholderStyle(PlaceholderDollar).Build()

	assert.Equal(t, "?", question.FormatPlaceholder(1))
	assert.Equal(t, "?", question.FormatPlaceholder(7))
	assert.Equal(t, "$1", dollar.FormatPlaceholder(1))
	assert.Equal(t, "$7", dollar.FormatPlaceholder(7))
}

func TestQuoteIdentifier(t *testing.T) {
	d := NewDialect("test").Build()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "users", `"users"`},
		{"embedded quote escaped", `we"ird`, `"we""ird"`},
		{"spaces kept", "order items", `"order items"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.QuoteIdentifier(tt.in))
		})
	}
}

func TestQuoteIdentifierIfNeeded(t *testing.T) {
	d := NewDialect("test").WithReservedWords("ORDER", "SELECT").Build()

	assert.Equal(t, `"order"`, d.QuoteIdentifierIfNeeded("order"))
	assert.Equal(t, `"SELECT"`, d.QuoteIdentifierIfNeeded("SELECT")) // case insensitive
	assert.Equal(t, "users", d.QuoteIdentifierIfNeeded("users"))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		norm NormalizationStrategy
		in   string
		want string
	}{
		{"lowercase folds", NormLowercase, "MiXeD", "mixed"},
		{"uppercase folds", NormUppercase, "MiXeD", "MIXED"},
		{"case sensitive keeps", NormCaseSensitive, "MiXeD", "MiXeD"},
		{"case insensitive folds for comparison", NormCaseInsensitive, "MiXeD", "mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDialect("test").Identifiers(`"`, `"`, `""`, tt.norm).Build()
			assert.Equal(t, tt.want, d.NormalizeName(tt.in))
		})
	}
}

func TestTypeName(t *testing.T) {
	d := NewDialect("test").
		WithTypeNames(map[sqltype.Code]string{sqltype.Blob: "BYTEA"}).
		Build()

	assert.Equal(t, "BYTEA", d.TypeName(sqltype.Blob), "dialect override wins")
	assert.Equal(t, "BIGINT", d.TypeName(sqltype.BigInt), "portable default")
	assert.Equal(t, "DOUBLE PRECISION", d.TypeName(sqltype.Double))
}

func TestRegistry(t *testing.T) {
	d, ok := Get("sqlite")
	require.True(t, ok)
	assert.Equal(t, "sqlite", d.Name)

	d, ok = Get("POSTGRES") // lookup is case insensitive
	require.True(t, ok)
	assert.Equal(t, "postgres", d.Name)

	_, ok = Get("oracle")
	assert.False(t, ok)

	names := List()
	assert.Contains(t, names, "sqlite")
	assert.Contains(t, names, "duckdb")
	assert.Contains(t, names, "postgres")

	require.NotNil(t, Default())
	assert.Equal(t, "sqlite", Default().Name)
}

func TestBuiltinConfigurations(t *testing.T) {
	pg, _ := Get("postgres")
	assert.Equal(t, PlaceholderDollar, pg.Placeholder)
	assert.Equal(t, PaginationLimitOffset, pg.Pagination)
	assert.Equal(t, GeneratedKeyReturning, pg.GeneratedKeys)
	assert.Equal(t, "public", pg.DefaultSchema)
	assert.Equal(t, "BYTEA", pg.TypeName(sqltype.Blob))

	lite, _ := Get("sqlite")
	assert.Equal(t, PlaceholderQuestion, lite.Placeholder)
	assert.Equal(t, PaginationOffsetCommaLimit, lite.Pagination)
	assert.Equal(t, GeneratedKeyLastInsertID, lite.GeneratedKeys)
	assert.True(t, lite.IsReservedWord("pragma"))

	duck, _ := Get("duckdb")
	assert.Equal(t, GeneratedKeyReturning, duck.GeneratedKeys)
	assert.Equal(t, "DOUBLE", duck.TypeName(sqltype.Double))
}
