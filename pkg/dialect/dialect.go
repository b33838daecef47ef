// Package dialect provides SQL dialect configuration.
//
// This package contains the contract for dialect definitions used by the
// compiler and the adapters: identifier quoting and normalization, parameter
// placeholders, pagination syntax, generated-key retrieval, and type names.
// Built-in dialects register themselves from this package's init; adapters
// look their dialect up by name.
package dialect

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

// NormalizationStrategy defines how a dialect folds unquoted identifiers.
type NormalizationStrategy int

const (
	// NormCaseSensitive keeps identifiers exactly as written.
	NormCaseSensitive NormalizationStrategy = iota
	// NormCaseInsensitive matches identifiers case-insensitively; names are
	// folded to lowercase for comparison.
	NormCaseInsensitive
	// NormLowercase folds unquoted identifiers to lowercase (Postgres).
	NormLowercase
	// NormUppercase folds unquoted identifiers to uppercase.
	NormUppercase
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses positional "?" markers.
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses numbered "$1", "$2" markers.
	PlaceholderDollar
)

// PaginationStyle defines how OFFSET and LIMIT compile.
type PaginationStyle int

const (
	// PaginationLimitOffset emits LIMIT n and OFFSET m independently.
	PaginationLimitOffset PaginationStyle = iota
	// PaginationOffsetCommaLimit emits LIMIT m, n with both values bound
	// whenever either is set, defaulting offset to 0 and limit to -1.
	// SQLite rejects OFFSET without LIMIT, so both are always present.
	PaginationOffsetCommaLimit
	// PaginationOffsetFetch emits OFFSET m ROWS FETCH NEXT n ROWS ONLY.
	PaginationOffsetFetch
)

// GeneratedKeyStyle defines how an insert's generated key is retrieved.
type GeneratedKeyStyle int

const (
	// GeneratedKeyLastInsertID reads the driver's LastInsertId after the
	// insert executes.
	GeneratedKeyLastInsertID GeneratedKeyStyle = iota
	// GeneratedKeyReturning appends a RETURNING clause to the insert and
	// scans the key from the single result row.
	GeneratedKeyReturning
)

// IdentifierConfig describes identifier quoting for a dialect.
type IdentifierConfig struct {
	Quote    string // opening quote character
	QuoteEnd string // closing quote character
	// Escape replaces QuoteEnd occurrences inside an identifier (e.g. "").
	Escape        string
	Normalization NormalizationStrategy
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	// Database-specific settings
	DefaultSchema string           // Default schema name ("main" for SQLite, "public" for Postgres)
	Placeholder   PlaceholderStyle // How to format query parameters
	Pagination    PaginationStyle  // How OFFSET/LIMIT compile
	GeneratedKeys GeneratedKeyStyle

	typeNames     map[sqltype.Code]string // Dialect spellings for CAST targets
	reservedWords map[string]struct{}     // All keywords that need quoting as identifiers
}

// NormalizeName normalizes an identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case NormUppercase:
		return strings.ToUpper(name)
	case NormLowercase, NormCaseInsensitive:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
// Returns "?" for PlaceholderQuestion style, "$1", "$2" etc. for PlaceholderDollar style.
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	normalized := d.NormalizeName(word)
	_, ok := d.reservedWords[normalized]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	// Escape any existing quote end characters in the name (e.g., " -> "")
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier only if it's a reserved word.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

// TypeName returns the dialect's spelling for a SQL type, used as a CAST
// target. Types without a dialect override fall back to a portable default.
func (d *Dialect) TypeName(code sqltype.Code) string {
	if name, ok := d.typeNames[code]; ok {
		return name
	}
	if name, ok := defaultTypeNames[code]; ok {
		return name
	}
	return strings.ToUpper(code.String())
}

var defaultTypeNames = map[sqltype.Code]string{
	sqltype.Boolean:   "BOOLEAN",
	sqltype.TinyInt:   "TINYINT",
	sqltype.SmallInt:  "SMALLINT",
	sqltype.Integer:   "INTEGER",
	sqltype.BigInt:    "BIGINT",
	sqltype.Float:     "FLOAT",
	sqltype.Double:    "DOUBLE PRECISION",
	sqltype.Decimal:   "DECIMAL",
	sqltype.Varchar:   "VARCHAR",
	sqltype.Clob:      "TEXT",
	sqltype.Blob:      "BLOB",
	sqltype.Date:      "DATE",
	sqltype.Time:      "TIME",
	sqltype.Timestamp: "TIMESTAMP",
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: IdentifierConfig{
				Quote:         `"`,
				QuoteEnd:      `"`,
				Escape:        `""`,
				Normalization: NormLowercase,
			},
			reservedWords: make(map[string]struct{}),
		},
	}
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm NormalizationStrategy) *Builder {
	b.dialect.Identifiers = IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// PaginationStyle sets how OFFSET/LIMIT compile.
func (b *Builder) PaginationStyle(style PaginationStyle) *Builder {
	b.dialect.Pagination = style
	return b
}

// GeneratedKeyStyle sets how generated keys are retrieved.
func (b *Builder) GeneratedKeyStyle(style GeneratedKeyStyle) *Builder {
	b.dialect.GeneratedKeys = style
	return b
}

// WithTypeNames overrides the dialect's spellings for SQL types.
func (b *Builder) WithTypeNames(names map[sqltype.Code]string) *Builder {
	b.dialect.typeNames = names
	return b
}

// WithReservedWords registers words that need quoting when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	if b.dialect.reservedWords == nil {
		b.dialect.reservedWords = make(map[string]struct{})
	}
	for _, w := range words {
		b.dialect.reservedWords[b.dialect.NormalizeName(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
