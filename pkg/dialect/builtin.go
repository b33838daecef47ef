package dialect

import "github.com/leapstack-labs/querykit/pkg/sqltype"

// Reserved words shared by all built-in dialects. Each dialect adds its own
// on top. The list only needs to cover words likely to collide with column
// or table names; the compiler quotes every identifier it emits regardless.
var commonReservedWords = []string{
	"ALL", "AND", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST", "CHECK",
	"COLUMN", "CREATE", "CROSS", "DEFAULT", "DELETE", "DESC", "DISTINCT",
	"DROP", "ELSE", "END", "EXISTS", "FROM", "FULL", "GROUP", "HAVING",
	"IN", "INDEX", "INNER", "INSERT", "INTO", "IS", "JOIN", "KEY", "LEFT",
	"LIKE", "LIMIT", "NOT", "NULL", "OFFSET", "ON", "OR", "ORDER", "OUTER",
	"PRIMARY", "RIGHT", "SELECT", "SET", "TABLE", "THEN", "TO", "UNION",
	"UNIQUE", "UPDATE", "VALUES", "WHEN", "WHERE",
}

// builtinSQLite is the default SQLite dialect configuration.
var builtinSQLite = NewDialect("sqlite").
	Identifiers(`"`, `"`, `""`, NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(PlaceholderQuestion).
	PaginationStyle(PaginationOffsetCommaLimit).
	GeneratedKeyStyle(GeneratedKeyLastInsertID).
	WithTypeNames(map[sqltype.Code]string{
		sqltype.Double:    "REAL",
		sqltype.Float:     "REAL",
		sqltype.Varchar:   "TEXT",
		sqltype.Clob:      "TEXT",
		sqltype.Timestamp: "TEXT",
	}).
	WithReservedWords(commonReservedWords...).
	WithReservedWords("ABORT", "ATTACH", "AUTOINCREMENT", "GLOB", "PRAGMA",
		"REGEXP", "REINDEX", "ROWID", "VACUUM", "WITHOUT").
	Build()

// builtinDuckDB is the default DuckDB dialect configuration.
var builtinDuckDB = NewDialect("duckdb").
	Identifiers(`"`, `"`, `""`, NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(PlaceholderQuestion).
	PaginationStyle(PaginationLimitOffset).
	GeneratedKeyStyle(GeneratedKeyReturning).
	WithTypeNames(map[sqltype.Code]string{
		sqltype.Double: "DOUBLE",
		sqltype.Float:  "REAL",
	}).
	WithReservedWords(commonReservedWords...).
	WithReservedWords("ASOF", "EXCLUDE", "PIVOT", "POSITIONAL", "QUALIFY",
		"SEMI", "ANTI", "UNPIVOT").
	Build()

// builtinPostgres is the default Postgres dialect configuration.
var builtinPostgres = NewDialect("postgres").
	Identifiers(`"`, `"`, `""`, NormLowercase).
	DefaultSchema("public").
	PlaceholderStyle(PlaceholderDollar).
	PaginationStyle(PaginationLimitOffset).
	GeneratedKeyStyle(GeneratedKeyReturning).
	WithTypeNames(map[sqltype.Code]string{
		sqltype.TinyInt: "SMALLINT",
		sqltype.Blob:    "BYTEA",
		sqltype.Clob:    "TEXT",
	}).
	WithReservedWords(commonReservedWords...).
	WithReservedWords("ANALYSE", "ANALYZE", "CURRENT_USER", "ILIKE",
		"LATERAL", "RETURNING", "SESSION_USER", "USER", "VERBOSE").
	Build()

func init() {
	// Register the builtin dialects and default to SQLite, matching the
	// default adapter.
	Register(builtinSQLite)
	Register(builtinDuckDB)
	Register(builtinPostgres)
	SetDefault(builtinSQLite)
}
