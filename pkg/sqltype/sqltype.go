// Package sqltype defines the SQL type codes carried by expression nodes and
// result-set column metadata. Codes drive two behaviors: placeholder values
// keep their declared type through compilation, and the offline row cursor
// uses the declared type to pick coercion and large-object handling.
package sqltype

import (
	"strings"
	"time"
)

// Code identifies a SQL data type independent of any driver's naming.
type Code int

const (
	// Unknown is the zero value, used when a driver reports no usable type.
	Unknown Code = iota
	Boolean
	TinyInt
	SmallInt
	Integer
	BigInt
	Float
	Double
	Decimal
	Varchar
	Clob
	Blob
	Date
	Time
	Timestamp
	Array
	Struct
	Ref
)

// String returns the canonical name of the type code.
func (c Code) String() string {
	switch c {
	case Boolean:
		return "boolean"
	case TinyInt:
		return "tinyint"
	case SmallInt:
		return "smallint"
	case Integer:
		return "integer"
	case BigInt:
		return "bigint"
	case Float:
		return "float"
	case Double:
		return "double"
	case Decimal:
		return "decimal"
	case Varchar:
		return "varchar"
	case Clob:
		return "clob"
	case Blob:
		return "blob"
	case Date:
		return "date"
	case Time:
		return "time"
	case Timestamp:
		return "timestamp"
	case Array:
		return "array"
	case Struct:
		return "struct"
	case Ref:
		return "ref"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the code is an integer, floating-point, or
// decimal type.
func (c Code) IsNumeric() bool {
	switch c {
	case TinyInt, SmallInt, Integer, BigInt, Float, Double, Decimal:
		return true
	default:
		return false
	}
}

// IsTemporal reports whether the code is a date or time type.
func (c Code) IsTemporal() bool {
	switch c {
	case Date, Time, Timestamp:
		return true
	default:
		return false
	}
}

// IsLargeObject reports whether values of this type may be backed by
// connection-bound streams or driver-owned buffers. The row cursor copies
// such values into detached memory before the source cursor is released.
func (c Code) IsLargeObject() bool {
	switch c {
	case Blob, Clob, Array, Struct, Ref:
		return true
	default:
		return false
	}
}

// Of infers a type code from a Go runtime value. Used when binding argument
// values whose column type is not known at the call site.
func Of(v any) Code {
	switch v.(type) {
	case nil:
		return Unknown
	case bool:
		return Boolean
	case int8:
		return TinyInt
	case int16:
		return SmallInt
	case int32:
		return Integer
	case int, int64, uint, uint32, uint64:
		return BigInt
	case float32:
		return Float
	case float64:
		return Double
	case string:
		return Varchar
	case []byte:
		return Blob
	case time.Time:
		return Timestamp
	default:
		return Unknown
	}
}

// FromDatabaseTypeName maps a driver-reported column type name (as returned
// by sql.ColumnType.DatabaseTypeName) to a type code. Precision suffixes
// like VARCHAR(255) are ignored. Unrecognized names map to Unknown.
func FromDatabaseTypeName(name string) Code {
	n := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	if n == "" {
		return Unknown
	}

	// Postgres reports array types with a leading underscore (_INT4);
	// DuckDB uses a [] suffix (INTEGER[]).
	if strings.HasPrefix(n, "_") || strings.HasSuffix(n, "[]") {
		return Array
	}

	switch n {
	case "BOOL", "BOOLEAN":
		return Boolean
	case "TINYINT", "INT1":
		return TinyInt
	case "SMALLINT", "INT2", "SMALLSERIAL":
		return SmallInt
	case "INT", "INTEGER", "INT4", "MEDIUMINT", "SERIAL":
		return Integer
	case "BIGINT", "INT8", "BIGSERIAL", "HUGEINT", "UBIGINT":
		return BigInt
	case "REAL", "FLOAT4":
		return Float
	case "FLOAT", "DOUBLE", "DOUBLE PRECISION", "FLOAT8":
		return Double
	case "DECIMAL", "NUMERIC", "MONEY":
		return Decimal
	case "CHAR", "BPCHAR", "NCHAR", "VARCHAR", "NVARCHAR", "CHARACTER",
		"CHARACTER VARYING", "TEXT", "STRING", "NAME", "UUID":
		return Varchar
	case "CLOB", "MEDIUMTEXT", "LONGTEXT":
		return Clob
	case "BLOB", "BYTEA", "BINARY", "VARBINARY", "MEDIUMBLOB", "LONGBLOB":
		return Blob
	case "DATE":
		return Date
	case "TIME", "TIMETZ", "TIME WITHOUT TIME ZONE", "TIME WITH TIME ZONE":
		return Time
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME",
		"TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMP WITH TIME ZONE":
		return Timestamp
	case "JSON", "JSONB", "STRUCT", "RECORD", "MAP":
		return Struct
	default:
		return Unknown
	}
}
