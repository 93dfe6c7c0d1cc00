package fieldtype

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
)

// ColumnType is the physical type of a column as read back from the schema.
type ColumnType string

const (
	ColumnString       ColumnType = "string"
	ColumnInteger      ColumnType = "integer"
	ColumnBigInteger   ColumnType = "bigint"
	ColumnSmallInteger ColumnType = "smallint"
	ColumnTinyInteger  ColumnType = "tinyint"
	ColumnText         ColumnType = "text"
	ColumnLongText     ColumnType = "longtext"
	ColumnBoolean      ColumnType = "boolean"
	ColumnDate         ColumnType = "date"
	ColumnTimestamp    ColumnType = "timestamp"
)

// SQLType is the declared type used in DDL.
func (c ColumnType) SQLType() string {
	switch c {
	case ColumnInteger:
		return "INTEGER"
	case ColumnBigInteger:
		return "BIGINT"
	case ColumnSmallInteger:
		return "SMALLINT"
	case ColumnTinyInteger:
		return "TINYINT"
	case ColumnText:
		return "TEXT"
	case ColumnLongText:
		return "LONGTEXT"
	case ColumnBoolean:
		return "BOOLEAN"
	case ColumnDate:
		return "DATE"
	case ColumnTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR(255)"
	}
}

// ParseSQLType maps a declared type such as "VARCHAR(255)" back to a
// ColumnType. Unrecognised declarations are treated as strings.
func ParseSQLType(declared string) ColumnType {
	t := strings.ToUpper(strings.TrimSpace(declared))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "INTEGER", "INT", "MEDIUMINT":
		return ColumnInteger
	case "BIGINT":
		return ColumnBigInteger
	case "SMALLINT":
		return ColumnSmallInteger
	case "TINYINT":
		return ColumnTinyInteger
	case "TEXT", "CLOB":
		return ColumnText
	case "LONGTEXT", "MEDIUMTEXT":
		return ColumnLongText
	case "BOOLEAN", "BOOL":
		return ColumnBoolean
	case "DATE":
		return ColumnDate
	case "TIMESTAMP", "DATETIME":
		return ColumnTimestamp
	default:
		return ColumnString
	}
}

// IsInteger reports whether c belongs to the integer family.
func (c ColumnType) IsInteger() bool {
	switch c {
	case ColumnInteger, ColumnBigInteger, ColumnSmallInteger, ColumnTinyInteger:
		return true
	}
	return false
}

// Coerce binds a submitted value to the column the way a typed SQL engine
// would. Form posts deliver everything as strings, JSON bodies deliver
// float64 and bool. An empty string on anything but a plain string column
// means NULL.
func (c ColumnType) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch {
	case c == ColumnBoolean:
		return coerceBool(v)
	case c.IsInteger():
		return coerceInt(v)
	case c == ColumnDate || c == ColumnTimestamp:
		s := toString(v)
		if s == "" {
			return nil, nil
		}
		return s, nil
	default:
		return toString(v), nil
	}
}

func coerceBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "on", "yes":
			return true, nil
		case "0", "false", "off", "no", "":
			return false, nil
		}
	}
	return nil, apperr.Invalid("%v is not a boolean", v)
}

func coerceInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		// int64(x) is undefined outside [-2^63, 2^63)
		if x == math.Trunc(x) && x >= -(1<<63) && x < 1<<63 {
			return int64(x), nil
		}
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
	}
	return nil, apperr.Invalid("%v is not an integer", v)
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
