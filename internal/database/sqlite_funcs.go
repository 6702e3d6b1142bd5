package database

import (
	"database/sql/driver"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
)

// sqliteLower is registered on every SQLite connection. The built-in
// LOWER only folds ASCII letters.
const sqliteLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLower, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument %T", sqliteLower, v)
	}
}
