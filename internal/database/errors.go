package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers
const (
	errDupEntry     = 1062
	errNoSuchTable  = 1146
	errAccessDenied = 1045
)

// IsConnectionError reports whether the provided error indicates the database
// connection is unavailable.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "host is unreachable"),
		strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "bad connection"),
		strings.Contains(msg, "database is closed"):
		return true
	}
	return false
}

func mysqlNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicateKey reports a unique constraint violation.
func IsDuplicateKey(err error) bool {
	return mysqlNumber(err) == errDupEntry
}

// IsMissingTable reports a query against a table that does not exist.
func IsMissingTable(err error) bool {
	return mysqlNumber(err) == errNoSuchTable
}

// IsAccessDenied reports rejected credentials.
func IsAccessDenied(err error) bool {
	return mysqlNumber(err) == errAccessDenied
}
