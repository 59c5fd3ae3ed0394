package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	c := Config{Host: "db.internal", Name: "clientexec", User: "ce", Password: "p@ss", ParseTime: true, ReadOnly: true}
	dsn := c.DSN()

	assert.Contains(t, dsn, "ce:p@ss@tcp(db.internal:3306)/clientexec")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "transaction_read_only=1")

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.True(t, parsed.ParseTime)
}

func TestConfigDSNCustomPortAndCharset(t *testing.T) {
	c := Config{Host: "127.0.0.1", Port: 3307, Name: "blesta", User: "root", Charset: "utf8mb4"}
	dsn := c.DSN()

	assert.Contains(t, dsn, "tcp(127.0.0.1:3307)/blesta")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.NotContains(t, dsn, "transaction_read_only")
	assert.NotContains(t, dsn, "parseTime")
}

func TestOpenRequiresHostAndName(t *testing.T) {
	_, err := Open(context.Background(), Config{User: "root"})
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.True(t, IsDuplicateKey(dup))
	assert.False(t, IsMissingTable(dup))

	missing := &mysql.MySQLError{Number: 1146, Message: "Table 'ce.coupons' doesn't exist"}
	assert.True(t, IsMissingTable(missing))
	assert.True(t, IsAccessDenied(&mysql.MySQLError{Number: 1045}))

	assert.True(t, IsConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, IsConnectionError(fmt.Errorf("query: %w", mysql.ErrInvalidConn)))
	assert.True(t, IsConnectionError(context.DeadlineExceeded))
	assert.False(t, IsConnectionError(dup))
	assert.False(t, IsConnectionError(nil))
}
