package database

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Config describes one MySQL/MariaDB endpoint.
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Charset  string `mapstructure:"charset"`

	// ParseTime scans DATE/DATETIME columns into time.Time. The source keeps
	// it off so legacy zero dates arrive as text.
	ParseTime bool `mapstructure:"parse_time"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// ReadOnly marks every session on the pool as read-only.
	ReadOnly bool `mapstructure:"-"`
}

// Addr is host:port, with MySQL's default port when none is set.
func (c Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = 3306
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// DSN renders the go-sql-driver data source name for c.
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Addr()
	mc.DBName = c.Name
	mc.ParseTime = c.ParseTime
	mc.Loc = time.UTC
	mc.Params = map[string]string{}
	if c.Charset != "" {
		mc.Params["charset"] = c.Charset
	}
	if c.ReadOnly {
		// Unknown DSN params are applied as session variables on connect.
		mc.Params["transaction_read_only"] = "1"
	}
	return mc.FormatDSN()
}

// Open connects to the database described by c and verifies the connection.
func Open(ctx context.Context, c Config) (*sqlx.DB, error) {
	if c.Host == "" || c.Name == "" {
		return nil, fmt.Errorf("database host and name are required")
	}
	db, err := sqlx.Open("mysql", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	Configure(db, c)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s@%s/%s: %w", c.User, c.Host, c.Name, err)
	}
	return db, nil
}

// Configure applies the pool settings in c to db.
func Configure(db *sqlx.DB, c Config) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
}
