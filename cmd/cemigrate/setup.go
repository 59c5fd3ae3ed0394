package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gotrs-io/cemigrate/internal/config"
	"github.com/gotrs-io/cemigrate/internal/database"
	"github.com/gotrs-io/cemigrate/internal/logger"
)

// loadConfig reads the configuration, applies the command line overrides
// and checks the result with validate.
func loadConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if debugFlag {
		cfg.Migration.Debug = true
	}
	if mappingsFlag != "" {
		cfg.Migration.MappingsFile = mappingsFlag
	}
	if metricsFileFlag != "" {
		cfg.Migration.MetricsFile = metricsFileFlag
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	level := cfg.Logging.Level
	if cfg.Migration.Debug {
		level = "debug"
	}
	return logger.New(level, cfg.Logging.Format)
}

// connections holds both ends of a migration.
type connections struct {
	source      *sqlx.DB
	destination *sqlx.DB
}

func (c *connections) Close() {
	if c.source != nil {
		c.source.Close()
	}
	if c.destination != nil {
		c.destination.Close()
	}
}

func connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*connections, error) {
	conns := &connections{}
	var err error

	conns.source, err = openSource(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	conns.destination, err = database.Open(ctx, cfg.Destination.Config)
	if err != nil {
		conns.Close()
		return nil, connectError("destination", cfg.Destination.Config, err)
	}
	log.WithField("database", cfg.Destination.Name).Info("Connected to Blesta")
	return conns, nil
}

func openSource(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sqlx.DB, error) {
	db, err := database.Open(ctx, cfg.Source.Config)
	if err != nil {
		return nil, connectError("source", cfg.Source.Config, err)
	}
	log.WithField("database", cfg.Source.Name).Info("Connected to Clientexec (read-only)")
	return db, nil
}

// connectError turns a failed connection into a message that says what to
// check.
func connectError(side string, c database.Config, err error) error {
	switch {
	case database.IsAccessDenied(err):
		return fmt.Errorf("%s: access denied for user %q, check %s.user and %s.password: %w", side, c.User, side, side, err)
	case database.IsConnectionError(err):
		return fmt.Errorf("%s: cannot reach %s, check %s.host and %s.port: %w", side, c.Addr(), side, side, err)
	}
	return fmt.Errorf("%s: %w", side, err)
}
