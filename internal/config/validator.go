package config

import (
	"fmt"
	"strings"

	"github.com/gotrs-io/cemigrate/internal/logger"
)

type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, "  - "+fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration:\n%s", strings.Join(p, "\n"))
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	var p problems
	c.checkSource(&p)
	c.checkDestination(&p)
	c.checkLogging(&p)
	return p.err()
}

// ValidateSource checks only what commands reading the source database
// need.
func (c *Config) ValidateSource() error {
	var p problems
	c.checkSource(&p)
	c.checkLogging(&p)
	return p.err()
}

func (c *Config) checkSource(p *problems) {
	if c.Source.Host == "" {
		p.add("source.host is required")
	}
	if c.Source.Name == "" {
		p.add("source.name is required")
	}
	if _, err := c.Source.Location(); err != nil {
		p.add("source.timezone %q is not a known zone", c.Source.Timezone)
	}
}

func (c *Config) checkDestination(p *problems) {
	if c.Destination.Host == "" {
		p.add("destination.host is required")
	}
	if c.Destination.Name == "" {
		p.add("destination.name is required")
	}
	if c.Destination.CompanyID <= 0 {
		p.add("destination.company_id must be positive")
	}
	if len(c.Destination.EncryptionKey) < 16 {
		p.add("destination.encryption_key must be at least 16 characters")
	}
	if len(c.Destination.DefaultCountry) != 2 {
		p.add("destination.default_country must be an ISO 3166-1 alpha-2 code")
	}
	if len(c.Destination.DefaultCurrency) != 3 {
		p.add("destination.default_currency must be an ISO 4217 code")
	}
}

func (c *Config) checkLogging(p *problems) {
	if !logger.ValidLevel(c.Logging.Level) {
		p.add("logging.level %q is invalid, use debug, info, warn or error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.add("logging.format must be text or json")
	}
}
