package snowflake

import (
	"strings"

	"github.com/snowflakedb/gosnowflake"
)

// Config holds Snowflake warehouse connection settings.
type Config struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
}

// ParseConnectionString reads an ODBC-style "KEY=value;..." string. A DB value
// of the form DATABASE.SCHEMA sets both fields.
func ParseConnectionString(connStr string) Config {
	var cfg Config
	for _, part := range strings.Split(connStr, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "ACCOUNT":
			cfg.Account = value
		case "USER":
			cfg.User = value
		case "PASSWORD":
			cfg.Password = value
		case "WAREHOUSE":
			cfg.Warehouse = value
		case "SCHEMA":
			cfg.Schema = value
		case "DB", "DATABASE":
			if db, schema, found := strings.Cut(value, "."); found {
				cfg.Database, cfg.Schema = db, schema
			} else {
				cfg.Database = value
			}
		}
	}
	return cfg
}

// DSN builds the gosnowflake data source name.
func (c Config) DSN() (string, error) {
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Database:  c.Database,
		Schema:    c.Schema,
		Warehouse: c.Warehouse,
	})
}
