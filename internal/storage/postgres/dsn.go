package postgres

import (
	"fmt"

	"github.com/archlens/archlens-backend/config"
)

// DSN renders a keyword/value connection string accepted by both pgx and
// lib/pq, so the pool and the database/sql handle share one config source.
func DSN(cfg *config.DatabaseConfig) string {
	ssl := cfg.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, ssl,
	)
}
