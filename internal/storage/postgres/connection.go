package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/archlens/archlens-backend/config"
	_ "github.com/lib/pq"
)

// NewConnection opens the database/sql handle the finding-history store
// runs on. The JSONB report repo uses pgx separately; the two never share
// a connection.
func NewConnection(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
