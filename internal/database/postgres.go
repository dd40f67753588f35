package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL (scheduling audit log)
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Append-only log of every scheduling state transition. Rows are
		// written best-effort after the Mongo write succeeds; the document
		// store stays the source of truth.
		`CREATE TABLE IF NOT EXISTS scheduling_audit (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			action VARCHAR(40) NOT NULL,
			slot_id VARCHAR(40),
			request_id VARCHAR(40),
			actor_id VARCHAR(40),
			actor_role VARCHAR(20),
			detail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduling_audit_created_at
			ON scheduling_audit (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduling_audit_slot_id
			ON scheduling_audit (slot_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
