package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB

// Config carries connection and pool settings loaded from the environment.
type Config struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	SchemaPath  string
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// InitDB initializes the database connection pool.
// A failed ping aborts server boot.
func InitDB(cfg Config) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Error opening database: %q", err)
	}

	DB.SetMaxOpenConns(cfg.MaxOpen)
	DB.SetMaxIdleConns(cfg.MaxIdle)
	DB.SetConnMaxLifetime(cfg.MaxLifetime)
	DB.SetConnMaxIdleTime(cfg.MaxIdleTime)

	if err = DB.Ping(); err != nil {
		// One retry after a short delay before giving up.
		time.Sleep(2 * time.Second)
		if err = DB.Ping(); err != nil {
			log.Fatalf("Error connecting to database: %q", err)
		}
	}

	if err = applySchema(DB, cfg.SchemaPath); err != nil {
		log.Fatalf("Error applying database schema: %q", err)
	}
}

// applySchema reads and executes the schema file, if a path is configured.
// The schema uses IF NOT EXISTS guards so re-applying it is harmless.
func applySchema(db *sql.DB, schemaPath string) error {
	if schemaPath == "" {
		log.Println("No schema path provided, skipping schema application.")
		return nil
	}
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}

	if _, err = db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	return nil
}

// GetDB returns the database connection pool.
func GetDB() *sql.DB {
	return DB
}
