package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens the database for the given driver ("sqlite" or "pgx") and verifies the connection
func Init(driver, connection string) (*sqlx.DB, error) {
	memory := isMemorySQLite(driver, connection)

	// SQLite: create data directory if needed
	if driver == "sqlite" && !memory {
		dir := filepath.Dir(stripQuery(connection))
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if memory {
		// every connection to an in-memory database would see its own empty schema
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Debug("database connected", "driver", driver, "memory", memory)
	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

func isMemorySQLite(driver, connection string) bool {
	if driver != "sqlite" {
		return false
	}
	return strings.Contains(connection, ":memory:") || strings.Contains(connection, "mode=memory")
}

func stripQuery(connection string) string {
	connection = strings.TrimPrefix(connection, "file:")
	if i := strings.Index(connection, "?"); i != -1 {
		return connection[:i]
	}
	return connection
}
