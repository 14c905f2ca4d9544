package preflight

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"specdash/internal/config"
)

var databaseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// DatabaseManager makes sure the sample application's test database exists
type DatabaseManager struct {
	config *config.Config
	log    zerolog.Logger
}

// NewDatabaseManager creates a new DatabaseManager
func NewDatabaseManager(cfg *config.Config, log zerolog.Logger) *DatabaseManager {
	return &DatabaseManager{config: cfg, log: log}
}

// DSN builds the server DSN (no database selected) from DB_* variables
func (dm *DatabaseManager) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = envOr("DB_USERNAME", "root")
	cfg.Passwd = os.Getenv("DB_PASSWORD")
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(envOr("DB_HOST", "127.0.0.1"), envOr("DB_PORT", "3306"))
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}

// Check connects to the database server and creates the test database if it
// does not exist yet
func (dm *DatabaseManager) Check(ctx context.Context) error {
	dbName := dm.config.GetDatabaseName()
	if !isValidDatabaseName(dbName) {
		return fmt.Errorf("invalid database name: %q", dbName)
	}

	db, err := sql.Open("mysql", dm.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}

	exists, err := databaseExists(ctx, db, dbName)
	if err != nil {
		return fmt.Errorf("failed to check database %s: %w", dbName, err)
	}
	if exists {
		return nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", dbName, err)
	}
	dm.log.Info().Str("database", dbName).Msg("created test database")
	return nil
}

func databaseExists(ctx context.Context, db *sql.DB, dbName string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, dbName).Scan(&exists)
	return exists, err
}

// isValidDatabaseName only accepts names that are safe inside backquotes
func isValidDatabaseName(name string) bool {
	return databaseNamePattern.MatchString(name)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
