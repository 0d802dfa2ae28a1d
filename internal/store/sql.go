package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// sqlStore keeps key/value entries in a relational database. sqlite3 is the
// per-device default; mysql serves shared webserver deployments.
type sqlStore struct {
	db     *sql.DB
	driver string
}

func openSQL(driver string, cfg *config.Config) (*sqlStore, error) {
	dbCfg, ok := cfg.Databases[driver]
	if !ok {
		return nil, fmt.Errorf("database config for %s not found", driver)
	}

	var (
		db  *sql.DB
		err error
	)

	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		if dbCfg.DSN == "" {
			return nil, fmt.Errorf("sqlite dsn must be provided")
		}
		if dbCfg.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dbCfg.DSN), 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
		db, err = sql.Open("sqlite3", dbCfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			dbCfg.Username,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
			dbCfg.Params,
		)
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &sqlStore{db: db, driver: strings.ToLower(driver)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate ensures the kv table is present.
func (s *sqlStore) migrate() error {
	var stmt string
	switch s.driver {
	case "sqlite", "sqlite3":
		stmt = `CREATE TABLE IF NOT EXISTS kv_entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`
	case "mysql":
		stmt = `CREATE TABLE IF NOT EXISTS kv_entries (
			` + "`key`" + ` VARCHAR(255) NOT NULL,
			value MEDIUMTEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (` + "`key`" + `)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	default:
		return fmt.Errorf("unsupported driver for migration: %s", s.driver)
	}
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("migrate (%s): %w", s.driver, err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT value FROM kv_entries WHERE key = ?`), key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *sqlStore) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	var stmt string
	switch s.driver {
	case "mysql":
		stmt = "INSERT INTO kv_entries (`key`, value, updated_at) VALUES (?, ?, ?) " +
			"ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)"
	default:
		stmt = `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	}
	if _, err := s.db.ExecContext(ctx, stmt, key, value, now); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM kv_entries WHERE key = ?`), key,
	); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// rebind quotes the key column for mysql, which reserves the word.
func (s *sqlStore) rebind(query string) string {
	if s.driver == "mysql" {
		return strings.ReplaceAll(query, "key", "`key`")
	}
	return query
}
