// Package database persists a prediction audit trail in SQLite.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB creates a new database connection with pooling and runs migrations.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pancrisk.db")

	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 5, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS prediction_audits (
			id TEXT PRIMARY KEY,
			request_id TEXT,
			prediction INTEGER NOT NULL,
			probability REAL NOT NULL,
			risk_level TEXT NOT NULL,
			language TEXT,
			client_type TEXT,
			processing_ms INTEGER,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_created_at ON prediction_audits(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_risk_level ON prediction_audits(risk_level)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// initPreparedStatements prepares the hot-path statements once.
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_audit": `INSERT INTO prediction_audits
			(id, request_id, prediction, probability, risk_level, language, client_type, processing_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"recent_audits": `SELECT id, request_id, prediction, probability, risk_level, language, client_type, processing_ms, created_at
			FROM prediction_audits ORDER BY created_at DESC LIMIT ?`,
		"risk_counts": `SELECT risk_level, COUNT(*) FROM prediction_audits GROUP BY risk_level`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}

	return nil
}

// stmt returns a prepared statement by name.
func (db *DB) stmt(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, ok := db.prepared[name]
	if !ok {
		return nil, fmt.Errorf("unknown prepared statement %q", name)
	}
	return stmt, nil
}

// PoolStats exposes connection pool statistics for the health endpoint.
func (db *DB) PoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close releases prepared statements and the underlying pool.
func (db *DB) Close() error {
	db.mutex.Lock()
	for _, stmt := range db.prepared {
		_ = stmt.Close()
	}
	db.prepared = make(map[string]*sql.Stmt)
	db.mutex.Unlock()

	return db.DB.Close()
}
