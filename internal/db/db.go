package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ishaan812/farmer/internal/config"

	_ "github.com/marcboeker/go-duckdb"
)

// DBManager keeps one connection per database file.
type DBManager struct {
	connections map[string]*sql.DB
	mu          sync.RWMutex
}

var (
	manager     *DBManager
	managerOnce sync.Once
)

func getManager() *DBManager {
	managerOnce.Do(func() {
		manager = &DBManager{connections: make(map[string]*sql.DB)}
	})
	return manager
}

// DefaultPath is the summary database location.
func DefaultPath() string {
	return filepath.Join(config.GetFarmerDir(), "farmer.db")
}

// GetDBForPath returns a database connection for a specific path, opening and
// migrating it on first use. An empty path uses DefaultPath.
func GetDBForPath(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath()
	}
	m := getManager()

	m.mu.RLock()
	if db, exists := m.connections[path]; exists {
		m.mu.RUnlock()
		return db, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check
	if db, exists := m.connections[path]; exists {
		return db, nil
	}

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := initDB(path)
	if err != nil {
		return nil, err
	}

	m.connections[path] = db
	return db, nil
}

func initDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DuckDB: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Close closes all database connections
func Close() error {
	m := getManager()
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for path, db := range m.connections {
		if err := db.Close(); err != nil {
			lastErr = err
		}
		delete(m.connections, path)
	}

	return lastErr
}
