package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"oportunidades/internal/platform/config"
)

// DriverName is the sqlite3 driver with the fold() SQL function installed.
// fold lower-cases with Unicode rules; the built-in lower() and LIKE only
// fold ASCII, which misses "EDUCAÇÃO" vs "educação".
const DriverName = "sqlite3_fold"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", Fold, true)
		},
	})
}

// Fold is the Go side of the fold() SQL function. NULL folds to "".
func Fold(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	default:
		return ""
	}
}

// NewDB opens the sqlite database at cfg.URL with foreign keys enforced.
// In-memory databases are pinned to a single connection so every query
// sees the same schema.
func NewDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL
	if dsn == "" {
		dsn = ":memory:"
	}
	if err := ensureDir(dsn); err != nil {
		return nil, err
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_foreign_keys=on&_busy_timeout=5000"

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}

	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		maxConns := cfg.MaxConnections
		if maxConns <= 0 {
			maxConns = 10
		}
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func ensureDir(dsn string) error {
	if strings.Contains(dsn, ":memory:") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
