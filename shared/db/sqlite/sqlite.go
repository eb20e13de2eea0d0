package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/dfryer1193/camroll/shared/db"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// isMemory reports whether path names an in-memory database, in any of the
// forms SQLite accepts.
func isMemory(path string) bool {
	name, query, _ := strings.Cut(path, "?")
	if name == ":memory:" || name == "file::memory:" {
		return true
	}
	values, err := url.ParseQuery(query)
	return err == nil && values.Get("mode") == "memory"
}

// SQLiteConfig locates the database file.
type SQLiteConfig struct {
	Path string `env:"SQLITE_DB_PATH" envDefault:"./camroll.db"`
}

// NewSQLiteConfig reads SQLITE_DB_PATH, falling back to ./camroll.db.
func NewSQLiteConfig() (*SQLiteConfig, error) {
	cfg := &SQLiteConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sqlite config: %w", err)
	}
	return cfg, nil
}

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",   // Write-Ahead Logging so readers don't block the writer
	"synchronous(NORMAL)", // Balance between safety and performance
	"foreign_keys(ON)",
	"busy_timeout(5000)", // Wait up to 5 seconds if database is locked
	"cache_size(-64000)", // 64MB cache (negative means KB)
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: strings.TrimSpace(cfg.Path),
	}
}

var _ db.Database = (*SQLiteDB)(nil)

func (s *SQLiteDB) dsn() string {
	params := url.Values{}
	for _, p := range pragmas {
		params.Add("_pragma", p)
	}
	// Take the write lock up front so concurrent writers queue on busy_timeout
	// instead of failing on lock upgrade.
	params.Set("_txlock", "immediate")

	sep := "?"
	if strings.Contains(s.dbPath, "?") {
		sep = "&"
	}
	return s.dbPath + sep + params.Encode()
}

// Connect opens the database, verifies it and applies pending migrations.
func (s *SQLiteDB) Connect(ctx context.Context) error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}
	if s.dbPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	sqlDB, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a distinct database.
	if isMemory(s.dbPath) {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = sqlDB
	log.Info().Str("path", s.dbPath).Msg("Connected to SQLite database")

	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}
