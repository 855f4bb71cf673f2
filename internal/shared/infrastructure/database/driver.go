package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Driver names a row store backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// String returns the driver name.
func (d Driver) String() string { return string(d) }

// MemoryPath selects a private in-memory SQLite database.
const MemoryPath = ":memory:"

// Config selects and addresses the row store.
type Config struct {
	// Driver is empty or "auto" to detect it from URL.
	Driver Driver
	// URL is the PostgreSQL connection string.
	URL string
	// SQLitePath defaults to ~/.grim/data.db.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// ResolveDriver returns the configured driver or detects it from the URL.
func (c Config) ResolveDriver() Driver {
	if c.Driver == "" || c.Driver == "auto" {
		return DetectDriver(c.URL)
	}
	return c.Driver
}

// Opener opens a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// RegisterSQLiteDriver is called from the sqlite package's init.
func RegisterSQLiteDriver(open Opener) { openers[DriverSQLite] = open }

// RegisterPostgresDriver is called from the postgres package's init.
func RegisterPostgresDriver(open Opener) { openers[DriverPostgres] = open }

// NewConnection opens the row store named by cfg. The driver package must be
// linked in with a blank import.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.ResolveDriver()
	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %q not registered", driver)
	}
	return open(ctx, cfg)
}

// DetectDriver guesses the backend from a connection string. An empty URL
// means local SQLite.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(url, ext) {
			return DriverSQLite
		}
	}
	// Anything else is read as a libpq keyword string.
	return DriverPostgres
}

// ParseDriver reads an explicit driver name. "auto" and "" yield "" so the
// caller falls back to DetectDriver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver: %q", s)
}

// Rebind rewrites '?' placeholders into the driver's native form.
// Question marks inside single-quoted literals are left alone.
func (d Driver) Rebind(query string) string {
	if d != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DefaultSQLitePath is ~/.grim/data.db, or ./.grim/data.db without a home.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".grim", "data.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
