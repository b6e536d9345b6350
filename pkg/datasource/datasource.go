// Package datasource opens the database a schema's datasource points at.
package datasource

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/logger"
)

var debug = logger.Debug("prisma:datasource")

// ErrUnsupportedProvider is returned for providers without a bundled driver.
var ErrUnsupportedProvider = errors.New("unsupported datasource provider")

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

// prismaParams are connection string parameters only Prisma understands.
// lib/pq would forward them to the server as runtime settings.
var prismaParams = []string{
	"schema", "connection_limit", "pool_timeout", "pgbouncer",
	"socket_timeout", "statement_cache_size", "sslaccept",
}

// DriverDSN maps a datasource provider and URL to a database/sql driver and
// DSN. SQLite paths are resolved relative to schemaDir.
func DriverDSN(provider, rawURL, schemaDir string) (driver, dsn string, err error) {
	if rawURL == "" {
		return "", "", errors.New("datasource url is empty")
	}
	switch provider {
	case "postgresql", "postgres", "cockroachdb":
		dsn, err := postgresDSN(rawURL)
		return driverPostgres, dsn, err
	case "sqlite":
		return driverSQLite, sqliteDSN(rawURL, schemaDir), nil
	}
	return "", "", errors.Wrapf(ErrUnsupportedProvider, "%q", provider)
}

func postgresDSN(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid postgres url")
	}
	q := u.Query()
	for _, p := range prismaParams {
		q.Del(p)
	}
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sqliteDSN(rawURL, schemaDir string) string {
	path := strings.TrimPrefix(strings.TrimPrefix(rawURL, "file:"), "//")
	var query string
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i:]
	}
	if path != ":memory:" && !filepath.IsAbs(path) && schemaDir != "" {
		path = filepath.Join(schemaDir, path)
	}
	return "file:" + path + query
}

// DBName is the database part of a datasource URL: the database of a server
// URL or the file name of a SQLite URL.
func DBName(rawURL string) string {
	if strings.HasPrefix(rawURL, "file:") {
		path := sqliteDSN(rawURL, "")
		path = strings.TrimPrefix(path, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		return filepath.Base(path)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// Redact hides the password of a datasource URL.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	return u.Redacted()
}

// Client wraps a sql.DB connection.
type Client struct {
	DB       *sql.DB
	Provider string
}

// Open opens a handle to the datasource. The connection is not verified.
func Open(ctx context.Context, provider, rawURL, schemaDir string) (*Client, error) {
	driver, dsn, err := DriverDSN(provider, rawURL, schemaDir)
	if err != nil {
		return nil, err
	}
	debug.Printf("opening %s datasource %s", provider, Redact(rawURL))
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", Redact(rawURL))
	}
	return &Client{DB: db, Provider: provider}, nil
}

// Connect verifies the database connection.
func (c *Client) Connect(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Version returns the server version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	query := "SELECT version()"
	if c.Provider == "sqlite" {
		query = "SELECT sqlite_version()"
	}
	var v string
	if err := c.DB.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return "", errors.Wrap(err, "failed to query database version")
	}
	return v, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.DB.Close()
}

// CanConnect opens the datasource and pings it.
func CanConnect(ctx context.Context, provider, rawURL, schemaDir string) error {
	c, err := Open(ctx, provider, rawURL, schemaDir)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Connect(ctx); err != nil {
		return errors.Wrapf(err, "can't reach database server at %s", Redact(rawURL))
	}
	return nil
}
