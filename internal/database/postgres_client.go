// Package database provides the read-only Postgres adapter: it connects,
// materializes a view's rows into an in-memory table and enumerates the
// views and columns available in a schema. No transformation logic lives
// here.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/logger"
	"github.com/visheskaras/Postgres-to-excel-for-scada/pkg/xlsxtemplate"
)

// Config holds the Postgres connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Client wraps a sql.DB opened with lib/pq.
type Client struct {
	db *sql.DB
}

// NewPostgresClient opens and verifies a connection to Postgres.
func NewPostgresClient(ctx context.Context, cfg Config) (*Client, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	logger.InfoLog(ctx, "connected to postgres at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &Client{db: db}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// FetchView selects all columns of a view and materializes the result.
// Each call checks out a dedicated connection for the single query and
// releases it on every path; connections are not shared across exports.
func (c *Client) FetchView(ctx context.Context, schema, viewName string) (*xlsxtemplate.Table, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	query := fmt.Sprintf("SELECT * FROM %s.%s", quoteIdent(schema), quoteIdent(viewName))
	logger.DebugLog(ctx, "querying view %s.%s", schema, viewName)

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying view %s.%s: %w", schema, viewName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s.%s: %w", schema, viewName, err)
	}

	table := &xlsxtemplate.Table{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row of %s.%s: %w", schema, viewName, err)
		}
		for i, v := range values {
			// lib/pq hands text columns back as []byte.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows of %s.%s: %w", schema, viewName, err)
	}

	logger.InfoLog(ctx, "fetched %d row(s) from %s.%s", table.RowCount(), schema, viewName)
	return table, nil
}

// ListViews returns the names of the views in a schema, ordered by name.
func (c *Client) ListViews(ctx context.Context, schema string) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.views
		WHERE table_schema = $1
		ORDER BY table_name`

	return c.queryStrings(ctx, query, schema)
}

// ListColumns returns a view's column names in ordinal position order.
func (c *Client) ListColumns(ctx context.Context, schema, viewName string) ([]string, error) {
	const query = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	return c.queryStrings(ctx, query, schema, viewName)
}

func (c *Client) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// quoteIdent double-quotes a Postgres identifier so view names coming from
// configuration cannot break out of the identifier position.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
