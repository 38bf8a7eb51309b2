package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"
)

// Executor runs one textual statement against the data platform.
type Executor interface {
	Execute(ctx context.Context, statement string) ([]Row, error)
}

// Row is one result row with its column names, in result order.
type Row struct {
	Columns []string
	Values  []any
}

// NewRow builds a row from parallel column and value lists.
func NewRow(columns []string, values ...any) Row {
	return Row{Columns: columns, Values: values}
}

// Value returns the i-th value, or nil when out of range.
func (r Row) Value(i int) any {
	if i < 0 || i >= len(r.Values) {
		return nil
	}
	return r.Values[i]
}

// Lookup returns the value of col, matched case-insensitively.
func (r Row) Lookup(col string) (any, bool) {
	for i, c := range r.Columns {
		if strings.EqualFold(c, col) {
			return r.Value(i), true
		}
	}
	return nil, false
}

// String returns col formatted as text, or "" when missing or NULL.
func (r Row) String(col string) string {
	v, ok := r.Lookup(col)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ExecutionError reports a statement the platform rejected or failed to run.
type ExecutionError struct {
	Statement string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Statement, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Client executes statements over a database/sql connection.
type Client struct {
	db      *sql.DB
	timeout time.Duration
	logger  *zap.Logger
}

// Open connects with the given driver and checks the connection.
func Open(ctx context.Context, driver, dsn string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return New(db, timeout, logger), nil
}

// New wraps an open database handle. A zero timeout disables the
// per-statement deadline.
func New(db *sql.DB, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{db: db, timeout: timeout, logger: logger}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// Execute runs statement and collects every result row.
func (c *Client) Execute(ctx context.Context, statement string) ([]Row, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.query(ctx, statement)
	if err != nil {
		c.logger.Warn("statement failed",
			zap.String("statement", statement),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &ExecutionError{Statement: statement, Err: err}
	}

	c.logger.Debug("statement executed",
		zap.String("statement", statement),
		zap.Int("rows", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (c *Client) query(ctx context.Context, statement string) ([]Row, error) {
	rows, err := c.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, Row{Columns: cols, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
