// Package catalog lists the tags and schemas visible in the account.
package catalog

import (
	"context"
	"fmt"

	"github.com/pbaille/autoclass/internal/domain"
	"github.com/pbaille/autoclass/internal/warehouse"
)

const (
	ListTagsStatement    = "show tags in account"
	ListSchemasStatement = "show schemas in account"
)

// Lister enumerates catalog objects.
type Lister interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
	ListSchemas(ctx context.Context) ([]domain.Schema, error)
}

// Client reads the catalog through SHOW commands.
type Client struct {
	exec warehouse.Executor
}

// New creates a catalog Client on top of exec.
func New(exec warehouse.Executor) *Client {
	return &Client{exec: exec}
}

// ListTags returns every tag in the account.
func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := c.exec.Execute(ctx, ListTagsStatement)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tags := make([]domain.Tag, 0, len(rows))
	for i, row := range rows {
		var t domain.Tag
		if t.Name, err = required(row, "name"); err != nil {
			return nil, fmt.Errorf("tag row %d: %w", i, err)
		}
		if t.Database, err = required(row, "database_name"); err != nil {
			return nil, fmt.Errorf("tag row %d: %w", i, err)
		}
		if t.Schema, err = required(row, "schema_name"); err != nil {
			return nil, fmt.Errorf("tag row %d: %w", i, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// ListSchemas returns every schema in the account.
func (c *Client) ListSchemas(ctx context.Context) ([]domain.Schema, error) {
	rows, err := c.exec.Execute(ctx, ListSchemasStatement)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	schemas := make([]domain.Schema, 0, len(rows))
	for i, row := range rows {
		var s domain.Schema
		if s.Name, err = required(row, "name"); err != nil {
			return nil, fmt.Errorf("schema row %d: %w", i, err)
		}
		if s.Database, err = required(row, "database_name"); err != nil {
			return nil, fmt.Errorf("schema row %d: %w", i, err)
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

func required(row warehouse.Row, col string) (string, error) {
	v, ok := row.Lookup(col)
	if !ok || v == nil {
		return "", fmt.Errorf("missing column %s", col)
	}
	return row.String(col), nil
}
