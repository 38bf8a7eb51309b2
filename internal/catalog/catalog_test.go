package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbaille/autoclass/internal/domain"
	"github.com/pbaille/autoclass/internal/warehouse"
)

func setupMockCatalog(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Client) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	return db, mock, New(warehouse.New(db, time.Minute, zap.NewNop()))
}

func TestListTags(t *testing.T) {
	db, mock, client := setupMockCatalog(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"created_on", "name", "database_name", "schema_name", "owner"}).
		AddRow("2024-01-01", "PII", "GOV", "TAGS", "SYSADMIN").
		AddRow("2024-01-02", "SENSITIVITY", "GOV", "TAGS", "SYSADMIN")
	mock.ExpectQuery(ListTagsStatement).WillReturnRows(rows)

	tags, err := client.ListTags(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{
		{Database: "GOV", Schema: "TAGS", Name: "PII"},
		{Database: "GOV", Schema: "TAGS", Name: "SENSITIVITY"},
	}, tags)
	assert.Equal(t, "GOV.TAGS.PII", tags[0].QualifiedName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTags_MissingColumn(t *testing.T) {
	db, mock, client := setupMockCatalog(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name", "database_name"}).AddRow("PII", "GOV")
	mock.ExpectQuery(ListTagsStatement).WillReturnRows(rows)

	_, err := client.ListTags(context.Background())
	assert.ErrorContains(t, err, "missing column schema_name")
}

func TestListSchemas(t *testing.T) {
	db, mock, client := setupMockCatalog(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"created_on", "name", "is_default", "database_name"}).
		AddRow("2024-01-01", "PUBLIC", "Y", "SALES").
		AddRow("2024-01-01", "PROFILES", "N", "GOV")
	mock.ExpectQuery(ListSchemasStatement).WillReturnRows(rows)

	schemas, err := client.ListSchemas(context.Background())

	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "SALES.PUBLIC", schemas[0].QualifiedName())
	assert.Equal(t, "GOV.PROFILES", schemas[1].QualifiedName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSchemas_NullName(t *testing.T) {
	db, mock, client := setupMockCatalog(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name", "database_name"}).AddRow(nil, "GOV")
	mock.ExpectQuery(ListSchemasStatement).WillReturnRows(rows)

	_, err := client.ListSchemas(context.Background())
	assert.ErrorContains(t, err, "schema row 0: missing column name")
}

func TestListSchemas_ExecutionFailure(t *testing.T) {
	db, mock, client := setupMockCatalog(t)
	defer db.Close()

	mock.ExpectQuery(ListSchemasStatement).WillReturnError(errors.New("session expired"))

	_, err := client.ListSchemas(context.Background())

	var execErr *warehouse.ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.ErrorContains(t, err, "list schemas")
}
