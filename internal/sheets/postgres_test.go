package sheets

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewPostgresStore(db), mock
}

func headerRows(name, header string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"name", "header"}).AddRow(name, header)
}

func TestPostgresStoreReadAll(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT \* FROM "sheet_tables" WHERE name = \$1`).
		WillReturnRows(headerRows("Notes", `["company","frame_id"]`))
	mock.ExpectQuery(`SELECT \* FROM "sheet_rows" WHERE table_name = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "table_name", "cells"}).
			AddRow(1, "Notes", `["Acme","1"]`).
			AddRow(2, "Notes", `["Beta"]`))

	rows, err := store.ReadAll(context.Background(), "Notes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0]["company"])
	assert.Equal(t, "1", rows[0]["frame_id"])
	assert.Equal(t, "Beta", rows[1]["company"])
	assert.Equal(t, "", rows[1]["frame_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreMissingTable(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT \* FROM "sheet_tables"`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "header"}))

	_, err := store.ReadAll(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendRow(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT \* FROM "sheet_tables"`).
		WillReturnRows(headerRows("Participants", `["company"]`))
	mock.ExpectQuery(`INSERT INTO "sheet_rows"`).
		WithArgs("Participants", `["Acme"]`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	require.NoError(t, store.AppendRow(context.Background(), "Participants", []string{"Acme"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureTableKeepsMatchingHeader(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT \* FROM "sheet_tables"`).
		WillReturnRows(headerRows("Auditors", `["Email","Password"]`))

	require.NoError(t, store.EnsureTable(context.Background(), "Auditors", []string{"email", "password"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
