package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm/logger"

	"github.com/auditnote/auditnote-api/internal/config"
)

func TestOptionsFor(t *testing.T) {
	dev := OptionsFor(&config.Config{Environment: "development"})
	assert.Equal(t, logger.Info, dev.LogLevel)
	assert.Equal(t, 10, dev.MaxOpenConns)

	prod := OptionsFor(&config.Config{Environment: "production"})
	assert.Equal(t, logger.Silent, prod.LogLevel)
}

func TestConnect(t *testing.T) {
	t.Run("pings within context", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing()
		mock.ExpectClose()

		db, err := Connect(context.Background(), postgres.New(postgres.Config{Conn: sqlDB}), OptionsFor(&config.Config{}))
		require.NoError(t, err)
		require.NoError(t, Close(db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		_, err = Connect(context.Background(), postgres.New(postgres.Config{Conn: sqlDB}), OptionsFor(&config.Config{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ping database")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
