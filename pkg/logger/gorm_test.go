package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter("development", &buf, "debug")
	t.Cleanup(func() { Setup("development") })

	l := NewGormLogger(gormlogger.Warn, 50*time.Millisecond)
	stmt := func() (string, int64) { return `SELECT * FROM "sheet_rows"`, 3 }

	l.Trace(context.Background(), time.Now(), stmt, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), stmt, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "SQL error")
	assert.Contains(t, buf.String(), "component=table-store")
	buf.Reset()

	l.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)
	assert.Contains(t, buf.String(), "Slow SQL")
	buf.Reset()

	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), stmt, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
