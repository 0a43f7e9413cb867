package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConnect_Error(t *testing.T) {
	cfg := Config{
		Driver:             "invalid",
		ConnectionString:   "invalid",
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "sql: unknown driver")
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("postgres unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("postgres other error", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	})

	t.Run("mysql duplicate entry", func(t *testing.T) {
		assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(errors.New("boom")))
	})
}
