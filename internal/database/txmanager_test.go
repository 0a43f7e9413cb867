package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err = NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			assert.True(t, InTx(ctx))
			assert.IsType(t, &sql.Tx{}, GetTx(ctx, db))
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RollbackOnError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err = NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			return assert.AnError
		})
		assert.Equal(t, assert.AnError, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NestedJoinsOuter", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err = txManager.WithTx(ctx, func(outer context.Context) error {
			return txManager.WithTx(outer, func(inner context.Context) error {
				assert.Same(t, GetTx(outer, db), GetTx(inner, db))
				return nil
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.False(t, InTx(context.Background()))
	assert.Equal(t, db, GetTx(context.Background(), db))
}
