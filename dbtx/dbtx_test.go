package dbtx

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestContext_CommitSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	c, err := Begin(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, c.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContext_CommitJoinsCloserError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	c, err := Begin(context.Background(), db)
	require.NoError(t, err)

	closerErr := errors.New("closer failed")
	c.AddCloser(func() error { return closerErr })

	err = c.Commit()
	require.Error(t, err)
	require.ErrorIs(t, err, closerErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContext_CommitPreservesOriginalErrorAlongsideCloserError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	commitErr := errors.New("commit failed")
	closerErr := errors.New("closer also failed")

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(commitErr)

	c, err := Begin(context.Background(), db)
	require.NoError(t, err)
	c.AddCloser(func() error { return closerErr })

	err = c.Commit()
	require.Error(t, err)
	require.ErrorIs(t, err, commitErr, "a closer failure must never mask the original commit failure")
	require.ErrorIs(t, err, closerErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContext_RollbackSwallowsAlreadyDone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	c, err := Begin(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, c.Commit())

	// The underlying *sql.Tx is already closed; Rollback on an already-done
	// transaction must be swallowed rather than surfaced, matching
	// RollbackTransaction's idempotent-against-absence contract.
	require.NoError(t, c.Rollback())
}
