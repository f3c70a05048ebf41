package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/flowexec/node/dbtx"
	"github.com/flowexec/node/flow"
)

func openTx(t *testing.T) (*dbtx.Context, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectBegin()
	c, err := dbtx.Begin(context.Background(), db)
	require.NoError(t, err)
	return c, mock
}

func TestSQLCheckpointStore_AddCheckpoint(t *testing.T) {
	tx, mock := openTx(t)
	id := flow.NewFlowID()
	s := &SQLCheckpointStore{}

	mock.ExpectExec("INSERT INTO flow_checkpoint").
		WithArgs(id.String(), []byte("payload")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.AddCheckpoint(context.Background(), tx, id, []byte("payload")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCheckpointStore_AddCheckpointDuplicateKey(t *testing.T) {
	tx, mock := openTx(t)
	id := flow.NewFlowID()
	s := &SQLCheckpointStore{}

	mock.ExpectExec("INSERT INTO flow_checkpoint").
		WithArgs(id.String(), []byte("payload")).
		WillReturnError(&gomysql.MySQLError{Number: mysqlDuplicateKeyErrno, Message: "Duplicate entry"})

	err := s.AddCheckpoint(context.Background(), tx, id, []byte("payload"))
	require.ErrorIs(t, err, ErrCheckpointExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCheckpointStore_UpdateCheckpointNotFound(t *testing.T) {
	tx, mock := openTx(t)
	id := flow.NewFlowID()
	s := &SQLCheckpointStore{}

	mock.ExpectExec("UPDATE flow_checkpoint").
		WithArgs([]byte("new"), id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateCheckpoint(context.Background(), tx, id, []byte("new"))
	require.ErrorIs(t, err, ErrCheckpointNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCheckpointStore_RemoveCheckpointIgnoresAbsence(t *testing.T) {
	tx, mock := openTx(t)
	id := flow.NewFlowID()
	s := &SQLCheckpointStore{}

	mock.ExpectExec("DELETE FROM flow_checkpoint").
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.RemoveCheckpoint(context.Background(), tx, id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCheckpointStore_CustomTableName(t *testing.T) {
	s := &SQLCheckpointStore{Table: "custom_checkpoints"}
	require.Equal(t, "custom_checkpoints", s.table())

	s2 := &SQLCheckpointStore{}
	require.Equal(t, "flow_checkpoint", s2.table())
}
