package storage

import (
	"context"
	"database/sql"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/flowexec/node/dbtx"
	"github.com/flowexec/node/flow"
)

// mysqlDuplicateKeyErrno is the go-sql-driver/mysql error number for a
// duplicate-key violation (ER_DUP_ENTRY), used to classify AddCheckpoint's
// unique-key INSERT failure as ErrCheckpointExists rather than an opaque
// storage error.
const mysqlDuplicateKeyErrno = 1062

// SQLCheckpointStore implements CheckpointStorage against database/sql plus
// go-sql-driver/mysql, participating in the ambient *sql.Tx bound to the
// fiber's dbtx.Context. Every statement runs against tx, never against the
// pool directly, so callers get the "transactionally co-located" guarantee
// spec.md §2 requires.
type SQLCheckpointStore struct {
	// Table is the checkpoint table name; defaults to "flow_checkpoint" if
	// empty.
	Table string
}

func (s *SQLCheckpointStore) table() string {
	if s.Table == "" {
		return "flow_checkpoint"
	}
	return s.Table
}

// AddCheckpoint inserts a new row for id within tx. A duplicate-key error
// is classified as ErrCheckpointExists; every other driver error is
// returned unchanged for the (out-of-scope) state machine layer to
// classify.
func (s *SQLCheckpointStore) AddCheckpoint(ctx context.Context, tx *dbtx.Context, id flow.FlowID, bytes []byte) error {
	_, err := tx.Tx().ExecContext(ctx,
		`INSERT INTO `+s.table()+` (flow_id, bytes) VALUES (?, ?)`,
		id.String(), bytes)
	if err == nil {
		return nil
	}
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateKeyErrno {
		return ErrCheckpointExists
	}
	return err
}

// UpdateCheckpoint replaces the bytes stored for id within tx. Returns
// ErrCheckpointNotFound if no row was affected.
func (s *SQLCheckpointStore) UpdateCheckpoint(ctx context.Context, tx *dbtx.Context, id flow.FlowID, bytes []byte) error {
	res, err := tx.Tx().ExecContext(ctx,
		`UPDATE `+s.table()+` SET bytes = ? WHERE flow_id = ?`,
		bytes, id.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// RemoveCheckpoint deletes the row for id within tx, if present. Deleting
// an absent row is not an error — RemoveCheckpoint is itself called as
// part of normal flow completion, where the caller does not need to
// distinguish "already removed" from "removed now".
func (s *SQLCheckpointStore) RemoveCheckpoint(ctx context.Context, tx *dbtx.Context, id flow.FlowID) error {
	_, err := tx.Tx().ExecContext(ctx,
		`DELETE FROM `+s.table()+` WHERE flow_id = ?`,
		id.String())
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCheckpointNotFound
	}
	return nil
}
