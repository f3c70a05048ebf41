// Command flownoded is the thin process entrypoint wiring together the
// scheduler, executor, and their collaborators into a Node, then blocking
// until SIGINT or SIGTERM cancels its context. It drives no fibers itself.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"

	flowexecnode "github.com/flowexec/node"
	nodelog "github.com/flowexec/node/log"
	"github.com/flowexec/node/messaging"
	"github.com/flowexec/node/storage"
)

func main() {
	dsn := flag.String("dsn", "", "MySQL data source name for the checkpoint store; empty uses an in-memory store")
	maxConcurrentFlows := flag.Int64("max-concurrent-flows", 256, "maximum number of fibers advancing concurrently")
	flag.Parse()

	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	logger := nodelog.NewZerolog(zl, logiface.LevelInformational)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *dsn, *maxConcurrentFlows, logger); err != nil {
		logger.WithError(err).Error("flownoded exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn string, maxConcurrentFlows int64, logger nodelog.Logger) error {
	var store = storage.CheckpointStorage(storage.NewMemoryCheckpointStore())
	var db *sql.DB
	if dsn != "" {
		var err error
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		store = &storage.SQLCheckpointStore{}
	}

	n := flowexecnode.NewNode(flowexecnode.Config{
		DB:                 db,
		Storage:            store,
		Messaging:          messaging.NewLoopbackMessaging(nil),
		MaxConcurrentFlows: maxConcurrentFlows,
		Log:                logger,
	})
	_ = n

	logger.Info("flownoded started")
	<-ctx.Done()
	logger.Info("flownoded shutting down")
	return nil
}
