// Package flowexecnode wires together the scheduler, executor, and their
// collaborators into one running process, the Go rendition of spec.md §2's
// eight-layer system overview.
package flowexecnode

import (
	"context"
	"database/sql"

	"github.com/flowexec/node/clock"
	"github.com/flowexec/node/executor"
	"github.com/flowexec/node/fiber"
	"github.com/flowexec/node/log"
	"github.com/flowexec/node/messaging"
	"github.com/flowexec/node/metrics"
	"github.com/flowexec/node/scheduler"
	"github.com/flowexec/node/storage"
)

// Node owns one running instance of the flow execution engine: its
// scheduler (State Machine Manager / fiber registry), its Action Executor,
// and the durable/transport collaborators both depend on.
type Node struct {
	Scheduler *scheduler.Manager
	Executor  *executor.Executor
	Log       log.Logger
}

// Config supplies every collaborator a Node needs. DB may be nil, in which
// case Storage must not be a *storage.SQLCheckpointStore.
type Config struct {
	DB                 *sql.DB
	Storage            storage.CheckpointStorage
	Messaging          messaging.Messaging
	Clock              clock.Clock
	MaxConcurrentFlows int64
	MetricsSink        metrics.Sink
	Ledger             executor.Ledger
	SoftLocks          executor.SoftLocks
	Retry              executor.RetryHandler
	Log                log.Logger
}

// NewNode constructs a Node from cfg, applying the same defaulting rules
// (Discard logger, system clock) the teacher's components apply at their
// own construction boundaries rather than forcing every caller to supply
// them.
func NewNode(cfg Config) *Node {
	c := cfg.Clock
	if c == nil {
		c = clock.System{}
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Discard{}
	}
	maxConcurrent := cfg.MaxConcurrentFlows
	if maxConcurrent <= 0 {
		maxConcurrent = 256
	}

	sched := scheduler.NewManager(c, maxConcurrent)
	checkpointMetrics := metrics.NewCheckpointMetrics(c, cfg.MetricsSink)
	exec := executor.New(cfg.DB, cfg.Storage, cfg.Messaging, sched, checkpointMetrics, cfg.Ledger, cfg.SoftLocks, cfg.Retry, c, logger)

	return &Node{Scheduler: sched, Executor: exec, Log: logger}
}

// Drive calls onEvent for f repeatedly until onEvent returns an error, f is
// terminated, or ctx is cancelled. Draining f's mailbox and calling
// n.Executor.Execute for the actions the (out-of-scope) state machine maps
// each event to is left to onEvent. Each onEvent call holds one worker-pool
// slot from the scheduler, acquired before the call and released after it,
// bounding total concurrent fibers per spec.md §5.
func (n *Node) Drive(ctx context.Context, f *fiber.Fiber, onEvent func(context.Context, *fiber.Fiber) error) error {
	done := ctx.Done()
	for {
		if err := n.Scheduler.Acquire(ctx); err != nil {
			return err
		}
		err := onEvent(ctx, f)
		n.Scheduler.Release()
		if err != nil {
			return err
		}
		if f.State() == fiber.Terminated {
			return nil
		}
		select {
		case <-done:
			return ctx.Err()
		default:
		}
	}
}
