package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/hashicorp/go-hclog"
)

const (
	defaultTrackerQueueSize    = 1024
	defaultTrackerWorkersCount = 4
	defaultTrackerPollInterval = time.Second * 2
)

type ResultHandler func(txHash string, result *TransactionResult)

type ResultTrackerConfig struct {
	QueueSize    int
	WorkersCount int
	PollInterval time.Duration
	// MaxAttempts is the number of polls after which a transaction is dropped from the queue, zero means no limit
	MaxAttempts int
}

type trackedTx struct {
	txHash   string
	attempts int
}

// ResultTracker polls results of pending journal transactions and records them into the journal
type ResultTracker struct {
	service *IconService
	journal txstore.Store
	config  ResultTrackerConfig
	handler ResultHandler
	queue   *common.WorkQueue[trackedTx]
	logger  hclog.Logger

	wg        sync.WaitGroup
	pending   sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

func NewResultTracker(
	service *IconService, journal txstore.Store, config ResultTrackerConfig, handler ResultHandler, logger hclog.Logger,
) *ResultTracker {
	if config.QueueSize <= 0 {
		config.QueueSize = defaultTrackerQueueSize
	}

	if config.WorkersCount <= 0 {
		config.WorkersCount = defaultTrackerWorkersCount
	}

	if config.PollInterval <= 0 {
		config.PollInterval = defaultTrackerPollInterval
	}

	if handler == nil {
		handler = func(string, *TransactionResult) {}
	}

	return &ResultTracker{
		service: service,
		journal: journal,
		config:  config,
		handler: handler,
		queue:   common.NewWorkQueue[trackedTx](config.QueueSize),
		logger:  logger.Named("result_tracker"),
		done:    make(chan struct{}),
	}
}

// Start enqueues pending journal transactions and starts the workers
func (rt *ResultTracker) Start(ctx context.Context) error {
	records, err := rt.journal.GetPending(0)
	if err != nil {
		return err
	}

	for i := 0; i < rt.config.WorkersCount; i++ {
		rt.wg.Add(1)

		go rt.worker(ctx)
	}

	go func() {
		select {
		case <-ctx.Done():
			rt.shutdown()
		case <-rt.done:
		}
	}()

	for _, record := range records {
		rt.Track(record.TxHash)
	}

	rt.logger.Info("Result tracker started", "pending", len(records), "workers", rt.config.WorkersCount)

	return nil
}

// Track adds transaction to the queue. Returns false if the tracker is closed.
func (rt *ResultTracker) Track(txHash string) bool {
	rt.pending.Add(1)

	if !rt.queue.Push(trackedTx{txHash: txHash}) {
		rt.pending.Done()

		return false
	}

	return true
}

// Wait blocks until every tracked transaction is resolved or dropped, or until ctx is done
func (rt *ResultTracker) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		rt.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers. Transactions still queued are released from Wait.
func (rt *ResultTracker) Close() {
	rt.shutdown()
	rt.wg.Wait()
}

func (rt *ResultTracker) shutdown() {
	rt.closeOnce.Do(func() {
		close(rt.done)
	})

	rt.queue.Close()

	if dropped := rt.queue.Drain(); len(dropped) > 0 {
		rt.logger.Debug("Dropping queued transactions", "count", len(dropped))

		for range dropped {
			rt.pending.Done()
		}
	}
}

func (rt *ResultTracker) worker(ctx context.Context) {
	defer rt.wg.Done()

	for {
		item, ok := rt.queue.Pop()
		if !ok {
			return
		}

		if rt.process(ctx, item.txHash) {
			rt.pending.Done()

			continue
		}

		item.attempts++

		if rt.config.MaxAttempts > 0 && item.attempts >= rt.config.MaxAttempts {
			rt.logger.Warn("Giving up on transaction result", "hash", item.txHash, "attempts", item.attempts)
			rt.pending.Done()

			continue
		}

		go rt.requeue(ctx, item)
	}
}

func (rt *ResultTracker) requeue(ctx context.Context, item trackedTx) {
	timer := time.NewTimer(rt.config.PollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		rt.pending.Done()
	case <-rt.done:
		rt.pending.Done()
	case <-timer.C:
		if !rt.queue.Push(item) {
			rt.pending.Done()
		}
	}
}

// process returns true when the transaction no longer needs to be polled
func (rt *ResultTracker) process(ctx context.Context, txHash string) bool {
	result, err := rt.service.GetTransactionResult(txHash).Execute(ctx)
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			rt.logger.Error("Invalid transaction hash", "hash", txHash, "err", err)

			return true
		}

		if !IsResultNotReady(err) {
			rt.logger.Warn("Failed to get transaction result", "hash", txHash, "err", err)
		}

		return false
	}

	journalResult, err := result.JournalResult()
	if err != nil {
		rt.logger.Error("Invalid transaction result", "hash", txHash, "err", err)

		return false
	}

	err = rt.journal.MarkResult(txHash, journalResult)
	if err != nil && !errors.Is(err, txstore.ErrAlreadyFinal) && !errors.Is(err, txstore.ErrNotFound) {
		rt.logger.Error("Failed to record transaction result", "hash", txHash, "err", err)

		return false
	}

	rt.logger.Debug("Transaction result recorded", "hash", txHash, "status", journalResult.Status, "height", journalResult.BlockHeight)

	rt.handler(txHash, result)

	return true
}
