package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mercwork/internal/adapters/mq/queue"
	"github.com/okian/mercwork/internal/adapters/mq/worker"
	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/dedupe"
	"github.com/okian/mercwork/pkg/logger"
	"github.com/okian/mercwork/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize  = 10000
	defaultDedupeSize = 50000
	defaultSweepLimit = 500
)

// SweepReport summarizes one due-job sweep.
type SweepReport struct {
	BatchID  string `json:"batch_id"`
	Found    int    `json:"found"`
	Enqueued int    `json:"enqueued"`
	InFlight int    `json:"in_flight"`
	Dropped  int    `json:"dropped"`
}

// Service is the Coordinator plus the machinery that advances due jobs in
// the background once a sweep finds them.
type Service struct {
	*Coordinator

	mu sync.RWMutex

	store    repository.Store
	deduper  dedupe.Deduper
	queue    queue.Queue
	pool     *worker.Pool
	poolStop context.CancelFunc

	workerCount     int
	queueSize       int
	dedupeSize      int
	sweepLimit      int
	coordinatorOpts []CoordinatorOption

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) (*Service, error) {
	s := &Service{
		store:       store,
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		sweepLimit:  defaultSweepLimit,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	copts := append([]CoordinatorOption{WithCoordinatorLogger(s.logger)}, s.coordinatorOpts...)
	coord, err := NewCoordinator(store, copts...)
	if err != nil {
		return nil, err
	}
	s.Coordinator = coord
	return s, nil
}

// Start rebuilds the prestige ranking and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting resolution service...")

	if _, err := s.RebuildRanking(ctx); err != nil {
		return err
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.Coordinator,
		worker.WithLogger(s.logger),
		worker.WithDoneFunc(s.taskDone),
	)

	// Workers outlive the Start request.
	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.poolStop = cancel
	s.pool.Start(poolCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "resolution service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains the workers. The store stays open; its owner closes it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping resolution service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.poolStop()

	s.started = false
	s.logger.Info(ctx, "resolution service stopped")
}

// taskDone releases the in-flight guard once a worker finished with a job.
func (s *Service) taskDone(ctx context.Context, t queue.Task, err error) {
	s.deduper.Unrecord(ctx, t.JobID)
	metrics.UpdateQueueSize(s.queue.Len(ctx))
}

// SweepDue finds jobs whose timers elapsed and queues them for the worker
// pool. Jobs already queued or being advanced are skipped.
func (s *Service) SweepDue(ctx context.Context) (SweepReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return SweepReport{}, ErrNotStarted
	}

	now := s.clock()
	var ids []string
	if err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		ids, err = tx.ListDueJobs(ctx, now, s.sweepLimit)
		return err
	}); err != nil {
		return SweepReport{}, fmt.Errorf("sweep: %w", err)
	}

	report := SweepReport{BatchID: uuid.NewString(), Found: len(ids)}
	for _, id := range ids {
		if s.deduper.SeenAndRecord(ctx, id) {
			metrics.RecordSweepDuplicate()
			report.InFlight++
			continue
		}
		if !s.queue.Enqueue(ctx, queue.Task{JobID: id, BatchID: report.BatchID, EnqueuedAt: now}) {
			s.deduper.Unrecord(ctx, id)
			report.Dropped++
			continue
		}
		report.Enqueued++
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))

	s.logger.Info(ctx, "due jobs swept", logger.String("batch_id", report.BatchID),
		logger.Int("found", report.Found), logger.Int("enqueued", report.Enqueued),
		logger.Int("in_flight", report.InFlight), logger.Int("dropped", report.Dropped))
	return report, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"rankedCount": s.ranking.Count(ctx),
		"heldLocks":   s.locks.Len(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["inFlight"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
