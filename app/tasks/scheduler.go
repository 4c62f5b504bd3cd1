package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tendersza/tender-sync/app/cfg"
	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/ocds"
	"github.com/tendersza/tender-sync/app/source"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type Scheduler struct {
	sourceCache *source.Cache
	tenderRepo  database.TenderRepository
	sourceRepo  database.SourceRepository
	userAgent   string
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(sourceCache *source.Cache, tenderRepo database.TenderRepository,
	sourceRepo database.SourceRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		sourceCache: sourceCache,
		tenderRepo:  tenderRepo,
		sourceRepo:  sourceRepo,
		userAgent:   cfg.UserAgent,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels the scheduler context and waits for the workers. The task
// queue is deliberately never closed: detached retry goroutines may still
// attempt an enqueue after shutdown, and a send on the open buffered channel
// is a harmless drop while a send on a closed one would panic.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	sourceConfigs := s.sourceCache.GetConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		registerTask := NewRegisterSourceTask(sourceConfig.Name, sourceConfig, s.sourceRepo)
		if err := s.EnqueueTask(registerTask); err != nil {
			slog.Warn("Failed to enqueue RegisterSourceTask", "source", sourceConfig.Name, "error", err)
			continue
		}

		if !sourceConfig.Settings.Enabled {
			slog.Debug("Source disabled, skipping SyncSourceTask", "source", sourceConfig.Name)
			continue
		}

		syncTask := NewSyncSourceTask(sourceConfig.Name, sourceConfig, s.tenderRepo, s.sourceRepo, s.userAgent)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	sourceConfigs := s.sourceCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	for _, sourceConfig := range sourceConfigs {
		src, err := s.sourceRepo.GetSource(s.ctx, sourceConfig.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", sourceConfig.Name, "error", err)
			continue
		}
		if src == nil {
			slog.Warn("Source not found in database, skipping", "source", sourceConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if src.NextFetchAt != nil && src.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name, "next_fetch_at", src.NextFetchAt)
			continue
		}

		syncTask := NewSyncSourceTask(sourceConfig.Name, sourceConfig, s.tenderRepo, s.sourceRepo, s.userAgent)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

// isTransient reports whether an error is worth retrying. Only feed
// availability failures qualify; validation-shaped failures will not resolve
// by retrying.
func isTransient(err error) bool {
	var feedErr *ocds.FeedUnavailableError
	return errors.As(err, &feedErr)
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !isTransient(err) {
		return
	}

	if task.CanRetry() {
		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		go func() {
			time.Sleep(retryDelay)
			select {
			case <-s.ctx.Done():
				slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
				return
			default:
				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}
		}()
	} else {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
	}
}
