package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/auditnote/auditnote-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs queued jobs such as notification emails on a fixed pool, and
// named periodic jobs such as session eviction.
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan namedJob
	maxConcurrent int

	statsMu   sync.RWMutex
	stats     WorkerStats
	schedules map[string]*ScheduleStatus
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every
// finished job; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int              `json:"active_jobs"`
	CompletedJobs int64            `json:"completed_jobs"`
	FailedJobs    int64            `json:"failed_jobs"`
	QueueLength   int              `json:"queue_length"`
	MaxConcurrent int              `json:"max_concurrent"`
	Schedules     []ScheduleStatus `json:"schedules"`
}

// ScheduleStatus reports the last run of a periodic job
type ScheduleStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	LastRun   time.Time     `json:"last_run"`
	LastError string        `json:"last_error,omitempty"`
	Runs      int64         `json:"runs"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan namedJob, 100),
		maxConcurrent: numWorkers,
		schedules:     make(map[string]*ScheduleStatus),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to the pool queue. When the queue is full the job runs
// on the caller's goroutine.
func (w *Worker) Enqueue(name string, job Job) {
	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously", "job", name)
		w.run(name, job)
	}
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case j, ok := <-w.queue:
			if !ok {
				return
			}
			logger.Debug("[Worker] Picked job", "worker", workerID, "job", j.name)
			w.run(j.name, j.run)
		}
	}
}

// run executes one job with stats tracking and panic recovery
func (w *Worker) run(name string, job Job) (err error) {
	w.trackJobStart()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Worker] Job panic", "job", name, "panic", r)
			err = fmt.Errorf("panic: %v", r)
			w.trackJobFailure()
		}
		w.trackJobEnd()
	}()

	if err = job(w.ctx); err != nil {
		logger.Error("[Worker] Job error", "job", name, "error", err)
		w.trackJobFailure()
		return err
	}
	logger.Debug("[Worker] Job completed", "job", name, "duration", time.Since(start))
	return nil
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.statsMu.Lock()
	w.schedules[name] = &ScheduleStatus{Name: name, Interval: interval}
	w.statsMu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runScheduled(name, job)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduled(name, job)
			}
		}
	}()
}

func (w *Worker) runScheduled(name string, job Job) {
	err := w.run(name, job)

	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	s := w.schedules[name]
	s.LastRun = time.Now()
	s.Runs++
	s.LastError = ""
	if err != nil {
		s.LastError = err.Error()
	}
}

// Shutdown stops the scheduler and waits for running jobs. Queued jobs that
// have not started are dropped.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	stats.Schedules = make([]ScheduleStatus, 0, len(w.schedules))
	for _, s := range w.schedules {
		stats.Schedules = append(stats.Schedules, *s)
	}
	sort.Slice(stats.Schedules, func(i, j int) bool {
		return stats.Schedules[i].Name < stats.Schedules[j].Name
	})
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
