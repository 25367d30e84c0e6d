// Package poller runs repeating refresh jobs for mounted views. Each job is
// bound to a context; when the view's context ends the job is removed.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/metrics"
)

// Job is one refresh. A returned error is logged and the job runs again on
// the next tick.
type Job func(ctx context.Context) error

// Handle identifies a scheduled job.
type Handle struct {
	id cron.EntryID
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	cancels map[cron.EntryID]context.CancelFunc
}

// New starts a scheduler. Overlapping ticks of the same job are skipped and
// panics inside a job are recovered.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Start()
	return &Scheduler{
		cron:    c,
		logger:  logger,
		cancels: make(map[cron.EntryID]context.CancelFunc),
	}
}

// Start runs job every interval until ctx ends or Stop is called. Intervals
// below one second are rounded up to one second.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration, name string, job Job) Handle {
	jobCtx, cancel := context.WithCancel(ctx)
	log := s.logger.With(zap.String("job", name))

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		if jobCtx.Err() != nil {
			return
		}
		metrics.RecordPollTick()
		if err := job(jobCtx); err != nil {
			log.Warn("poll failed", zap.Error(err))
		}
	}))
	h := Handle{id: id}

	s.mu.Lock()
	s.cancels[id] = cancel
	s.mu.Unlock()

	go func() {
		<-jobCtx.Done()
		s.Stop(h)
	}()
	log.Debug("polling started", zap.Duration("interval", interval))
	return h
}

// Stop cancels the job. Stopping a handle twice is a no-op.
func (s *Scheduler) Stop(h Handle) {
	s.mu.Lock()
	cancel, ok := s.cancels[h.id]
	delete(s.cancels, h.id)
	s.mu.Unlock()
	if !ok {
		return
	}
	cancel()
	s.cron.Remove(h.id)
	s.logger.Debug("polling stopped", zap.Int("entry", int(h.id)))
}

// Active returns the number of scheduled jobs.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// Close stops every job and waits for running ones to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

// Info logs cron's routine messages at debug level.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

// Error logs cron failures, including recovered panics.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
