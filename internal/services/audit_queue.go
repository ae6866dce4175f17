package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/resource-booking-api/internal/interfaces"
	"github.com/onerilhan/resource-booking-api/internal/metrics"
	"github.com/onerilhan/resource-booking-api/internal/models"
)

var (
	ErrEmptyMessage = errors.New("booking log message is empty")
	ErrQueueFull    = errors.New("booking log queue is full")
	ErrQueueStopped = errors.New("booking log queue is stopped")
)

// AuditFailure is an entry that never reached booking_log
type AuditFailure struct {
	Entry models.LogEntry
	Err   error
}

// AuditQueue writes booking log entries in the background. Submit never
// blocks and never fails the caller; every lost entry surfaces as an
// AuditFailure on the failure channel.
type AuditQueue struct {
	jobChan      chan models.LogEntry
	failures     chan AuditFailure
	workers      int
	bufferSize   int
	writeTimeout time.Duration
	repo         interfaces.AuditRepositoryInterface
	report       func(AuditFailure)

	mu             sync.RWMutex
	started        bool
	stopped        bool
	failuresClosed bool

	wg       sync.WaitGroup
	reporter sync.WaitGroup
}

var _ interfaces.AuditLogger = (*AuditQueue)(nil)

// NewAuditQueue creates a queue; call Start before submitting
func NewAuditQueue(workers int, repo interfaces.AuditRepositoryInterface, bufferSize int) *AuditQueue {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &AuditQueue{
		jobChan:      make(chan models.LogEntry, bufferSize),
		failures:     make(chan AuditFailure, bufferSize),
		workers:      workers,
		bufferSize:   bufferSize,
		writeTimeout: 5 * time.Second,
		repo:         repo,
		report:       logFailure,
	}
}

// SetFailureReporter replaces the default reporter. Must be called before Start.
func (q *AuditQueue) SetFailureReporter(fn func(AuditFailure)) {
	if fn != nil {
		q.report = fn
	}
}

// Start launches the workers and the failure reporter
func (q *AuditQueue) Start() {
	q.mu.Lock()
	if q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	log.Info().
		Int("workers", q.workers).
		Int("buffer_size", q.bufferSize).
		Msg("booking log queue started")

	q.reporter.Add(1)
	go q.reportLoop()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop rejects new entries, drains the queued ones and waits for the workers
func (q *AuditQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobChan)
	started := q.started
	q.mu.Unlock()

	if started {
		q.wg.Wait()
		q.closeFailures()
		q.reporter.Wait()
	} else {
		q.closeFailures()
		for f := range q.failures {
			q.report(f)
		}
		// never started: whatever was queued is lost
		for entry := range q.jobChan {
			q.fail(AuditFailure{Entry: entry, Err: ErrQueueStopped}, metrics.AuditDropped)
		}
	}

	metrics.SetAuditQueueDepth(0)
	log.Info().Msg("booking log queue stopped")
}

func (q *AuditQueue) closeFailures() {
	q.mu.Lock()
	q.failuresClosed = true
	close(q.failures)
	q.mu.Unlock()
}

// Submit enqueues an entry without waiting for the write
func (q *AuditQueue) Submit(entry models.LogEntry) {
	if entry.Message == "" {
		q.fail(AuditFailure{Entry: entry, Err: ErrEmptyMessage}, metrics.AuditDropped)
		return
	}

	var err error
	q.mu.RLock()
	if q.stopped {
		err = ErrQueueStopped
	} else {
		select {
		case q.jobChan <- entry:
			metrics.SetAuditQueueDepth(len(q.jobChan))
		default:
			err = ErrQueueFull
		}
	}
	q.mu.RUnlock()

	if err != nil {
		q.fail(AuditFailure{Entry: entry, Err: err}, metrics.AuditDropped)
	}
}

func (q *AuditQueue) worker(id int) {
	defer q.wg.Done()

	log.Debug().Int("worker_id", id).Msg("booking log worker started")

	for entry := range q.jobChan {
		metrics.SetAuditQueueDepth(len(q.jobChan))

		if err := q.write(entry); err != nil {
			q.fail(AuditFailure{Entry: entry, Err: err}, metrics.AuditFailed)
			continue
		}
		metrics.RecordAuditWrite(metrics.AuditWritten)
	}

	log.Debug().Int("worker_id", id).Msg("booking log worker stopped")
}

func (q *AuditQueue) write(entry models.LogEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("booking log write panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.writeTimeout)
	defer cancel()

	return q.repo.Create(ctx, &entry)
}

// fail hands a failure to the reporter goroutine, or reports it inline when
// the reporter is gone or saturated
func (q *AuditQueue) fail(f AuditFailure, outcome string) {
	metrics.RecordAuditWrite(outcome)

	q.mu.RLock()
	if !q.failuresClosed {
		select {
		case q.failures <- f:
			q.mu.RUnlock()
			return
		default:
		}
	}
	q.mu.RUnlock()

	q.report(f)
}

func (q *AuditQueue) reportLoop() {
	defer q.reporter.Done()
	for f := range q.failures {
		q.report(f)
	}
}

func logFailure(f AuditFailure) {
	event := log.Error().Err(f.Err).Str("message", f.Entry.Message)
	if f.Entry.EntityID != nil {
		event = event.Int("entity_id", *f.Entry.EntityID)
	}
	event.Msg("booking log entry lost")
}
