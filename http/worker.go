package http

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const maxReportAttempts = 1 << 16

// Job is one unit of work, typically the handling of one connection.
type Job func(ctx context.Context) error

// WorkerPool runs jobs on a fixed number of goroutines. Failed jobs are
// mapped to a report of type R and parked in a ring buffer until the
// submitter picks them up on its next Execute.
type WorkerPool[R any] struct {
	size    int
	jobs    chan Job
	reports *RingBuffer[R]
	mapper  func(error) R

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewWorkerPool[R any](size, queueSize int, mapper func(error) R) *WorkerPool[R] {
	if size <= 0 {
		panic("worker pool: size must be positive")
	}
	if queueSize < 0 {
		queueSize = 0
	}

	wp := &WorkerPool[R]{
		size:    size,
		jobs:    make(chan Job, queueSize),
		reports: NewRingBuffer[R](DefaultReportBufferSize),
		mapper:  mapper,
	}

	wp.wg.Add(size)
	for id := range size {
		go wp.work(id)
	}

	return wp
}

func (wp *WorkerPool[R]) Size() int {
	return wp.size
}

// Execute queues job without blocking and then polls for a pending error
// report. A nil error means the returned report is valid. ErrQueueFull and
// ErrPoolClosed mean the job was not queued.
func (wp *WorkerPool[R]) Execute(job Job) (R, error) {
	var zero R

	wp.mu.RLock()
	if wp.closed {
		wp.mu.RUnlock()
		return zero, ErrPoolClosed
	}
	select {
	case wp.jobs <- job:
	default:
		wp.mu.RUnlock()
		return zero, ErrQueueFull
	}
	wp.mu.RUnlock()

	return wp.Poll()
}

// Poll returns the oldest undelivered report, or ErrNoReport.
func (wp *WorkerPool[R]) Poll() (R, error) {
	report, err := wp.reports.Dequeue()
	if err != nil {
		return report, ErrNoReport
	}
	return report, nil
}

// Close stops accepting jobs and waits for the workers to finish the jobs
// already queued.
func (wp *WorkerPool[R]) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	wp.wg.Wait()
}

func (wp *WorkerPool[R]) work(id int) {
	defer wp.wg.Done()

	workerAttr := attribute.Int("worker.id", id)

	for job := range wp.jobs {
		logger.Debug("worker got a job; executing", "worker", id)

		start := time.Now()
		err := wp.run(id, job)
		elapsed := time.Since(start)

		jobDuration.Record(context.Background(), float64(elapsed.Microseconds())/1000,
			metric.WithAttributes(workerAttr, attribute.Bool("job.failed", err != nil)))

		if err == nil {
			logger.Debug("worker finished job successfully", "worker", id, "elapsed_ms", elapsed.Milliseconds())
			continue
		}

		logger.Warn("worker encountered an error executing job", "worker", id, "elapsed_ms", elapsed.Milliseconds(), "error", err)
		wp.report(wp.mapper(err))
	}

	logger.Debug("worker disconnected; shutting down", "worker", id)
}

func (wp *WorkerPool[R]) run(id int, job Job) (err error) {
	ctx, span := tracer.Start(context.Background(), "werver.job",
		trace.WithAttributes(attribute.Int("worker.id", id)))
	defer span.End()

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("worker pool: job panicked: %v", recovered)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	return job(ctx)
}

// report makes room by discarding the oldest report when the buffer is
// full. Other workers may claim the freed slot first, so the pair is retried.
// A buffer that stays full and empty at the same time is broken.
func (wp *WorkerPool[R]) report(r R) {
	for attempt := 0; ; attempt++ {
		if err := wp.reports.Enqueue(r); err == nil {
			return
		}

		if _, err := wp.reports.Dequeue(); err != nil && attempt >= maxReportAttempts {
			panic(fmt.Sprintf("worker pool: error report could not be delivered after %d attempts", attempt+1))
		}
	}
}

var (
	ErrFull  = errors.New("ring buffer is full")
	ErrEmpty = errors.New("ring buffer is empty")
)

// RingBuffer is a bounded lock-free multi-producer multi-consumer queue.
type RingBuffer[T any] struct {
	buffer []slot[T]
	mask   uint64
	enqPos uint64
	deqPos uint64
}

type slot[T any] struct {
	sequence uint64
	value    T
}

// NewRingBuffer rounds capacity up to the next power of 2.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}

	buf := make([]slot[T], size)
	for i := range buf {
		buf[i].sequence = uint64(i)
	}

	return &RingBuffer[T]{
		buffer: buf,
		mask:   size - 1,
	}
}

func (q *RingBuffer[T]) Cap() int {
	return len(q.buffer)
}

// Enqueue adds an item to the ring buffer
func (q *RingBuffer[T]) Enqueue(val T) error {
	for {
		pos := atomic.LoadUint64(&q.enqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.enqPos, pos, pos+1) {
				slot.value = val
				atomic.StoreUint64(&slot.sequence, pos+1)
				return nil
			}
		} else if delta < 0 {
			return ErrFull
		} else {
			runtime.Gosched()
		}
	}
}

// Dequeue removes and returns the oldest item
func (q *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	for {
		pos := atomic.LoadUint64(&q.deqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos+1)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.deqPos, pos, pos+1) {
				val := slot.value
				slot.value = zero
				atomic.StoreUint64(&slot.sequence, pos+q.mask+1)
				return val, nil
			}
		} else if delta < 0 {
			return zero, ErrEmpty
		} else {
			runtime.Gosched()
		}
	}
}
