package http

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freekieb7/werver/test"
)

func pollReport[R any](t *testing.T, wp *WorkerPool[R]) R {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		report, err := wp.Poll()
		if err == nil {
			return report
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("no report delivered")
	var zero R
	return zero
}

func TestWorkerPoolLimitsConcurrency(t *testing.T) {
	const size = 2

	wp := NewWorkerPool(size, 8, func(err error) string { return err.Error() })
	defer wp.Close()

	started := make(chan int, size+1)
	release := make(chan struct{})

	for i := range size + 1 {
		_, err := wp.Execute(func(ctx context.Context) error {
			started <- i
			<-release
			return nil
		})
		test.AssertErrorIs(t, err, ErrNoReport)
	}

	for range size {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("expected a job to start")
		}
	}

	select {
	case i := <-started:
		t.Fatalf("job %d started while every worker was busy", i)
	case <-time.After(50 * time.Millisecond):
	}

	release <- struct{}{}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the queued job to start once a worker was free")
	}

	close(release)
}

func TestWorkerPoolReportsMappedErrors(t *testing.T) {
	wp := NewWorkerPool(1, 4, func(err error) ErrorPage { return DefaultErrorHandler(err) })
	defer wp.Close()

	_, err := wp.Execute(func(ctx context.Context) error {
		return RouteHandlerError(errors.New("boom"))
	})
	if err != nil && !errors.Is(err, ErrNoReport) {
		t.Fatal(err)
	}

	report := pollReport(t, wp)
	test.AssertEqual(t, ErrorPage{Template: "error.html", Message: "boom"}, report)

	_, err = wp.Poll()
	test.AssertErrorIs(t, err, ErrNoReport)
}

func TestWorkerPoolSuccessIsNotReported(t *testing.T) {
	wp := NewWorkerPool(1, 4, func(err error) string { return err.Error() })

	var ran atomic.Bool
	wp.Execute(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	wp.Close()

	test.AssertEqual(t, true, ran.Load())
	_, err := wp.Poll()
	test.AssertErrorIs(t, err, ErrNoReport)
}

func TestWorkerPoolExecuteReturnsPendingReport(t *testing.T) {
	wp := NewWorkerPool(1, 4, func(err error) string { return err.Error() })
	defer wp.Close()

	job := func(ctx context.Context) error { return errors.New("first") }

	deadline := time.Now().Add(2 * time.Second)
	for {
		report, err := wp.Execute(job)
		job = func(ctx context.Context) error { return nil }
		if err == nil {
			test.AssertEqual(t, "first", report)
			return
		}
		test.AssertErrorIs(t, err, ErrNoReport)
		if time.Now().After(deadline) {
			t.Fatal("report never surfaced through Execute")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkerPoolRecoversPanics(t *testing.T) {
	wp := NewWorkerPool(1, 4, func(err error) string { return err.Error() })
	defer wp.Close()

	wp.Execute(func(ctx context.Context) error { panic("kaboom") })

	report := pollReport(t, wp)
	if !strings.Contains(report, "kaboom") {
		t.Errorf("expected panic value in report, got %q", report)
	}

	var ran atomic.Bool
	wp.Execute(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	wp.Close()
	test.AssertEqual(t, true, ran.Load())
}

func TestWorkerPoolRejectsWhenQueueFull(t *testing.T) {
	wp := NewWorkerPool(1, 1, func(err error) string { return err.Error() })

	started := make(chan struct{})
	release := make(chan struct{})
	wp.Execute(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	_, err := wp.Execute(func(ctx context.Context) error { return nil })
	test.AssertErrorIs(t, err, ErrNoReport)

	_, err = wp.Execute(func(ctx context.Context) error { return nil })
	test.AssertErrorIs(t, err, ErrQueueFull)

	close(release)
	wp.Close()
}

func TestWorkerPoolCloseDrainsQueuedJobs(t *testing.T) {
	wp := NewWorkerPool(2, 16, func(err error) string { return err.Error() })

	var done atomic.Int32
	for range 10 {
		wp.Execute(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			done.Add(1)
			return nil
		})
	}
	wp.Close()
	wp.Close()

	test.AssertEqual(t, int32(10), done.Load())

	_, err := wp.Execute(func(ctx context.Context) error { return nil })
	test.AssertErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPoolPanicsOnInvalidSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a pool of size 0")
		}
	}()
	NewWorkerPool(0, 1, func(err error) string { return "" })
}

func TestWorkerPoolReportDropsOldest(t *testing.T) {
	wp := NewWorkerPool(1, 1, func(err error) int { return 0 })
	defer wp.Close()

	capacity := wp.reports.Cap()
	for i := range capacity + 1 {
		wp.report(i)
	}

	first, err := wp.Poll()
	test.AssertNoError(t, err)
	test.AssertEqual(t, 1, first)
}

func TestWorkerPoolReportUnderContention(t *testing.T) {
	wp := NewWorkerPool(1, 1, func(err error) int { return 0 })
	defer wp.Close()

	const producers = 16
	const reports = 2000

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		go func() {
			defer wg.Done()
			for i := range reports {
				wp.report(p*reports + i)
			}
		}()
	}
	wg.Wait()

	delivered := 0
	for {
		if _, err := wp.Poll(); err != nil {
			break
		}
		delivered++
	}
	test.AssertEqual(t, wp.reports.Cap(), delivered)
}

func TestRingBuffer(t *testing.T) {
	q := NewRingBuffer[int](3)
	test.AssertEqual(t, 4, q.Cap())

	for i := range 4 {
		test.AssertNoError(t, q.Enqueue(i))
	}
	test.AssertErrorIs(t, q.Enqueue(4), ErrFull)

	for i := range 4 {
		v, err := q.Dequeue()
		test.AssertNoError(t, err)
		test.AssertEqual(t, i, v)
	}

	_, err := q.Dequeue()
	test.AssertErrorIs(t, err, ErrEmpty)
}
