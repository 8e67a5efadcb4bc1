package screening

import (
	"context"
	"errors"
	"sync"
	"time"

	"recruit-backend/internal/queue"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
)

// Runner processes a single application.
type Runner interface {
	Process(ctx context.Context, appID string) error
}

// ErrQueueFull is returned when the in-process backlog is at capacity.
var ErrQueueFull = errors.New("screening queue is full")

// ErrClosed is returned by Request after Close.
var ErrClosed = errors.New("screening dispatcher closed")

const (
	defaultBacklog = 64
	jobTimeout     = 2 * time.Minute
)

type job struct {
	appID     string
	requestID string
}

// AsyncDispatcher runs screening in a fixed pool of goroutines after the
// request that asked for it has returned.
type AsyncDispatcher struct {
	runner  Runner
	jobs    chan job
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncDispatcher(runner Runner, workers, backlog int) *AsyncDispatcher {
	if workers < 1 {
		workers = 1
	}
	if backlog < 1 {
		backlog = defaultBacklog
	}
	return &AsyncDispatcher{runner: runner, jobs: make(chan job, backlog), workers: workers}
}

// Start launches the worker goroutines. They exit when Close is called.
func (d *AsyncDispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.run(j)
			}
		}()
	}
}

func (d *AsyncDispatcher) run(j job) {
	ctx, cancel := context.WithTimeout(telemetry.WithRequestID(context.Background(), j.requestID), jobTimeout)
	defer cancel()
	metrics.IncScreeningJobsReceived()
	if err := d.runner.Process(ctx, j.appID); err != nil {
		telemetry.Error("screening.async_failed", map[string]any{
			"application_id": j.appID,
			"request_id":     j.requestID,
			"error":          err.Error(),
		})
	}
}

// Request enqueues appID without blocking.
func (d *AsyncDispatcher) Request(ctx context.Context, appID string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.jobs <- job{appID: appID, requestID: telemetry.RequestID(ctx)}:
		return nil
	default:
		metrics.IncScreeningJobsDropped()
		return ErrQueueFull
	}
}

// Close stops accepting work and waits for queued jobs until ctx is done.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueDispatcher hands screening to an external worker through a queue.
type QueueDispatcher struct {
	Client queue.Client
	Now    func() time.Time
}

func (d QueueDispatcher) Request(ctx context.Context, appID string) error {
	now := time.Now().UTC()
	if d.Now != nil {
		now = d.Now()
	}
	return d.Client.Send(ctx, queue.Message{
		ApplicationID: appID,
		RequestID:     telemetry.RequestID(ctx),
		EnqueuedAt:    now.Format(time.RFC3339),
		Version:       1,
	})
}
