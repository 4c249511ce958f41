package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerQueue_ProcessesEveryJob(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	q := NewWorkerQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.Path)
		mu.Unlock()
		if job.Path == "b.pdf" {
			return errors.New("boom")
		}
		return nil
	}, quietLogger(), WithWorkers(3), WithQueueSize(1))

	for _, p := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}
	q.Shutdown(context.Background())

	sort.Strings(seen)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}, seen)
}

func TestWorkerQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewWorkerQueue(func(context.Context, Job) error { return nil }, quietLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestWorkerQueue_ProcessTimeout(t *testing.T) {
	got := make(chan error, 1)
	q := NewWorkerQueue(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		got <- ctx.Err()
		return ctx.Err()
	}, quietLogger(), WithProcessTimeout(20*time.Millisecond))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "slow.pdf"}))
	select {
	case err := <-got:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not canceled")
	}
	q.Shutdown(context.Background())
}

func TestWorkerQueue_EnqueueHonorsContext(t *testing.T) {
	release := make(chan struct{})
	q := NewWorkerQueue(func(context.Context, Job) error {
		<-release
		return nil
	}, quietLogger(), WithQueueSize(0))
	defer func() {
		close(release)
		q.Shutdown(context.Background())
	}()

	// first job occupies the only worker; the unbuffered channel then blocks
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1.pdf"}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "2.pdf"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
