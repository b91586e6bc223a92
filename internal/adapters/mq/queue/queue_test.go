package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, Task{JobID: "job-1", BatchID: "b1", EnqueuedAt: time.Now()}) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	task := <-q.Dequeue(ctx)
	if task.JobID != "job-1" {
		t.Errorf("expected job-1, got %v", task.JobID)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, Task{JobID: "job-1"}) || !q.Enqueue(ctx, Task{JobID: "job-2"}) {
		t.Fatal("expected first two enqueues to succeed")
	}
	if q.Enqueue(ctx, Task{JobID: "job-3"}) {
		t.Error("expected enqueue to fail when full")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000), WithBufferSize(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q.Enqueue(ctx, Task{JobID: fmt.Sprintf("job-%d-%d", p, i)})
			}
		}(p)
	}
	wg.Wait()

	if l := q.Len(ctx); l != 500 {
		t.Fatalf("expected 500 queued tasks, got %d", l)
	}

	_ = q.Close()
	received := 0
	for range q.Dequeue(ctx) {
		received++
	}
	if received != 500 {
		t.Errorf("expected to drain 500 tasks, got %d", received)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, Task{JobID: "job-1"})
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, Task{JobID: "job-2"}) {
		t.Error("expected enqueue after close to fail")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	ch := q.Dequeue(ctx)
	if task, ok := <-ch; !ok || task.JobID != "job-1" {
		t.Errorf("expected buffered job-1 to drain, got %v %v", task, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("expected dequeue channel to close")
	}
}
