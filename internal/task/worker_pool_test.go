package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskQueue implements TaskQueueReader for testing
type mockTaskQueue struct {
	ch chan Task
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		ch: make(chan Task, 10),
	}
}

func (m *mockTaskQueue) GetChannel() <-chan Task {
	return m.ch
}

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()
	config := WorkerPoolConfig{
		WorkerCount: 5,
	}

	pool := NewWorkerPool(taskQueue, config, logger)

	assert.NotNil(t, pool)
	assert.Equal(t, 5, pool.workerCount)
	assert.Equal(t, taskQueue, pool.taskQueue)
	assert.NotNil(t, pool.ctx)
	assert.NotNil(t, pool.cancel)
	assert.Nil(t, pool.errorHandler)

	// Invalid worker counts fall back to 1.
	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 0}, logger)
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: -5}, logger)
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPoolProcessesTasks(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 3}, logger)

	var mu sync.Mutex
	executed := make(map[string]bool)
	done := make(chan struct{})

	const taskCount = 6
	for i := 0; i < taskCount; i++ {
		task := newMockTask()
		id := task.id.String()
		task.execFn = func(ctx context.Context) error {
			mu.Lock()
			executed[id] = true
			count := len(executed)
			mu.Unlock()
			if count == taskCount {
				close(done)
			}
			return nil
		}
		taskQueue.ch <- task
	}

	pool.Start()
	defer pool.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tasks to execute")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, executed, taskCount)
}

func TestWorkerPoolErrorHandler(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, logger)

	execErr := errors.New("delivery failed")
	handled := make(chan error, 1)
	pool.SetErrorHandler(func(task Task, err error) {
		handled <- err
	})

	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		return execErr
	}
	taskQueue.ch <- task

	pool.Start()
	defer pool.Stop()

	select {
	case err := <-handled:
		assert.ErrorIs(t, err, execErr)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error handler")
	}
}

func TestWorkerPoolStopsOnChannelClose(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 2}, logger)

	pool.Start()
	close(taskQueue.ch)

	stopped := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after channel close")
	}
}

func TestWorkerPoolStop(t *testing.T) {
	logger := setupTestLogger()
	q := NewTaskQueue(8, logger)
	pool := NewWorkerPool(q, DefaultWorkerPoolConfig(), logger)

	started := make(chan struct{})
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		close(started)
		return nil
	}
	require.NoError(t, q.Enqueue(task))

	pool.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	// Stop must return promptly once workers are idle.
	finished := make(chan struct{})
	go func() {
		pool.Stop()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
