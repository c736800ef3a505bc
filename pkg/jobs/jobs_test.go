// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

// shortSender is a minimal Worker used by both Dispatch and Controller
// tests: it counts its own invocations and sleeps briefly to make
// concurrency observable.
type shortSender struct {
	shortSenderCallsCount int32
}

func (s *shortSender) work(ctx context.Context, task interface{}, wq WorkQueue) *WorkerError {
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt32(&s.shortSenderCallsCount, 1)
	return nil
}

func newTasksList(tasksCount int, _ string, _ bool) []interface{} {
	if tasksCount <= 0 {
		return nil
	}
	tasks := make([]interface{}, tasksCount)
	for i := range tasks {
		tasks[i] = struct{}{}
	}
	return tasks
}

func TestDispatchAdaptive(t *testing.T) {
	tasksCount := 20
	timeout := 1 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	worker := &shortSender{}
	job := &Job{
		MinWorkers: 0,
		MaxWorkers: 40,
		Worker:     WorkerFunc(worker.work),
		FailFast:   true,
		Queue:      NewWorkQueue(tasksCount),
	}

	if err := job.Dispatch(ctx, newTasksList(tasksCount, "", false)); err != nil {
		t.Errorf("%v", err)
	}
	assert.Equal(t, tasksCount, int(worker.shortSenderCallsCount))
}

func TestDispatchStrict(t *testing.T) {
	tasksCount := 10
	timeout := 1 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	worker := &shortSender{}
	job := &Job{
		MinWorkers: 10,
		MaxWorkers: 10,
		Worker:     WorkerFunc(worker.work),
		FailFast:   true,
		Queue:      NewWorkQueue(tasksCount),
	}

	if err := job.Dispatch(ctx, newTasksList(tasksCount, "", false)); err != nil {
		t.Errorf("%v", err)
	}
	assert.Equal(t, tasksCount, int(worker.shortSenderCallsCount))
}

func TestDispatchNoWorkers(t *testing.T) {
	tasksCount := 10
	timeout := 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	worker := &shortSender{}
	job := &Job{
		MinWorkers: 0,
		MaxWorkers: 0,
		Worker:     WorkerFunc(worker.work),
		FailFast:   true,
		Queue:      NewWorkQueue(tasksCount),
	}

	err := job.Dispatch(ctx, newTasksList(tasksCount, "", false))

	assert.Nil(t, err)
	assert.Equal(t, 0, int(worker.shortSenderCallsCount))
}

func TestDispatchWrongWorkersRange(t *testing.T) {
	tasksCount := 10
	timeout := 1 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	worker := &shortSender{}
	job := &Job{
		MinWorkers: 10,
		MaxWorkers: 0,
		Worker:     WorkerFunc(worker.work),
		FailFast:   true,
		Queue:      NewWorkQueue(tasksCount),
	}

	defer func() {
		assert.Equal(t, 0, int(worker.shortSenderCallsCount))
		if r := recover(); r == nil {
			t.Errorf("the code did not panic")
		}
	}()

	job.Dispatch(ctx, newTasksList(tasksCount, "", false))
}

func TestDispatchCtxTimeout(t *testing.T) {
	tasksCount := 400
	timeout := 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	worker := &shortSender{}
	job := &Job{
		MinWorkers: 0,
		MaxWorkers: 1,
		Worker:     WorkerFunc(worker.work),
		FailFast:   true,
		Queue:      NewWorkQueue(tasksCount),
	}

	job.Dispatch(ctx, newTasksList(tasksCount, "", false))

	assert.NotEqual(t, tasksCount, int(atomic.LoadInt32(&worker.shortSenderCallsCount)))
}

func TestDispatchCtxCancel(t *testing.T) {
	tasksCount := 400
	timeout := 5 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	worker := &shortSender{}
	job := &Job{
		MinWorkers: 0,
		MaxWorkers: 1,
		Worker:     WorkerFunc(worker.work),
		FailFast:   true,
		Queue:      NewWorkQueue(tasksCount),
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	job.Dispatch(ctx, newTasksList(tasksCount, "", false))

	assert.NotEqual(t, tasksCount, int(atomic.LoadInt32(&worker.shortSenderCallsCount)))
}

var expectedError = errors.New("test")

type faultySender struct {
	faultySenderCallsCount int32
}

func (f *faultySender) Work(ctx context.Context, task interface{}, wq WorkQueue) *WorkerError {
	time.Sleep(10 * time.Millisecond)
	count := int(atomic.AddInt32(&f.faultySenderCallsCount, 1))
	if count == 3 || count == 5 || count == 8 {
		return NewWorkerError(expectedError, 123)
	}
	return nil
}

func TestDispatchError(t *testing.T) {
	tasksCount := 10
	timeout := 1 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	worker := &faultySender{}
	job := &Job{
		MinWorkers: 0,
		MaxWorkers: 5,
		Worker:     worker,
		FailFast:   true,
		Queue:      NewWorkQueue(tasksCount),
	}

	actualError := job.Dispatch(ctx, newTasksList(tasksCount, "", false))

	assert.NotNil(t, actualError)
	actualCallCount := int(atomic.LoadInt32(&worker.faultySenderCallsCount))
	assert.True(t, actualCallCount < tasksCount)
}

func TestDispatchFaultTolerantOnError(t *testing.T) {
	tasksCount := 10
	timeout := 1 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	worker := &faultySender{}
	job := &Job{
		MinWorkers: 0,
		MaxWorkers: 5,
		Worker:     worker,
		FailFast:   false,
		Queue:      NewWorkQueue(tasksCount),
	}
	actualError := job.Dispatch(ctx, newTasksList(tasksCount, "", false))

	assert.NotNil(t, actualError)
	if merr, ok := actualError.error.(*multierror.Error); ok {
		assert.True(t, merr.Len() >= 1)
	}
	// fault-tolerant: every task still gets attempted despite errors
	actualCallCount := int(atomic.LoadInt32(&worker.faultySenderCallsCount))
	assert.Equal(t, tasksCount, actualCallCount)
}
