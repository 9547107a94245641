package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRepeatingTask(t *testing.T) {
	var executions atomic.Int32
	task := NewRepeating(func(_ context.Context) {
		executions.Add(1)
	}, 5*time.Millisecond)

	task.Start()
	task.Start()
	if !task.Running() {
		t.Fatal("task should be running")
	}

	deadline := time.Now().Add(2 * time.Second)
	for executions.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("task was not executed repeatedly")
		}
		time.Sleep(time.Millisecond)
	}

	task.Stop(false)
	if task.Running() {
		t.Fatal("task should be stopped")
	}
	stopped := executions.Load()
	time.Sleep(20 * time.Millisecond)
	if executions.Load() != stopped {
		t.Error("task was executed after being stopped")
	}
}

func TestRepeatingTask_StopForceExec(t *testing.T) {
	var executions atomic.Int32
	task := NewRepeating(func(_ context.Context) {
		executions.Add(1)
	}, time.Hour)

	task.Stop(true)
	if executions.Load() != 0 {
		t.Error("stopping a task that never ran must be a no-op")
	}

	task.Start()
	task.Stop(true)
	if executions.Load() != 1 {
		t.Errorf("executions = %d, want 1", executions.Load())
	}
}
