package logging

import "time"

// Timer measures an operation and logs its duration when stopped
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	stopped   bool
}

// StartTimer starts a timer for the given operation
func (l *Logger) StartTimer(operation string) *Timer {
	return &Timer{logger: l, operation: operation, startTime: time.Now()}
}

// Checkpoint logs the elapsed time at a named step
func (t *Timer) Checkpoint(name string) {
	if t.stopped {
		return
	}
	t.logger.Debug("checkpoint", "operation", t.operation, "checkpoint", name, "elapsed", t.Elapsed())
}

// Elapsed returns the time since start
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// StartTime returns when the timer started
func (t *Timer) StartTime() time.Time {
	return t.startTime
}

// Stop logs the total duration and returns it
func (t *Timer) Stop() time.Duration {
	d := t.Elapsed()
	if !t.stopped {
		t.stopped = true
		t.logger.Debug("operation completed", "operation", t.operation, "duration", d)
	}
	return d
}

// StopWithError logs the total duration together with err
func (t *Timer) StopWithError(err error) time.Duration {
	d := t.Elapsed()
	if !t.stopped {
		t.stopped = true
		t.logger.Debug("operation failed", "operation", t.operation, "duration", d, "error", err)
	}
	return d
}
