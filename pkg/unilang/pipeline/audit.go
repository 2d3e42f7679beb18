package pipeline

import (
	"context"
	"time"
)

// AuditRecord describes one executed or rejected instruction. Arguments
// hold display values with sensitive arguments already masked.
type AuditRecord struct {
	RequestID string
	SessionID string
	Index     int
	Command   string
	Arguments map[string]string
	Success   bool
	ErrorCode string
	Message   string
	Timestamp time.Time
	Duration  time.Duration
}

// AuditLogger receives a record for every instruction the pipeline
// finishes. Failures to record are logged and never fail the instruction.
type AuditLogger interface {
	LogExecution(ctx context.Context, record AuditRecord) error
}

// AuditFunc adapts a function to AuditLogger
type AuditFunc func(ctx context.Context, record AuditRecord) error

// LogExecution implements AuditLogger
func (f AuditFunc) LogExecution(ctx context.Context, record AuditRecord) error {
	return f(ctx, record)
}
