package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/msto63/unilang/pkg/unilang/types"
)

// Mode decides what happens after a failed instruction
type Mode int

const (
	// FailFast stops the program at the first failure
	FailFast Mode = iota
	// BestEffort records the failure and continues
	BestEffort
)

func (m Mode) String() string {
	if m == BestEffort {
		return "best_effort"
	}
	return "fail_fast"
}

// ParseMode accepts "fail_fast" and "best_effort" (dashes allowed)
func ParseMode(text string) (Mode, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), "-", "_")) {
	case "", "fail_fast", "failfast":
		return FailFast, nil
	case "best_effort", "besteffort":
		return BestEffort, nil
	}
	return FailFast, fmt.Errorf("unknown pipeline mode '%s'", text)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is the processing stage of the pipeline
type State int

const (
	StateIdle State = iota
	StateTokenizing
	StateParsing
	StateVerifying
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateTokenizing:
		return "tokenizing"
	case StateParsing:
		return "parsing"
	case StateVerifying:
		return "verifying"
	case StateDispatching:
		return "dispatching"
	default:
		return "idle"
	}
}

// CommandResult is the outcome of one instruction. Exactly one of Output
// and Error is set.
type CommandResult struct {
	Index    int
	Text     string
	Command  string
	Output   *types.OutputData
	Error    *types.ErrorData
	Duration time.Duration
}

// Success reports whether the instruction produced output
func (r *CommandResult) Success() bool {
	return r.Error == nil
}

// ProgramResult collects the results of a program in execution order.
// Instructions skipped by fail-fast mode have no result.
type ProgramResult struct {
	Mode     Mode
	Results  []CommandResult
	Duration time.Duration
}

// Success reports whether every executed instruction succeeded
func (r *ProgramResult) Success() bool {
	return r.FirstError() == nil
}

// FirstError returns the first failure or nil
func (r *ProgramResult) FirstError() *types.ErrorData {
	for i := range r.Results {
		if r.Results[i].Error != nil {
			return r.Results[i].Error
		}
	}
	return nil
}

// Errors returns all failures in order
func (r *ProgramResult) Errors() []*types.ErrorData {
	var out []*types.ErrorData
	for i := range r.Results {
		if r.Results[i].Error != nil {
			out = append(out, r.Results[i].Error)
		}
	}
	return out
}

// Outputs returns all outputs in order
func (r *ProgramResult) Outputs() []*types.OutputData {
	var out []*types.OutputData
	for i := range r.Results {
		if r.Results[i].Output != nil {
			out = append(out, r.Results[i].Output)
		}
	}
	return out
}
