// File: context.go
// Title: Execution Context and Results
// Description: Per-invocation execution context with an explicit shared
//              store handle, and the OutputData / ErrorData results that
//              routines hand back to the pipeline.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-03
// Modified: 2025-10-07
//
// Change History:
// - 2025-10-03 v0.1.0: Initial context and result types
// - 2025-10-07 v0.1.0: SharedStore replaces per-command state

package types

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/unilang/pkg/unilang/ast"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
)

// SharedStore is a synchronized key/value store that routines of one session
// share. It is passed by pointer through ExecutionContext.
type SharedStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewSharedStore creates an empty store
func NewSharedStore() *SharedStore {
	return &SharedStore{data: make(map[string]any)}
}

// Get returns the value stored under key
func (s *SharedStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key
func (s *SharedStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key and reports whether it existed
func (s *SharedStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

// Keys returns the stored keys in sorted order
func (s *SharedStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys
func (s *SharedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// ExecutionContext carries per-invocation data to a routine
type ExecutionContext struct {
	RequestID string
	SessionID string
	Timestamp time.Time
	Metadata  map[string]string
	Store     *SharedStore

	// Index is the position of the instruction within its program
	Index int
}

// NewExecutionContext creates a context for a new session
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		RequestID: uuid.NewString(),
		SessionID: uuid.NewString(),
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
		Store:     NewSharedStore(),
	}
}

// ForInstruction derives the context for instruction index of a program.
// The session, metadata and store are shared; the request ID is new.
func (c *ExecutionContext) ForInstruction(index int) *ExecutionContext {
	derived := *c
	derived.RequestID = uuid.NewString()
	derived.Timestamp = time.Now()
	derived.Index = index
	if derived.Store == nil {
		derived.Store = NewSharedStore()
	}
	return &derived
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHelp = "help"
)

// OutputData is the successful result of a routine
type OutputData struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

// TextOutput returns plain text output
func TextOutput(content string) *OutputData {
	return &OutputData{Content: content, Format: FormatText}
}

// ErrorData is a failed instruction as data. It implements error so that
// routines can return it directly.
type ErrorData struct {
	Code     uerrors.Code   `json:"code"`
	Message  string         `json:"message"`
	Location *ast.Location  `json:"location,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// NewErrorData creates routine-provided error data
func NewErrorData(code uerrors.Code, message string) *ErrorData {
	return &ErrorData{Code: code, Message: message}
}

func (e *ErrorData) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Category returns the taxonomy category of the code
func (e *ErrorData) Category() uerrors.Category {
	return e.Code.Category()
}

// ErrorDataFrom converts any error into ErrorData. Coded errors keep their
// code, location and details; ErrorData passes through; everything else
// becomes an execution error.
func ErrorDataFrom(err error) *ErrorData {
	if err == nil {
		return nil
	}
	var ed *ErrorData
	if errors.As(err, &ed) {
		return ed
	}
	if e, ok := uerrors.As(err); ok {
		ed := &ErrorData{Code: e.Code(), Message: e.Message()}
		if loc, ok := e.Location(); ok {
			ed.Location = &loc
		}
		if details := e.Details(); len(details) > 0 {
			ed.Details = details
		}
		return ed
	}
	return &ErrorData{Code: uerrors.CodeExecution, Message: err.Error()}
}
