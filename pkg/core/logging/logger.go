// ============================================================================
// unilang - Command Instruction Core
// ============================================================================
//
// Package:     logging
// Description: Log levels and verbosity mapping
// Author:      Mike Stoffels
// Created:     2025-10-02
// License:     MIT
// ============================================================================

package logging

import (
	"os"
	"strconv"
	"strings"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Verbosity levels accepted by UNILANG_VERBOSITY
const (
	VerbosityQuiet  = 0
	VerbosityNormal = 1
	VerbosityDebug  = 2

	// VerbosityEnv is the environment variable controlling verbosity
	VerbosityEnv = "UNILANG_VERBOSITY"
)

// ParseVerbosity parses a verbosity value. Anything other than 0, 1 or 2
// falls back to VerbosityNormal.
func ParseVerbosity(value string) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v < VerbosityQuiet || v > VerbosityDebug {
		return VerbosityNormal
	}
	return v
}

// VerbosityFromEnv reads UNILANG_VERBOSITY
func VerbosityFromEnv() int {
	return ParseVerbosity(os.Getenv(VerbosityEnv))
}

// LevelForVerbosity maps a verbosity value to a level name
func LevelForVerbosity(verbosity int) string {
	switch verbosity {
	case VerbosityQuiet:
		return LevelError.String()
	case VerbosityDebug:
		return LevelDebug.String()
	default:
		return LevelInfo.String()
	}
}
