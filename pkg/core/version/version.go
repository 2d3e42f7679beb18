// ============================================================================
// unilang - Command Instruction Core
// ============================================================================
//
// Package:     version
// Description: Central version management for the core components
// Author:      Mike Stoffels
// Created:     2025-10-01
// License:     MIT
// ============================================================================

package version

// Version constants for the core components
const (
	// Core version, reported by the CLI
	Core = "0.1.0"

	// Instruction language version
	Language = "1.0.0"

	// Component versions
	Parser     = "0.1.0"
	Semantic   = "0.1.0"
	Registry   = "0.1.0"
	Aggregator = "0.1.0"
	Pipeline   = "0.1.0"
	Loader     = "0.1.0"
)

// Build metadata, set with -ldflags "-X"
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "parser", "tokenizer":
		return Parser
	case "semantic", "verifier":
		return Semantic
	case "registry":
		return Registry
	case "aggregator":
		return Aggregator
	case "pipeline":
		return Pipeline
	case "loader":
		return Loader
	case "language":
		return Language
	default:
		return Core
	}
}

// Components lists the component names known to ComponentVersion
func Components() []string {
	return []string{"parser", "semantic", "registry", "aggregator", "pipeline", "loader"}
}
