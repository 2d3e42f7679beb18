// File: doc.go
// Title: Instruction AST Package Documentation
// Description: Shared syntax structures passed from the parser to the
//              semantic verifier.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02

/*
Package ast holds the syntax-level result of parsing one instruction.

A GenericInstruction records the command path, positional and named
arguments, and whether help was requested. Every argument keeps the byte
location of its name and value so that later stages can point back into
the original input when reporting errors.
*/
package ast
