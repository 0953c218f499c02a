/*
Package evm implements the Core Virtual Machine.

The evm package implements one EVM, a byte code VM. The VM loops over a set
of bytes and executes them according to a fixed 256-entry instruction table.
Every run is deterministic: the same code, input and context produce the same
terminal status, return data and state, and every failure a program can
provoke surfaces as a classified error instead of a crash.
*/
package evm
