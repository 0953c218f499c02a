package evm

import (
	"errors"
	"fmt"
)

// The errors execution can surface. All of them are recoverable by the
// embedder; none of them abort the process.
var (
	ErrOutOfResource       = errors.New("out of resource budget")
	ErrInvalidJump         = errors.New("invalid jump destination")
	ErrExecutionReverted   = errors.New("execution reverted")
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
)

// ErrStackUnderflow wraps an evm error when the items on the stack are fewer
// than the operation requires.
type ErrStackUnderflow struct {
	stackLen int
	required int
}

func (e ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

// ErrStackOverflow wraps an evm error when the items on the stack exceeds
// the maximum allowance.
type ErrStackOverflow struct {
	stackLen int
	limit    int
}

func (e ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

// ErrInvalidOpCode wraps an evm error when an invalid opcode is encountered.
type ErrInvalidOpCode struct {
	opcode OpCode
}

func (e *ErrInvalidOpCode) Error() string {
	return fmt.Sprintf("invalid opcode: %s", e.opcode)
}
