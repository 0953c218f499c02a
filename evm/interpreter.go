package evm

import (
	"math"
)

// Config are the configuration options for the Interpreter.
type Config struct {
	// Debug enables step level logging of the executed program.
	Debug bool

	// StepHook, when set, is invoked before every instruction. Returning a
	// non-nil error aborts the run and fails the machine with that error,
	// which gives embedders a way to bound otherwise unbounded programs.
	StepHook StepHookFunc
}

// StepHookFunc observes a single instruction about to execute. The scope is
// live machine state and must not be retained past the call.
type StepHookFunc func(pc uint64, op OpCode, scope *ScopeContext) error

// ScopeContext contains the things that are per-call, such as stack and
// memory, but not transients like pc and gas.
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}

// Status is the lifecycle state of an Interpreter. A freshly created machine
// is Running; every run ends in exactly one of the three terminal states and
// the machine never leaves a terminal state again.
type Status uint8

const (
	Running Status = iota
	Success
	Failed
	Reverted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Reverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Interpreter executes the bytecode of one contract frame. It can be driven
// a single instruction at a time with Step or to completion with Run.
type Interpreter struct {
	evm   *EVM
	table *JumpTable

	scope  *ScopeContext
	pc     uint64
	status Status
	err    error
	ret    []byte
}

// NewInterpreter returns a new instance of the Interpreter, positioned at the
// first instruction of the contract's code with the given input attached.
func NewInterpreter(evm *EVM, contract *Contract, input []byte) *Interpreter {
	contract.Input = input
	return &Interpreter{
		evm:   evm,
		table: &instructionSet,
		scope: &ScopeContext{
			Memory:   NewMemory(),
			Stack:    newstack(),
			Contract: contract,
		},
	}
}

// PC returns the current program counter.
func (in *Interpreter) PC() uint64 { return in.pc }

// Status returns the lifecycle state of the machine.
func (in *Interpreter) Status() Status { return in.status }

// Err returns the error a Failed or Reverted machine terminated with, nil
// otherwise.
func (in *Interpreter) Err() error { return in.err }

// ReturnData returns the data an explicit RETURN or REVERT handed back. It is
// nil while the machine is running and after any other termination.
func (in *Interpreter) ReturnData() []byte { return in.ret }

// Scope exposes the machine's stack, memory and contract, mainly for
// step-wise callers and tests.
func (in *Interpreter) Scope() *ScopeContext { return in.scope }

func (in *Interpreter) fail(err error) error {
	in.status = Failed
	in.err = err
	return err
}

// Step executes the single instruction at the current program counter and
// advances the machine. Stepping a terminated machine does nothing. The
// returned error is nil unless the machine is Failed or Reverted after the
// step; a failing instruction consumes none of its operands.
func (in *Interpreter) Step() error {
	if in.status != Running {
		return in.err
	}
	// Running off the end of the code is an implicit STOP.
	if in.pc >= uint64(len(in.scope.Contract.Code)) {
		in.status = Success
		return nil
	}
	var (
		op        = in.scope.Contract.GetOp(in.pc)
		operation = in.table[op]
		sLen      = in.scope.Stack.len()
	)
	// Validate the stack bounds before dispatch so that a rejected
	// operation leaves the operands untouched.
	if sLen < operation.minStack {
		return in.fail(ErrStackUnderflow{stackLen: sLen, required: operation.minStack})
	}
	if sLen > operation.maxStack {
		return in.fail(ErrStackOverflow{stackLen: sLen, limit: operation.maxStack})
	}
	var memorySize uint64
	if operation.memorySize != nil {
		memSize, overflow := operation.memorySize(in.scope.Stack)
		if overflow {
			return in.fail(ErrOutOfResource)
		}
		// Memory is expanded in words of 32 bytes; the scaled size has
		// to fit into 64 bits.
		words := toWordSize(memSize)
		if words > math.MaxUint64/32 {
			return in.fail(ErrOutOfResource)
		}
		memorySize = words * 32
	}
	if hook := in.evm.Config.StepHook; hook != nil {
		if err := hook(in.pc, op, in.scope); err != nil {
			return in.fail(err)
		}
	}
	if memorySize > 0 {
		in.scope.Memory.Resize(memorySize)
	}
	if in.evm.Config.Debug {
		log.Debugf("step pc=%d op=%v stack=%d mem=%d", in.pc, op, sLen, in.scope.Memory.Len())
	}
	res, err := operation.execute(&in.pc, in, in.scope)
	if operation.returns {
		in.ret = res
	}
	switch {
	case err != nil:
		return in.fail(err)
	case operation.reverts:
		in.status = Reverted
		in.err = ErrExecutionReverted
	case operation.halts:
		in.status = Success
	case !operation.jumps:
		in.pc++
	}
	return in.err
}

// Run steps the machine until it terminates and returns the return data and
// an error if one occurred. ErrExecutionReverted means the program asked for
// the rollback itself and the revert payload accompanies it; any other error
// terminates with no return data.
func (in *Interpreter) Run() ([]byte, error) {
	if in.status == Running {
		defer returnStack(in.scope.Stack)
		for in.status == Running {
			in.Step()
		}
	}
	switch in.status {
	case Reverted:
		return in.ret, ErrExecutionReverted
	case Failed:
		return nil, in.err
	default:
		return in.ret, nil
	}
}
