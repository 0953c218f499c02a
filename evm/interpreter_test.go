package evm

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/common/crypto"
	"github.com/corevm/go-evm/config"
	"github.com/corevm/go-evm/state"
)

// testEVM wires up an EVM around the given state with fixed block and
// transaction environments. The transfer functions mirror the chain package,
// which cannot be imported from here.
func testEVM(statedb StateDB) *EVM {
	blockCtx := BlockContext{
		CanTransfer: func(db StateDB, addr common.Address, amount *big.Int) bool {
			return db.GetBalance(addr).Cmp(amount) >= 0
		},
		Transfer: func(db StateDB, sender, recipient common.Address, amount *big.Int) {
			db.SubBalance(sender, amount)
			db.AddBalance(recipient, amount)
		},
		GetHash:     func(n uint64) common.Hash { return common.Hash{} },
		Coinbase:    common.HexToAddress("0x00000000000000000000000000000000c014ba5e"),
		GasLimit:    30000000,
		BlockNumber: big.NewInt(300),
		Time:        big.NewInt(1700000000),
		Difficulty:  big.NewInt(131072),
		BaseFee:     big.NewInt(int64(config.InitialBaseFee)),
	}
	txCtx := TxContext{
		Origin:   common.HexToAddress("0x000000000000000000000000000000000000beef"),
		GasPrice: big.NewInt(1),
	}
	return NewEVM(blockCtx, txCtx, statedb, config.TestChainConfig, Config{})
}

func newTestMachineEnv(env *EVM, code, input []byte) *Interpreter {
	self := common.HexToAddress("0x0000000000000000000000000000000000c0ffee")
	contract := NewContract(AccountRef(env.Origin), AccountRef(self), new(big.Int), nil)
	contract.SetCallCode(&self, crypto.Keccak256Hash(code), code)
	return NewInterpreter(env, contract, input)
}

func newTestMachine(code []byte) *Interpreter {
	return newTestMachineEnv(testEVM(state.New()), code, nil)
}

func TestRunArithmeticReturn(t *testing.T) {
	code := []byte{
		byte(PUSH1), 3,
		byte(PUSH1), 4,
		byte(ADD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	in := newTestMachine(code)
	ret, err := in.Run()
	require.NoError(t, err)
	require.Equal(t, Success, in.Status())
	require.Equal(t, common.LeftPadBytes([]byte{7}, 32), ret)
}

func TestImplicitStop(t *testing.T) {
	in := newTestMachine([]byte{byte(PUSH1), 1, byte(PUSH1), 2, byte(ADD)})
	for in.Status() == Running {
		require.NoError(t, in.Step())
	}
	require.Equal(t, Success, in.Status())
	require.Nil(t, in.ReturnData())
	require.Equal(t, 1, in.Scope().Stack.len())
	require.Equal(t, uint64(3), in.Scope().Stack.Back(0).Uint64())
}

func TestStepTerminalIsNoop(t *testing.T) {
	in := newTestMachine([]byte{byte(STOP)})
	require.NoError(t, in.Step())
	require.Equal(t, Success, in.Status())

	pc := in.PC()
	require.NoError(t, in.Step())
	require.Equal(t, Success, in.Status())
	require.Equal(t, pc, in.PC())
}

func TestStatusTransitions(t *testing.T) {
	in := newTestMachine([]byte{byte(PUSH1), 0, byte(PUSH1), 0, byte(RETURN)})
	require.Equal(t, Running, in.Status())
	require.NoError(t, in.Step())
	require.Equal(t, Running, in.Status())
	require.NoError(t, in.Step())
	require.Equal(t, Running, in.Status())
	require.NoError(t, in.Step())
	require.Equal(t, Success, in.Status())
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "running", Running.String())
	require.Equal(t, "success", Success.String())
	require.Equal(t, "failed", Failed.String())
	require.Equal(t, "reverted", Reverted.String())
}

func TestInvalidOpcodes(t *testing.T) {
	// Both the designated INVALID instruction and the opcodes that decode
	// by name but have no operation wired must trap.
	for _, op := range []OpCode{INVALID, CALL, CALLCODE, DELEGATECALL, STATICCALL, CREATE, CREATE2, SELFDESTRUCT, LOG0, LOG4, GAS, RETURNDATASIZE, RETURNDATACOPY} {
		in := newTestMachine([]byte{byte(op)})
		ret, err := in.Run()
		require.Nil(t, ret)
		require.Equal(t, Failed, in.Status())

		var invalid *ErrInvalidOpCode
		require.Truef(t, errors.As(err, &invalid), "op %v: got %v", op, err)
		require.Equal(t, op, invalid.opcode)
	}
}

func TestJumps(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		err  error
	}{
		{
			"over invalid region",
			[]byte{byte(PUSH1), 4, byte(JUMP), byte(INVALID), byte(JUMPDEST), byte(STOP)},
			nil,
		},
		{
			"into push data",
			// position 5 holds 0x5b but only as PUSH2 payload
			[]byte{byte(PUSH1), 5, byte(JUMP), byte(STOP), byte(PUSH2), 0x5b, 0x00, byte(STOP)},
			ErrInvalidJump,
		},
		{
			"out of range",
			[]byte{byte(PUSH1), 0xff, byte(JUMP)},
			ErrInvalidJump,
		},
		{
			"to non jumpdest",
			[]byte{byte(PUSH1), 3, byte(JUMP), byte(STOP)},
			ErrInvalidJump,
		},
	}
	for _, tc := range tests {
		in := newTestMachine(tc.code)
		_, err := in.Run()
		if tc.err == nil {
			require.NoErrorf(t, err, "%s", tc.name)
			require.Equal(t, Success, in.Status())
		} else {
			require.ErrorIsf(t, err, tc.err, "%s", tc.name)
			require.Equal(t, Failed, in.Status())
		}
	}
}

func TestJumpiBranches(t *testing.T) {
	prog := func(cond byte) []byte {
		return []byte{
			byte(PUSH1), cond,
			byte(PUSH1), 8,
			byte(JUMPI),
			byte(PUSH1), 0x2a,
			byte(STOP),
			byte(JUMPDEST),
			byte(INVALID),
		}
	}
	// zero condition falls through to the STOP
	in := newTestMachine(prog(0))
	_, err := in.Run()
	require.NoError(t, err)
	require.Equal(t, Success, in.Status())

	// non zero condition lands on the JUMPDEST and hits INVALID
	in = newTestMachine(prog(1))
	_, err = in.Run()
	require.Error(t, err)
	require.Equal(t, Failed, in.Status())
}

func TestStackUnderflowFailure(t *testing.T) {
	in := newTestMachine([]byte{byte(PUSH1), 1, byte(ADD)})
	require.NoError(t, in.Step())

	err := in.Step()
	require.Error(t, err)
	require.Equal(t, Failed, in.Status())

	var underflow ErrStackUnderflow
	require.True(t, errors.As(err, &underflow))
	// the lone operand was not consumed by the rejected ADD
	require.Equal(t, 1, in.Scope().Stack.len())
	require.Equal(t, uint64(1), in.Scope().Stack.Back(0).Uint64())
}

func TestStackOverflowFailure(t *testing.T) {
	in := newTestMachine(bytes.Repeat([]byte{byte(PUSH0)}, int(config.StackLimit)+1))
	var err error
	for in.Status() == Running {
		err = in.Step()
	}
	var overflow ErrStackOverflow
	require.True(t, errors.As(err, &overflow))
	require.Equal(t, Failed, in.Status())
	require.Equal(t, int(config.StackLimit), in.Scope().Stack.len())
}

func TestMemoryExpansionOverflow(t *testing.T) {
	code := append([]byte{byte(PUSH1), 1, byte(PUSH32)}, bytes.Repeat([]byte{0xff}, 32)...)
	code = append(code, byte(MSTORE))

	in := newTestMachine(code)
	require.NoError(t, in.Step())
	require.NoError(t, in.Step())

	err := in.Step()
	require.ErrorIs(t, err, ErrOutOfResource)
	require.Equal(t, Failed, in.Status())
	// neither the stack nor the memory were touched
	require.Equal(t, 2, in.Scope().Stack.len())
	require.Equal(t, 0, in.Scope().Memory.Len())
}

func TestStepHookBudget(t *testing.T) {
	errBudget := errors.New("step budget exhausted")

	env := testEVM(state.New())
	var steps int
	env.Config.StepHook = func(pc uint64, op OpCode, scope *ScopeContext) error {
		if steps++; steps > 100 {
			return errBudget
		}
		return nil
	}
	// tight infinite loop
	in := newTestMachineEnv(env, []byte{byte(JUMPDEST), byte(PUSH1), 0, byte(JUMP)}, nil)
	_, err := in.Run()
	require.ErrorIs(t, err, errBudget)
	require.Equal(t, Failed, in.Status())
	require.Equal(t, 101, steps)
}

func TestStepHookObservesOpcodes(t *testing.T) {
	env := testEVM(state.New())
	var got []OpCode
	env.Config.StepHook = func(pc uint64, op OpCode, scope *ScopeContext) error {
		got = append(got, op)
		return nil
	}
	in := newTestMachineEnv(env, []byte{byte(PUSH1), 1, byte(POP)}, nil)
	_, err := in.Run()
	require.NoError(t, err)
	require.Equal(t, Success, in.Status())
	// the implicit stop beyond the end of code is not an instruction and
	// must not reach the hook
	require.Equal(t, []OpCode{PUSH1, POP}, got)
}

func TestRevertPayload(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xaa,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(REVERT),
	}
	in := newTestMachine(code)
	ret, err := in.Run()
	require.ErrorIs(t, err, ErrExecutionReverted)
	require.Equal(t, Reverted, in.Status())
	require.Equal(t, []byte{0xaa}, ret)
}

func TestCallDataLoadPadsRight(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0,
		byte(CALLDATALOAD),
		byte(PUSH0),
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH0),
		byte(RETURN),
	}
	in := newTestMachineEnv(testEVM(state.New()), code, []byte{0xaa, 0xbb})
	ret, err := in.Run()
	require.NoError(t, err)
	require.Equal(t, common.RightPadBytes([]byte{0xaa, 0xbb}, 32), ret)
}

func TestKeccak256MatchesCrypto(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xab,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(KECCAK256),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	in := newTestMachine(code)
	ret, err := in.Run()
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256([]byte{0xab}), ret)

	// hashing the empty range works and needs no memory
	code = []byte{
		byte(PUSH0),
		byte(PUSH0),
		byte(KECCAK256),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	in = newTestMachine(code)
	ret, err = in.Run()
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256(nil), ret)
}

func TestMcopy(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xaa,
		byte(PUSH0),
		byte(MSTORE8), // mem[0] = 0xaa
		byte(PUSH1), 1,
		byte(PUSH0),
		byte(PUSH1), 32,
		byte(MCOPY), // mem[32] = mem[0]
		byte(PUSH1), 64,
		byte(PUSH0),
		byte(RETURN),
	}
	in := newTestMachine(code)
	ret, err := in.Run()
	require.NoError(t, err)
	require.Len(t, ret, 64)
	require.Equal(t, byte(0xaa), ret[0])
	require.Equal(t, byte(0xaa), ret[32])
}

func TestMsizeTracksGrowth(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xaa,
		byte(PUSH1), 64,
		byte(MSTORE8), // grows memory to the next word boundary, 96
		byte(MSIZE),
		byte(PUSH0),
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH0),
		byte(RETURN),
	}
	in := newTestMachine(code)
	ret, err := in.Run()
	require.NoError(t, err)
	require.Equal(t, common.BytesToHash([]byte{96}).Bytes(), ret)
}

func TestConcurrentRunsAreDeterministic(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xab,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(KECCAK256),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	want, err := newTestMachine(code).Run()
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			ret, err := newTestMachine(code).Run()
			if err != nil {
				return err
			}
			if !bytes.Equal(ret, want) {
				return fmt.Errorf("result diverged: %x != %x", ret, want)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
