package evm

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/common/crypto"
)

func opAdd(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(y.Add(&x, &y))
}

func opSub(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(y.Sub(&x, &y))
}

func opMul(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(y.Mul(&x, &y))
}

func opDiv(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	// Div returns zero for a zero divisor.
	return nil, scope.Stack.push(y.Div(&x, &y))
}

func opSdiv(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	// SDiv returns zero for a zero divisor and MIN_I256 for MIN_I256 / -1.
	return nil, scope.Stack.push(y.SDiv(&x, &y))
}

func opMod(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(y.Mod(&x, &y))
}

func opSmod(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	// The result of SMOD carries the sign of the dividend.
	return nil, scope.Stack.push(y.SMod(&x, &y))
}

func opAddmod(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, z, err := scope.Stack.pop3()
	if err != nil {
		return nil, err
	}
	// The intermediate sum is taken at full precision; a zero modulus
	// yields zero.
	return nil, scope.Stack.push(z.AddMod(&x, &y, &z))
}

func opMulmod(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, z, err := scope.Stack.pop3()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(z.MulMod(&x, &y, &z))
}

func opExp(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	base, exponent, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(exponent.Exp(&base, &exponent))
}

func opSignExtend(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	back, num, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(num.ExtendSign(&num, &back))
}

func opLt(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if x.Lt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, scope.Stack.push(&y)
}

func opGt(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if x.Gt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, scope.Stack.push(&y)
}

func opSlt(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if x.Slt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, scope.Stack.push(&y)
}

func opSgt(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if x.Sgt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, scope.Stack.push(&y)
}

func opEq(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if x.Eq(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, scope.Stack.push(&y)
}

func opIszero(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, scope.Stack.push(&x)
}

func opAnd(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(y.And(&x, &y))
}

func opOr(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(y.Or(&x, &y))
}

func opXor(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, y, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(y.Xor(&x, &y))
}

func opNot(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	return nil, scope.Stack.push(x.Not(&x))
}

func opByte(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	th, val, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	// Byte indexes big-endian: index 0 is the most significant byte.
	// Out of range indices leave zero.
	return nil, scope.Stack.push(val.Byte(&th))
}

func opSHL(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	shift, value, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if shift.LtUint64(256) {
		value.Lsh(&value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, scope.Stack.push(&value)
}

func opSHR(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	shift, value, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if shift.LtUint64(256) {
		value.Rsh(&value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, scope.Stack.push(&value)
}

func opSAR(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	shift, value, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return nil, scope.Stack.push(&value)
	}
	n := uint(shift.Uint64())
	value.SRsh(&value, n)
	return nil, scope.Stack.push(&value)
}

func opKeccak256(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	offset, size, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	data := scope.Memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	return nil, scope.Stack.push(new(uint256.Int).SetBytes(hash))
}

func opAddress(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetBytes(scope.Contract.Address().Bytes()))
}

func opBalance(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	slot, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	address := common.Address(slot.Bytes20())
	balance, _ := uint256.FromBig(interpreter.evm.StateDB.GetBalance(address))
	return nil, scope.Stack.push(balance)
}

func opOrigin(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetBytes(interpreter.evm.Origin.Bytes()))
}

func opCaller(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetBytes(scope.Contract.Caller().Bytes()))
}

func opCallValue(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(scope.Contract.value)
	return nil, scope.Stack.push(v)
}

func opCallDataLoad(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	x, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(scope.Contract.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, scope.Stack.push(&x)
}

func opCallDataSize(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(scope.Contract.Input))))
}

func opCallDataCopy(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	memOffset, dataOffset, length, err := scope.Stack.pop3()
	if err != nil {
		return nil, err
	}
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = math.MaxUint64
	}
	// These values are checked for overflow during memory expansion calculation
	memOffset64 := memOffset.Uint64()
	length64 := length.Uint64()
	scope.Memory.Set(memOffset64, length64, getData(scope.Contract.Input, dataOffset64, length64))
	return nil, nil
}

func opCodeSize(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(scope.Contract.Code))))
}

func opCodeCopy(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	memOffset, codeOffset, length, err := scope.Stack.pop3()
	if err != nil {
		return nil, err
	}
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	codeCopy := getData(scope.Contract.Code, uint64CodeOffset, length.Uint64())
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

func opGasprice(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(interpreter.evm.GasPrice)
	return nil, scope.Stack.push(v)
}

func opExtCodeSize(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	slot, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	address := common.Address(slot.Bytes20())
	slot.SetUint64(uint64(interpreter.evm.StateDB.GetCodeSize(address)))
	return nil, scope.Stack.push(&slot)
}

func opExtCodeCopy(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	a, memOffset, codeOffset, length, err := scope.Stack.pop4()
	if err != nil {
		return nil, err
	}
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	addr := common.Address(a.Bytes20())
	codeCopy := getData(interpreter.evm.StateDB.GetCode(addr), uint64CodeOffset, length.Uint64())
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

// opExtCodeHash returns the code hash of a specified account. Absent
// accounts report zero, accounts without code the hash of empty input.
func opExtCodeHash(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	slot, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	address := common.Address(slot.Bytes20())
	slot.SetBytes(interpreter.evm.StateDB.GetCodeHash(address).Bytes())
	return nil, scope.Stack.push(&slot)
}

func opBlockhash(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	num, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		return nil, scope.Stack.push(num.Clear())
	}
	var upper, lower uint64
	upper = interpreter.evm.Context.BlockNumber.Uint64()
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		res := interpreter.evm.Context.GetHash(num64)
		num.SetBytes(res[:])
	} else {
		num.Clear()
	}
	return nil, scope.Stack.push(&num)
}

func opCoinbase(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetBytes(interpreter.evm.Context.Coinbase.Bytes()))
}

func opTimestamp(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(interpreter.evm.Context.Time)
	return nil, scope.Stack.push(v)
}

func opNumber(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(interpreter.evm.Context.BlockNumber)
	return nil, scope.Stack.push(v)
}

func opDifficulty(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(interpreter.evm.Context.Difficulty)
	return nil, scope.Stack.push(v)
}

func opGasLimit(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetUint64(interpreter.evm.Context.GasLimit))
}

func opChainID(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	chainId, _ := uint256.FromBig(interpreter.evm.chainConfig.ChainID)
	return nil, scope.Stack.push(chainId)
}

func opSelfBalance(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	balance, _ := uint256.FromBig(interpreter.evm.StateDB.GetBalance(scope.Contract.Address()))
	return nil, scope.Stack.push(balance)
}

// opBaseFee implements the BASEFEE opcode
func opBaseFee(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	baseFee, _ := uint256.FromBig(interpreter.evm.Context.BaseFee)
	return nil, scope.Stack.push(baseFee)
}

func opPop(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	_, err := scope.Stack.pop()
	return nil, err
}

func opMload(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	v, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	offset := v.Uint64()
	v.SetBytes(scope.Memory.GetPtr(offset, 32))
	return nil, scope.Stack.push(&v)
}

func opMstore(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	mStart, val, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	scope.Memory.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	off, val, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	scope.Memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	loc, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	hash := common.Hash(loc.Bytes32())
	val := interpreter.evm.StateDB.GetState(scope.Contract.Address(), hash)
	loc.SetBytes(val.Bytes())
	return nil, scope.Stack.push(&loc)
}

func opSstore(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	loc, val, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	interpreter.evm.StateDB.SetState(scope.Contract.Address(),
		common.Hash(loc.Bytes32()), common.Hash(val.Bytes32()))
	return nil, nil
}

func opJump(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	pos, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	if !scope.Contract.validJumpdest(&pos) {
		return nil, ErrInvalidJump
	}
	*pc = pos.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	pos, cond, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	if !cond.IsZero() {
		if !scope.Contract.validJumpdest(&pos) {
			return nil, ErrInvalidJump
		}
		*pc = pos.Uint64()
	} else {
		// The interpreter does not advance the counter for jump type
		// instructions, so the fall-through advances it here.
		*pc = *pc + 1
	}
	return nil, nil
}

func opJumpdest(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetUint64(*pc))
}

func opMsize(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int).SetUint64(uint64(scope.Memory.Len())))
}

// opMcopy implements the MCOPY memory copy instruction. Overlapping source
// and destination behave as if copied through an intermediate buffer.
func opMcopy(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	dst, src, length, err := scope.Stack.pop3()
	if err != nil {
		return nil, err
	}
	// These values are checked for overflow during memory expansion calculation
	scope.Memory.Copy(dst.Uint64(), src.Uint64(), length.Uint64())
	return nil, nil
}

// opPush0 implements the PUSH0 opcode
func opPush0(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, scope.Stack.push(new(uint256.Int))
}

// opPush1 is a specialized version of pushN
func opPush1(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	var (
		codeLen = uint64(len(scope.Contract.Code))
		integer = new(uint256.Int)
	)
	*pc += 1
	if *pc < codeLen {
		return nil, scope.Stack.push(integer.SetUint64(uint64(scope.Contract.Code[*pc])))
	}
	return nil, scope.Stack.push(integer.Clear())
}

// makePush instruction function
func makePush(size uint64, pushByteSize int) executionFunc {
	return func(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
		codeLen := len(scope.Contract.Code)
		start := int(*pc + 1)
		if start > codeLen {
			start = codeLen
		}
		end := start + pushByteSize
		if end > codeLen {
			end = codeLen
		}
		integer := new(uint256.Int).SetBytes(scope.Contract.Code[start:end])
		// Missing bytes: pushByteSize - len(pushData)
		if missing := pushByteSize - (end - start); missing > 0 {
			integer.Lsh(integer, uint(8*missing))
		}
		*pc += size
		return nil, scope.Stack.push(integer)
	}
}

// make dup instruction function
func makeDup(size int64) executionFunc {
	return func(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
		return nil, scope.Stack.dup(int(size))
	}
}

// make swap instruction function
func makeSwap(size int64) executionFunc {
	return func(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
		return nil, scope.Stack.swap(int(size))
	}
}

func opStop(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opReturn(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	offset, size, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	ret := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, nil
}

func opRevert(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	offset, size, err := scope.Stack.pop2()
	if err != nil {
		return nil, err
	}
	ret := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, nil
}

// opUndefined is the handler of every table slot without an assigned
// operation. Executing one is a hard failure, not a no-op.
func opUndefined(pc *uint64, interpreter *Interpreter, scope *ScopeContext) ([]byte, error) {
	return nil, &ErrInvalidOpCode{opcode: OpCode(scope.Contract.Code[*pc])}
}
