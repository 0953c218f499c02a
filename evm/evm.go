package evm

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/common/crypto"
	"github.com/corevm/go-evm/config"
	"github.com/corevm/go-evm/logger"
)

var log = logger.NewLogger("[evm]")

// codeAnalysisCacheSize is the number of analysed code bitmaps kept across
// contract frames of a single EVM.
const codeAnalysisCacheSize = 4096

type (
	// CanTransferFunc is the signature of a transfer guard function
	CanTransferFunc func(StateDB, common.Address, *big.Int) bool
	// TransferFunc is the signature of a transfer function
	TransferFunc func(StateDB, common.Address, common.Address, *big.Int)
	// GetHashFunc returns the n'th block hash in the blockchain
	// and is used by the BLOCKHASH EVM op code.
	GetHashFunc func(uint64) common.Hash
)

// BlockContext provides the EVM with auxiliary information. Once provided
// it shouldn't be modified.
type BlockContext struct {
	// CanTransfer returns whether the account contains
	// sufficient balance to transfer the value
	CanTransfer CanTransferFunc
	// Transfer moves value from one account to the other
	Transfer TransferFunc
	// GetHash returns the hash corresponding to n
	GetHash GetHashFunc

	// Block information
	Coinbase    common.Address // Provides information for COINBASE
	GasLimit    uint64         // Provides information for GASLIMIT
	BlockNumber *big.Int       // Provides information for NUMBER
	Time        *big.Int       // Provides information for TIMESTAMP
	Difficulty  *big.Int       // Provides information for DIFFICULTY
	BaseFee     *big.Int       // Provides information for BASEFEE
}

// TxContext provides the EVM with information about a transaction.
// All fields can change between transactions.
type TxContext struct {
	Origin   common.Address // Provides information for ORIGIN
	GasPrice *big.Int       // Provides information for GASPRICE
}

// EVM is the virtual machine base object and provides the necessary tools to
// run a contract on the given state with the provided context. Any error
// generated through any of the calls results in a state rollback to the
// snapshot taken at the start of that call.
//
// The EVM should never be reused and is not thread safe.
type EVM struct {
	// Context provides auxiliary blockchain related information
	Context BlockContext
	TxContext
	// StateDB gives access to the underlying state
	StateDB StateDB

	// chainConfig contains information about the current chain
	chainConfig *config.ChainConfig
	// Config contains the interpreter configuration options
	Config Config

	// jumpdests caches the results of JUMPDEST analysis keyed by code hash
	jumpdests *lru.Cache
}

// NewEVM returns a new EVM. The returned EVM is not thread safe and should
// only ever be used from a single thread.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, chainConfig *config.ChainConfig, vmConfig Config) *EVM {
	jumpdests, _ := lru.New(codeAnalysisCacheSize)
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		StateDB:     statedb,
		chainConfig: chainConfig,
		Config:      vmConfig,
		jumpdests:   jumpdests,
	}
}

// ChainConfig returns the environment's chain configuration
func (evm *EVM) ChainConfig() *config.ChainConfig { return evm.chainConfig }

// Call executes the contract associated with addr with the given input as
// parameters. It also handles any necessary value transfer required and takes
// the necessary steps to create accounts and reverses the state in case of an
// execution error or failed value transfer.
func (evm *EVM) Call(caller ContractRef, addr common.Address, input []byte, value *big.Int) (ret []byte, err error) {
	// Fail if we're trying to transfer more than the available balance
	if !evm.Context.CanTransfer(evm.StateDB, caller.Address(), value) {
		return nil, ErrInsufficientBalance
	}
	snapshot := evm.StateDB.Snapshot()
	if !evm.StateDB.Exist(addr) {
		evm.StateDB.CreateAccount(addr)
	}
	evm.Context.Transfer(evm.StateDB, caller.Address(), addr, value)

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		// Calling a contract without code succeeds and leaves the
		// value transfer in place.
		return nil, nil
	}
	contract := NewContract(caller, AccountRef(addr), value, evm.jumpdests)
	contract.SetCallCode(&addr, evm.StateDB.GetCodeHash(addr), code)

	ret, err = NewInterpreter(evm, contract, input).Run()
	// Any error, a revert included, rolls the state back to the snapshot
	// taken above. The revert payload still travels up to the caller.
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
	}
	return ret, err
}

// Create creates a new contract using code as deployment code. The code that
// the interpreter returns becomes the code of the new account.
func (evm *EVM) Create(caller ContractRef, code []byte, value *big.Int) (ret []byte, contractAddr common.Address, err error) {
	if !evm.Context.CanTransfer(evm.StateDB, caller.Address(), value) {
		return nil, common.Address{}, ErrInsufficientBalance
	}
	// The contract address is derived from the creator and its pre-bump
	// nonce, so repeated creates from one account land on new addresses.
	nonce := evm.StateDB.GetNonce(caller.Address())
	evm.StateDB.SetNonce(caller.Address(), nonce+1)
	contractAddr = crypto.CreateAddress(caller.Address(), nonce)

	snapshot := evm.StateDB.Snapshot()
	evm.StateDB.CreateAccount(contractAddr)
	evm.StateDB.SetNonce(contractAddr, 1)
	evm.Context.Transfer(evm.StateDB, caller.Address(), contractAddr, value)

	contract := NewContract(caller, AccountRef(contractAddr), value, evm.jumpdests)
	contract.SetCallCode(&contractAddr, crypto.Keccak256Hash(code), code)

	ret, err = NewInterpreter(evm, contract, nil).Run()
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		return ret, contractAddr, err
	}
	evm.StateDB.SetCode(contractAddr, ret)
	return ret, contractAddr, nil
}
