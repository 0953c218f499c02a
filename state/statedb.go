// Package state provides an in-memory account store for the virtual machine.
// Accounts hold a balance, a nonce, contract code and a 32-byte keyed slot
// map. Reads of anything absent yield zero values and never allocate.
package state

import (
	"math/big"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/common/crypto"
)

// emptyCodeHash is the known hash of an account with no code.
var emptyCodeHash = crypto.Keccak256Hash(nil)

// stateAccount is the state of a single account as tracked by the StateDB.
type stateAccount struct {
	balance *big.Int
	nonce   uint64

	code     []byte
	codeHash common.Hash

	storage map[common.Hash]common.Hash
}

func newStateAccount() *stateAccount {
	return &stateAccount{
		balance:  new(big.Int),
		codeHash: emptyCodeHash,
		storage:  make(map[common.Hash]common.Hash),
	}
}

// copy returns a deep copy of the account. Code is shared: SetCode replaces
// the slice wholesale and nothing mutates it in place.
func (acc *stateAccount) copy() *stateAccount {
	cpy := &stateAccount{
		balance:  new(big.Int).Set(acc.balance),
		nonce:    acc.nonce,
		code:     acc.code,
		codeHash: acc.codeHash,
		storage:  make(map[common.Hash]common.Hash, len(acc.storage)),
	}
	for key, value := range acc.storage {
		cpy.storage[key] = value
	}
	return cpy
}

// StateDB is an in-memory implementation of the evm.StateDB interface.
// It is not safe for concurrent use; every execution owns its own instance
// or is serialized by the embedder.
type StateDB struct {
	accounts  map[common.Address]*stateAccount
	snapshots []map[common.Address]*stateAccount
}

// New creates an empty state database.
func New() *StateDB {
	return &StateDB{
		accounts: make(map[common.Address]*stateAccount),
	}
}

// getAccount returns the account for addr, or nil when it does not exist.
func (sdb *StateDB) getAccount(addr common.Address) *stateAccount {
	return sdb.accounts[addr]
}

// getOrNewAccount returns the account for addr, creating it when missing.
func (sdb *StateDB) getOrNewAccount(addr common.Address) *stateAccount {
	acc := sdb.accounts[addr]
	if acc == nil {
		acc = newStateAccount()
		sdb.accounts[addr] = acc
	}
	return acc
}

// CreateAccount explicitly creates a record for addr. Creating an account
// that already exists is a no-op that keeps its balance and storage.
func (sdb *StateDB) CreateAccount(addr common.Address) {
	sdb.getOrNewAccount(addr)
}

// Exist reports whether a record for addr is present.
func (sdb *StateDB) Exist(addr common.Address) bool {
	return sdb.getAccount(addr) != nil
}

// GetBalance retrieves the balance of addr, or zero when absent. The
// returned value must not be modified by the caller.
func (sdb *StateDB) GetBalance(addr common.Address) *big.Int {
	if acc := sdb.getAccount(addr); acc != nil {
		return acc.balance
	}
	return new(big.Int)
}

// AddBalance adds amount to the account associated with addr.
func (sdb *StateDB) AddBalance(addr common.Address, amount *big.Int) {
	acc := sdb.getOrNewAccount(addr)
	acc.balance = new(big.Int).Add(acc.balance, amount)
}

// SubBalance subtracts amount from the account associated with addr.
func (sdb *StateDB) SubBalance(addr common.Address, amount *big.Int) {
	acc := sdb.getOrNewAccount(addr)
	acc.balance = new(big.Int).Sub(acc.balance, amount)
}

// GetNonce returns the nonce of addr, or zero when absent.
func (sdb *StateDB) GetNonce(addr common.Address) uint64 {
	if acc := sdb.getAccount(addr); acc != nil {
		return acc.nonce
	}
	return 0
}

// SetNonce sets the nonce of addr.
func (sdb *StateDB) SetNonce(addr common.Address, nonce uint64) {
	sdb.getOrNewAccount(addr).nonce = nonce
}

// GetCode returns the code installed at addr, or nil when there is none.
func (sdb *StateDB) GetCode(addr common.Address) []byte {
	if acc := sdb.getAccount(addr); acc != nil {
		return acc.code
	}
	return nil
}

// SetCode installs code at addr and records its Keccak256 hash.
func (sdb *StateDB) SetCode(addr common.Address, code []byte) {
	acc := sdb.getOrNewAccount(addr)
	acc.code = common.CopyBytes(code)
	acc.codeHash = crypto.Keccak256Hash(code)
}

// GetCodeSize returns the size of the code installed at addr.
func (sdb *StateDB) GetCodeSize(addr common.Address) int {
	if acc := sdb.getAccount(addr); acc != nil {
		return len(acc.code)
	}
	return 0
}

// GetCodeHash returns the hash of the code at addr. Absent accounts report
// the zero hash, accounts without code the hash of empty input.
func (sdb *StateDB) GetCodeHash(addr common.Address) common.Hash {
	if acc := sdb.getAccount(addr); acc != nil {
		return acc.codeHash
	}
	return common.Hash{}
}

// GetState retrieves the value of the given storage slot, or the zero hash
// when either the account or the slot is absent.
func (sdb *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if acc := sdb.getAccount(addr); acc != nil {
		return acc.storage[key]
	}
	return common.Hash{}
}

// SetState stores value in the given slot, creating the account as needed.
func (sdb *StateDB) SetState(addr common.Address, key, value common.Hash) {
	sdb.getOrNewAccount(addr).storage[key] = value
}

// Snapshot captures the current state and returns an identifier that can be
// passed to RevertToSnapshot.
func (sdb *StateDB) Snapshot() int {
	cpy := make(map[common.Address]*stateAccount, len(sdb.accounts))
	for addr, acc := range sdb.accounts {
		cpy[addr] = acc.copy()
	}
	sdb.snapshots = append(sdb.snapshots, cpy)
	return len(sdb.snapshots) - 1
}

// RevertToSnapshot restores the state captured by the given snapshot and
// discards it together with any later snapshots.
func (sdb *StateDB) RevertToSnapshot(id int) {
	if id < 0 || id >= len(sdb.snapshots) {
		return
	}
	sdb.accounts = sdb.snapshots[id]
	sdb.snapshots = sdb.snapshots[:id]
}
