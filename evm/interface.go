package evm

import (
	"math/big"

	"github.com/corevm/go-evm/common"
)

// StateDB is the interface through which the machine reads and mutates
// accounts. Reads on absent accounts answer zero values; implementations must
// support nested snapshots for the rollback on failed calls.
type StateDB interface {
	CreateAccount(common.Address)

	SubBalance(common.Address, *big.Int)
	AddBalance(common.Address, *big.Int)
	GetBalance(common.Address) *big.Int

	GetNonce(common.Address) uint64
	SetNonce(common.Address, uint64)

	GetCodeHash(common.Address) common.Hash
	GetCode(common.Address) []byte
	SetCode(common.Address, []byte)
	GetCodeSize(common.Address) int

	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash)

	Exist(common.Address) bool

	Snapshot() int
	RevertToSnapshot(int)
}
