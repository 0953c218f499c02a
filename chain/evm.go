package chain

import (
	"math/big"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/evm"
)

// CanTransfer checks whether there are enough funds in the address' account
// to make a transfer.
func CanTransfer(db evm.StateDB, addr common.Address, amount *big.Int) bool {
	return db.GetBalance(addr).Cmp(amount) >= 0
}

// Transfer subtracts amount from sender and adds amount to recipient using
// the given Db
func Transfer(db evm.StateDB, sender, recipient common.Address, amount *big.Int) {
	db.SubBalance(sender, amount)
	db.AddBalance(recipient, amount)
}
