package evm

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"

	"github.com/corevm/go-evm/common"
)

// ContractRef is a reference to the contract's backing object
type ContractRef interface {
	Address() common.Address
}

// AccountRef implements ContractRef.
//
// Account references are used during EVM initialisation and its primary use
// is to fetch addresses. Removing this object proves difficult because of the
// cached jump destinations which are fetched from the parent contract (i.e.
// the caller).
type AccountRef common.Address

// Address casts AccountRef into an Address
func (ar AccountRef) Address() common.Address { return (common.Address)(ar) }

// Contract represents an evm contract in the state database. It contains
// the contract code and calling arguments.
type Contract struct {
	// CallerAddress is the result of the caller which initialised this
	// contract.
	CallerAddress common.Address
	caller        ContractRef
	self          ContractRef

	jumpdests *lru.Cache // Aggregated result of JUMPDEST analysis, keyed by code hash
	analysis  bitvec     // Locally cached result of JUMPDEST analysis

	Code     []byte
	CodeHash common.Hash
	CodeAddr *common.Address
	Input    []byte

	value *big.Int
}

// NewContract returns a new contract environment for the execution of EVM
// bytecode. The jumpdests cache is shared with the owning EVM so analyses
// survive across calls to the same code.
func NewContract(caller ContractRef, object ContractRef, value *big.Int, jumpdests *lru.Cache) *Contract {
	return &Contract{
		CallerAddress: caller.Address(),
		caller:        caller,
		self:          object,
		jumpdests:     jumpdests,
		value:         value,
	}
}

func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	// PC cannot go beyond len(code) and certainly can't be bigger than 63bits.
	// Don't bother checking for JUMPDEST in that case.
	if overflow || udest >= uint64(len(c.Code)) {
		return false
	}
	// Only JUMPDESTs allowed for destinations
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

// isCode returns true if the provided PC location is an actual opcode, as
// opposed to a data-segment following a PUSHN operation.
func (c *Contract) isCode(udest uint64) bool {
	// Do we already have an analysis laying around?
	if c.analysis != nil {
		return c.analysis.codeSegment(udest)
	}
	// Do we have a contract hash already?
	// If we do have a hash, that means it's a 'regular' contract. For regular
	// contracts (not temporary initcode), we store the analysis in the
	// shared cache.
	if c.CodeHash != (common.Hash{}) && c.jumpdests != nil {
		analysis, exist := c.jumpdests.Get(c.CodeHash)
		if !exist {
			// Do the analysis and save in the cache
			analysis = codeBitmap(c.Code)
			c.jumpdests.Add(c.CodeHash, analysis)
		}
		// Also stash it in the contract itself, to avoid cache lookups
		c.analysis = analysis.(bitvec)
		return c.analysis.codeSegment(udest)
	}
	// We don't have the code hash, most likely a piece of initcode not already
	// in state. In that case, we do an analysis, and save it locally, so
	// we don't have to recalculate it for every JUMP instruction in the
	// execution.
	c.analysis = codeBitmap(c.Code)
	return c.analysis.codeSegment(udest)
}

// GetOp returns the n'th element in the contract's byte array
func (c *Contract) GetOp(n uint64) OpCode {
	return OpCode(c.GetByte(n))
}

// GetByte returns the n'th byte in the contract's byte array
func (c *Contract) GetByte(n uint64) byte {
	if n < uint64(len(c.Code)) {
		return c.Code[n]
	}
	return 0
}

// Caller returns the caller of the contract.
func (c *Contract) Caller() common.Address {
	return c.CallerAddress
}

// Address returns the contracts address
func (c *Contract) Address() common.Address {
	return c.self.Address()
}

// Value returns the contract's value (sent to it from it's caller)
func (c *Contract) Value() *big.Int {
	return c.value
}

// SetCallCode sets the code of the contract and address of the backing data
// object
func (c *Contract) SetCallCode(addr *common.Address, hash common.Hash, code []byte) {
	c.Code = code
	c.CodeHash = hash
	c.CodeAddr = addr
}
