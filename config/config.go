// Package config holds the chain configuration and the protocol constants of
// the virtual machine.
package config

import (
	"fmt"
	"math/big"
)

// Protocol constants enforced by the virtual machine.
const (
	// StackLimit is the maximum number of items on the operand stack.
	StackLimit uint64 = 1024

	// InitialBaseFee is the base fee reported by BASEFEE when the embedder
	// does not configure one.
	InitialBaseFee uint64 = 1000000000
)

var (
	// MainnetChainConfig is the chain parameters to run a node on the main
	// network.
	MainnetChainConfig = &ChainConfig{
		ChainID: big.NewInt(1),
	}

	// TestChainConfig is the chain parameters used by the unit tests.
	TestChainConfig = &ChainConfig{
		ChainID: big.NewInt(1337),
	}
)

// NetworkNames are user friendly names to use when printing a chain
// configuration.
var NetworkNames = map[string]string{
	MainnetChainConfig.ChainID.String(): "mainNet",
	TestChainConfig.ChainID.String():    "testNet",
}

// ChainConfig is the set of chain parameters executing code can observe.
// A single instruction set is valid for the lifetime of the chain, so unlike
// a full node configuration there is no fork schedule here.
type ChainConfig struct {
	ChainID *big.Int `json:"chainId"` // chainId identifies the current chain and is used for replay protection
}

// String implements the fmt.Stringer interface.
func (cc *ChainConfig) String() string {
	network := NetworkNames[cc.ChainID.String()]
	if network == "" {
		network = "unknown"
	}
	return fmt.Sprintf("{ChainID: %v (%s)}", cc.ChainID, network)
}
