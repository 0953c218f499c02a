package runtime

import (
	"github.com/corevm/go-evm/chain"
	"github.com/corevm/go-evm/evm"
)

// NewEnv builds a ready to use EVM from the runtime configuration.
func NewEnv(cfg *Config) *evm.EVM {
	txContext := evm.TxContext{
		Origin:   cfg.Origin,
		GasPrice: cfg.GasPrice,
	}
	blockContext := evm.BlockContext{
		CanTransfer: chain.CanTransfer,
		Transfer:    chain.Transfer,
		GetHash:     cfg.GetHashFn,
		Coinbase:    cfg.Coinbase,
		BlockNumber: cfg.BlockNumber,
		Time:        cfg.Time,
		Difficulty:  cfg.Difficulty,
		GasLimit:    cfg.GasLimit,
		BaseFee:     cfg.BaseFee,
	}
	return evm.NewEVM(blockContext, txContext, cfg.State, cfg.ChainConfig, cfg.EVMConfig)
}
