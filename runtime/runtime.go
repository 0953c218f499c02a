package runtime

import (
	"math"
	"math/big"
	"time"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/common/crypto"
	"github.com/corevm/go-evm/config"
	"github.com/corevm/go-evm/evm"
	"github.com/corevm/go-evm/logger"
	"github.com/corevm/go-evm/state"
)

var log = logger.NewLogger("[runtime]")

// Config is a basic type specifying certain configuration flags for running
// the EVM.
type Config struct {
	ChainConfig *config.ChainConfig
	Difficulty  *big.Int
	Origin      common.Address
	Coinbase    common.Address
	BlockNumber *big.Int
	Time        *big.Int
	GasLimit    uint64
	GasPrice    *big.Int
	Value       *big.Int
	Debug       bool
	EVMConfig   evm.Config
	BaseFee     *big.Int

	State     *state.StateDB
	GetHashFn func(n uint64) common.Hash
}

// sets defaults on the config
func setDefaults(cfg *Config) {
	if cfg.ChainConfig == nil {
		cfg.ChainConfig = config.TestChainConfig
	}
	if cfg.Difficulty == nil {
		cfg.Difficulty = new(big.Int)
	}
	if cfg.Time == nil {
		cfg.Time = big.NewInt(time.Now().Unix())
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = math.MaxUint64
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = new(big.Int)
	}
	if cfg.Value == nil {
		cfg.Value = new(big.Int)
	}
	if cfg.BlockNumber == nil {
		cfg.BlockNumber = new(big.Int)
	}
	if cfg.GetHashFn == nil {
		cfg.GetHashFn = func(n uint64) common.Hash {
			return common.BytesToHash(crypto.Keccak256([]byte(new(big.Int).SetUint64(n).String())))
		}
	}
	if cfg.BaseFee == nil {
		cfg.BaseFee = big.NewInt(int64(config.InitialBaseFee))
	}
	if cfg.State == nil {
		cfg.State = state.New()
	}
	if cfg.Debug {
		cfg.EVMConfig.Debug = true
	}
}

// Execute executes the code using the input as call data during the execution.
// It returns the EVM's return value, the new state and an error if it failed.
//
// Execute sets up an in-memory, temporary, environment for the execution of
// the given code. It makes sure that it's restored to its original state afterwards.
func Execute(code, input []byte, cfg *Config) ([]byte, *state.StateDB, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	var (
		address = common.BytesToAddress([]byte("contract"))
		vmenv   = NewEnv(cfg)
		sender  = evm.AccountRef(cfg.Origin)
	)
	cfg.State.CreateAccount(address)
	// set the receiver's (the executing contract) code for execution.
	cfg.State.SetCode(address, code)
	log.Debugf("execute address:%x, code:%d bytes, input:%d bytes", address, len(code), len(input))

	// Call the code with the given configuration.
	ret, err := vmenv.Call(
		sender,
		address,
		input,
		cfg.Value,
	)
	return ret, cfg.State, err
}

// Create executes the code using the EVM create method
func Create(input []byte, cfg *Config) ([]byte, common.Address, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	var (
		vmenv  = NewEnv(cfg)
		sender = evm.AccountRef(cfg.Origin)
	)
	// Run the deployment code; the returned code becomes the account's.
	code, address, err := vmenv.Create(
		sender,
		input,
		cfg.Value,
	)
	return code, address, err
}

// Call executes the code given by the contract's address. It will return the
// EVM's return value or an error if it failed.
//
// Call, unlike Execute, requires a config and also requires the State field to
// be set.
func Call(address common.Address, input []byte, cfg *Config) ([]byte, error) {
	setDefaults(cfg)

	vmenv := NewEnv(cfg)
	sender := evm.AccountRef(cfg.Origin)

	// Call the code with the given configuration.
	ret, err := vmenv.Call(
		sender,
		address,
		input,
		cfg.Value,
	)
	return ret, err
}
