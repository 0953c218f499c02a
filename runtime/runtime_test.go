package runtime

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/common/crypto"
	"github.com/corevm/go-evm/config"
	"github.com/corevm/go-evm/evm"
	"github.com/corevm/go-evm/state"
)

func TestDefaults(t *testing.T) {
	cfg := new(Config)
	setDefaults(cfg)

	if cfg.ChainConfig != config.TestChainConfig {
		t.Error("expected test chain config")
	}
	if cfg.Difficulty == nil {
		t.Error("expected difficulty to be non nil")
	}
	if cfg.Time == nil {
		t.Error("expected time to be non nil")
	}
	if cfg.GasLimit == 0 {
		t.Error("didn't expect gaslimit to be zero")
	}
	if cfg.GasPrice == nil {
		t.Error("expected gasprice to be non nil")
	}
	if cfg.Value == nil {
		t.Error("expected value to be non nil")
	}
	if cfg.GetHashFn == nil {
		t.Error("expected hash function to be non nil")
	}
	if cfg.BlockNumber == nil {
		t.Error("expected block number to be non nil")
	}
	if cfg.BaseFee == nil {
		t.Error("expected base fee to be non nil")
	}
	if cfg.State == nil {
		t.Error("expected state to be non nil")
	}
}

func TestDefaultGetHashFn(t *testing.T) {
	cfg := new(Config)
	setDefaults(cfg)

	// block hashes default to the hash of the decimal block number
	want := common.BytesToHash(crypto.Keccak256([]byte("42")))
	if have := cfg.GetHashFn(42); have != want {
		t.Errorf("got %x, want %x", have, want)
	}
}

func TestEVM(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("crashed with: %v", r)
		}
	}()

	Execute([]byte{
		byte(evm.DIFFICULTY),
		byte(evm.TIMESTAMP),
		byte(evm.GASLIMIT),
		byte(evm.PUSH1),
		byte(evm.ORIGIN),
		byte(evm.BLOCKHASH),
		byte(evm.COINBASE),
	}, nil, nil)
}

func TestExecute(t *testing.T) {
	ret, _, err := Execute([]byte{
		byte(evm.PUSH1), 10,
		byte(evm.PUSH1), 0,
		byte(evm.MSTORE),
		byte(evm.PUSH1), 32,
		byte(evm.PUSH1), 0,
		byte(evm.RETURN),
	}, nil, nil)
	if err != nil {
		t.Fatal("didn't expect error", err)
	}

	num := new(big.Int).SetBytes(ret)
	if num.Cmp(big.NewInt(10)) != 0 {
		t.Error("Expected 10, got", num)
	}
}

func TestExecuteStatePersists(t *testing.T) {
	code := []byte{
		byte(evm.PUSH1), 0x2a,
		byte(evm.PUSH1), 0x01,
		byte(evm.SSTORE),
		byte(evm.STOP),
	}
	_, statedb, err := Execute(code, nil, nil)
	if err != nil {
		t.Fatal("didn't expect error", err)
	}

	address := common.BytesToAddress([]byte("contract"))
	want := common.BytesToHash(big.NewInt(0x2a).Bytes())
	if have := statedb.GetState(address, common.BytesToHash(big.NewInt(1).Bytes())); have != want {
		t.Errorf("got %x, want %x", have, want)
	}
	if !bytes.Equal(statedb.GetCode(address), code) {
		t.Error("expected the executed code to be installed at the contract address")
	}
}

func TestExecuteRevert(t *testing.T) {
	// stores to slot 0, then reverts with a one byte payload
	ret, statedb, err := Execute([]byte{
		byte(evm.PUSH1), 1,
		byte(evm.PUSH1), 0,
		byte(evm.SSTORE),
		byte(evm.PUSH1), 0xaa,
		byte(evm.PUSH1), 0,
		byte(evm.MSTORE8),
		byte(evm.PUSH1), 1,
		byte(evm.PUSH1), 0,
		byte(evm.REVERT),
	}, nil, nil)
	if err != evm.ErrExecutionReverted {
		t.Fatalf("got %v, want %v", err, evm.ErrExecutionReverted)
	}
	if !bytes.Equal(ret, []byte{0xaa}) {
		t.Errorf("got payload %x, want aa", ret)
	}

	address := common.BytesToAddress([]byte("contract"))
	if statedb.GetState(address, common.Hash{}) != (common.Hash{}) {
		t.Error("expected the storage write to be rolled back")
	}
}

func TestExecuteValueTransfer(t *testing.T) {
	statedb := state.New()
	origin := common.HexToAddress("0x000000000000000000000000000000000000beef")
	statedb.AddBalance(origin, big.NewInt(10))

	cfg := &Config{Origin: origin, Value: big.NewInt(4), State: statedb}
	_, _, err := Execute([]byte{byte(evm.STOP)}, nil, cfg)
	if err != nil {
		t.Fatal("didn't expect error", err)
	}

	address := common.BytesToAddress([]byte("contract"))
	if have := statedb.GetBalance(origin).Int64(); have != 6 {
		t.Errorf("origin balance: got %d, want 6", have)
	}
	if have := statedb.GetBalance(address).Int64(); have != 4 {
		t.Errorf("contract balance: got %d, want 4", have)
	}
}

func TestExecuteInsufficientBalance(t *testing.T) {
	cfg := &Config{Value: big.NewInt(1)}
	_, _, err := Execute([]byte{byte(evm.STOP)}, nil, cfg)
	if err != evm.ErrInsufficientBalance {
		t.Fatalf("got %v, want %v", err, evm.ErrInsufficientBalance)
	}
}

func TestCall(t *testing.T) {
	statedb := state.New()
	address := common.HexToAddress("0x0a")
	statedb.SetCode(address, []byte{
		byte(evm.PUSH1), 10,
		byte(evm.PUSH1), 0,
		byte(evm.MSTORE),
		byte(evm.PUSH1), 32,
		byte(evm.PUSH1), 0,
		byte(evm.RETURN),
	})

	ret, err := Call(address, nil, &Config{State: statedb})
	if err != nil {
		t.Fatal("didn't expect error", err)
	}

	num := new(big.Int).SetBytes(ret)
	if num.Cmp(big.NewInt(10)) != 0 {
		t.Error("Expected 10, got", num)
	}
}

func TestCreate(t *testing.T) {
	runtime := []byte{
		byte(evm.PUSH1), 42,
		byte(evm.PUSH1), 0,
		byte(evm.MSTORE),
		byte(evm.PUSH1), 32,
		byte(evm.PUSH1), 0,
		byte(evm.RETURN),
	}
	deploy := append([]byte{
		byte(evm.PUSH1), byte(len(runtime)),
		byte(evm.PUSH1), 12,
		byte(evm.PUSH1), 0,
		byte(evm.CODECOPY),
		byte(evm.PUSH1), byte(len(runtime)),
		byte(evm.PUSH1), 0,
		byte(evm.RETURN),
	}, runtime...)

	cfg := new(Config)
	code, address, err := Create(deploy, cfg)
	if err != nil {
		t.Fatal("didn't expect error", err)
	}
	if !bytes.Equal(code, runtime) {
		t.Errorf("deployed code: got %x, want %x", code, runtime)
	}
	if want := crypto.CreateAddress(cfg.Origin, 0); address != want {
		t.Errorf("contract address: got %x, want %x", address, want)
	}

	// the deployed contract is callable through the shared state
	ret, err := Call(address, nil, cfg)
	if err != nil {
		t.Fatal("didn't expect error", err)
	}
	if num := new(big.Int).SetBytes(ret); num.Cmp(big.NewInt(42)) != 0 {
		t.Error("Expected 42, got", num)
	}
}
