package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corevm/go-evm/common"
	"github.com/corevm/go-evm/state"
)

func TestCanTransfer(t *testing.T) {
	var (
		sdb  = state.New()
		addr = common.HexToAddress("0x01")
	)
	sdb.AddBalance(addr, big.NewInt(10))

	require.True(t, CanTransfer(sdb, addr, big.NewInt(9)))
	require.True(t, CanTransfer(sdb, addr, big.NewInt(10)))
	require.False(t, CanTransfer(sdb, addr, big.NewInt(11)))

	// an absent account can still transfer nothing
	absent := common.HexToAddress("0x02")
	require.True(t, CanTransfer(sdb, absent, new(big.Int)))
	require.False(t, CanTransfer(sdb, absent, big.NewInt(1)))
}

func TestTransfer(t *testing.T) {
	var (
		sdb       = state.New()
		sender    = common.HexToAddress("0x01")
		recipient = common.HexToAddress("0x02")
	)
	sdb.AddBalance(sender, big.NewInt(10))

	Transfer(sdb, sender, recipient, big.NewInt(3))
	require.Equal(t, int64(7), sdb.GetBalance(sender).Int64())
	require.Equal(t, int64(3), sdb.GetBalance(recipient).Int64())
}
