package config

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainConfigString(t *testing.T) {
	require.Equal(t, "{ChainID: 1 (mainNet)}", MainnetChainConfig.String())
	require.Equal(t, "{ChainID: 1337 (testNet)}", TestChainConfig.String())
}

func TestChainConfigStringUnknown(t *testing.T) {
	cc := &ChainConfig{ChainID: big.NewInt(99)}
	require.Equal(t, "{ChainID: 99 (unknown)}", cc.String())
}
