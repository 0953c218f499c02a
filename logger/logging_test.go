package logger

import (
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	log := NewLogger("[test]")
	require.NotNil(t, log)
	require.Equal(t, "[test]", log.Module)
}

func TestSetLevel(t *testing.T) {
	log := NewLogger("[leveltest]")

	SetLevel(logging.WARNING, "[leveltest]")
	require.False(t, log.IsEnabledFor(logging.DEBUG))
	require.True(t, log.IsEnabledFor(logging.ERROR))

	SetLevel(logging.DEBUG, "[leveltest]")
	require.True(t, log.IsEnabledFor(logging.DEBUG))
}
