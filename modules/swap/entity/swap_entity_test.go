package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwapStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "ACCEPTED", "REJECTED"} {
		status, err := ParseSwapStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, SwapStatus(valid), status)
	}

	_, err := ParseSwapStatus("CANCELLED")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	assert.False(t, SwapStatusPending.Terminal())
	assert.True(t, SwapStatusAccepted.Terminal())
	assert.True(t, SwapStatusRejected.Terminal())
}
