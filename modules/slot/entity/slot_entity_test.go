package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotStatus(t *testing.T) {
	for _, valid := range []string{"BUSY", "SWAPPABLE", "SWAP_PENDING"} {
		status, err := ParseSlotStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, SlotStatus(valid), status)
	}

	for _, invalid := range []string{"", "busy", "FREE", "PENDING"} {
		_, err := ParseSlotStatus(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestTogglable(t *testing.T) {
	assert.True(t, SlotStatusBusy.Togglable())
	assert.True(t, SlotStatusSwappable.Togglable())
	assert.False(t, SlotStatusSwapPending.Togglable())
}
