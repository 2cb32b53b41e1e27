package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusSent, false},
		{StatusPending, StatusFailed, false},
		{StatusProcessing, StatusSent, true},
		{StatusProcessing, StatusPending, true},
		{StatusProcessing, StatusFailed, true},
		{StatusSent, StatusProcessing, false},
		{StatusSent, StatusPending, false},
		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusSent.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, st)

	_, err = ParseStatus("queued")
	assert.Error(t, err)
}

func TestParseChannel(t *testing.T) {
	for _, c := range Channels() {
		parsed, err := ParseChannel(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseChannel("fax")
	assert.Error(t, err)
}
