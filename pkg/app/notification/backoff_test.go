package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Base: time.Minute}
	assert.Equal(t, time.Minute, b.Delay(0))
	assert.Equal(t, 2*time.Minute, b.Delay(1))
	assert.Equal(t, 4*time.Minute, b.Delay(2))
	assert.Equal(t, 8*time.Minute, b.Delay(3))
}

func TestBackoff_DefaultsAndBounds(t *testing.T) {
	assert.Equal(t, 2*DefaultBaseDelay, Backoff{}.Delay(1))
	assert.Equal(t, time.Second, Backoff{Base: time.Second}.Delay(-3))
	assert.Equal(t, Backoff{Base: time.Second}.Delay(maxBackoffShift), Backoff{Base: time.Second}.Delay(500))
}
