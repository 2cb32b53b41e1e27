package httpx

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_Execute(t *testing.T) {
	tests := []struct {
		name    string
		fn      func() error
		wantErr string
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "failure is wrapped", fn: func() error { return errors.New("provider 503") }, wantErr: "breaker (email): provider 503"},
		{name: "panic is recovered", fn: func() error { panic("boom") }, wantErr: "panic recovered: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := NewCircuitBreaker("email", 30*time.Second, 3)
			err := breaker.Execute(tt.fn)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker := NewCircuitBreaker("sms", 30*time.Second, 2)

	assert.Error(t, breaker.Execute(func() error { return errors.New("failure 1") }))
	assert.Equal(t, gobreaker.StateClosed.String(), breaker.State())
	assert.Error(t, breaker.Execute(func() error { return errors.New("failure 2") }))
	assert.Equal(t, gobreaker.StateOpen.String(), breaker.State())

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, IsBreakerOpen(err))
	assert.Contains(t, err.Error(), "breaker (sms)")
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	breaker := NewCircuitBreaker("email", 30*time.Second, 2)
	wrapper, _ := breaker.(*circuitBreakerWrapper) //nolint:errcheck

	_ = breaker.Execute(func() error { return errors.New("fail") }) //nolint:errcheck
	_ = breaker.Execute(func() error { return nil })                //nolint:errcheck
	_ = breaker.Execute(func() error { return errors.New("fail") }) //nolint:errcheck

	counts := wrapper.breaker.Counts()
	assert.Equal(t, uint32(3), counts.Requests)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, gobreaker.StateClosed.String(), breaker.State())
}

func TestCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	breaker := NewCircuitBreaker("recovery", 50*time.Millisecond, 1)

	assert.Error(t, breaker.Execute(func() error { return errors.New("trigger") }))
	assert.Equal(t, gobreaker.StateOpen.String(), breaker.State())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen.String(), breaker.State())
	assert.NoError(t, breaker.Execute(func() error { return nil }))
	assert.Equal(t, gobreaker.StateClosed.String(), breaker.State())
}

func TestIsBreakerOpen(t *testing.T) {
	assert.False(t, IsBreakerOpen(errors.New("timeout")))
	assert.False(t, IsBreakerOpen(nil))
	assert.True(t, IsBreakerOpen(gobreaker.ErrTooManyRequests))
}
