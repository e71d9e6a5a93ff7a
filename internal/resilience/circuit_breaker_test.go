package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	failing := func() error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		assert.Error(t, cb.Call(failing))
	}

	assert.Equal(t, StateOpen, cb.State())

	// While open, calls are rejected without invoking the function
	invoked := false
	err := cb.Call(func() error {
		invoked = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, invoked)

	var cbErr *CircuitBreakerError
	assert.ErrorAs(t, err, &cbErr)
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// First success transitions to half-open, second closes the circuit
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})

	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, 1, cb.Failures())

	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, 0, cb.Failures())
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	assert.Equal(t, 5, cb.config.FailureThreshold)
	assert.Equal(t, 30*time.Second, cb.config.RecoveryTimeout)
	assert.Equal(t, 3, cb.config.SuccessThreshold)
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})

	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, StateOpen, cb.State())

	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Failures())
}
