package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_InitialState(t *testing.T) {
	b := New("test")
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "test", b.Name())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New("test", WithFailureThreshold(3))

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("test", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordSuccess()

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_StaysOpenBeforeCooldown(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := New("test", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock))

	b.RecordFailure()
	assert.True(t, b.IsOpen())
	assert.Equal(t, StateOpen, b.State())

	now = now.Add(30 * time.Second)
	assert.True(t, b.IsOpen(), "cooldown has not elapsed yet")
}

func TestBreaker_HalfOpensAfterCooldownThenCloses(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := New("test", WithFailureThreshold(1), WithSuccessThreshold(2), WithCooldown(time.Minute), WithClock(clock))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	now = now.Add(time.Minute)
	assert.False(t, b.IsOpen(), "cooldown elapsed: trial call should be allowed")
	assert.Equal(t, StateHalfOpen, b.State())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)
	assert.Equal(t, StateHalfOpen, b.State())

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopensImmediately(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := New("test", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock))

	b.RecordFailure()
	now = now.Add(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("test", WithFailureThreshold(1))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_OpenCircuitReturnsFallback(t *testing.T) {
	b := New("test", WithFailureThreshold(1), WithCooldown(time.Hour))

	b.RecordFailure()

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}
