package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(clock *fakeClock, trip uint32) *Breaker {
	return New("test", Settings{
		MaxProbes: 1,
		Window:    time.Minute,
		Cooldown:  10 * time.Second,
		ShouldTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		now: clock.now,
	})
}

var errBoom = errors.New("boom")

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		requests []bool // true = success, false = failure
		want     State
	}{
		{"stays closed on successes", []bool{true, true, true}, StateClosed},
		{"opens after consecutive failures", []bool{false, false, false}, StateOpen},
		{"success resets the streak", []bool{false, false, true, false, false}, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(0, 0)}
			breaker := newTestBreaker(clock, 3)

			for _, success := range tt.requests {
				if success {
					_ = breaker.Execute(succeed)
				} else {
					_ = breaker.Execute(fail)
				}
			}

			assert.Equal(t, tt.want, breaker.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	breaker := newTestBreaker(clock, 1)

	require.ErrorIs(t, breaker.Execute(fail), errBoom)
	require.Equal(t, StateOpen, breaker.State())

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.ErrorIs(t, breaker.Allow(), ErrCircuitOpen)
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	breaker := newTestBreaker(clock, 1)
	_ = breaker.Execute(fail)

	clock.advance(11 * time.Second)
	assert.Equal(t, StateHalfOpen, breaker.State())
	assert.NoError(t, breaker.Allow())

	t.Run("successful probe closes", func(t *testing.T) {
		require.NoError(t, breaker.Execute(succeed))
		assert.Equal(t, StateClosed, breaker.State())
	})

	t.Run("failed probe reopens", func(t *testing.T) {
		_ = breaker.Execute(fail)
		require.Equal(t, StateOpen, breaker.State())
		clock.advance(11 * time.Second)
		require.Equal(t, StateHalfOpen, breaker.State())

		assert.ErrorIs(t, breaker.Execute(fail), errBoom)
		assert.Equal(t, StateOpen, breaker.State())
	})
}

func TestBreakerCountsResetAfterWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	breaker := newTestBreaker(clock, 5)

	_ = breaker.Execute(fail)
	_ = breaker.Execute(succeed)
	counts := breaker.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)

	clock.advance(2 * time.Minute)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, Counts{}, breaker.Counts())
}

func TestDoReturnsValue(t *testing.T) {
	breaker := New("values", Settings{})

	got, err := Do(breaker, func() ([]byte, error) {
		return []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), got)
}

func TestDoRecordsPanicAsFailure(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	breaker := newTestBreaker(clock, 1)

	assert.Panics(t, func() {
		_ = breaker.Execute(func() error { panic("kaboom") })
	})
	assert.Equal(t, StateOpen, breaker.State())
}

func TestOnStateChange(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var changes []string
	breaker := New("watched", Settings{
		Cooldown: time.Second,
		ShouldTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
		OnStateChange: func(name string, from, to State) {
			changes = append(changes, name+":"+from.String()+"->"+to.String())
		},
		now: clock.now,
	})

	_ = breaker.Execute(fail)
	clock.advance(2 * time.Second)
	_ = breaker.Execute(succeed)

	assert.Equal(t, []string{
		"watched:closed->open",
		"watched:open->half-open",
		"watched:half-open->closed",
	}, changes)
}
