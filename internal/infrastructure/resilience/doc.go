/*
Package resilience provides the circuit breaker that guards remote calls.

The session store and media downloads sit behind a breaker so that an
unreachable backend fails fast instead of stalling a lifecycle callback.

# Usage

	breaker := resilience.New("session-store", resilience.Settings{
		Cooldown: 30 * time.Second,
		ShouldTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	data, err := resilience.Do(breaker, func() ([]byte, error) {
		return fetch(ctx)
	})

# States

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[probe ok]-> Closed
	                                              |
	                                        [probe failed]
	                                              v
	                                             Open
*/
package resilience
