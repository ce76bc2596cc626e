/*
Package resilience provides circuit breakers for application probes.

# Overview

A Breaker counts consecutive failures of calls made through it. Once the
count reaches FailureThreshold the circuit opens and calls fail with
ErrCircuitOpen without running. After Cooldown a limited number of trial
calls go through; if all of them succeed the circuit closes, any failure
opens it again.

A Group keys breakers by target so unrelated endpoints never share a
circuit.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         15 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Info("breaker", zap.String("target", name), zap.Stringer("to", to))
		},
	})

	err := group.Do(host, func() error {
		_, err := client.Get(url)
		return err
	})

# States

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[successes]-> Closed
	                                              |
	                                          [failure]
	                                              v
	                                             Open
*/
package resilience
