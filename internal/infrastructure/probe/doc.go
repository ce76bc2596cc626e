/*
Package probe checks whether a launched application answers.

Client implements the launcher's Prober. HTTP addresses get a single GET
through resty (redirects are reported, not followed) with transport
retries, a token bucket limiter and one circuit breaker per host. 5xx
answers count against the breaker but are still returned as statuses.
file:// addresses are checked by stat and mapped onto 200, 403 and 404.

	client := probe.NewClient(probe.DefaultConfig(), logger)
	status, err := client.Probe(ctx, "http://localhost:5173", nil)
*/
package probe
