// Package resilience provides retry and circuit breaking for outbound calls.
//
// authkit's core never retries on its own. These patterns are opt-in and
// only used by the httpclient transport when its Config enables them:
//
//	cfg := httpclient.Config{
//	    Retry:          httpclient.DefaultRetryConfig(),
//	    CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("github"),
//	}
package resilience
