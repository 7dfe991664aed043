package session

import "golang.org/x/time/rate"

// inputRateLimit/inputBurst gate the per-connection gameplay message rate
// with a token bucket that holds 100 messages and refills at 100 per 10ms
// (10,000/s), so up to about 200 messages can pass within one 10ms window.
// No separate burst counter is kept; messages over the limit are dropped
// without a reply.
const (
	inputRateLimit = rate.Limit(100 / 0.01)
	inputBurst     = 100
)

// authRateLimit/authBurst gate authentication attempts per connection with
// a token bucket that holds 5 attempts and refills at 5 per 60 seconds (one
// every 12s), so up to 10 attempts can pass within one 60-second span.
const (
	authRateLimit = rate.Limit(5.0 / 60.0)
	authBurst     = 5
)

func newInputLimiter() *rate.Limiter { return rate.NewLimiter(inputRateLimit, inputBurst) }
func newAuthLimiter() *rate.Limiter  { return rate.NewLimiter(authRateLimit, authBurst) }
