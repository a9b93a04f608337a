package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned by Connect when no REDIS_URL is
	// configured. Callers that treat Redis as optional should branch on
	// the empty config value instead of calling Connect.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL")

	// ErrFailedToParseRedisConnString wraps URL parsing failures.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")

	// ErrRedisNotReady is returned when the server does not answer a
	// ping within the configured retry budget.
	ErrRedisNotReady = errors.New("redis did not become ready within the given time period")

	// ErrHealthcheckFailed wraps ping failures from the readiness probe.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
