package httpserver

import "errors"

var (
	// ErrStart wraps listener and startup failures from Run, including a
	// second Run call on the same Server.
	ErrStart = errors.New("http server failed to start")

	// ErrShutdown wraps graceful shutdown failures. The underlying
	// server is closed even when it is returned.
	ErrShutdown = errors.New("http server shutdown failed")
)
