package httpserver

import "time"

// Config carries HTTP server settings loaded from the environment.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`          // Listen address.
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`    // Deadline for reading the full request.
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`   // Deadline for writing the response.
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`   // Keep-alive idle window.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"` // Grace period for draining in-flight requests.
}

// NewFromConfig builds a Server from cfg. Zero values are skipped so the
// option defaults apply; extra opts run after the config and win conflicts.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	options := make([]Option, 0, 5+len(opts))

	if cfg.Addr != "" {
		options = append(options, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		options = append(options, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		options = append(options, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		options = append(options, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		options = append(options, WithShutdownTimeout(cfg.ShutdownTimeout))
	}

	options = append(options, opts...)

	return New(options...)
}
