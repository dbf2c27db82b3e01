package pdfserve

import "time"

// defaultTimeout is used when no render timeout is specified.
const defaultTimeout = 30 * time.Second

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
	workers int
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdfserve: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithWorkers caps the number of concurrent browser instances.
// Zero means auto-size from GOMAXPROCS (see ResolvePoolSize).
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.cfg.workers = n
	}
}
