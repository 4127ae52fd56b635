package store

import "hansard/internal/platform/logger"

// Option adjusts the Store before backends open
type Option func(*Store) error

// WithLogger sets the logger the sql tracer and boot pings write to
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
