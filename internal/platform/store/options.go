package store

import (
	"fmt"

	"gscchat/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithBackend installs an already opened backend; Open will not dial that kind
func WithBackend(k Kind, b Backend) Option {
	return func(s *Store) error {
		switch k {
		case KindPostgres:
			s.PG = b
		case KindClickhouse:
			s.CH = b
		default:
			return fmt.Errorf("store: unknown backend %q", k)
		}
		return nil
	}
}
