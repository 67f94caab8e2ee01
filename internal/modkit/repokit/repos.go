// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"gscchat/internal/platform/store"
)

// Queryer is the read surface metrics repos bind to
type Queryer = store.Querier

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Backend is an opened metrics database
	Backend = store.Backend
)

// Pick returns the backend matching kind, nil when that kind is not configured
func Pick(kind store.Kind, pg, ch Backend) Backend {
	switch kind {
	case store.KindPostgres:
		return pg
	case store.KindClickhouse:
		return ch
	}
	return nil
}
