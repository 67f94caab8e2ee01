package store

import (
	"context"
	"time"
)

// mapScanner is implemented by rows that build their own typed scan targets
type mapScanner interface {
	ScanMap() (map[string]any, error)
}

// Maps runs sql and returns every row keyed by column name
func Maps(ctx context.Context, q Querier, sql string, args ...any) ([]map[string]any, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMap(rows Rows) (map[string]any, error) {
	if ms, ok := rows.(mapScanner); ok {
		return ms.ScanMap()
	}
	cols := rows.Columns()
	vals := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		m[c] = deref(vals[i])
	}
	return m, nil
}

func value[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// deref flattens the nullable pointers drivers hand back
func deref(v any) any {
	switch p := v.(type) {
	case *time.Time:
		return value(p)
	case *string:
		return value(p)
	case *float64:
		return value(p)
	case *int64:
		return value(p)
	}
	return v
}
