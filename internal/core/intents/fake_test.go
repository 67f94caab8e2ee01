package intents

import (
	"context"
	"sync"

	"gscchat/internal/core/daterange"
	"gscchat/internal/core/metrics"
)

var testPair = daterange.Pair{
	Current:  daterange.Range{Start: "2024-03-01", End: "2024-03-28"},
	Previous: daterange.Range{Start: "2024-02-02", End: "2024-02-29"},
}

// fakeSource answers plans from fixtures keyed by window and records every plan
type fakeSource struct {
	mu      sync.Mutex
	plans   []Plan
	cur     []metrics.RawRow
	prev    []metrics.RawRow
	totCur  metrics.RawRow
	totPrev metrics.RawRow
	// splitTotals answers filtered totals plans by their first filter's operator
	splitTotals map[Operator]metrics.RawRow
	err         error
}

func (f *fakeSource) record(p Plan) {
	f.mu.Lock()
	f.plans = append(f.plans, p)
	f.mu.Unlock()
}

func (f *fakeSource) Rows(_ context.Context, p Plan) ([]metrics.RawRow, error) {
	f.record(p)
	if f.err != nil {
		return nil, f.err
	}
	if p.Range == testPair.Previous {
		return f.prev, nil
	}
	return f.cur, nil
}

func (f *fakeSource) Totals(_ context.Context, p Plan) (metrics.RawRow, error) {
	f.record(p)
	if f.err != nil {
		return nil, f.err
	}
	if len(p.FilterGroups) > 0 && f.splitTotals != nil {
		op := p.FilterGroups[0].Filters[0].Operator
		if p.Range == testPair.Previous {
			op += "_prev"
		}
		return f.splitTotals[op], nil
	}
	if p.Range == testPair.Previous {
		return f.totPrev, nil
	}
	return f.totCur, nil
}

func (f *fakeSource) recorded() []Plan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Plan(nil), f.plans...)
}

func raw(keys []any, clicks, impr, ctr, pos float64) metrics.RawRow {
	return metrics.RawRow{"keys": keys, "clicks": clicks, "impressions": impr, "ctr": ctr, "position": pos}
}

func q(s string) []any { return []any{s} }

func qp(query, page string) []any { return []any{query, page} }
