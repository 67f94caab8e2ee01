package intents

import (
	"sort"

	"gscchat/internal/core/metrics"
	"gscchat/internal/core/textfold"
)

// maxListedPages bounds PageShare lists on cannibalization rows
const maxListedPages = 5

// deltaShaper filters and orders joined rows for one intent
type deltaShaper func(rows []metrics.DeltaRow, th Thresholds) []metrics.DeltaRow

func byDeltaClicksDesc(rows []metrics.DeltaRow, _ Thresholds) []metrics.DeltaRow {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.DeltaClicks != b.DeltaClicks {
			return a.DeltaClicks > b.DeltaClicks
		}
		return a.Key < b.Key
	})
	return rows
}

func byDeltaClicksAsc(rows []metrics.DeltaRow, _ Thresholds) []metrics.DeltaRow {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.DeltaClicks != b.DeltaClicks {
			return a.DeltaClicks < b.DeltaClicks
		}
		return a.Key < b.Key
	})
	return rows
}

// lowCTRScore weights current impressions by the share that did not click
func lowCTRScore(r metrics.DeltaRow) float64 { return r.ImpressionsCurrent * (1 - r.CTRCurrent) }

func highImpressLowCTR(rows []metrics.DeltaRow, _ Thresholds) []metrics.DeltaRow {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if sa, sb := lowCTRScore(a), lowCTRScore(b); sa != sb {
			return sa > sb
		}
		if a.ImpressionsCurrent != b.ImpressionsCurrent {
			return a.ImpressionsCurrent > b.ImpressionsCurrent
		}
		if a.CTRCurrent != b.CTRCurrent {
			return a.CTRCurrent < b.CTRCurrent
		}
		return a.Key < b.Key
	})
	return rows
}

func positionUpClicksDown(rows []metrics.DeltaRow, _ Thresholds) []metrics.DeltaRow {
	out := rows[:0]
	for _, r := range rows {
		if r.DeltaClicks < 0 && r.DeltaPosition > 0 {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DeltaClicks != b.DeltaClicks {
			return a.DeltaClicks < b.DeltaClicks
		}
		if a.DeltaPosition != b.DeltaPosition {
			return a.DeltaPosition > b.DeltaPosition
		}
		return a.Key < b.Key
	})
	return out
}

func ctrOpportunities(rows []metrics.DeltaRow, th Thresholds) []metrics.DeltaRow {
	rule := th.CTROpportunities
	out := rows[:0]
	for _, r := range rows {
		if r.ImpressionsCurrent >= rule.MinImpressions &&
			r.PositionCurrent > 0 && r.PositionCurrent <= rule.MaxPosition &&
			r.CTRCurrent <= rule.MaxCTR {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ImpressionsCurrent != b.ImpressionsCurrent {
			return a.ImpressionsCurrent > b.ImpressionsCurrent
		}
		if a.CTRCurrent != b.CTRCurrent {
			return a.CTRCurrent < b.CTRCurrent
		}
		if a.PositionCurrent != b.PositionCurrent {
			return a.PositionCurrent < b.PositionCurrent
		}
		return a.Key < b.Key
	})
	return out
}

func drilldown(rows []metrics.DeltaRow, _ Thresholds) []metrics.DeltaRow {
	sortByCurrentClicks(rows)
	return rows
}

// sortByCurrentClicks orders by clicksCurrent desc, impressions desc, key asc
func sortByCurrentClicks(rows []metrics.DeltaRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ClicksCurrent != b.ClicksCurrent {
			return a.ClicksCurrent > b.ClicksCurrent
		}
		if a.ImpressionsCurrent != b.ImpressionsCurrent {
			return a.ImpressionsCurrent > b.ImpressionsCurrent
		}
		return a.Key < b.Key
	})
}

// cannibalization aggregates (query, page) rows per query and keeps queries whose
// clicks are spread across pages
func cannibalization(current, previous []metrics.Row, th Thresholds) []CannibalRow {
	type agg struct {
		total float64
		pages map[string]*PageShare
	}
	byQuery := map[string]*agg{}
	for _, r := range current {
		if len(r.Keys) < 2 || r.Keys[0] == "" || r.Keys[1] == "" {
			continue
		}
		q, page := r.Keys[0], r.Keys[1]
		a := byQuery[q]
		if a == nil {
			a = &agg{pages: map[string]*PageShare{}}
			byQuery[q] = a
		}
		ps := a.pages[page]
		if ps == nil {
			ps = &PageShare{Page: page}
			a.pages[page] = ps
		}
		ps.Clicks += r.Clicks
		ps.Impressions += r.Impressions
		a.total += r.Clicks
	}

	prevTotal := map[string]float64{}
	for _, r := range previous {
		if len(r.Keys) == 0 || r.Keys[0] == "" {
			continue
		}
		prevTotal[r.Keys[0]] += r.Clicks
	}

	rule := th.Cannibalization
	out := make([]CannibalRow, 0, len(byQuery))
	for q, a := range byQuery {
		if len(a.pages) < rule.MinPages || a.total <= 0 {
			continue
		}
		pages := make([]PageShare, 0, len(a.pages))
		for _, p := range a.pages {
			pages = append(pages, *p)
		}
		sort.Slice(pages, func(i, j int) bool {
			if pages[i].Clicks != pages[j].Clicks {
				return pages[i].Clicks > pages[j].Clicks
			}
			return pages[i].Page < pages[j].Page
		})
		top := pages[0]
		conc := top.Clicks / a.total
		if conc >= rule.MaxConcentration {
			continue
		}
		listed := pages
		if len(listed) > maxListedPages {
			listed = listed[:maxListedPages]
		}
		out = append(out, CannibalRow{
			Query:               q,
			PageCount:           len(pages),
			TotalClicks:         a.total,
			TotalClicksPrevious: prevTotal[q],
			DeltaClicks:         a.total - prevTotal[q],
			TopPage:             top.Page,
			TopPageClicks:       top.Clicks,
			Concentration:       conc,
			Pages:               listed,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalClicks != b.TotalClicks {
			return a.TotalClicks > b.TotalClicks
		}
		if a.Concentration != b.Concentration {
			return a.Concentration < b.Concentration
		}
		return a.Query < b.Query
	})
	return out
}

// splitBrand partitions joined query rows by brand membership. Each side is ordered
// by clicksCurrent desc then query asc and truncated to limit
func splitBrand(rows []metrics.DeltaRow, m *textfold.Matcher, limit int) (brand, nonBrand []metrics.DeltaRow) {
	brand = []metrics.DeltaRow{}
	nonBrand = []metrics.DeltaRow{}
	for _, r := range rows {
		if m.Match(r.Key) {
			brand = append(brand, r)
		} else {
			nonBrand = append(nonBrand, r)
		}
	}
	for _, side := range [][]metrics.DeltaRow{brand, nonBrand} {
		sort.Slice(side, func(i, j int) bool {
			if side[i].ClicksCurrent != side[j].ClicksCurrent {
				return side[i].ClicksCurrent > side[j].ClicksCurrent
			}
			return side[i].Key < side[j].Key
		})
	}
	return truncate(brand, limit), truncate(nonBrand, limit)
}

func truncate[T any](in []T, n int) []T {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}
