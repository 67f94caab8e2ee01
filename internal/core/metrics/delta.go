package metrics

// DeltaRow joins one key's current and previous metrics.
// DeltaPosition is previous minus current so positive means the ranking improved
type DeltaRow struct {
	Key                 string  `json:"key"`
	ClicksCurrent       float64 `json:"clicks_current"`
	ClicksPrevious      float64 `json:"clicks_previous"`
	DeltaClicks         float64 `json:"delta_clicks"`
	ImpressionsCurrent  float64 `json:"impressions_current"`
	ImpressionsPrevious float64 `json:"impressions_previous"`
	DeltaImpressions    float64 `json:"delta_impressions"`
	CTRCurrent          float64 `json:"ctr_current"`
	CTRPrevious         float64 `json:"ctr_previous"`
	DeltaCTR            float64 `json:"delta_ctr"`
	PositionCurrent     float64 `json:"position_current"`
	PositionPrevious    float64 `json:"position_previous"`
	DeltaPosition       float64 `json:"delta_position"`
}

// MergeDeltas full outer joins two row sets on Keys[0]. A missing side contributes zeros.
// Duplicate keys within one side resolve to the last row. Output order is unspecified
func MergeDeltas(current, previous []Row) []DeltaRow {
	cur := index(current)
	prev := index(previous)

	out := make([]DeltaRow, 0, len(cur)+len(prev))
	for k, c := range cur {
		out = append(out, Delta(k, c, prev[k]))
	}
	for k, p := range prev {
		if _, ok := cur[k]; ok {
			continue
		}
		out = append(out, Delta(k, Row{}, p))
	}
	return out
}

// Delta builds one joined row from two sides
func Delta(key string, c, p Row) DeltaRow {
	return DeltaRow{
		Key:                 key,
		ClicksCurrent:       c.Clicks,
		ClicksPrevious:      p.Clicks,
		DeltaClicks:         c.Clicks - p.Clicks,
		ImpressionsCurrent:  c.Impressions,
		ImpressionsPrevious: p.Impressions,
		DeltaImpressions:    c.Impressions - p.Impressions,
		CTRCurrent:          c.CTR,
		CTRPrevious:         p.CTR,
		DeltaCTR:            c.CTR - p.CTR,
		PositionCurrent:     c.Position,
		PositionPrevious:    p.Position,
		DeltaPosition:       p.Position - c.Position,
	}
}

func index(rows []Row) map[string]Row {
	m := make(map[string]Row, len(rows))
	for _, r := range rows {
		k := r.Key()
		if k == "" {
			continue
		}
		m[k] = r
	}
	return m
}

// PercentChange is (cur-prev)/max(prev,1) with non-finite results mapped to 0
func PercentChange(cur, prev float64) float64 {
	den := prev
	if den < 1 {
		den = 1
	}
	return Finite((Finite(cur) - Finite(prev)) / den)
}
