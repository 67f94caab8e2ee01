// Package insight turns intent results into a structured narrative answer.
// Everything here is deterministic: the same results always produce the same answer
package insight

import (
	"fmt"
	"strings"

	"gscchat/internal/core/daterange"
	"gscchat/internal/core/intents"
	"gscchat/internal/core/metrics"
)

// section bounds
const (
	MinFindings = 4
	MaxFindings = 8
	MinCauses   = 3
	MaxCauses   = 6
	MinActions  = 3
	MaxActions  = 7
	maxMicro    = 3
)

// Priority tags a recommended action
type Priority string

// priorities
const (
	HighImpact   Priority = "High impact"
	MediumImpact Priority = "Medium impact"
	LowImpact    Priority = "Low impact"
)

// Valid reports whether p is one of the three priorities
func (p Priority) Valid() bool {
	return p == HighImpact || p == MediumImpact || p == LowImpact
}

// Level is a coarse reliability label
type Level string

// confidence levels
const (
	High   Level = "High"
	Medium Level = "Medium"
	Low    Level = "Low"
)

// Valid reports whether l is one of the three levels
func (l Level) Valid() bool { return l == High || l == Medium || l == Low }

// Action is one recommended step
type Action struct {
	Step     string   `json:"step"`
	Priority Priority `json:"priority"`
}

// Confidence rates how much to trust the comparison
type Confidence struct {
	Level  Level  `json:"level"`
	Reason string `json:"reason"`
}

// Answer is the structured narrative for one request
type Answer struct {
	Summary            string     `json:"summary"`
	KeyFindings        []string   `json:"key_findings"`
	LikelyCauses       []string   `json:"likely_causes"`
	RecommendedActions []Action   `json:"recommended_actions"`
	WhatStandsOut      string     `json:"what_stands_out"`
	Confidence         Confidence `json:"confidence"`
}

// Input is everything the synthesizer looks at
type Input struct {
	Message string
	Site    string
	Preset  daterange.Preset
	Intent  intents.Intent
	Results []intents.Result
}

// signals are the headline movements of the primary result
type signals struct {
	noData      bool
	clicksPct   float64
	imprPct     float64
	ctrDeltaPts float64
	posDelta    float64
	cur, prev   metrics.Totals
}

// Synthesize builds the answer for in
func Synthesize(in Input) Answer {
	primary, ok := pickPrimary(in.Results)
	sig := readSignals(primary, ok)

	micro := microInsights(sig, primary)

	return Answer{
		Summary:            summary(in, primary, ok),
		KeyFindings:        keyFindings(in, sig, primary, micro),
		LikelyCauses:       likelyCauses(in, sig, primary),
		RecommendedActions: actions(sig, primary),
		WhatStandsOut:      headline(micro, sig),
		Confidence:         confidence(sig, primary),
	}
}

// pickPrimary returns the first non-empty result, else the first one
func pickPrimary(results []intents.Result) (intents.Result, bool) {
	if len(results) == 0 {
		return intents.Result{}, false
	}
	for _, r := range results {
		if !r.Empty() {
			return r, true
		}
	}
	return results[0], true
}

func readSignals(r intents.Result, ok bool) signals {
	if !ok || r.Empty() {
		return signals{noData: true, cur: r.Totals.Current, prev: r.Totals.Previous}
	}
	cur, prev := r.Totals.Current, r.Totals.Previous
	return signals{
		clicksPct:   metrics.PercentChange(cur.Clicks, prev.Clicks),
		imprPct:     metrics.PercentChange(cur.Impressions, prev.Impressions),
		ctrDeltaPts: metrics.Finite((ctrOf(cur) - ctrOf(prev)) * 100),
		posDelta:    metrics.Finite(prev.Position - cur.Position),
		cur:         cur,
		prev:        prev,
	}
}

// ctrOf prefers the reported CTR and falls back to clicks over impressions
func ctrOf(t metrics.Totals) float64 {
	if t.CTR > 0 {
		return t.CTR
	}
	if t.Impressions > 0 {
		return metrics.Finite(t.Clicks / t.Impressions)
	}
	return 0
}

func intentNames(in Input) string {
	seen := map[intents.Intent]bool{}
	var names []string
	add := func(i intents.Intent) {
		if i == "" || seen[i] {
			return
		}
		seen[i] = true
		names = append(names, i.Label())
	}
	for _, r := range in.Results {
		add(r.Intent)
	}
	if len(names) == 0 {
		add(in.Intent)
	}
	switch len(names) {
	case 0:
		return "search performance"
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func summary(in Input, primary intents.Result, ok bool) string {
	site := in.Site
	if site == "" {
		site = "this site"
	}
	if !ok || primary.Range.Current.IsZero() {
		if msg := strings.TrimSpace(in.Message); msg != "" {
			return fmt.Sprintf("No date ranges or data were available to answer %q for %s.", msg, site)
		}
		return fmt.Sprintf("No date ranges or data were available to analyze %s.", site)
	}
	return fmt.Sprintf("Compared %s for %s over %s against the previous period %s.",
		intentNames(in), site, primary.Range.Current, primary.Range.Previous)
}

func headline(micro []string, sig signals) string {
	if len(micro) > 0 {
		return firstSentence(micro[0])
	}
	if sig.noData {
		return "There was no data to compare for this window."
	}
	return "No single change dominates this period; movements are spread across many queries and pages."
}

// firstSentence cuts s after its first period
func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

func confidence(sig signals, primary intents.Result) Confidence {
	if sig.noData || primary.Len() == 0 {
		return Confidence{Level: Low, Reason: "There was not enough data in this window to draw reliable conclusions."}
	}
	m := sig.cur.Impressions
	if sig.prev.Impressions < m {
		m = sig.prev.Impressions
	}
	switch {
	case m >= 5000:
		return Confidence{Level: High, Reason: "Both periods have enough impressions for stable comparisons."}
	case m >= 500:
		return Confidence{Level: Medium, Reason: "Impression volume is moderate, so smaller changes may be noise."}
	}
	return Confidence{Level: Low, Reason: "Impression volume is low, so percentage changes can swing widely."}
}

// pad appends fillers in order until n entries exist, then caps at limit
func pad(list []string, fillers []string, n, limit int) []string {
	for i := 0; len(list) < n; i++ {
		list = append(list, fillers[i%len(fillers)])
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}
