// Package metrics normalizes raw search-performance rows and outer-joins two
// windows of them into delta rows
package metrics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawRow is one row as produced by an external query executor.
// Expected fields are keys, clicks, impressions, ctr and position
type RawRow = map[string]any

// Row is a canonical metric row
type Row struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

// Key is the first grouping dimension value
func (r Row) Key() string {
	if len(r.Keys) == 0 {
		return ""
	}
	return r.Keys[0]
}

// Totals is the range-wide aggregate
type Totals struct {
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// Normalize coerces a raw row. Non-string keys are dropped; the row is rejected
// only when no key survives
func Normalize(raw RawRow) (Row, bool) {
	keys := keysOf(raw["keys"])
	if len(keys) == 0 {
		return Row{}, false
	}
	t := NormalizeTotals(raw)
	return Row{
		Keys:        keys,
		Clicks:      t.Clicks,
		Impressions: t.Impressions,
		CTR:         t.CTR,
		Position:    t.Position,
	}, true
}

// NormalizeAll normalizes rows in order and reports how many were dropped
func NormalizeAll(raws []RawRow) ([]Row, int) {
	out := make([]Row, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		r, ok := Normalize(raw)
		if !ok {
			dropped++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}

// NormalizeTotals coerces the numeric fields of an aggregate row; keys are not required
func NormalizeTotals(raw RawRow) Totals {
	if raw == nil {
		return Totals{}
	}
	return Totals{
		Clicks:      nonNeg(Number(raw["clicks"])),
		Impressions: nonNeg(Number(raw["impressions"])),
		CTR:         rescaleCTR(Number(raw["ctr"])),
		Position:    nonNeg(Number(raw["position"])),
	}
}

// ToRaw turns a canonical row back into the executor shape
func (r Row) ToRaw() RawRow {
	keys := make([]any, len(r.Keys))
	for i, k := range r.Keys {
		keys[i] = k
	}
	return RawRow{
		"keys":        keys,
		"clicks":      r.Clicks,
		"impressions": r.Impressions,
		"ctr":         r.CTR,
		"position":    r.Position,
	}
}

func keysOf(v any) []string {
	switch ks := v.(type) {
	case []string:
		out := make([]string, 0, len(ks))
		out = append(out, ks...)
		return out
	case []any:
		out := make([]string, 0, len(ks))
		for _, k := range ks {
			if s, ok := k.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Number coerces any numeric-ish value to a finite float64, 0 otherwise
func Number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(n), 64)
	case []byte:
		f, _ = strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	default:
		return 0
	}
	return Finite(f)
}

// Finite maps NaN and infinities to 0
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func nonNeg(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// rescaleCTR treats values above 1 as percentages
func rescaleCTR(f float64) float64 {
	if f <= 0 {
		return 0
	}
	if f > 1 {
		f /= 100
	}
	if f > 1 {
		return 1
	}
	return f
}
