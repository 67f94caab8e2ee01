// Package daterange resolves recency presets into calendar windows and pairs every
// window with the equal-length window immediately before it
package daterange

import (
	"time"

	perr "gscchat/internal/platform/errors"
	ptime "gscchat/internal/platform/time"
)

// Preset is a named recency window
type Preset string

// supported presets
const (
	Last7  Preset = "last7"
	Last28 Preset = "last28"
	Last90 Preset = "last90"
)

// DefaultPreset is used when a caller does not pick one
const DefaultPreset = Last28

var presetDays = map[Preset]int{
	Last7:  7,
	Last28: 28,
	Last90: 90,
}

// Presets lists supported presets in ascending length
func Presets() []Preset { return []Preset{Last7, Last28, Last90} }

// Valid reports whether p is a supported preset
func (p Preset) Valid() bool {
	_, ok := presetDays[p]
	return ok
}

// Days is the preset's length in days, zero if unknown
func (p Preset) Days() int { return presetDays[p] }

// Range is an inclusive span of calendar dates in YYYY-MM-DD form
type Range struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// Pair is a current window and its previous window
type Pair struct {
	Current  Range `json:"current"`
	Previous Range `json:"previous"`
}

// New builds a Range after checking both dates parse and start <= end
func New(start, end string) (Range, error) {
	s, err := ptime.ParseDay(start)
	if err != nil {
		return Range{}, perr.WithField(perr.InvalidArgf("invalid start date %q", start), "start_date")
	}
	e, err := ptime.ParseDay(end)
	if err != nil {
		return Range{}, perr.WithField(perr.InvalidArgf("invalid end date %q", end), "end_date")
	}
	if e.Before(s) {
		return Range{}, perr.InvalidArgf("start date %s is after end date %s", start, end)
	}
	return Range{Start: start, End: end}, nil
}

// Resolve turns a preset into N days ending yesterday (UTC) relative to now
func Resolve(p Preset, now time.Time) (Range, error) {
	n, ok := presetDays[p]
	if !ok {
		return Range{}, perr.WithField(perr.InvalidArgf("unsupported preset %q (want last7, last28 or last90)", p), "preset")
	}
	end := ptime.AddDays(now, -1)
	start := ptime.AddDays(end, -(n - 1))
	return Range{Start: ptime.FormatDay(start), End: ptime.FormatDay(end)}, nil
}

// ResolvePair resolves a preset and its previous window in one call
func ResolvePair(p Preset, now time.Time) (Pair, error) {
	cur, err := Resolve(p, now)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Current: cur, Previous: Previous(cur)}, nil
}

// Days is the inclusive day count of r, zero for an unparsable or inverted range
func Days(r Range) int {
	s, err1 := ptime.ParseDay(r.Start)
	e, err2 := ptime.ParseDay(r.End)
	if err1 != nil || err2 != nil || e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/ptime.Day) + 1
}

// Previous returns the window of equal length ending the day before r starts.
// An unparsable range yields the zero Range
func Previous(r Range) Range {
	n := Days(r)
	if n == 0 {
		return Range{}
	}
	s, _ := ptime.ParseDay(r.Start)
	end := ptime.AddDays(s, -1)
	start := ptime.AddDays(end, -(n - 1))
	return Range{Start: ptime.FormatDay(start), End: ptime.FormatDay(end)}
}

// PairOf pairs an explicit current range with its previous window
func PairOf(cur Range) Pair { return Pair{Current: cur, Previous: Previous(cur)} }

// IsZero reports whether r carries no dates
func (r Range) IsZero() bool { return r.Start == "" && r.End == "" }

// String renders "start to end"
func (r Range) String() string { return r.Start + " to " + r.End }
