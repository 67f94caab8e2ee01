package intents

import (
	"bytes"
	stderrs "errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	perr "gscchat/internal/platform/errors"
)

// row limit bounds
const (
	DefaultRowLimit = 250
	MaxRowLimit     = 1000
	MaxIntents      = 3
)

// CTRRule gates CTR_OPPORTUNITIES_QUERIES
type CTRRule struct {
	MinImpressions float64 `yaml:"min_impressions" json:"min_impressions"`
	MaxPosition    float64 `yaml:"max_position" json:"max_position"`
	MaxCTR         float64 `yaml:"max_ctr" json:"max_ctr"`
}

// CannibalRule gates CANNIBALIZATION_QUERIES
type CannibalRule struct {
	MinPages         int     `yaml:"min_pages" json:"min_pages"`
	MaxConcentration float64 `yaml:"max_concentration" json:"max_concentration"`
}

// Thresholds are the tunable cut-offs used by the derived analytics
type Thresholds struct {
	CTROpportunities CTRRule      `yaml:"ctr_opportunities" json:"ctr_opportunities"`
	Cannibalization  CannibalRule `yaml:"cannibalization" json:"cannibalization"`
	// FetchRows is the minimum row count requested per dimensional read
	FetchRows int `yaml:"fetch_rows" json:"fetch_rows"`
}

// DefaultThresholds returns the stock cut-offs
func DefaultThresholds() Thresholds {
	return Thresholds{
		CTROpportunities: CTRRule{MinImpressions: 100, MaxPosition: 10, MaxCTR: 0.03},
		Cannibalization:  CannibalRule{MinPages: 2, MaxConcentration: 0.8},
		FetchRows:        1000,
	}
}

// Validate rejects thresholds that would make a filter meaningless
func (t Thresholds) Validate() error {
	switch {
	case t.CTROpportunities.MinImpressions < 0:
		return perr.WithField(perr.InvalidArgf("min_impressions must be >= 0"), "ctr_opportunities.min_impressions")
	case t.CTROpportunities.MaxPosition <= 0:
		return perr.WithField(perr.InvalidArgf("max_position must be > 0"), "ctr_opportunities.max_position")
	case t.CTROpportunities.MaxCTR < 0 || t.CTROpportunities.MaxCTR > 1:
		return perr.WithField(perr.InvalidArgf("max_ctr must be within [0,1]"), "ctr_opportunities.max_ctr")
	case t.Cannibalization.MinPages < 2:
		return perr.WithField(perr.InvalidArgf("min_pages must be >= 2"), "cannibalization.min_pages")
	case t.Cannibalization.MaxConcentration <= 0 || t.Cannibalization.MaxConcentration > 1:
		return perr.WithField(perr.InvalidArgf("max_concentration must be within (0,1]"), "cannibalization.max_concentration")
	case t.FetchRows < 1:
		return perr.WithField(perr.InvalidArgf("fetch_rows must be >= 1"), "fetch_rows")
	}
	return nil
}

// LoadThresholds reads a YAML override file. Fields absent from the file keep
// their defaults; an empty path or a missing file yields the defaults
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()
	if path == "" {
		return th, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrs.Is(err, fs.ErrNotExist) {
			return th, nil
		}
		return th, perr.Wrapf(err, perr.ErrorCodeValidation, "read thresholds %s", path)
	}
	return ParseThresholds(data)
}

// ParseThresholds decodes YAML over the defaults. Unknown keys are an error
func ParseThresholds(data []byte) (Thresholds, error) {
	th := DefaultThresholds()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&th); err != nil && !stderrs.Is(err, io.EOF) {
		return DefaultThresholds(), perr.Wrap(err, perr.ErrorCodeValidation, "decode thresholds")
	}
	if err := th.Validate(); err != nil {
		return DefaultThresholds(), err
	}
	return th, nil
}

// EffectiveRowLimit clamps a requested limit into [1, MaxRowLimit], defaulting zero
func EffectiveRowLimit(n int) int {
	switch {
	case n == 0:
		return DefaultRowLimit
	case n < 1:
		return 1
	case n > MaxRowLimit:
		return MaxRowLimit
	}
	return n
}

// SharedRowLimit is the per-intent cap when n intents share one request
func SharedRowLimit(n int) int {
	if n <= 1 {
		return DefaultRowLimit
	}
	c := (DefaultRowLimit + n - 1) / n
	if c < 1 {
		c = 1
	}
	return c
}
