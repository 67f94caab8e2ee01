// Package intents turns an analytical intent plus parameters into query plans,
// fetches both windows through an injected Source and shapes the joined rows
// into a typed Result
package intents

import (
	"strings"

	"gscchat/internal/core/daterange"
	"gscchat/internal/core/metrics"
)

// Intent names one analytical question
type Intent string

// supported intents
const (
	TopWinnersQueries           Intent = "TOP_WINNERS_QUERIES"
	TopLosersQueries            Intent = "TOP_LOSERS_QUERIES"
	TopWinnersPages             Intent = "TOP_WINNERS_PAGES"
	TopLosersPages              Intent = "TOP_LOSERS_PAGES"
	HighImpressLowCTRPages      Intent = "HIGH_IMPRESS_LOW_CTR_PAGES"
	PositionUpClicksDownQueries Intent = "POSITION_UP_CLICKS_DOWN_QUERIES"
	CTROpportunitiesQueries     Intent = "CTR_OPPORTUNITIES_QUERIES"
	BrandVsNonbrand             Intent = "BRAND_VS_NONBRAND"
	CannibalizationQueries      Intent = "CANNIBALIZATION_QUERIES"
	DrilldownPageToQueries      Intent = "DRILLDOWN_PAGE_TO_QUERIES"
)

// DefaultIntent is used when the caller names none
const DefaultIntent = TopLosersQueries

// All lists every supported intent in a stable order
func All() []Intent {
	return []Intent{
		TopWinnersQueries, TopLosersQueries, TopWinnersPages, TopLosersPages,
		HighImpressLowCTRPages, PositionUpClicksDownQueries, CTROpportunitiesQueries,
		BrandVsNonbrand, CannibalizationQueries, DrilldownPageToQueries,
	}
}

// Parse accepts an intent name in any case with dashes or underscores
func Parse(s string) (Intent, bool) {
	in := Intent(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	_, ok := table[in]
	return in, ok
}

// Valid reports whether the intent has a handler
func (i Intent) Valid() bool {
	_, ok := table[i]
	return ok
}

// Label is a lower-case human name used in narrative text
func (i Intent) Label() string {
	return strings.ToLower(strings.ReplaceAll(string(i), "_", " "))
}

// Kind tags the shape of a Result
type Kind string

// result kinds
const (
	KindQueryDeltas     Kind = "query_deltas"
	KindPageDeltas      Kind = "page_deltas"
	KindQueryList       Kind = "query_list"
	KindPageList        Kind = "page_list"
	KindCannibalization Kind = "query_page_cannibalization"
	KindBrandSplit      Kind = "brand_vs_nonbrand"
	KindPageDrilldown   Kind = "page_drilldown"
	KindEmpty           Kind = "empty"
)

// Dimension is a grouping attribute on the metrics source
type Dimension string

// dimensions
const (
	DimQuery Dimension = "query"
	DimPage  Dimension = "page"
)

// Operator is a dimension filter operator
type Operator string

// filter operators
const (
	OpContains       Operator = "contains"
	OpEquals         Operator = "equals"
	OpNotContains    Operator = "notContains"
	OpNotEquals      Operator = "notEquals"
	OpIncludingRegex Operator = "includingRegex"
	OpExcludingRegex Operator = "excludingRegex"
)

// GroupType joins filters within a group
type GroupType string

// group types
const (
	GroupAnd GroupType = "and"
	GroupOr  GroupType = "or"
)

// Filter restricts one dimension
type Filter struct {
	Dimension  Dimension `json:"dimension"`
	Operator   Operator  `json:"operator"`
	Expression string    `json:"expression"`
}

// FilterGroup is a boolean group of filters. Groups are ANDed together
type FilterGroup struct {
	GroupType GroupType `json:"group_type"`
	Filters   []Filter  `json:"filters"`
}

// Plan describes one read against the metrics source.
// A plan without dimensions is a totals read
type Plan struct {
	Site         string          `json:"site"`
	Range        daterange.Range `json:"range"`
	Dimensions   []Dimension     `json:"dimensions,omitempty"`
	RowLimit     int             `json:"row_limit,omitempty"`
	StartRow     int             `json:"start_row,omitempty"`
	FilterGroups []FilterGroup   `json:"filter_groups,omitempty"`
}

// Params are the caller-chosen knobs for one intent
type Params struct {
	Preset     daterange.Preset `json:"preset,omitempty"`
	RowLimit   int              `json:"row_limit,omitempty"`
	BrandTerms []string         `json:"brand_terms,omitempty"`
	PageURL    string           `json:"page_url,omitempty"`
}

// Request is one intent to dispatch. Zero Ranges are resolved from Params.Preset
type Request struct {
	Site   string         `json:"site"`
	Ranges daterange.Pair `json:"ranges"`
	Intent Intent         `json:"intent"`
	Params Params         `json:"params"`
}

// TotalsPair holds range totals for both windows
type TotalsPair struct {
	Current  metrics.Totals `json:"current"`
	Previous metrics.Totals `json:"previous"`
}

// PageShare is one page's contribution to a query
type PageShare struct {
	Page        string  `json:"page"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
}

// CannibalRow is one query whose clicks are spread over several pages
type CannibalRow struct {
	Query               string      `json:"query"`
	PageCount           int         `json:"page_count"`
	TotalClicks         float64     `json:"total_clicks"`
	TotalClicksPrevious float64     `json:"total_clicks_previous"`
	DeltaClicks         float64     `json:"delta_clicks"`
	TopPage             string      `json:"top_page"`
	TopPageClicks       float64     `json:"top_page_clicks"`
	Concentration       float64     `json:"concentration"`
	Pages               []PageShare `json:"pages"`
}

// SplitSide is one half of a brand split
type SplitSide struct {
	Totals TotalsPair         `json:"totals"`
	Top    []metrics.DeltaRow `json:"top"`
}

// BrandSplit compares brand and non-brand queries
type BrandSplit struct {
	Terms    []string  `json:"terms"`
	Brand    SplitSide `json:"brand"`
	NonBrand SplitSide `json:"non_brand"`
}

// Result is the typed outcome of one intent.
// Exactly one payload field is populated for the non-empty kinds
type Result struct {
	Kind     Kind             `json:"kind"`
	Intent   Intent           `json:"intent"`
	Preset   daterange.Preset `json:"preset"`
	RowLimit int              `json:"row_limit"`
	Range    daterange.Pair   `json:"range"`
	Totals   TotalsPair       `json:"totals"`
	PageURL  string           `json:"page_url,omitempty"`

	Deltas          []metrics.DeltaRow `json:"deltas,omitempty"`
	Rows            []metrics.Row      `json:"rows,omitempty"`
	Cannibalization []CannibalRow      `json:"cannibalization,omitempty"`
	Brand           *BrandSplit        `json:"brand,omitempty"`

	// Dropped counts fetched rows rejected by the normalizer
	Dropped int `json:"dropped_rows,omitempty"`
}

// Len is the number of items in the kind-specific payload
func (r Result) Len() int {
	switch r.Kind {
	case KindQueryDeltas, KindPageDeltas, KindPageDrilldown:
		return len(r.Deltas)
	case KindQueryList, KindPageList:
		return len(r.Rows)
	case KindCannibalization:
		return len(r.Cannibalization)
	case KindBrandSplit:
		if r.Brand == nil {
			return 0
		}
		return len(r.Brand.Brand.Top) + len(r.Brand.NonBrand.Top)
	}
	return 0
}

// Empty reports whether the result carries no items
func (r Result) Empty() bool { return r.Kind == KindEmpty || r.Len() == 0 }
