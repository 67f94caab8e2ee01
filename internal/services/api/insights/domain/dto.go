// Package domain holds DTOs for the insights HTTP and service contracts
package domain

import (
	"gscchat/internal/core/daterange"
	"gscchat/internal/core/insight"
	"gscchat/internal/core/intents"
)

// answer formats
const (
	FormatBoth     = "both"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// RangeInput is an explicit current window; the previous window is derived
type RangeInput struct {
	Start string `json:"start_date" validate:"required,datetime=2006-01-02" example:"2024-03-01"`
	End   string `json:"end_date"   validate:"required,datetime=2006-01-02" example:"2024-03-28"`
}

// IntentInput selects one analysis and its knobs
type IntentInput struct {
	Intent     string   `json:"intent,omitempty"      validate:"omitempty,gsc_intent" example:"TOP_LOSERS_QUERIES"`
	RowLimit   *int     `json:"row_limit,omitempty"   validate:"omitempty,min=1,max=1000" example:"250"`
	BrandTerms []string `json:"brand_terms,omitempty" validate:"omitempty,max=20,dive,max=100" example:"acme"`
	PageURL    string   `json:"page_url,omitempty"    validate:"omitempty,max=2048" example:"https://example.com/shoes"`
}

// AskInput is a question about one property
type AskInput struct {
	Question string        `json:"question"          validate:"required,max=2000" example:"Why did clicks drop last month?"`
	SiteURL  string        `json:"site_url"          validate:"required,gsc_site" example:"sc-domain:example.com"`
	Preset   string        `json:"preset,omitempty"  validate:"omitempty,gsc_preset" example:"last28"`
	Range    *RangeInput   `json:"range,omitempty"`
	Intents  []IntentInput `json:"intents,omitempty" validate:"omitempty,max=3,dive"`
	Format   string        `json:"format,omitempty"  validate:"omitempty,oneof=both json markdown" example:"both"`
}

// AskResp is the synthesized answer plus the numbers behind it
type AskResp struct {
	AnswerID string           `json:"answer_id"          example:"5f0c7f5e-1d2b-4a8e-9c1f-2b7d3f9a6c10"`
	Site     string           `json:"site"               example:"sc-domain:example.com"`
	Preset   daterange.Preset `json:"preset,omitempty"   example:"last28"`
	Ranges   daterange.Pair   `json:"ranges"`
	Intents  []intents.Intent `json:"intents"`
	Answer   *insight.Answer  `json:"answer,omitempty"`
	Markdown string           `json:"markdown,omitempty"`
	Results  []intents.Result `json:"results"`
}

// RangesInput asks for the windows of a preset or an explicit current range
type RangesInput struct {
	Preset string      `json:"preset,omitempty" validate:"omitempty,gsc_preset" example:"last28"`
	Range  *RangeInput `json:"range,omitempty"`
}

// RangesResp echoes both windows
type RangesResp struct {
	Preset   daterange.Preset `json:"preset,omitempty" example:"last28"`
	Days     int              `json:"days"             example:"28"`
	Current  daterange.Range  `json:"current"`
	Previous daterange.Range  `json:"previous"`
}

// ValidateInput carries a rendered answer to check
type ValidateInput struct {
	Markdown string `json:"markdown" validate:"required,max=65536"`
}

// ValidateResp reports the first structural violation, if any
type ValidateResp struct {
	Valid bool   `json:"valid"           example:"false"`
	Error string `json:"error,omitempty" example:"missing heading ## Confidence"`
}

// IntentInfo describes one supported analysis
type IntentInfo struct {
	Intent   intents.Intent `json:"intent"             example:"TOP_LOSERS_QUERIES"`
	Label    string         `json:"label"              example:"top losers queries"`
	Requires string         `json:"requires,omitempty" example:"brand_terms"`
}

// IntentsResp lists the catalog and the row limit policy
type IntentsResp struct {
	Intents         []IntentInfo       `json:"intents"`
	Default         intents.Intent     `json:"default"           example:"TOP_LOSERS_QUERIES"`
	Presets         []daterange.Preset `json:"presets"`
	DefaultRowLimit int                `json:"default_row_limit" example:"250"`
	MaxRowLimit     int                `json:"max_row_limit"     example:"1000"`
	MaxIntents      int                `json:"max_intents"       example:"3"`
}
