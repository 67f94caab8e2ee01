package insight

import (
	"fmt"

	"gscchat/internal/core/intents"
)

const volatilityCaveat = "Normal day-to-day volatility in Search Console data, especially on low-volume queries."

var causeFillers = []string{
	"Tracking or property configuration changes between the two windows.",
	"A shift in the mix of countries or devices sending traffic.",
	"Seasonal swings in how often people search for these topics.",
}

// causeRule is one entry of the likely-cause table
type causeRule struct {
	when func(in Input, s signals, r intents.Result) bool
	text string
}

var causeRules = []causeRule{
	{
		when: func(_ Input, s signals, _ intents.Result) bool { return s.noData },
		text: "The selected property, filters or page URL do not match any recorded search activity.",
	},
	{
		when: func(_ Input, s signals, _ intents.Result) bool { return !s.noData && s.clicksPct < 0 && s.posDelta < 0 },
		text: "Ranking losses to competitors or a search algorithm update on key queries.",
	},
	{
		when: func(_ Input, s signals, _ intents.Result) bool { return !s.noData && s.imprPct < 0 },
		text: "Lower search demand or seasonality reducing impressions.",
	},
	{
		when: func(_ Input, s signals, _ intents.Result) bool { return !s.noData && s.ctrDeltaPts < 0 },
		text: "Snippet changes or richer SERP features (ads, AI answers, video) drawing clicks away.",
	},
	{
		when: func(_ Input, s signals, _ intents.Result) bool { return !s.noData && s.imprPct > 0 && s.ctrDeltaPts < 0 },
		text: "New rankings on broader queries whose intent matches the page less closely.",
	},
	{
		when: func(in Input, _ signals, r intents.Result) bool {
			return r.Intent == intents.CannibalizationQueries || in.Intent == intents.CannibalizationQueries
		},
		text: "Multiple pages competing for the same queries and splitting relevance signals.",
	},
	{
		when: func(in Input, _ signals, r intents.Result) bool {
			return r.Intent == intents.DrilldownPageToQueries || in.Intent == intents.DrilldownPageToQueries
		},
		text: "Recent edits to this page's content, title or internal links.",
	},
	{
		when: func(in Input, _ signals, r intents.Result) bool {
			return r.Intent == intents.BrandVsNonbrand || in.Intent == intents.BrandVsNonbrand
		},
		text: "Changes in brand awareness, campaigns or offline activity affecting branded searches.",
	},
	{
		when: func(_ Input, s signals, _ intents.Result) bool { return !s.noData && s.clicksPct > 0.10 },
		text: "Content or technical improvements starting to gain traction.",
	},
}

func likelyCauses(in Input, s signals, r intents.Result) []string {
	var out []string
	for _, rule := range causeRules {
		if len(out) == MaxCauses-1 {
			break
		}
		if rule.when(in, s, r) {
			out = append(out, rule.text)
		}
	}
	out = append(out, volatilityCaveat)
	return pad(out, causeFillers, MinCauses, MaxCauses)
}

var noDataActions = []Action{
	{Step: "Confirm the connected Search Console property matches the site you want to analyze.", Priority: HighImpact},
	{Step: "Widen the date range (for example last90) to collect enough data for a comparison.", Priority: MediumImpact},
	{Step: "Relax brand term or page URL filters and ask the question again.", Priority: LowImpact},
}

var followUp = Action{Step: "Re-run this comparison in two weeks to confirm the trend holds.", Priority: LowImpact}

func actions(s signals, r intents.Result) []Action {
	if s.noData {
		return append([]Action(nil), noDataActions...)
	}

	fell := s.clicksPct < -0.10
	first, second := MediumImpact, LowImpact
	if fell {
		first, second = HighImpact, MediumImpact
	}
	base := []Action{
		{Step: "Validate the landing pages behind the biggest movers for content quality, intent match and load speed.", Priority: first},
		{Step: "Inspect the live results page for the top queries to spot new competitors and SERP features.", Priority: first},
		{Step: "Rewrite titles and meta descriptions on high-impression, low-CTR results.", Priority: second},
		{Step: "Check indexing, canonicals and Core Web Vitals for the affected URLs.", Priority: second},
	}

	var out []Action
	if s.clicksPct > 0.10 {
		out = append(out, Action{Step: "Double down on what is working: expand the content and internal links behind the top winning queries.", Priority: HighImpact})
	}
	switch {
	case r.Kind == intents.KindCannibalization && len(r.Cannibalization) > 0:
		out = append(out, Action{
			Step:     fmt.Sprintf("Pick one canonical page per cannibalized query, starting with %q, and consolidate or re-target the others.", r.Cannibalization[0].Query),
			Priority: HighImpact,
		})
	case r.Kind == intents.KindPageDrilldown && r.PageURL != "":
		step := fmt.Sprintf("Update %s so its headings and copy answer its top queries directly.", r.PageURL)
		if len(r.Deltas) > 0 {
			step = fmt.Sprintf("Update %s so its headings and copy answer its top queries directly, starting with %q.", r.PageURL, r.Deltas[0].Key)
		}
		out = append(out, Action{Step: step, Priority: HighImpact})
	}
	out = append(out, base...)

	for len(out) < MinActions {
		out = append(out, followUp)
	}
	if len(out) > MaxActions {
		out = out[:MaxActions]
	}
	return out
}
