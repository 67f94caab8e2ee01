package insight

import (
	"fmt"

	"gscchat/internal/core/intents"
	"gscchat/internal/core/metrics"
)

var noDataFindings = []string{
	"No rows came back for this window, which usually means the property has very little search volume for this slice.",
	"The connected property may not match the site you expect, for example a domain property versus a URL-prefix property.",
	"Filters such as brand terms may not match any query Google recorded in this period.",
	"The page URL may differ from the canonical URL Google reports (protocol, trailing slash or parameters).",
}

var findingFillers = []string{
	"No other metric moved enough to call out separately.",
	"The remaining queries and pages changed within normal variation.",
	"Nothing else in the breakdown stood out against the previous period.",
	"Smaller movements are listed in the detailed results.",
}

// microRule is one entry of the micro-insight table
type microRule struct {
	when func(s signals, r intents.Result) bool
	text string
}

var microRules = []microRule{
	{
		when: func(s signals, _ intents.Result) bool { return s.posDelta > 0 && s.clicksPct < 0 },
		text: "Rankings improved while clicks fell. Lower demand or SERP features are likely absorbing clicks, so check CTR and search volume before changing content.",
	},
	{
		when: func(s signals, _ intents.Result) bool { return s.imprPct > 0 && s.ctrDeltaPts < 0 },
		text: "Impressions grew while CTR dropped. New visibility is landing on queries where the snippet does not match what searchers want.",
	},
	{
		when: func(_ signals, r intents.Result) bool {
			return r.Kind == intents.KindCannibalization && len(r.Cannibalization) > 0
		},
		text: "Several queries split their clicks across multiple pages. Consolidating or differentiating those pages should concentrate ranking signals.",
	},
	{
		when: func(s signals, _ intents.Result) bool { return s.posDelta < 0 && s.clicksPct < 0 },
		text: "Both rankings and clicks slipped. That pattern usually points to competitors or relevance rather than seasonality.",
	},
	{
		when: func(_ signals, r intents.Result) bool {
			return r.Kind == intents.KindBrandSplit && r.Brand != nil &&
				pctOf(r.Brand.Brand.Totals, clicksOf) < 0 && pctOf(r.Brand.NonBrand.Totals, clicksOf) > 0
		},
		text: "Brand demand softened while non-brand traffic grew. Organic discovery is healthy but awareness needs attention.",
	},
	{
		when: func(_ signals, r intents.Result) bool {
			return r.Intent == intents.CTROpportunitiesQueries && len(r.Deltas) > 0
		},
		text: "High-impression queries already rank on page one with weak CTR. Title and description rewrites are the cheapest win here.",
	},
	{
		when: func(s signals, _ intents.Result) bool { return s.clicksPct > 0.10 && s.imprPct > 0 },
		text: "Growth is broad-based. Clicks and impressions rose together, which points to real visibility gains.",
	},
}

func microInsights(s signals, r intents.Result) []string {
	if s.noData {
		return nil
	}
	var out []string
	for _, rule := range microRules {
		if len(out) == maxMicro {
			break
		}
		if rule.when(s, r) {
			out = append(out, rule.text)
		}
	}
	return out
}

func clicksOf(t metrics.Totals) float64 { return t.Clicks }

func pctOf(tp intents.TotalsPair, field func(metrics.Totals) float64) float64 {
	return metrics.PercentChange(field(tp.Current), field(tp.Previous))
}

func keyFindings(in Input, s signals, primary intents.Result, micro []string) []string {
	var out []string
	switch {
	case s.noData:
		out = append(out, noDataFindings...)
	case primary.Kind == intents.KindBrandSplit && primary.Brand != nil:
		out = append(out, brandFindings(*primary.Brand)...)
	default:
		out = append(out, totalsFindings(s)...)
		if top := topMover(primary); top != "" {
			out = append(out, top)
		}
	}
	out = append(out, micro...)
	for _, r := range in.Results {
		if sameResult(r, primary) {
			continue
		}
		out = append(out, secondaryFinding(r))
	}
	return pad(out, findingFillers, MinFindings, MaxFindings)
}

// sameResult matches the primary by identity of intent and kind
func sameResult(a, b intents.Result) bool {
	return a.Intent == b.Intent && a.Kind == b.Kind && a.PageURL == b.PageURL
}

func totalsFindings(s signals) []string {
	position := fmt.Sprintf("Average position held steady at %s.", pos(s.cur.Position))
	switch {
	case s.posDelta > 0:
		position = fmt.Sprintf("Average position improved by %s (%s → %s).", pos(s.posDelta), pos(s.prev.Position), pos(s.cur.Position))
	case s.posDelta < 0:
		position = fmt.Sprintf("Average position worsened by %s (%s → %s).", pos(-s.posDelta), pos(s.prev.Position), pos(s.cur.Position))
	}
	return []string{
		fmt.Sprintf("Clicks changed by %s (%s → %s).", pct(s.clicksPct), count(s.prev.Clicks), count(s.cur.Clicks)),
		fmt.Sprintf("Impressions changed by %s (%s → %s).", pct(s.imprPct), count(s.prev.Impressions), count(s.cur.Impressions)),
		fmt.Sprintf("CTR moved by %s (%s → %s).", pts(s.ctrDeltaPts), rate(ctrOf(s.prev)), rate(ctrOf(s.cur))),
		position,
	}
}

func brandFindings(b intents.BrandSplit) []string {
	side := func(name string, tp intents.TotalsPair) []string {
		cur, prev := tp.Current, tp.Previous
		return []string{
			fmt.Sprintf("%s clicks changed by %s (%s → %s).", name, pct(pctOf(tp, clicksOf)), count(prev.Clicks), count(cur.Clicks)),
			fmt.Sprintf("%s CTR moved by %s to %s.", name, pts((ctrOf(cur)-ctrOf(prev))*100), rate(ctrOf(cur))),
		}
	}
	brand := side("Brand", b.Brand.Totals)
	non := side("Non-brand", b.NonBrand.Totals)
	return []string{brand[0], non[0], brand[1], non[1]}
}

func topMover(r intents.Result) string {
	switch r.Kind {
	case intents.KindQueryDeltas, intents.KindPageDeltas:
		if len(r.Deltas) == 0 {
			return ""
		}
		d := r.Deltas[0]
		return fmt.Sprintf("Top mover: %q with %s clicks (%s → %s).", d.Key, signedCount(d.DeltaClicks), count(d.ClicksPrevious), count(d.ClicksCurrent))
	case intents.KindPageDrilldown:
		if len(r.Deltas) == 0 {
			return ""
		}
		d := r.Deltas[0]
		return fmt.Sprintf("Top query for %s: %q with %s clicks (%s vs previous period).", r.PageURL, d.Key, count(d.ClicksCurrent), signedCount(d.DeltaClicks))
	case intents.KindCannibalization:
		if len(r.Cannibalization) == 0 {
			return ""
		}
		c := r.Cannibalization[0]
		return fmt.Sprintf("Most cannibalized query: %q is split across %d pages and its top page holds only %s of clicks.", c.Query, c.PageCount, rate(c.Concentration))
	case intents.KindQueryList, intents.KindPageList:
		if len(r.Rows) == 0 {
			return ""
		}
		row := r.Rows[0]
		return fmt.Sprintf("Top entry: %q with %s clicks.", row.Key(), count(row.Clicks))
	}
	return ""
}

func secondaryFinding(r intents.Result) string {
	label := r.Intent.Label()
	if r.Empty() {
		return fmt.Sprintf("The %s breakdown returned no rows for this window.", label)
	}
	if top := topMover(r); top != "" {
		return fmt.Sprintf("In %s (%d items): %s", label, r.Len(), lowerFirst(top))
	}
	return fmt.Sprintf("The %s breakdown returned %d items.", label, r.Len())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
