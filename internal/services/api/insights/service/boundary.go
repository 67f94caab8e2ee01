package service

import (
	"regexp"
	"strconv"
	"strings"

	"gscchat/internal/core/intents"
	"gscchat/internal/services/api/insights/domain"
)

var (
	urlRe    = regexp.MustCompile(`https?://[^\s<>"'()\[\]]+`)
	dayRe    = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	numRe    = regexp.MustCompile(`\b\d+\b`)
	phraseRe = regexp.MustCompile(`(?i)\b(?:more|all)\s+(?:rows|results)\b`)
)

// ExtractURL returns the first http(s) URL in text with trailing punctuation removed
func ExtractURL(text string) string {
	u := urlRe.FindString(text)
	return strings.TrimRight(u, ".,;:!?")
}

// Escalation reports whether text asks for more than the default row count and
// how many rows it names. Numbers inside URLs and calendar dates do not count.
// A bare phrase such as "more rows" asks for the maximum
func Escalation(text string) (int, bool) {
	t := urlRe.ReplaceAllString(text, " ")
	t = dayRe.ReplaceAllString(t, " ")

	best := 0
	for _, m := range numRe.FindAllString(t, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			n = intents.MaxRowLimit
		}
		if n > best {
			best = n
		}
	}
	if best > intents.DefaultRowLimit {
		return min(best, intents.MaxRowLimit), true
	}
	if phraseRe.MatchString(t) {
		return intents.MaxRowLimit, true
	}
	return 0, false
}

// rowLimit picks the per-intent limit. Without an escalation signal the default is a ceiling
func rowLimit(explicit *int, want int, escalate bool) int {
	switch {
	case explicit != nil && !escalate:
		return min(*explicit, intents.DefaultRowLimit)
	case explicit != nil:
		return *explicit
	case escalate:
		return want
	}
	return 0
}

// buildRequests turns caller intents into dispatcher requests.
// An explicit page url forces its intent to drilldown; otherwise a URL in the
// question is applied to the first intent
func buildRequests(in domain.AskInput, base intents.Request) ([]intents.Request, error) {
	items := in.Intents
	if len(items) == 0 {
		items = []domain.IntentInput{{}}
	}
	want, escalate := Escalation(in.Question)

	out := make([]intents.Request, 0, len(items))
	anyPage := false
	for _, it := range items {
		req := base
		req.Intent = intents.DefaultIntent
		if it.Intent != "" {
			parsed, ok := intents.Parse(it.Intent)
			if !ok {
				return nil, unsupportedIntent(it.Intent)
			}
			req.Intent = parsed
		}
		req.Params.RowLimit = rowLimit(it.RowLimit, want, escalate)
		req.Params.BrandTerms = it.BrandTerms
		if page := strings.TrimSpace(it.PageURL); page != "" {
			req.Params.PageURL = page
			req.Intent = intents.DrilldownPageToQueries
			anyPage = true
		}
		out = append(out, req)
	}

	if !anyPage {
		if u := ExtractURL(in.Question); u != "" {
			out[0].Params.PageURL = u
			out[0].Intent = intents.DrilldownPageToQueries
		}
	}
	return out, nil
}
