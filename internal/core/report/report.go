// Package report renders an insight.Answer as markdown with a fixed shape and
// validates markdown against that shape
package report

import (
	"fmt"
	"strings"

	"gscchat/internal/core/insight"
)

// section headings in render order
const (
	HeadingSummary    = "## Summary"
	HeadingFindings   = "## Key findings"
	HeadingCauses     = "## Likely causes"
	HeadingActions    = "## Recommended actions"
	HeadingConfidence = "## Confidence"
	StandsOutPrefix   = "What stands out: "
	Bullet            = "• "
)

// Headings lists required headings in order
func Headings() []string {
	return []string{HeadingSummary, HeadingFindings, HeadingCauses, HeadingActions, HeadingConfidence}
}

var (
	findingFillers = []string{"No further notable changes stood out in this window."}
	causeFillers   = []string{"Normal day-to-day volatility in search data."}
	actionFiller   = insight.Action{Step: "Re-run this comparison in two weeks to confirm the trend holds.", Priority: insight.LowImpact}
)

// Render serializes a into markdown. Section bounds are re-applied here so the
// output satisfies Validate whatever the answer holds
func Render(a insight.Answer) string {
	findings := bound(clean(a.KeyFindings), findingFillers, insight.MinFindings, insight.MaxFindings)
	causes := bound(clean(a.LikelyCauses), causeFillers, insight.MinCauses, insight.MaxCauses)
	actions := boundActions(a.RecommendedActions)

	// a leading # would turn the summary into a heading
	summary := strings.TrimLeft(oneLine(a.Summary), "# ")
	if summary == "" {
		summary = "No summary is available for this request."
	}
	standsOut := oneLine(a.WhatStandsOut)
	if standsOut == "" {
		standsOut = "No single change dominates this period."
	}
	level := a.Confidence.Level
	if !level.Valid() {
		level = insight.Low
	}
	reason := oneLine(a.Confidence.Reason)
	if reason == "" {
		reason = "No reason was given."
	}

	var b strings.Builder
	b.WriteString(HeadingSummary + "\n")
	b.WriteString(summary + "\n\n")

	b.WriteString(HeadingFindings + "\n")
	for _, f := range findings {
		b.WriteString(Bullet + f + "\n")
	}
	b.WriteString("\n" + HeadingCauses + "\n")
	for _, c := range causes {
		b.WriteString(Bullet + c + "\n")
	}
	b.WriteString("\n" + HeadingActions + "\n")
	for i, act := range actions {
		fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, act.Step, act.Priority)
	}
	b.WriteString("\n" + StandsOutPrefix + standsOut + "\n\n")
	b.WriteString(HeadingConfidence + "\n")
	fmt.Fprintf(&b, "%s — %s\n", level, reason)
	return b.String()
}

// oneLine flattens s so it cannot break the document structure
func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = oneLine(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func bound(list, fillers []string, lo, hi int) []string {
	for i := 0; len(list) < lo; i++ {
		list = append(list, fillers[i%len(fillers)])
	}
	if len(list) > hi {
		list = list[:hi]
	}
	return list
}

func boundActions(in []insight.Action) []insight.Action {
	out := make([]insight.Action, 0, len(in))
	for _, a := range in {
		step := oneLine(a.Step)
		if step == "" {
			continue
		}
		if !a.Priority.Valid() {
			a.Priority = insight.MediumImpact
		}
		a.Step = step
		out = append(out, a)
	}
	for len(out) < insight.MinActions {
		out = append(out, actionFiller)
	}
	if len(out) > insight.MaxActions {
		out = out[:insight.MaxActions]
	}
	return out
}
