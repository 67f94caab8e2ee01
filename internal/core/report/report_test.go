package report

import (
	"fmt"
	"strings"
	"testing"

	"gscchat/internal/core/insight"
	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/testkit"
)

func answer(findings, causes, actions int) insight.Answer {
	a := insight.Answer{
		Summary:       "Compared top losers queries for example.com.",
		WhatStandsOut: "Rankings improved while clicks fell.",
		Confidence:    insight.Confidence{Level: insight.Medium, Reason: "Impression volume is moderate."},
	}
	for i := 0; i < findings; i++ {
		a.KeyFindings = append(a.KeyFindings, fmt.Sprintf("Finding %d.", i+1))
	}
	for i := 0; i < causes; i++ {
		a.LikelyCauses = append(a.LikelyCauses, fmt.Sprintf("Cause %d.", i+1))
	}
	for i := 0; i < actions; i++ {
		a.RecommendedActions = append(a.RecommendedActions, insight.Action{Step: fmt.Sprintf("Step %d.", i+1), Priority: insight.HighImpact})
	}
	return a
}

func TestRender_ExactShape(t *testing.T) {
	got := Render(answer(4, 3, 3))
	want := `## Summary
Compared top losers queries for example.com.

## Key findings
• Finding 1.
• Finding 2.
• Finding 3.
• Finding 4.

## Likely causes
• Cause 1.
• Cause 2.
• Cause 3.

## Recommended actions
1. Step 1. [High impact]
2. Step 2. [High impact]
3. Step 3. [High impact]

What stands out: Rankings improved while clicks fell.

## Confidence
Medium — Impression volume is moderate.
`
	if got != want {
		t.Fatalf("render mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRender_IsValidatedProjection(t *testing.T) {
	for f := 4; f <= 8; f++ {
		for c := 3; c <= 6; c++ {
			for a := 3; a <= 7; a++ {
				md := Render(answer(f, c, a))
				if err := Validate(md); err != nil {
					t.Fatalf("f=%d c=%d a=%d: %v\n%s", f, c, a, err, md)
				}
				for _, h := range Headings() {
					if n := strings.Count(md, h+"\n"); n != 1 {
						t.Fatalf("heading %q appears %d times", h, n)
					}
				}
				if strings.Count(md, "\n"+Bullet) != f+c {
					t.Fatalf("bullet count off for f=%d c=%d", f, c)
				}
			}
		}
	}
}

func TestRender_ReappliesBounds(t *testing.T) {
	tests := []struct {
		name string
		in   insight.Answer
	}{
		{"too few", answer(1, 0, 1)},
		{"too many", answer(20, 20, 20)},
		{"blank entries", func() insight.Answer {
			a := answer(4, 3, 3)
			a.KeyFindings[0] = "   "
			a.RecommendedActions[0].Priority = "Huge impact"
			a.Confidence.Level = "Certain"
			a.Summary = ""
			a.WhatStandsOut = "line one\nline two"
			return a
		}()},
		{"zero answer", insight.Answer{}},
		{"summary shaped like a heading", func() insight.Answer {
			a := answer(4, 3, 3)
			a.Summary = "## Key findings leaked"
			return a
		}()},
		{"summary of only hashes", func() insight.Answer {
			a := answer(4, 3, 3)
			a.Summary = " ### "
			return a
		}()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			md := Render(tc.in)
			if err := Validate(md); err != nil {
				t.Fatalf("Validate: %v\n%s", err, md)
			}
		})
	}
}

func TestRender_SummaryLosesHeadingMarks(t *testing.T) {
	a := answer(4, 3, 3)
	a.Summary = "## Key findings leaked"
	testkit.MustContain(t, Render(a), "## Summary\nKey findings leaked\n\n")
}

func TestRender_SynthesizedAnswerValidates(t *testing.T) {
	md := Render(insight.Synthesize(insight.Input{Site: "example.com"}))
	if err := Validate(md); err != nil {
		t.Fatalf("Validate: %v\n%s", err, md)
	}
	testkit.MustContain(t, md, "\n\n## Confidence\nLow — ")
}

func TestValidate_Violations(t *testing.T) {
	good := Render(answer(4, 3, 3))
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"missing heading", strings.Replace(good, "## Likely causes\n", "", 1), "missing heading"},
		{"duplicate heading", good + "## Summary\nagain\n", "duplicate heading"},
		{"out of order", strings.Replace(strings.Replace(good, "## Summary", "## TMP", 1), "## Confidence", "## Summary", 1), ""},
		{"too few findings", strings.Replace(good, "• Finding 4.\n", "", 1), "key findings has 3 bullets"},
		{"wrong bullet", strings.Replace(good, "• Finding 2.", "- Finding 2.", 1), "non-bullet line"},
		{"bad priority", strings.Replace(good, "2. Step 2. [High impact]", "2. Step 2. [Huge impact]", 1), "action 2 is malformed"},
		{"bad numbering", strings.Replace(good, "3. Step 3.", "4. Step 3.", 1), "numbered 4"},
		{"stands out misplaced", strings.Replace(good, "\nWhat stands out: Rankings improved while clicks fell.\n", "", 1), "must directly precede"},
		{"bad confidence", strings.Replace(good, "Medium — ", "Medium - ", 1), "confidence must be"},
		{"extra heading", strings.Replace(good, "## Likely causes", "## Notes\n\n## Likely causes", 1), "extra heading"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.md)
			testkit.MustCode(t, err, perr.ErrorCodeValidation)
			if tc.want != "" {
				testkit.MustContain(t, err.Error(), tc.want)
			}
		})
	}
}
