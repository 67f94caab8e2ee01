package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gscchat/internal/platform/net/http/bind"
	"gscchat/internal/services/api/insights/domain"
)

func newAskCmd(a *app) *cobra.Command {
	var (
		in     domain.AskInput
		rng    domain.RangeInput
		names  []string
		brands []string
		page   string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Compare the current window against the previous one and synthesize an answer",
		Example: `  gscchat ask --site sc-domain:example.com "why did clicks drop?"
  gscchat ask --site https://example.com/ --intent brand-vs-nonbrand --brand acme "brand share"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Question = strings.Join(args, " ")
			if rng.Start != "" || rng.End != "" {
				r := rng
				in.Range = &r
			}
			in.Intents = intentInputs(names, brands, page, limit)

			if err := domain.RegisterValidators(); err != nil {
				return err
			}
			if err := bind.Validate(in); err != nil {
				return err
			}

			svc, done, err := a.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()

			resp, err := svc.Ask(cmd.Context(), in)
			if err != nil {
				return err
			}
			if in.Format == domain.FormatMarkdown {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Markdown)
				return err
			}
			return emit(cmd.OutOrStdout(), resp)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.SiteURL, "site", "", "property, either sc-domain:host or a URL prefix")
	f.StringVar(&in.Preset, "preset", "", "last7, last28 or last90")
	f.StringVar(&rng.Start, "start", "", "explicit current window start (YYYY-MM-DD)")
	f.StringVar(&rng.End, "end", "", "explicit current window end (YYYY-MM-DD)")
	f.StringSliceVar(&names, "intent", nil, "analysis to run, repeat for up to three")
	f.StringSliceVar(&brands, "brand", nil, "brand terms for the brand split")
	f.StringVar(&page, "page", "", "page URL to drill into")
	f.IntVar(&limit, "limit", 0, "rows per window")
	f.StringVar(&in.Format, "format", domain.FormatMarkdown, "markdown, json or both")
	_ = cmd.MarkFlagRequired("site")
	return cmd
}

// intentInputs fans the shared knobs out over every named intent
func intentInputs(names, brands []string, page string, limit int) []domain.IntentInput {
	var rl *int
	if limit > 0 {
		rl = &limit
	}
	if len(names) == 0 {
		if len(brands) == 0 && page == "" && rl == nil {
			return nil
		}
		names = []string{""}
	}
	out := make([]domain.IntentInput, 0, len(names))
	for _, n := range names {
		out = append(out, domain.IntentInput{
			Intent:     n,
			RowLimit:   rl,
			BrandTerms: brands,
			PageURL:    page,
		})
	}
	return out
}
