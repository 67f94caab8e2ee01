package main

import (
	"github.com/spf13/cobra"

	"gscchat/internal/platform/net/http/bind"
	"gscchat/internal/services/api/insights/domain"
)

func newRangesCmd(a *app) *cobra.Command {
	var (
		in  domain.RangesInput
		rng domain.RangeInput
	)
	cmd := &cobra.Command{
		Use:   "ranges",
		Short: "Print the current and previous windows for a preset or explicit range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rng.Start != "" || rng.End != "" {
				r := rng
				in.Range = &r
			}
			if err := domain.RegisterValidators(); err != nil {
				return err
			}
			if err := bind.Validate(in); err != nil {
				return err
			}
			svc, done, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer done()

			out, err := svc.Ranges(cmd.Context(), in)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Preset, "preset", "", "last7, last28 or last90")
	f.StringVar(&rng.Start, "start", "", "current window start (YYYY-MM-DD)")
	f.StringVar(&rng.End, "end", "", "current window end (YYYY-MM-DD)")
	return cmd
}

func newIntentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "intents",
		Short: "List the supported analyses and limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer done()
			out, err := svc.Intents(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), out)
		},
	}
}
