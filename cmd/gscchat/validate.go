package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	perr "gscchat/internal/platform/errors"
	"gscchat/internal/services/api/insights/domain"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a rendered answer has every required section in order",
		Long:  "Reads markdown from FILE, or from stdin when FILE is omitted or -.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			md, err := io.ReadAll(r)
			if err != nil {
				return err
			}

			svc, done, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.Validate(cmd.Context(), domain.ValidateInput{Markdown: string(md)})
			if err != nil {
				return err
			}
			if !res.Valid {
				return perr.InvalidArgf("%s", res.Error)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return err
		},
	}
}
