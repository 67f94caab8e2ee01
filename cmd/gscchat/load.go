package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gscchat/internal/core/intents"
	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/logger"
	"gscchat/internal/platform/store"
	"gscchat/internal/services/api/insights/domain"
	"gscchat/internal/services/api/insights/repo"
)

const defaultBatch = 5000

func newLoadCmd(a *app) *cobra.Command {
	var (
		site  string
		batch int
	)
	cmd := &cobra.Command{
		Use:   "load FILE.csv",
		Short: "Bulk load daily rows exported from Search Console into the metrics table",
		Long: `Reads a CSV with a header row. Recognised columns are site_url, date, query, page,
clicks, impressions and position; date, clicks, impressions and position are required.
--site fills rows whose site_url is empty or missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batch <= 0 {
				batch = defaultBatch
			}
			if err := domain.RegisterValidators(); err != nil {
				return err
			}
			if site != "" && !domain.ValidSite(site) {
				return perr.WithField(perr.InvalidArgf("invalid site %q", site), "site")
			}
			kind, table, err := a.source()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			facts, err := readFacts(f, site)
			if err != nil {
				return err
			}

			be, done, err := a.open(cmd.Context(), kind)
			if err != nil {
				return err
			}
			defer done()
			if be == nil {
				return intents.ErrNotConnected
			}

			log := logger.Named("load")
			var total int64
			for start := 0; start < len(facts); start += batch {
				end := min(start+batch, len(facts))
				n, err := loadBatch(cmd.Context(), be, table, facts[start:end])
				total += n
				if err != nil {
					return err
				}
				log.Debug().Int("from", start).Int("to", end).Int64("written", n).Msg("batch loaded")
			}
			log.Info().Str("table", table).Str("source", string(kind)).Int64("rows", total).Msg("load done")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d rows into %s\n", total, table)
			return err
		},
	}
	cmd.Flags().StringVar(&site, "site", "", "property for rows without a site_url")
	cmd.Flags().IntVar(&batch, "batch", defaultBatch, "rows per insert")
	return cmd
}

var requiredCols = []string{"date", "clicks", "impressions", "position"}

// readFacts parses a header led CSV into facts, reporting the first bad line
func readFacts(r io.Reader, site string) ([]repo.Fact, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, perr.InvalidArgf("csv is empty")
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "csv header")
	}
	idx := make(map[string]int, len(head))
	for i, h := range head {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if i, ok := idx["site"]; ok {
		if _, dup := idx["site_url"]; !dup {
			idx["site_url"] = i
		}
	}
	for _, c := range requiredCols {
		if _, ok := idx[c]; !ok {
			return nil, perr.WithField(perr.InvalidArgf("csv missing column %q", c), c)
		}
	}
	if _, ok := idx["site_url"]; !ok && site == "" {
		return nil, perr.WithField(perr.InvalidArgf("csv has no site_url column and --site is empty"), "site")
	}

	var out []repo.Fact
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "csv line %d", line)
		}
		f, err := parseFact(rec, idx, site)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "csv line %d", line)
		}
		out = append(out, f)
	}
}

func parseFact(rec []string, idx map[string]int, site string) (repo.Fact, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	f := repo.Fact{Site: get("site_url"), Query: get("query"), Page: get("page")}
	if f.Site == "" {
		f.Site = site
	}
	if f.Site == "" {
		return f, fmt.Errorf("site_url is empty")
	}

	var err error
	if f.Date, err = time.Parse(time.DateOnly, get("date")); err != nil {
		return f, fmt.Errorf("date: %w", err)
	}
	if f.Clicks, err = strconv.ParseInt(get("clicks"), 10, 64); err != nil {
		return f, fmt.Errorf("clicks: %w", err)
	}
	if f.Impressions, err = strconv.ParseInt(get("impressions"), 10, 64); err != nil {
		return f, fmt.Errorf("impressions: %w", err)
	}
	if f.Position, err = strconv.ParseFloat(get("position"), 64); err != nil {
		return f, fmt.Errorf("position: %w", err)
	}
	if f.Clicks < 0 || f.Impressions < 0 || f.Position < 0 {
		return f, fmt.Errorf("negative metric")
	}
	return f, nil
}

const loadAttempts = 3

var retryBackoff = 250 * time.Millisecond

// loadBatch writes one batch, retrying transient source failures with a linear backoff
func loadBatch(ctx context.Context, l store.Loader, table string, facts []repo.Fact) (int64, error) {
	for attempt := 1; ; attempt++ {
		n, err := repo.LoadFacts(ctx, l, table, facts)
		if err == nil || attempt == loadAttempts || !perr.IsRetryable(err) {
			return n, err
		}
		logger.Named("load").Warn().Err(err).Int("attempt", attempt).Msg("batch failed; retrying")
		select {
		case <-ctx.Done():
			return 0, perr.FromSource(ctx.Err(), "load")
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
}
