package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"

	"gscchat/internal/core/intents"
	"gscchat/internal/modkit/repokit"
	"gscchat/internal/platform/config"
	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/logger"
	"gscchat/internal/platform/store"
	"gscchat/internal/services/api/insights/repo"
	"gscchat/internal/services/api/insights/service"
)

// app carries the persistent flags and the seams commands share
type app struct {
	cfg config.Conf

	kind       string
	table      string
	thresholds string

	now  func() time.Time
	open func(ctx context.Context, kind store.Kind) (store.Backend, func(), error)
}

func newApp() *app {
	a := &app{cfg: config.New(), now: time.Now}
	a.open = a.openStore
	return a
}

func newRootCmd(a *app) *cobra.Command {
	gc := a.cfg.Prefix("GSC_")
	root := &cobra.Command{
		Use:           "gscchat",
		Short:         "Period over period search performance insights",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.kind, "source", gc.MayString("SOURCE_KIND", string(store.KindClickhouse)), "metrics backend: clickhouse or postgres")
	pf.StringVar(&a.table, "table", gc.MayString("SOURCE_TABLE", repo.DefaultTable), "metrics table name")
	pf.StringVar(&a.thresholds, "thresholds", gc.MayString("THRESHOLDS_FILE", ""), "YAML file overriding analysis thresholds")

	root.AddCommand(
		newAskCmd(a),
		newRangesCmd(a),
		newValidateCmd(a),
		newIntentsCmd(a),
		newLoadCmd(a),
	)
	return root
}

// source resolves the backend kind and table flags
func (a *app) source() (store.Kind, string, error) {
	kind, err := store.ParseKind(a.kind)
	if err != nil {
		return "", "", perr.WithField(perr.InvalidArgf("%v", err), "source")
	}
	if !repo.ValidTable(a.table) {
		return "", "", perr.WithField(perr.InvalidArgf("invalid table name %q", a.table), "table")
	}
	return kind, a.table, nil
}

// service builds an insights service, connecting to the backend only when withDB is set
func (a *app) service(ctx context.Context, withDB bool) (*service.Service, func(), error) {
	kind, table, err := a.source()
	if err != nil {
		return nil, nil, err
	}
	th, err := intents.LoadThresholds(a.thresholds)
	if err != nil {
		return nil, nil, err
	}
	d, _ := repo.DialectFor(string(kind))

	var db repokit.Queryer
	done := func() {}
	if withDB {
		be, closeFn, err := a.open(ctx, kind)
		if err != nil {
			return nil, nil, err
		}
		if be != nil {
			db = be
		}
		done = closeFn
	}
	svc := service.New(db, repo.New(d, table),
		service.WithThresholds(th),
		service.WithSource(string(kind), table),
		service.WithClock(a.now),
	)
	return svc, done, nil
}

// openStore dials only the backend named by kind, from its SERVICE_* DBURL
func (a *app) openStore(ctx context.Context, kind store.Kind) (store.Backend, func(), error) {
	cfg := store.FromConfig(a.cfg, "gscchat", "cli").Only(kind)
	if !cfg.PG.Enabled && !cfg.CH.Enabled {
		return nil, nil, intents.ErrNotConnected
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*logger.Get()))
	if err != nil {
		return nil, nil, perr.FromSource(err, string(kind))
	}
	return st.Backend(kind), func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Get().Warn().Err(err).Msg("closing store")
		}
	}, nil
}

// emit writes v as indented JSON
func emit(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
