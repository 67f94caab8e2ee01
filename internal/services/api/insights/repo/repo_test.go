package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gscchat/internal/core/intents"
	"gscchat/internal/core/metrics"
	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/store"
	"gscchat/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgconn"
)

type memRows struct {
	cols []string
	data [][]any
	idx  int
}

func (r *memRows) Next() bool        { r.idx++; return r.idx <= len(r.data) }
func (r *memRows) Err() error        { return nil }
func (r *memRows) Close()            {}
func (r *memRows) Columns() []string { return r.cols }
func (r *memRows) Scan(dest ...any) error {
	for i, v := range r.data[r.idx-1] {
		*(dest[i].(*any)) = v
	}
	return nil
}

type fakeQ struct {
	rows *memRows
	err  error
	sql  []string
	args [][]any
}

func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestRows_MapsDimensionsToKeys(t *testing.T) {
	q := &fakeQ{rows: &memRows{
		cols: []string{"query", "page", colClicks, colImpressions, colCTR, colPosition},
		data: [][]any{
			{"running shoes", "https://example.com/a", uint64(40), uint64(1000), 0.04, 3.5},
			{"trail shoes", "https://example.com/b", uint64(2), uint64(90), 0.022, 8.1},
		},
	}}
	r := New(ClickHouse, "").Bind(q)
	got, err := r.Rows(context.Background(), intents.Plan{
		Site: "sc-domain:example.com", Range: march,
		Dimensions: []intents.Dimension{intents.DimQuery, intents.DimPage},
	})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	rows, dropped := metrics.NormalizeAll(got)
	if dropped != 0 || len(rows) != 2 {
		t.Fatalf("normalized %d rows, dropped %d", len(rows), dropped)
	}
	if rows[0].Keys[0] != "running shoes" || rows[0].Keys[1] != "https://example.com/a" || rows[0].Clicks != 40 {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	testkit.MustContain(t, q.sql[0], "FROM search_analytics")
}

func TestTotals_DropsDimensionsAndLimit(t *testing.T) {
	q := &fakeQ{rows: &memRows{
		cols: []string{colClicks, colImpressions, colCTR, colPosition},
		data: [][]any{{120.0, 4000.0, 0.03, 6.2}},
	}}
	r := New(Postgres, "gsc.search_analytics").Bind(q)
	raw, err := r.Totals(context.Background(), intents.Plan{
		Site: "sc-domain:example.com", Range: march,
		Dimensions: []intents.Dimension{intents.DimQuery}, RowLimit: 50,
	})
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if _, ok := raw["keys"]; ok {
		t.Fatalf("totals should carry no keys: %v", raw)
	}
	tot := metrics.NormalizeTotals(raw)
	if tot.Clicks != 120 || tot.Impressions != 4000 {
		t.Fatalf("totals = %+v", tot)
	}
	testkit.MustContain(t, q.sql[0], "FROM gsc.search_analytics WHERE site_url = $1")

	empty, err := New(Postgres, "").Bind(&fakeQ{rows: &memRows{}}).Totals(context.Background(), intents.Plan{Site: "s", Range: march})
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty totals = %v, %v", empty, err)
	}
}

func TestRepo_Errors(t *testing.T) {
	ctx := context.Background()
	p := intents.Plan{Site: "s", Range: march}

	_, err := New(ClickHouse, "").Bind(nil).Rows(ctx, p)
	if !errors.Is(err, intents.ErrNotConnected) {
		t.Fatalf("nil queryer err = %v", err)
	}

	pgErr := &pgconn.PgError{Code: "2201B", Message: "invalid regular expression"}
	_, err = New(Postgres, "").Bind(&fakeQ{err: pgErr}).Rows(ctx, p)
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
	if !errors.Is(err, pgErr) {
		t.Fatalf("driver cause lost: %v", err)
	}

	_, err = New(Postgres, "").Bind(&fakeQ{err: errors.New("dial tcp: refused")}).Totals(ctx, p)
	testkit.MustCode(t, err, perr.ErrorCodeUpstream)

	q := &fakeQ{}
	_, err = New(Postgres, "").Bind(q).Rows(ctx, intents.Plan{Site: "s"})
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
	if len(q.sql) != 0 {
		t.Fatalf("invalid plan reached the backend")
	}
}

type fakeLoader struct {
	table string
	cols  []string
	rows  [][]any
	err   error
}

func (l *fakeLoader) Load(_ context.Context, table string, cols []string, rows [][]any) (int64, error) {
	l.table, l.cols, l.rows = table, cols, rows
	return int64(len(rows)), l.err
}

func TestLoadFacts(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.FixedZone("x", 3600))
	l := &fakeLoader{}
	n, err := LoadFacts(ctx, l, "", []Fact{{Site: "s", Date: day, Query: "shoes", Page: "/a", Clicks: 3, Impressions: 40, Position: 2.5}})
	if err != nil || n != 1 {
		t.Fatalf("LoadFacts = %d, %v", n, err)
	}
	if l.table != DefaultTable || len(l.cols) != len(FactColumns) {
		t.Fatalf("load target = %s %v", l.table, l.cols)
	}
	if got := l.rows[0][1].(time.Time); got.Location() != time.UTC {
		t.Fatalf("date not normalized to UTC: %v", got)
	}

	_, err = LoadFacts(ctx, l, "bad table", nil)
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)

	if _, err := LoadFacts(ctx, nil, "", nil); !errors.Is(err, intents.ErrNotConnected) {
		t.Fatalf("nil loader err = %v", err)
	}

	_, err = LoadFacts(ctx, &fakeLoader{err: errors.New("broken pipe")}, "", []Fact{{Site: "s", Date: day}})
	testkit.MustCode(t, err, perr.ErrorCodeUpstream)
}
