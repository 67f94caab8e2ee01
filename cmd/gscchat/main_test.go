package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gscchat/internal/core/intents"
	"gscchat/internal/platform/config"
	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/store"
	"gscchat/internal/platform/testkit"
	"gscchat/internal/services/api/insights/domain"
	"gscchat/internal/services/api/insights/repo"
)

var clock = func() time.Time { return time.Date(2024, 3, 29, 9, 0, 0, 0, time.UTC) }

type emptyRows struct{}

func (emptyRows) Next() bool        { return false }
func (emptyRows) Scan(...any) error { return nil }
func (emptyRows) Err() error        { return nil }
func (emptyRows) Close()            {}
func (emptyRows) Columns() []string { return nil }

type fakeBackend struct {
	mu      sync.Mutex
	queries []string
	tables  []string
	batches [][][]any
	loadErr error
	// failures makes the first Load calls return failErr
	failures int
	failErr  error
}

func (f *fakeBackend) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	f.mu.Lock()
	f.queries = append(f.queries, sql)
	f.mu.Unlock()
	return emptyRows{}, nil
}

func (f *fakeBackend) Load(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	if f.loadErr != nil {
		return 0, f.loadErr
	}
	if f.failures > 0 {
		f.failures--
		return 0, f.failErr
	}
	f.tables = append(f.tables, table)
	f.batches = append(f.batches, rows)
	return int64(len(rows)), nil
}

func (f *fakeBackend) Ping(context.Context) error { return nil }
func (f *fakeBackend) Close() error               { return nil }

func testApp(be store.Backend, openErr error) *app {
	a := &app{cfg: config.New(), now: clock}
	a.open = func(context.Context, store.Kind) (store.Backend, func(), error) {
		if openErr != nil {
			return nil, nil, openErr
		}
		return be, func() {}, nil
	}
	return a
}

func run(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRanges(t *testing.T) {
	out, err := run(t, testApp(nil, nil), "", "ranges", "--preset", "last7")
	if err != nil {
		t.Fatalf("ranges: %v", err)
	}
	var got domain.RangesResp
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Days != 7 || got.Current.Start != "2024-03-22" || got.Current.End != "2024-03-28" {
		t.Fatalf("current = %+v days=%d", got.Current, got.Days)
	}
	if got.Previous.Start != "2024-03-15" || got.Previous.End != "2024-03-21" {
		t.Fatalf("previous = %+v", got.Previous)
	}

	out, err = run(t, testApp(nil, nil), "", "ranges", "--start", "2024-01-01", "--end", "2024-01-10")
	if err != nil {
		t.Fatalf("ranges explicit: %v", err)
	}
	testkit.MustContain(t, out, `"start_date": "2023-12-22"`)

	_, err = run(t, testApp(nil, nil), "", "ranges", "--preset", "last3")
	testkit.MustCode(t, err, perr.ErrorCodeValidation)
}

func TestAsk_MarkdownRoundTripsThroughValidate(t *testing.T) {
	be := &fakeBackend{}
	md, err := run(t, testApp(be, nil), "", "ask", "--site", "sc-domain:example.com", "why", "did", "clicks", "drop?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	testkit.MustContain(t, md, "## Confidence")
	if len(be.queries) == 0 {
		t.Fatalf("expected the backend to be queried")
	}

	out, err := run(t, testApp(nil, nil), md, "validate")
	if err != nil {
		t.Fatalf("validate stdin: %v", err)
	}
	testkit.MustContain(t, out, "valid")

	path := filepath.Join(t.TempDir(), "answer.md")
	if err := os.WriteFile(path, []byte(strings.Replace(md, "## Confidence", "## Trust", 1)), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = run(t, testApp(nil, nil), "", "validate", path)
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
	testkit.MustContain(t, err.Error(), `missing heading "## Confidence"`)
}

func TestAsk_JSONAndFlags(t *testing.T) {
	be := &fakeBackend{}
	out, err := run(t, testApp(be, nil), "",
		"ask", "--site", "https://example.com/", "--format", "json",
		"--intent", "brand-vs-nonbrand", "--brand", "acme", "--limit", "50",
		"brand share")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	var got domain.AskResp
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Answer == nil || got.Markdown != "" {
		t.Fatalf("json format should carry only the answer: %+v", got)
	}
	if len(got.Intents) != 1 || got.Intents[0] != intents.BrandVsNonbrand {
		t.Fatalf("intents = %v", got.Intents)
	}
}

func TestAsk_Errors(t *testing.T) {
	_, err := run(t, testApp(nil, intents.ErrNotConnected), "", "ask", "--site", "sc-domain:example.com", "q")
	testkit.MustCode(t, err, perr.ErrorCodeUnauthorized)

	_, err = run(t, testApp(&fakeBackend{}, nil), "", "ask", "--site", "example.com", "q")
	testkit.MustCode(t, err, perr.ErrorCodeValidation)

	_, err = run(t, testApp(&fakeBackend{}, nil), "", "ask", "--site", "sc-domain:example.com",
		"--intent", "a", "--intent", "b", "--intent", "c", "--intent", "d", "q")
	testkit.MustCode(t, err, perr.ErrorCodeValidation)

	_, err = run(t, testApp(&fakeBackend{}, nil), "", "--table", "x;drop", "ask", "--site", "sc-domain:example.com", "q")
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)

	// unknown backends fail before connecting
	_, err = run(t, testApp(&fakeBackend{}, nil), "", "--source", "mysql", "ask", "--site", "sc-domain:example.com", "q")
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}

func TestIntentInputs(t *testing.T) {
	if got := intentInputs(nil, nil, "", 0); got != nil {
		t.Fatalf("no knobs should mean default intent, got %+v", got)
	}
	got := intentInputs(nil, nil, "https://example.com/a", 0)
	if len(got) != 1 || got[0].Intent != "" || got[0].PageURL != "https://example.com/a" {
		t.Fatalf("page only = %+v", got)
	}
	got = intentInputs([]string{"top-losers-queries", "top-winners-pages"}, []string{"acme"}, "", 25)
	if len(got) != 2 || *got[1].RowLimit != 25 || got[1].BrandTerms[0] != "acme" {
		t.Fatalf("fan out = %+v", got)
	}
}

func TestIntentsCommand(t *testing.T) {
	out, err := run(t, testApp(nil, nil), "", "intents")
	if err != nil {
		t.Fatalf("intents: %v", err)
	}
	testkit.MustContain(t, out, string(intents.DefaultIntent))
}

const sampleCSV = "\ufeffDate,Query,Page,Clicks,Impressions,Position\n" +
	"2024-03-01,running shoes,https://example.com/shoes,12,340,4.2\n" +
	"2024-03-02,trail boots,https://example.com/boots,3,90,8.5\n" +
	"2024-03-02,acme login,https://example.com/login,40,41,1\n"

func TestReadFacts(t *testing.T) {
	facts, err := readFacts(strings.NewReader(sampleCSV), "sc-domain:example.com")
	if err != nil {
		t.Fatalf("readFacts: %v", err)
	}
	if len(facts) != 3 {
		t.Fatalf("facts = %d", len(facts))
	}
	f := facts[0]
	if f.Site != "sc-domain:example.com" || f.Query != "running shoes" || f.Clicks != 12 || f.Impressions != 340 || f.Position != 4.2 {
		t.Fatalf("fact = %+v", f)
	}
	if !f.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v", f.Date)
	}

	withSite := "site,date,clicks,impressions,position\nhttps://example.com/,2024-03-01,1,2,3\n"
	facts, err = readFacts(strings.NewReader(withSite), "")
	if err != nil || facts[0].Site != "https://example.com/" {
		t.Fatalf("site alias: %+v %v", facts, err)
	}
}

func TestReadFacts_Errors(t *testing.T) {
	cases := map[string]struct {
		csv  string
		site string
		want string
	}{
		"empty":          {"", "x", "csv is empty"},
		"missing column": {"date,clicks,impressions\n", "x", `missing column "position"`},
		"no site":        {"date,clicks,impressions,position\n", "", "no site_url column"},
		"bad date":       {"date,clicks,impressions,position\n03/01/2024,1,2,3\n", "x", "csv line 2"},
		"bad clicks":     {"date,clicks,impressions,position\n2024-03-01,one,2,3\n", "x", "clicks"},
		"negative":       {"date,clicks,impressions,position\n2024-03-01,1,-2,3\n", "x", "negative metric"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readFacts(strings.NewReader(tc.csv), tc.site)
			testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
			testkit.MustContain(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_Batches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	be := &fakeBackend{}
	out, err := run(t, testApp(be, nil), "", "--source", "pg", "--table", "gsc_daily",
		"load", path, "--site", "sc-domain:example.com", "--batch", "2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	testkit.MustContain(t, out, "loaded 3 rows into gsc_daily")
	if len(be.batches) != 2 || len(be.batches[0]) != 2 || len(be.batches[1]) != 1 {
		t.Fatalf("batches = %v", be.batches)
	}
	if be.tables[0] != "gsc_daily" {
		t.Fatalf("table = %q", be.tables[0])
	}
	if got := be.batches[1][0][len(repo.FactColumns)-1]; got != 1.0 {
		t.Fatalf("position column = %v", got)
	}
}

func TestLoad_RetriesTransientFailures(t *testing.T) {
	testkit.Swap(t, &retryBackoff, 0)
	path := filepath.Join(t.TempDir(), "facts.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	be := &fakeBackend{failures: 2, failErr: errors.New("write: connection reset by peer")}
	out, err := run(t, testApp(be, nil), "", "load", path, "--site", "sc-domain:example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	testkit.MustContain(t, out, "loaded 3 rows")
	if len(be.batches) != 1 {
		t.Fatalf("batches = %d", len(be.batches))
	}

	be = &fakeBackend{failures: loadAttempts, failErr: errors.New("write: broken pipe")}
	_, err = run(t, testApp(be, nil), "", "load", path, "--site", "sc-domain:example.com")
	testkit.MustCode(t, err, perr.ErrorCodeUpstream)
	if be.failures != 0 {
		t.Fatalf("expected %d attempts, %d left", loadAttempts, be.failures)
	}
}

func TestLoad_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, testApp(nil, intents.ErrNotConnected), "", "load", path, "--site", "sc-domain:example.com")
	testkit.MustCode(t, err, perr.ErrorCodeUnauthorized)

	_, err = run(t, testApp(&fakeBackend{}, nil), "", "load", path, "--site", "example")
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)

	be := &fakeBackend{loadErr: io.ErrUnexpectedEOF}
	_, err = run(t, testApp(be, nil), "", "load", path, "--site", "sc-domain:example.com")
	testkit.MustCode(t, err, perr.ErrorCodeUpstream)
}
