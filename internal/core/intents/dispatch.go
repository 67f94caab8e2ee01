package intents

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gscchat/internal/core/daterange"
	"gscchat/internal/core/metrics"
	"gscchat/internal/core/textfold"
	perr "gscchat/internal/platform/errors"
)

// variant is one row of the dispatch table
type variant struct {
	validate func(Params) error
	run      func(d *Dispatcher, ctx context.Context, j job) (Result, error)
}

// deltaVariant covers intents that join one dimension across both windows
func deltaVariant(dim Dimension, kind Kind, shape deltaShaper) variant {
	return variant{
		run: func(d *Dispatcher, ctx context.Context, j job) (Result, error) {
			return d.runDeltas(ctx, j, dim, nil, kind, shape)
		},
	}
}

var table = map[Intent]variant{
	TopWinnersQueries:           deltaVariant(DimQuery, KindQueryDeltas, byDeltaClicksDesc),
	TopLosersQueries:            deltaVariant(DimQuery, KindQueryDeltas, byDeltaClicksAsc),
	TopWinnersPages:             deltaVariant(DimPage, KindPageDeltas, byDeltaClicksDesc),
	TopLosersPages:              deltaVariant(DimPage, KindPageDeltas, byDeltaClicksAsc),
	HighImpressLowCTRPages:      deltaVariant(DimPage, KindPageDeltas, highImpressLowCTR),
	PositionUpClicksDownQueries: deltaVariant(DimQuery, KindQueryDeltas, positionUpClicksDown),
	CTROpportunitiesQueries:     deltaVariant(DimQuery, KindQueryDeltas, ctrOpportunities),
	BrandVsNonbrand:             {validate: requireBrandTerms, run: (*Dispatcher).runBrand},
	CannibalizationQueries:      {run: (*Dispatcher).runCannibalization},
	DrilldownPageToQueries:      {validate: requirePageURL, run: (*Dispatcher).runDrilldown},
}

func requireBrandTerms(p Params) error {
	if len(textfold.Terms(p.BrandTerms)) == 0 {
		return perr.WithField(perr.InvalidArgf("brand terms are required for %s", BrandVsNonbrand), "brand_terms")
	}
	return nil
}

func requirePageURL(p Params) error {
	if strings.TrimSpace(p.PageURL) == "" {
		return perr.WithField(perr.InvalidArgf("page url is required for %s", DrilldownPageToQueries), "page_url")
	}
	return nil
}

// Dispatcher runs intents against one Source
type Dispatcher struct {
	src Source
	th  Thresholds
	now func() time.Time
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithThresholds overrides the default cut-offs
func WithThresholds(th Thresholds) Option { return func(d *Dispatcher) { d.th = th } }

// WithClock sets the clock used to resolve presets when a request carries no ranges
func WithClock(now func() time.Time) Option { return func(d *Dispatcher) { d.now = now } }

// New builds a Dispatcher. A nil src fails every dispatch as not connected
func New(src Source, opts ...Option) *Dispatcher {
	d := &Dispatcher{src: src, th: DefaultThresholds(), now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Thresholds returns the cut-offs in effect
func (d *Dispatcher) Thresholds() Thresholds { return d.th }

// job is a validated request with its effective limits
type job struct {
	req        Request
	pair       daterange.Pair
	rowLimit   int
	fetchLimit int
}

// prepare validates a request and resolves its ranges and limits
func (d *Dispatcher) prepare(req Request, rowCap int) (job, error) {
	v, ok := table[req.Intent]
	if !ok {
		return job{}, perr.WithField(perr.InvalidArgf("unsupported intent %q", req.Intent), "intent")
	}
	if v.validate != nil {
		if err := v.validate(req.Params); err != nil {
			return job{}, err
		}
	}
	pair := req.Ranges
	if pair.Current.IsZero() {
		if req.Params.Preset == "" {
			req.Params.Preset = daterange.DefaultPreset
		}
		p, err := daterange.ResolvePair(req.Params.Preset, d.now())
		if err != nil {
			return job{}, err
		}
		pair = p
	} else if pair.Previous.IsZero() {
		pair = daterange.PairOf(pair.Current)
	}

	limit := EffectiveRowLimit(req.Params.RowLimit)
	if rowCap > 0 && limit > rowCap {
		limit = rowCap
	}
	fetch := limit
	if d.th.FetchRows > fetch {
		fetch = d.th.FetchRows
	}
	return job{req: req, pair: pair, rowLimit: limit, fetchLimit: fetch}, nil
}

// Dispatch runs one intent
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	j, err := d.prepare(req, 0)
	if err != nil {
		return Result{}, err
	}
	return d.run(ctx, j)
}

// DispatchAll runs up to MaxIntents intents concurrently and returns results in
// request order. Every request is validated before any fetch starts; the first
// fetch failure cancels the rest and is returned unchanged
func (d *Dispatcher) DispatchAll(ctx context.Context, reqs []Request) ([]Result, error) {
	switch {
	case len(reqs) == 0:
		return nil, perr.WithField(perr.InvalidArgf("at least one intent is required"), "intents")
	case len(reqs) > MaxIntents:
		return nil, perr.WithField(perr.InvalidArgf("at most %d intents per request, got %d", MaxIntents, len(reqs)), "intents")
	}

	rowCap := 0
	if len(reqs) > 1 {
		rowCap = SharedRowLimit(len(reqs))
	}
	jobs := make([]job, len(reqs))
	for i, r := range reqs {
		j, err := d.prepare(r, rowCap)
		if err != nil {
			return nil, err
		}
		jobs[i] = j
	}

	out := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range jobs {
		g.Go(func() error {
			res, err := d.run(gctx, jobs[i])
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) run(ctx context.Context, j job) (Result, error) {
	if d.src == nil {
		return Result{}, ErrNotConnected
	}
	return table[j.req.Intent].run(d, ctx, j)
}

// base is the Result skeleton shared by every kind
func (j job) base() Result {
	return Result{
		Intent:   j.req.Intent,
		Preset:   j.req.Params.Preset,
		RowLimit: j.rowLimit,
		Range:    j.pair,
	}
}

func (j job) plan(r daterange.Range, dims []Dimension, groups []FilterGroup) Plan {
	p := Plan{Site: j.req.Site, Range: r, FilterGroups: groups}
	if len(dims) > 0 {
		p.Dimensions = dims
		p.RowLimit = j.fetchLimit
	}
	return p
}

// windows is what one intent read from the source
type windows struct {
	totals      TotalsPair
	current     []metrics.Row
	prev        []metrics.Row
	droppedCur  int
	droppedPrev int
}

func (w windows) dropped() int { return w.droppedCur + w.droppedPrev }

// fetch schedules unfiltered totals plus dimensional rows for both windows on g
func (d *Dispatcher) fetch(ctx context.Context, g *errgroup.Group, j job, dims []Dimension, groups []FilterGroup, w *windows) {
	g.Go(func() error {
		raw, err := d.src.Totals(ctx, j.plan(j.pair.Current, nil, nil))
		if err != nil {
			return err
		}
		w.totals.Current = metrics.NormalizeTotals(raw)
		return nil
	})
	g.Go(func() error {
		raw, err := d.src.Totals(ctx, j.plan(j.pair.Previous, nil, nil))
		if err != nil {
			return err
		}
		w.totals.Previous = metrics.NormalizeTotals(raw)
		return nil
	})
	g.Go(func() error {
		raw, err := d.src.Rows(ctx, j.plan(j.pair.Current, dims, groups))
		if err != nil {
			return err
		}
		w.current, w.droppedCur = metrics.NormalizeAll(raw)
		return nil
	})
	g.Go(func() error {
		raw, err := d.src.Rows(ctx, j.plan(j.pair.Previous, dims, groups))
		if err != nil {
			return err
		}
		w.prev, w.droppedPrev = metrics.NormalizeAll(raw)
		return nil
	})
}

func (d *Dispatcher) read(ctx context.Context, j job, dims []Dimension, groups []FilterGroup) (windows, error) {
	var w windows
	g, gctx := errgroup.WithContext(ctx)
	d.fetch(gctx, g, j, dims, groups, &w)
	if err := g.Wait(); err != nil {
		return windows{}, err
	}
	return w, nil
}

// finish tags the result kind, degrading to empty when nothing survived
func finish(res Result, kind Kind, n int) Result {
	if n == 0 {
		res.Kind = KindEmpty
		return res
	}
	res.Kind = kind
	return res
}

func (d *Dispatcher) runDeltas(ctx context.Context, j job, dim Dimension, groups []FilterGroup, kind Kind, shape deltaShaper) (Result, error) {
	w, err := d.read(ctx, j, []Dimension{dim}, groups)
	if err != nil {
		return Result{}, err
	}
	res := j.base()
	res.Totals = w.totals
	res.Dropped = w.dropped()
	rows := truncate(shape(metrics.MergeDeltas(w.current, w.prev), d.th), j.rowLimit)
	res.Deltas = rows
	if len(rows) == 0 {
		res.Deltas = []metrics.DeltaRow{}
	}
	return finish(res, kind, len(rows)), nil
}

func (d *Dispatcher) runDrilldown(ctx context.Context, j job) (Result, error) {
	page := strings.TrimSpace(j.req.Params.PageURL)
	groups := []FilterGroup{{
		GroupType: GroupAnd,
		Filters:   []Filter{{Dimension: DimPage, Operator: OpEquals, Expression: page}},
	}}
	res, err := d.runDeltas(ctx, j, DimQuery, groups, KindPageDrilldown, drilldown)
	if err != nil {
		return Result{}, err
	}
	res.PageURL = page
	return res, nil
}

func (d *Dispatcher) runCannibalization(ctx context.Context, j job) (Result, error) {
	w, err := d.read(ctx, j, []Dimension{DimQuery, DimPage}, nil)
	if err != nil {
		return Result{}, err
	}
	res := j.base()
	res.Totals = w.totals
	res.Dropped = w.dropped()
	items := truncate(cannibalization(w.current, w.prev, d.th), j.rowLimit)
	if items == nil {
		items = []CannibalRow{}
	}
	res.Cannibalization = items
	return finish(res, KindCannibalization, len(items)), nil
}

// filterTerms keeps the caller's spelling of each brand term for source filters.
// Sources match case-insensitively but do not fold accents, so folded terms would miss "café"
func filterTerms(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// brandGroups builds the filter groups matching brand and non-brand queries
func brandGroups(terms []string) (brand, nonBrand []FilterGroup) {
	in := FilterGroup{GroupType: GroupOr}
	out := FilterGroup{GroupType: GroupAnd}
	for _, t := range terms {
		in.Filters = append(in.Filters, Filter{Dimension: DimQuery, Operator: OpContains, Expression: t})
		out.Filters = append(out.Filters, Filter{Dimension: DimQuery, Operator: OpNotContains, Expression: t})
	}
	return []FilterGroup{in}, []FilterGroup{out}
}

func (d *Dispatcher) runBrand(ctx context.Context, j job) (Result, error) {
	m := textfold.NewMatcher(j.req.Params.BrandTerms)
	brandG, nonG := brandGroups(filterTerms(j.req.Params.BrandTerms))

	var (
		w     windows
		split = BrandSplit{Terms: m.Terms()}
	)
	g, gctx := errgroup.WithContext(ctx)
	d.fetch(gctx, g, j, []Dimension{DimQuery}, nil, &w)

	splitTotals := []struct {
		r      daterange.Range
		groups []FilterGroup
		dst    *metrics.Totals
	}{
		{j.pair.Current, brandG, &split.Brand.Totals.Current},
		{j.pair.Previous, brandG, &split.Brand.Totals.Previous},
		{j.pair.Current, nonG, &split.NonBrand.Totals.Current},
		{j.pair.Previous, nonG, &split.NonBrand.Totals.Previous},
	}
	for _, st := range splitTotals {
		g.Go(func() error {
			raw, err := d.src.Totals(gctx, j.plan(st.r, nil, st.groups))
			if err != nil {
				return err
			}
			*st.dst = metrics.NormalizeTotals(raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	split.Brand.Top, split.NonBrand.Top = splitBrand(metrics.MergeDeltas(w.current, w.prev), m, j.rowLimit)

	res := j.base()
	res.Totals = w.totals
	res.Dropped = w.dropped()
	res.Brand = &split
	return finish(res, KindBrandSplit, len(split.Brand.Top)+len(split.NonBrand.Top)), nil
}
