// Package service implements the insights API facade
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gscchat/internal/core/daterange"
	"gscchat/internal/core/insight"
	"gscchat/internal/core/intents"
	"gscchat/internal/core/report"
	"gscchat/internal/modkit/repokit"
	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/logger"
	"gscchat/internal/services/api/insights/domain"
	irepo "gscchat/internal/services/api/insights/repo"
)

// Service is the concrete implementation of domain.ServicePort
type Service struct {
	DB   repokit.Queryer
	Repo repokit.Binder[irepo.MetricsRepo]

	th    intents.Thresholds
	now   func() time.Time
	newID func() string
	kind  string
	table string
}

var _ domain.ServicePort = (*Service)(nil)

// Option configures a Service
type Option func(*Service)

// WithThresholds overrides the analytic thresholds
func WithThresholds(th intents.Thresholds) Option { return func(s *Service) { s.th = th } }

// WithClock pins the clock used to resolve presets
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithSource records which backend and table the binder reads, for reporting only
func WithSource(kind, table string) Option {
	return func(s *Service) { s.kind, s.table = kind, table }
}

// WithIDs overrides answer id generation
func WithIDs(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// New constructs an insights service. A nil db is allowed and reports the source as not connected
func New(db repokit.Queryer, binder repokit.Binder[irepo.MetricsRepo], opts ...Option) *Service {
	if binder == nil {
		panic("insights.Service requires a non-nil repo Binder")
	}
	s := &Service{
		DB:    db,
		Repo:  binder,
		th:    intents.DefaultThresholds(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Source reports the configured backend kind and table
func (s *Service) Source() (kind, table string) { return s.kind, s.table }

func (s *Service) dispatcher() *intents.Dispatcher {
	var src intents.Source
	if s.DB != nil {
		src = s.Repo.Bind(s.DB)
	}
	return intents.New(src, intents.WithThresholds(s.th), intents.WithClock(s.now))
}

func unsupportedIntent(name string) error {
	return perr.WithField(perr.InvalidArgf("unsupported intent %q", name), "intents")
}

// window resolves the current and previous ranges for a preset or an explicit range
func (s *Service) window(preset daterange.Preset, rng *domain.RangeInput) (daterange.Pair, error) {
	if rng != nil {
		cur, err := daterange.New(rng.Start, rng.End)
		if err != nil {
			return daterange.Pair{}, err
		}
		return daterange.PairOf(cur), nil
	}
	return daterange.ResolvePair(preset, s.now())
}

func presetOf(p string) daterange.Preset {
	if p == "" {
		return daterange.DefaultPreset
	}
	return daterange.Preset(p)
}

// Ask dispatches the requested intents and synthesizes an answer over their results
func (s *Service) Ask(ctx context.Context, in domain.AskInput) (domain.AskResp, error) {
	preset := presetOf(in.Preset)
	site := strings.TrimSpace(in.SiteURL)
	ctx = logger.WithRequest(ctx, "", site)
	log := logger.C(ctx)

	pair, err := s.window(preset, in.Range)
	if err != nil {
		return domain.AskResp{}, err
	}
	if in.Range != nil {
		preset = ""
	}
	reqs, err := buildRequests(in, intents.Request{
		Site:   site,
		Ranges: pair,
		Params: intents.Params{Preset: preset},
	})
	if err != nil {
		return domain.AskResp{}, err
	}

	start := time.Now()
	results, err := s.dispatcher().DispatchAll(ctx, reqs)
	if err != nil {
		log.Warn().Err(err).Msg("insights ask failed")
		return domain.AskResp{}, err
	}

	names := make([]intents.Intent, len(reqs))
	for i, r := range reqs {
		names[i] = r.Intent
	}
	ans := insight.Synthesize(insight.Input{
		Message: in.Question,
		Site:    site,
		Preset:  preset,
		Intent:  names[0],
		Results: results,
	})

	out := domain.AskResp{
		AnswerID: s.newID(),
		Site:     site,
		Ranges:   pair,
		Preset:   preset,
		Intents:  names,
		Results:  results,
	}
	switch in.Format {
	case domain.FormatJSON:
		out.Answer = &ans
	case domain.FormatMarkdown:
		out.Markdown = report.Render(ans)
	default:
		out.Answer = &ans
		out.Markdown = report.Render(ans)
	}

	kinds := make([]string, len(results))
	dropped := 0
	for i, r := range results {
		kinds[i] = string(r.Kind)
		dropped += r.Dropped
	}
	log.Info().
		Str("answer_id", out.AnswerID).
		Str("preset", string(preset)).
		Str("current", pair.Current.String()).
		Strs("kinds", kinds).
		Int("dropped_rows", dropped).
		Str("confidence", string(ans.Confidence.Level)).
		Dur("took", time.Since(start)).
		Msg("insights ask")
	return out, nil
}

// Ranges exposes the range resolver
func (s *Service) Ranges(_ context.Context, in domain.RangesInput) (domain.RangesResp, error) {
	preset := presetOf(in.Preset)
	pair, err := s.window(preset, in.Range)
	if err != nil {
		return domain.RangesResp{}, err
	}
	out := domain.RangesResp{
		Days:     daterange.Days(pair.Current),
		Current:  pair.Current,
		Previous: pair.Previous,
	}
	if in.Range == nil {
		out.Preset = preset
	}
	return out, nil
}

// Validate checks a rendered answer against the section contract
func (s *Service) Validate(_ context.Context, in domain.ValidateInput) (domain.ValidateResp, error) {
	if err := report.Validate(in.Markdown); err != nil {
		return domain.ValidateResp{Valid: false, Error: perr.WireFrom(err).Message}, nil
	}
	return domain.ValidateResp{Valid: true}, nil
}

// Intents lists the supported analyses
func (s *Service) Intents(_ context.Context) (domain.IntentsResp, error) {
	all := intents.All()
	out := domain.IntentsResp{
		Intents:         make([]domain.IntentInfo, 0, len(all)),
		Default:         intents.DefaultIntent,
		Presets:         daterange.Presets(),
		DefaultRowLimit: intents.DefaultRowLimit,
		MaxRowLimit:     intents.MaxRowLimit,
		MaxIntents:      intents.MaxIntents,
	}
	for _, it := range all {
		info := domain.IntentInfo{Intent: it, Label: it.Label()}
		switch it {
		case intents.BrandVsNonbrand:
			info.Requires = "brand_terms"
		case intents.DrilldownPageToQueries:
			info.Requires = "page_url"
		}
		out.Intents = append(out.Intents, info)
	}
	return out, nil
}
