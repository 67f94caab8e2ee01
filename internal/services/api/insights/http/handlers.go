// Package http provides HTTP transport for the insights API
package http

import (
	stdhttp "net/http"

	"gscchat/internal/modkit/httpkit"
	"gscchat/internal/services/api/insights/domain"
)

// Register mounts insights endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	if err := domain.RegisterValidators(); err != nil {
		panic("insights: register validators: " + err.Error())
	}
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.AskInput](r, "/ask", h.ask)
	httpkit.PostJSON[domain.RangesInput](r, "/ranges", h.ranges)
	httpkit.PostJSON[domain.ValidateInput](r, "/validate", h.validate)
	httpkit.Get(r, "/intents", h.intents)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /insights/ask Insights insightsAsk
// @Summary Answer a question by comparing the current window with the previous one
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body domain.AskInput true "Question"
// @Success 200 {object} domain.AskResp "ok"
// @Failure 400 {object} httpkit.Envelope "validation failed"
// @Failure 401 {object} httpkit.Envelope "metrics source not connected"
// @Failure 422 {object} httpkit.Envelope "invalid intent parameters"
// @Failure 502 {object} httpkit.Envelope "metrics source failed"
// @Router /insights/ask [post]
func (h *handlers) ask(r *stdhttp.Request, in domain.AskInput) (any, error) {
	return h.svc.Ask(r.Context(), in)
}

// swagger:route POST /insights/ranges Insights insightsRanges
// @Summary Resolve the current and previous windows
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body domain.RangesInput true "Preset or range"
// @Success 200 {object} domain.RangesResp "ok"
// @Router /insights/ranges [post]
func (h *handlers) ranges(r *stdhttp.Request, in domain.RangesInput) (any, error) {
	return h.svc.Ranges(r.Context(), in)
}

// swagger:route POST /insights/validate Insights insightsValidate
// @Summary Check a rendered answer against the section contract
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body domain.ValidateInput true "Markdown"
// @Success 200 {object} domain.ValidateResp "ok"
// @Router /insights/validate [post]
func (h *handlers) validate(r *stdhttp.Request, in domain.ValidateInput) (any, error) {
	return h.svc.Validate(r.Context(), in)
}

// swagger:route GET /insights/intents Insights insightsIntents
// @Summary List supported intents and row limits
// @Tags Insights
// @Produce json
// @Success 200 {object} domain.IntentsResp "ok"
// @Router /insights/intents [get]
func (h *handlers) intents(r *stdhttp.Request) (any, error) {
	return h.svc.Intents(r.Context())
}
