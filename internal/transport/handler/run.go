package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/service"
	"github.com/pep299/daily-news-digest/internal/transport/response"
)

// Runner executes one digest
type Runner interface {
	Run(ctx context.Context) (*service.Report, error)
}

// RunResult is the data returned by a triggered run
type RunResult struct {
	Channel      model.Channel `json:"channel"`
	Delivered    bool          `json:"delivered"`
	Message      string        `json:"message"`
	GeneralCount int           `json:"general_count"`
	DomainCount  int           `json:"domain_count"`
}

type Run struct {
	digest Runner
	logger zerolog.Logger
}

func NewRun(digest Runner, logger zerolog.Logger) *Run {
	return &Run{digest: digest, logger: logger}
}

func (h *Run) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info().Msg("🚀 每日新闻推送程序启动")

	report, err := h.digest.Run(r.Context())
	if errors.Is(err, service.ErrNoChannel) {
		response.WritePreconditionFailed(w, "no delivery channel configured; set WECHAT_*, EMAIL_* or PUSHPLUS_TOKEN")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("digest run failed")
		response.WriteInternalError(w, "Failed to run digest")
		return
	}

	response.WriteSuccess(w, report.Delivery.Message, RunResult{
		Channel:      report.Channel,
		Delivered:    report.Delivery.OK,
		Message:      report.Delivery.Message,
		GeneralCount: report.GeneralCount,
		DomainCount:  report.DomainCount,
	})
}
