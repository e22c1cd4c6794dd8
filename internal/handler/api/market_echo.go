package api

import (
	"errors"
	"time"

	models "TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	"TickPull/internal/services/statistics"
	"TickPull/internal/usecase"
	xhttp "TickPull/pkg/http"
	xlogger "TickPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type MarketEchoHandler struct {
	logger *xlogger.Logger
	bars   *usecase.BarsUseCase
	stats  *usecase.StatisticsUseCase
	report *usecase.MarketReportUseCase
	export *usecase.ExportUseCase
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	bars *usecase.BarsUseCase,
	stats *usecase.StatisticsUseCase,
	report *usecase.MarketReportUseCase,
	export *usecase.ExportUseCase,
) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, bars: bars, stats: stats, report: report, export: export}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/bars", h.Bars)
	g.GET("/statistics", h.Statistics)
	g.GET("/report", h.Report)
	g.GET("/export", h.Export)
}

// parseWindow resolves the [from, to] range; defaults to the last hour.
func parseWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Add(-time.Hour)
	to := now
	if fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return from, to, err
		}
		from = t
	}
	if toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return from, to, err
		}
		to = t
	}
	return from, to, nil
}

// domainErrorResponse maps domain sentinel errors to client errors.
func domainErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domrepo.ErrInvalidTimeframe):
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.Is(err, statistics.ErrInsufficientData):
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}

func (h *MarketEchoHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf, err := domrepo.ParseTimeframe(req.TF)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	from, to, err := parseWindow(req.From, req.To)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("invalid time range"))
	}

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return domainErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Statistics(c echo.Context) error {
	req := &models.StatisticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, to, err := parseWindow(req.From, req.To)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("invalid time range"))
	}

	res, err := h.stats.GetStatistics(c.Request().Context(), usecase.GetStatisticsParams{
		Symbol: req.Symbol,
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("statistics usecase error", xlogger.Error(err))
		return domainErrorResponse(c, err)
	}
	if res == nil {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundError("no ticks in window"))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Report(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf, err := domrepo.ParseTimeframe(req.TF)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	from, to, err := parseWindow(req.From, req.To)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("invalid time range"))
	}

	res, err := h.report.GetReport(c.Request().Context(), usecase.GetReportParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
	})
	if err != nil {
		h.logger.Error("report usecase error", xlogger.Error(err))
		return domainErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Export(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf, err := domrepo.ParseTimeframe(req.TF)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	from, to, err := parseWindow(req.From, req.To)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("invalid time range"))
	}

	path, err := h.export.ExportBars(c.Request().Context(), usecase.ExportParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Format:    req.Format,
	})
	if err != nil {
		h.logger.Error("export usecase error", xlogger.Error(err))
		return domainErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"path": path})
}
