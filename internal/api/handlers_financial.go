package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/cashflow-forecast/internal/financial"
	"github.com/ignite/cashflow-forecast/internal/forecast"
	"github.com/ignite/cashflow-forecast/internal/pkg/httputil"
	"github.com/ignite/cashflow-forecast/internal/snapshot"
)

// ========== Chart and Forecast Handlers ==========

// GetChartData returns both streams aggregated by period.
//
//	GET /api/data?period=&start_date=&end_date=&snapshot=
func (h *Handlers) GetChartData(w http.ResponseWriter, r *http.Request) {
	q, err := h.chartQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	res, err := h.service.ChartData(r.Context(), q)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	setSnapshotHeader(w, res.Snapshot)
	respondJSON(w, http.StatusOK, res.Payload)
}

// GetPredictions forecasts both streams.
//
//	GET /api/predictions?model_type=&horizon=&period=&start_date=&end_date=&snapshot=
func (h *Handlers) GetPredictions(w http.ResponseWriter, r *http.Request) {
	q, err := h.predictionQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	res, err := h.service.Predictions(r.Context(), q)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	setSnapshotHeader(w, res.Snapshot)
	respondJSON(w, http.StatusOK, res.Payload)
}

// exportRequest mirrors the prediction query parameters as a JSON body.
type exportRequest struct {
	ModelType string `json:"model_type"`
	Horizon   int    `json:"horizon"`
	Period    string `json:"period"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Snapshot  int64  `json:"snapshot"`
}

// ExportPredictions forecasts and stores the payload. Parameters come from
// a JSON body or, when the body is empty, from the query string.
//
//	POST /api/predictions/export
func (h *Handlers) ExportPredictions(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	var q financial.PredictionQuery
	switch {
	case errors.Is(err, io.EOF):
		q, err = h.predictionQuery(r)
	case err != nil:
		err = fmt.Errorf("invalid request body: %w", err)
	default:
		q, err = h.exportQuery(req)
	}
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	meta, err := h.service.Export(r.Context(), q)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, meta)
}

// GetExport returns a stored export.
//
//	GET /api/exports/{id}
func (h *Handlers) GetExport(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetExport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// GetCashflow returns revenue net of expense per bucket.
//
//	GET /api/cashflow?period=&start_date=&end_date=&snapshot=
func (h *Handlers) GetCashflow(w http.ResponseWriter, r *http.Request) {
	q, err := h.chartQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	report, err := h.service.Cashflow(r.Context(), q)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	setSnapshotHeader(w, report.Snapshot)
	respondJSON(w, http.StatusOK, report)
}

// ========== Snapshot Handlers ==========

// GetSnapshot returns snapshot metadata and per-stream summaries.
//
//	GET /api/snapshot?snapshot=
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	version, ok := httputil.QueryInt64(r, 0, "snapshot", "version")
	if !ok {
		httputil.BadRequest(w, "snapshot must be an integer")
		return
	}

	report, err := h.service.Summary(r.Context(), version)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	setSnapshotHeader(w, report.Snapshot)
	respondJSON(w, http.StatusOK, report)
}

// RefreshSnapshot fetches a new snapshot from the ledger now.
//
//	POST /api/refresh
func (h *Handlers) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.Refresh(r.Context())
	switch {
	case err == nil:
		setSnapshotHeader(w, *meta)
		respondJSON(w, http.StatusOK, meta)
	case errors.Is(err, snapshot.ErrRefreshInProgress), errors.Is(err, financial.ErrRefreshDisabled):
		respondServiceError(w, err)
	default:
		httputil.BadGateway(w, err)
	}
}

// ========== Query parsing ==========

func (h *Handlers) chartQuery(r *http.Request) (financial.ChartQuery, error) {
	version, ok := httputil.QueryInt64(r, 0, "snapshot")
	if !ok || version < 0 {
		return financial.ChartQuery{}, errors.New("snapshot must be a positive integer")
	}
	return h.buildChartQuery(
		httputil.QueryString(r, "period", "prediction_period"),
		httputil.QueryString(r, "start_date"),
		httputil.QueryString(r, "end_date"),
		version,
	)
}

func (h *Handlers) predictionQuery(r *http.Request) (financial.PredictionQuery, error) {
	cq, err := h.chartQuery(r)
	if err != nil {
		return financial.PredictionQuery{}, err
	}
	horizon, ok := httputil.QueryInt(r, h.service.Config().DefaultHorizon, "horizon", "prediction_days")
	if !ok {
		return financial.PredictionQuery{}, fmt.Errorf("horizon must be an integer: %w", forecast.ErrInvalidHorizon)
	}
	return financial.PredictionQuery{
		ChartQuery: cq,
		Model:      h.modelSpec(httputil.QueryString(r, "model_type", "model")),
		Horizon:    horizon,
	}, nil
}

func (h *Handlers) exportQuery(req exportRequest) (financial.PredictionQuery, error) {
	if req.Snapshot < 0 {
		return financial.PredictionQuery{}, errors.New("snapshot must be a positive integer")
	}
	cq, err := h.buildChartQuery(req.Period, req.StartDate, req.EndDate, req.Snapshot)
	if err != nil {
		return financial.PredictionQuery{}, err
	}
	horizon := req.Horizon
	if horizon == 0 {
		horizon = h.service.Config().DefaultHorizon
	}
	return financial.PredictionQuery{
		ChartQuery: cq,
		Model:      h.modelSpec(req.ModelType),
		Horizon:    horizon,
	}, nil
}

func (h *Handlers) buildChartQuery(period, start, end string, version int64) (financial.ChartQuery, error) {
	if period == "" {
		period = h.service.Config().DefaultPeriod
	}
	p, err := forecast.ParsePeriod(period)
	if err != nil {
		return financial.ChartQuery{}, err
	}
	rng, err := forecast.ParseDateRange(start, end)
	if err != nil {
		return financial.ChartQuery{}, err
	}
	return financial.ChartQuery{Period: p, Range: rng, Version: version}, nil
}

func (h *Handlers) modelSpec(tag string) forecast.ModelSpec {
	if tag == "" {
		tag = h.service.Config().DefaultModel
	}
	return forecast.ParseModelSpec(tag)
}

func setSnapshotHeader(w http.ResponseWriter, meta snapshot.Meta) {
	w.Header().Set(snapshotHeader, strconv.FormatInt(meta.Version, 10))
}
