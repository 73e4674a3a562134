// Package financial serves chart data, forecasts and exports built from
// ledger snapshots.
package financial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/cashflow-forecast/internal/config"
	"github.com/ignite/cashflow-forecast/internal/forecast"
	"github.com/ignite/cashflow-forecast/internal/pkg/logger"
	"github.com/ignite/cashflow-forecast/internal/snapshot"
	"github.com/ignite/cashflow-forecast/internal/storage"
)

var log = logger.With("financial.Service")

// Refresher produces a new snapshot on demand.
type Refresher interface {
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
	LastRefresh() (time.Time, error)
}

// Exporter persists forecast payloads.
type Exporter interface {
	SaveExport(ctx context.Context, meta storage.ExportMeta, payload forecast.ForecastPayload) (*storage.ExportMeta, error)
	GetExport(ctx context.Context, id string) (*storage.ExportRecord, error)
}

// Service composes the snapshot store, refresher, engine and exporter.
type Service struct {
	store     snapshot.Store
	refresher Refresher
	engine    *forecast.Engine
	exporter  Exporter
	config    config.ForecastConfig
}

// NewService creates a service. refresher and exporter may be nil.
func NewService(store snapshot.Store, refresher Refresher, cfg config.ForecastConfig) *Service {
	return &Service{
		store:     store,
		refresher: refresher,
		engine:    forecast.NewEngine(cfg.MovingAverageWindow),
		config:    cfg,
	}
}

// SetExporter enables Export and GetExport.
func (s *Service) SetExporter(e Exporter) {
	s.exporter = e
}

// Config returns the forecast defaults the service was built with.
func (s *Service) Config() config.ForecastConfig {
	return s.config
}

// ChartData aggregates both streams of the selected snapshot.
func (s *Service) ChartData(ctx context.Context, q ChartQuery) (*ChartResult, error) {
	snap, err := s.resolve(ctx, q.Version)
	if err != nil {
		return nil, err
	}
	revenue, expense := s.aggregate(snap, q)
	return &ChartResult{
		Snapshot: snap.Meta(),
		Payload:  forecast.AssembleChart(revenue, expense),
	}, nil
}

// Predictions forecasts both streams of the selected snapshot.
func (s *Service) Predictions(ctx context.Context, q PredictionQuery) (*PredictionResult, error) {
	if err := s.validateHorizon(q.Horizon); err != nil {
		return nil, err
	}
	if q.Model == nil {
		q.Model = forecast.ParseModelSpec(s.config.DefaultModel)
	}

	snap, err := s.resolve(ctx, q.Version)
	if err != nil {
		return nil, err
	}
	revenue, expense := s.aggregate(snap, q.ChartQuery)

	revRes := s.engine.Forecast(revenue, q.Model, q.Horizon)
	expRes := s.engine.Forecast(expense, q.Model, q.Horizon)
	logOutcome(snap.Version, revRes)
	logOutcome(snap.Version, expRes)

	return &PredictionResult{
		Snapshot: snap.Meta(),
		Payload:  forecast.AssembleForecast(revRes, expRes),
		Revenue:  revRes,
		Expense:  expRes,
	}, nil
}

// Refresh fetches a new snapshot now.
func (s *Service) Refresh(ctx context.Context) (*snapshot.Meta, error) {
	if s.refresher == nil {
		return nil, ErrRefreshDisabled
	}
	snap, err := s.refresher.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	meta := snap.Meta()
	return &meta, nil
}

// Summary reports counts, date span and value range per stream.
func (s *Service) Summary(ctx context.Context, version int64) (*SummaryReport, error) {
	snap, err := s.resolve(ctx, version)
	if err != nil {
		return nil, err
	}
	report := &SummaryReport{
		Snapshot: snap.Meta(),
		Revenue:  forecast.Summarize(snap.Revenue),
		Expense:  forecast.Summarize(snap.Expense),
	}
	if s.refresher != nil {
		last, lastErr := s.refresher.LastRefresh()
		if !last.IsZero() {
			report.LastRefresh = &last
		}
		if lastErr != nil {
			report.LastError = lastErr.Error()
		}
	}
	return report, nil
}

// Export runs Predictions and persists the payload.
func (s *Service) Export(ctx context.Context, q PredictionQuery) (*storage.ExportMeta, error) {
	if s.exporter == nil {
		return nil, ErrExportDisabled
	}
	res, err := s.Predictions(ctx, q)
	if err != nil {
		return nil, err
	}
	meta := storage.ExportMeta{
		SnapshotVersion: res.Snapshot.Version,
		Model:           res.Revenue.Model,
		Period:          string(res.Revenue.Real.Period),
		Horizon:         q.Horizon,
		RevenueOutcome:  string(res.Revenue.Outcome),
		ExpenseOutcome:  string(res.Expense.Outcome),
	}
	return s.exporter.SaveExport(ctx, meta, res.Payload)
}

// GetExport loads a stored export by ID.
func (s *Service) GetExport(ctx context.Context, id string) (*storage.ExportRecord, error) {
	if s.exporter == nil {
		return nil, ErrExportDisabled
	}
	return s.exporter.GetExport(ctx, id)
}

// resolve returns the requested snapshot, refreshing once when the store
// is still empty.
func (s *Service) resolve(ctx context.Context, version int64) (*snapshot.Snapshot, error) {
	if version > 0 {
		return s.store.Get(ctx, version)
	}

	snap, err := s.store.Latest(ctx)
	if !errors.Is(err, snapshot.ErrNoSnapshot) {
		return snap, err
	}
	if s.refresher == nil {
		return nil, ErrNoData
	}

	log.Info("no snapshot stored, refreshing on first use")
	if _, err := s.refresher.Refresh(ctx); err != nil && !errors.Is(err, snapshot.ErrRefreshInProgress) {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	snap, err = s.store.Latest(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return nil, ErrNoData
	}
	return snap, err
}

func (s *Service) aggregate(snap *snapshot.Snapshot, q ChartQuery) (forecast.AggregatedSeries, forecast.AggregatedSeries) {
	period := q.Period
	if period == "" {
		period = forecast.Daily
	}
	revenue := forecast.Aggregate(forecast.FilterRaw(snap.Revenue, q.Range), period)
	expense := forecast.Aggregate(forecast.FilterRaw(snap.Expense, q.Range), period)
	return revenue, expense
}

func (s *Service) validateHorizon(h int) error {
	if h <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", forecast.ErrInvalidHorizon, h)
	}
	if s.config.MaxHorizon > 0 && h > s.config.MaxHorizon {
		return fmt.Errorf("%w: %d exceeds maximum %d", forecast.ErrInvalidHorizon, h, s.config.MaxHorizon)
	}
	return nil
}

func logOutcome(version int64, res forecast.ForecastResult) {
	switch res.Outcome {
	case forecast.OutcomeUnknownModel:
		log.Warn("unknown model type requested", "model", res.Model, "stream", res.Stream, "snapshot", version)
	case forecast.OutcomeDegraded:
		log.Info("forecast degraded", "model", res.Model, "stream", res.Stream, "reason", res.Reason, "snapshot", version)
	case forecast.OutcomeEmpty:
		log.Debug("nothing to forecast", "stream", res.Stream, "snapshot", version)
	}
}
