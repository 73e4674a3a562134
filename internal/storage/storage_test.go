package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/cashflow-forecast/internal/config"
	"github.com/ignite/cashflow-forecast/internal/forecast"
)

func newTestStorage(t *testing.T) *Storage {
	cfg := config.StorageConfig{
		Type:      "local",
		LocalPath: t.TempDir(),
	}

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

func samplePayload() forecast.ForecastPayload {
	return forecast.ForecastPayload{
		Revenue: forecast.ForecastSeries{
			Real:      forecast.ChartSeries{Labels: []string{"2024-01-01"}, Data: []float64{10}},
			Predicted: forecast.ChartSeries{Labels: []string{"2024-01-02"}, Data: []float64{10}},
		},
		Metrics: forecast.MetricsPayload{Revenue: &forecast.FitMetrics{R2: 1}},
		Outcome: forecast.OutcomePayload{Revenue: forecast.OutcomeDegraded, Expense: forecast.OutcomeEmpty},
	}
}

type memIndex struct {
	metas map[string]ExportMeta
	err   error
}

func (m *memIndex) RecordExport(_ context.Context, meta ExportMeta) error {
	if m.err != nil {
		return m.err
	}
	m.metas[meta.ID] = meta
	return nil
}

func (m *memIndex) GetExport(_ context.Context, id string) (*ExportMeta, error) {
	meta, ok := m.metas[id]
	if !ok {
		return nil, ErrExportNotFound
	}
	return &meta, nil
}

func TestNew(t *testing.T) {
	s := newTestStorage(t)
	assert.Equal(t, "local", s.Backend())
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestSaveAndGetExport(t *testing.T) {
	s := newTestStorage(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	meta, err := s.SaveExport(ctx, ExportMeta{SnapshotVersion: 3, Model: "linear", Period: "daily", Horizon: 1}, samplePayload())
	require.NoError(t, err)
	require.NotEmpty(t, meta.ID)
	assert.Equal(t, "local", meta.Backend)
	assert.Equal(t, fixed, meta.CreatedAt)

	rec, err := s.GetExport(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, rec.Meta.ID)
	assert.Equal(t, int64(3), rec.Meta.SnapshotVersion)
	assert.Equal(t, []float64{10}, rec.Payload.Revenue.Predicted.Data)
	assert.Equal(t, forecast.OutcomeDegraded, rec.Payload.Outcome.Revenue)
	require.NotNil(t, rec.Payload.Metrics.Revenue)
	assert.Nil(t, rec.Payload.Metrics.Expense)
}

func TestGetExport_NotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetExport(ctx, "8a4f3a6e-2b0e-4c43-9c1d-2f0d5f6a7b80")
	assert.ErrorIs(t, err, ErrExportNotFound)

	_, err = s.GetExport(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrExportNotFound)
}

func TestSaveExport_RecordsIndex(t *testing.T) {
	s := newTestStorage(t)
	idx := &memIndex{metas: map[string]ExportMeta{}}
	s.SetIndex(idx)

	meta, err := s.SaveExport(context.Background(), ExportMeta{Model: "poly2"}, samplePayload())
	require.NoError(t, err)
	assert.Contains(t, idx.metas, meta.ID)
	assert.Equal(t, "poly2", idx.metas[meta.ID].Model)
}

func TestSaveExport_IndexFailure(t *testing.T) {
	s := newTestStorage(t)
	s.SetIndex(&memIndex{metas: map[string]ExportMeta{}, err: errors.New("db down")})

	_, err := s.SaveExport(context.Background(), ExportMeta{}, samplePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	local := &Storage{}
	assert.Equal(t, "exports/abc.json", local.objectKey("abc", at))

	remote := &Storage{aws: &AWSStorage{}, config: config.StorageConfig{S3Prefix: "cf"}}
	assert.Equal(t, "cf/2024/05/06/abc.json", remote.objectKey("abc", at))

	remote.config.S3Prefix = ""
	assert.Equal(t, "forecasts/2024/05/06/abc.json", remote.objectKey("abc", at))
}
