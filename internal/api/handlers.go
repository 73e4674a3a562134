package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/ignite/cashflow-forecast/internal/financial"
	"github.com/ignite/cashflow-forecast/internal/forecast"
	"github.com/ignite/cashflow-forecast/internal/pkg/httputil"
	"github.com/ignite/cashflow-forecast/internal/snapshot"
	"github.com/ignite/cashflow-forecast/internal/storage"
)

// snapshotHeader carries the version of the snapshot a response was built from.
const snapshotHeader = "X-Snapshot-Version"

// Handlers contains all HTTP handlers
type Handlers struct {
	service *financial.Service
	health  *HealthChecker
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service *financial.Service) *Handlers {
	return &Handlers{service: service}
}

// SetHealthChecker enables the dependency checks on /health.
func (h *Handlers) SetHealthChecker(hc *HealthChecker) {
	h.health = hc
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		h.health.HandleHealth(w, r)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	httputil.JSON(w, status, data)
}

// respondServiceError maps service and domain errors to HTTP statuses.
// Caller mistakes keep their message; everything else is logged and
// replaced with a generic one.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forecast.ErrUnknownPeriod),
		errors.Is(err, forecast.ErrInvalidDate),
		errors.Is(err, forecast.ErrInvalidHorizon):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, snapshot.ErrNotFound):
		httputil.NotFound(w, "snapshot not found")
	case errors.Is(err, storage.ErrExportNotFound):
		httputil.NotFound(w, "export not found")
	case errors.Is(err, snapshot.ErrRefreshInProgress):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, financial.ErrNoData),
		errors.Is(err, financial.ErrExportDisabled),
		errors.Is(err, financial.ErrRefreshDisabled):
		httputil.ServiceUnavailable(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
