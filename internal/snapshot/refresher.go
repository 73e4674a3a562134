package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/cashflow-forecast/internal/forecast"
	"github.com/ignite/cashflow-forecast/internal/ingest"
	"github.com/ignite/cashflow-forecast/internal/pkg/distlock"
	"github.com/ignite/cashflow-forecast/internal/pkg/logger"
)

var log = logger.With("snapshot.Refresher")

// Refresher fetches both streams from a source and stores them as a new
// snapshot, one refresh at a time across every process sharing the lock.
type Refresher struct {
	source   ingest.Source
	store    Store
	lock     distlock.DistLock
	interval time.Duration

	mu          sync.RWMutex
	lastRefresh time.Time
	lastErr     error
	isRunning   bool
	stopChan    chan struct{}
	now         func() time.Time
}

// NewRefresher wires a refresher. A nil lock falls back to an in-process lock.
func NewRefresher(source ingest.Source, store Store, lock distlock.DistLock, interval time.Duration) *Refresher {
	if lock == nil {
		lock = distlock.NewLocalLock()
	}
	return &Refresher{
		source:   source,
		store:    store,
		lock:     lock,
		interval: interval,
		now:      time.Now,
	}
}

// Refresh fetches, normalizes and stores a new snapshot.
func (r *Refresher) Refresh(ctx context.Context) (*Snapshot, error) {
	acquired, err := r.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire refresh lock: %w", err)
	}
	if !acquired {
		return nil, ErrRefreshInProgress
	}
	defer func() {
		if err := r.lock.Release(context.Background()); err != nil {
			log.Warn("release refresh lock failed", "error", err)
		}
	}()
	stopKeepAlive := distlock.KeepAlive(ctx, r.lock, func(err error) {
		log.Warn("extend refresh lock failed", "error", err)
	})
	defer stopKeepAlive()

	start := r.now()
	snap, err := r.fetch(ctx)
	if err == nil {
		snap, err = r.store.Put(ctx, snap)
	}

	r.mu.Lock()
	r.lastErr = err
	if err == nil {
		r.lastRefresh = snap.FetchedAt
	}
	r.mu.Unlock()

	if err != nil {
		log.Error("snapshot refresh failed", "source", r.source.Name(), "error", err)
		return nil, err
	}
	log.Info("snapshot refreshed",
		"version", snap.Version,
		"source", snap.Source,
		"revenue", snap.Revenue.Len(),
		"expense", snap.Expense.Len(),
		"dropped_revenue", snap.Dropped.Revenue,
		"dropped_expense", snap.Dropped.Expense,
		"duration", time.Since(start).String(),
	)
	return snap, nil
}

func (r *Refresher) fetch(ctx context.Context) (*Snapshot, error) {
	recs, err := ingest.FetchAll(ctx, r.source)
	if err != nil {
		return nil, err
	}
	revenue, revReport := forecast.Normalize(forecast.StreamRevenue, recs.Revenue)
	expense, expReport := forecast.Normalize(forecast.StreamExpense, recs.Expense)
	if revReport.Dropped > 0 || expReport.Dropped > 0 {
		log.Warn("malformed records dropped",
			"revenue", revReport.Dropped, "expense", expReport.Dropped)
	}

	return &Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: r.now().UTC(),
		Source:    r.source.Name(),
		Revenue:   revenue,
		Expense:   expense,
		Dropped:   Dropped{Revenue: revReport.Dropped, Expense: expReport.Dropped},
	}, nil
}

// Start refreshes immediately and then on every interval until ctx is
// cancelled or Stop is called. It blocks.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return
	}
	r.isRunning = true
	r.stopChan = make(chan struct{})
	stop := r.stopChan
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
	}()

	log.Info("starting snapshot refresher", "interval", r.interval.String())
	r.refreshQuietly(ctx)
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Info("stopping snapshot refresher")
			return
		case <-stop:
			log.Info("stopping snapshot refresher")
			return
		case <-tick:
			r.refreshQuietly(ctx)
		}
	}
}

// Stop ends a running Start loop.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
}

// IsRunning reports whether the periodic loop is active.
func (r *Refresher) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRunning
}

// LastRefresh returns the time of the last successful refresh and the
// error of the most recent attempt.
func (r *Refresher) LastRefresh() (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRefresh, r.lastErr
}

func (r *Refresher) refreshQuietly(ctx context.Context) {
	if _, err := r.Refresh(ctx); errors.Is(err, ErrRefreshInProgress) {
		log.Debug("refresh skipped, another instance holds the lock")
	}
}
