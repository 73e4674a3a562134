package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/cashflow-forecast/internal/config"
	"github.com/ignite/cashflow-forecast/internal/forecast"
	"github.com/ignite/cashflow-forecast/internal/pkg/logger"
)

const exportCategory = "exports"

// ExportMeta describes one persisted forecast payload.
type ExportMeta struct {
	ID              string    `json:"id"`
	Key             string    `json:"key"`
	Backend         string    `json:"backend"`
	SnapshotVersion int64     `json:"snapshot_version"`
	Model           string    `json:"model"`
	Period          string    `json:"period"`
	Horizon         int       `json:"horizon"`
	RevenueOutcome  string    `json:"revenue_outcome"`
	ExpenseOutcome  string    `json:"expense_outcome"`
	CreatedAt       time.Time `json:"created_at"`
}

// ExportRecord is the document written to disk or S3.
type ExportRecord struct {
	Meta    ExportMeta               `json:"meta"`
	Payload forecast.ForecastPayload `json:"payload"`
}

// Index keeps a queryable copy of export metadata, e.g. in Postgres.
type Index interface {
	RecordExport(ctx context.Context, meta ExportMeta) error
	GetExport(ctx context.Context, id string) (*ExportMeta, error)
}

// Storage persists forecast exports to the local filesystem or to AWS.
type Storage struct {
	config config.StorageConfig
	mu     sync.RWMutex

	// AWS storage (optional)
	aws *AWSStorage

	index Index
	now   func() time.Time
}

// New creates a Storage for the configured backend.
func New(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	s := &Storage{config: cfg, now: time.Now}

	switch cfg.Type {
	case "aws":
		awsStorage, err := NewAWSStorage(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing AWS storage: %w", err)
		}
		s.aws = awsStorage
	case "local", "":
		if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Type)
	}

	return s, nil
}

// SetIndex attaches a metadata index. Exports are still readable without one.
func (s *Storage) SetIndex(idx Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
}

// Backend reports "aws" or "local".
func (s *Storage) Backend() string {
	if s.aws != nil {
		return "aws"
	}
	return "local"
}

// SaveExport assigns an ID to meta, writes the payload and records the
// metadata in the index when one is attached.
func (s *Storage) SaveExport(ctx context.Context, meta ExportMeta, payload forecast.ForecastPayload) (*ExportMeta, error) {
	meta.ID = uuid.NewString()
	meta.CreatedAt = s.now().UTC()
	meta.Backend = s.Backend()
	meta.Key = s.objectKey(meta.ID, meta.CreatedAt)

	rec := ExportRecord{Meta: meta, Payload: payload}
	if s.aws != nil {
		if err := s.aws.PutExport(ctx, &rec); err != nil {
			return nil, err
		}
	} else if err := s.saveToFile(exportCategory, meta.ID, rec); err != nil {
		return nil, fmt.Errorf("writing export %s: %w", meta.ID, err)
	}

	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()
	if idx != nil {
		if err := idx.RecordExport(ctx, meta); err != nil {
			return nil, fmt.Errorf("indexing export %s: %w", meta.ID, err)
		}
	}

	logger.Info("forecast exported", "id", meta.ID, "backend", meta.Backend, "key", meta.Key)
	return &meta, nil
}

// GetExport loads a previously saved export.
func (s *Storage) GetExport(ctx context.Context, id string) (*ExportRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrExportNotFound
	}

	if s.aws == nil {
		var rec ExportRecord
		if err := s.loadFromFile(exportCategory, id, &rec); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, ErrExportNotFound
			}
			return nil, fmt.Errorf("reading export %s: %w", id, err)
		}
		return &rec, nil
	}

	meta, err := s.lookupMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	var rec ExportRecord
	if err := s.aws.GetFromS3(ctx, meta.Key, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) lookupMeta(ctx context.Context, id string) (*ExportMeta, error) {
	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()
	if idx != nil {
		return idx.GetExport(ctx, id)
	}
	return s.aws.GetExportMeta(ctx, id)
}

func (s *Storage) objectKey(id string, at time.Time) string {
	if s.aws == nil {
		return filepath.Join(exportCategory, id+".json")
	}
	prefix := s.config.S3Prefix
	if prefix == "" {
		prefix = "forecasts"
	}
	return fmt.Sprintf("%s/%s/%s.json", prefix, at.Format("2006/01/02"), id)
}

// saveToFile saves data to a JSON file
func (s *Storage) saveToFile(category, key string, data interface{}) error {
	dir := filepath.Join(s.config.LocalPath, category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, filepath.Base(key)+".json")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// loadFromFile loads data from a JSON file
func (s *Storage) loadFromFile(category, key string, data interface{}) error {
	path := filepath.Join(s.config.LocalPath, category, filepath.Base(key)+".json")

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(data)
}
