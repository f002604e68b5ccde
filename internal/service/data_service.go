package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/repository"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
)

type dataStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	ExportSnapshot(ctx context.Context) (models.Snapshot, error)
	ImportSnapshot(ctx context.Context, snapshot models.Snapshot) error
	RestoreLastSnapshot(ctx context.Context) error
	BackupInfo(ctx context.Context) (models.BackupInfo, error)
	ClearAll(ctx context.Context) error
	Stats(ctx context.Context) (models.StorageStats, error)
}

type snapshotMetrics interface {
	ObserveSnapshot(kind string, err error)
}

// DataService exposes whole-data-set operations: export, import, restore and clear.
type DataService struct {
	store   dataStore
	metrics snapshotMetrics
	logger  *zap.Logger
}

// NewDataService builds a DataService. metrics may be nil.
func NewDataService(store dataStore, metrics snapshotMetrics, logger *zap.Logger) *DataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataService{store: store, metrics: metrics, logger: logger}
}

// Export returns every collection as a versioned snapshot.
func (s *DataService) Export(ctx context.Context) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		var err error
		snapshot, err = s.store.ExportSnapshot(ctx)
		return err
	})
	s.observe("export", err)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to export data")
	}
	return &snapshot, nil
}

// ImportJSON decodes raw as a snapshot and imports it.
func (s *DataService) ImportJSON(ctx context.Context, raw []byte) (*dto.ImportResult, error) {
	var snapshot models.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.observe("import", err)
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "snapshot is not valid JSON")
	}
	return s.Import(ctx, snapshot)
}

// Import replaces the collections present in snapshot. Absent collections
// are left untouched; nothing is written when the snapshot is invalid.
func (s *DataService) Import(ctx context.Context, snapshot models.Snapshot) (*dto.ImportResult, error) {
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		return s.store.ImportSnapshot(ctx, snapshot)
	})
	s.observe("import", err)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidSnapshot) {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "snapshot requires version and exportDate")
		}
		return nil, appErrors.Storage(err, "failed to import data")
	}

	result := &dto.ImportResult{Replaced: PresentCollections(snapshot.Collections)}
	s.logger.Info("data imported", zap.Strings("collections", result.Replaced), zap.String("export_date", snapshot.ExportDate))
	return result, nil
}

// Restore re-imports the automatic snapshot.
func (s *DataService) Restore(ctx context.Context) error {
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		return s.store.RestoreLastSnapshot(ctx)
	})
	s.observe("restore", err)
	if err != nil {
		if errors.Is(err, repository.ErrNoBackup) {
			return appErrors.Clone(appErrors.ErrNotFound, "no automatic backup available")
		}
		return appErrors.Storage(err, "failed to restore backup")
	}
	s.logger.Info("automatic backup restored")
	return nil
}

// BackupInfo describes the automatic snapshot.
func (s *DataService) BackupInfo(ctx context.Context) (*models.BackupInfo, error) {
	info, err := s.store.BackupInfo(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to read backup info")
	}
	return &info, nil
}

// Clear deletes every collection. The automatic snapshot survives.
func (s *DataService) Clear(ctx context.Context, req dto.ClearDataRequest) error {
	if !req.Confirm {
		return appErrors.Clone(appErrors.ErrValidation, "clearing all data must be confirmed")
	}
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		return s.store.ClearAll(ctx)
	})
	if err != nil {
		return appErrors.Storage(err, "failed to clear data")
	}
	s.logger.Warn("all data cleared")
	return nil
}

// Stats reports storage usage.
func (s *DataService) Stats(ctx context.Context) (*models.StorageStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to measure storage")
	}
	return &stats, nil
}

func (s *DataService) observe(kind string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveSnapshot(kind, err)
	}
}

// PresentCollections names the collections carried by c.
func PresentCollections(c models.Collections) []string {
	names := make([]string, 0, 4)
	if c.Students != nil {
		names = append(names, "students")
	}
	if c.Prizes != nil {
		names = append(names, "prizes")
	}
	if c.Classes != nil {
		names = append(names, "classes")
	}
	if c.LessonPlans != nil {
		names = append(names, "lessonPlans")
	}
	return names
}
