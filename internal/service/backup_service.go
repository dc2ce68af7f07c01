package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"babymind/internal/models"
	"babymind/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete backup structure
type BackupData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Babies     []models.Baby   `json:"babies"`
	Entities   []models.Entity `json:"entities"`
}

// ImportStats counts what an import did
type ImportStats struct {
	Babies   int
	Entities int
	Skipped  int
}

// BackupService handles backup and restore of babies and their entities
type BackupService struct {
	babies   repository.BabyStore
	entities repository.EntityStore
	logger   *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(babies repository.BabyStore, entities repository.EntityStore, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{babies: babies, entities: entities, logger: logger}
}

// Snapshot collects every baby and entity
func (s *BackupService) Snapshot(now time.Time) (*BackupData, error) {
	babies, err := s.babies.ListBabies()
	if err != nil {
		return nil, fmt.Errorf("failed to export babies: %w", err)
	}

	backup := &BackupData{
		Version:    BackupVersion,
		ExportedAt: now,
		Babies:     babies,
		Entities:   []models.Entity{},
	}
	for _, baby := range babies {
		entities, err := s.entities.ListByBaby(baby.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export entities of %s: %w", baby.ID, err)
		}
		backup.Entities = append(backup.Entities, entities...)
	}
	return backup, nil
}

// ExportToWriter writes a JSON backup to w
func (s *BackupService) ExportToWriter(w io.Writer, now time.Time) (*BackupData, error) {
	backup, err := s.Snapshot(now)
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	s.logger.Info("backup exported", zap.Int("babies", len(backup.Babies)), zap.Int("entities", len(backup.Entities)))
	return backup, nil
}

// Export writes a JSON backup to outputPath
func (s *BackupService) Export(outputPath string, now time.Time) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return s.ExportToWriter(file, now)
}

// ImportFromReader merges a JSON backup into the stores. Records whose id
// already exists are skipped.
func (s *BackupService) ImportFromReader(r io.Reader) (ImportStats, error) {
	var stats ImportStats
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return stats, fmt.Errorf("failed to decode backup: %w", err)
	}
	s.logger.Info("importing backup", zap.String("version", backup.Version), zap.Time("exported_at", backup.ExportedAt))

	for i := range backup.Babies {
		baby := &backup.Babies[i]
		existing, err := s.babies.GetBabyByID(baby.ID)
		if err != nil {
			return stats, fmt.Errorf("failed to check baby %s: %w", baby.ID, err)
		}
		if existing != nil {
			stats.Skipped++
			continue
		}
		if err := s.babies.CreateBaby(baby); err != nil {
			return stats, fmt.Errorf("failed to import baby %s: %w", baby.ID, err)
		}
		stats.Babies++
	}

	for i := range backup.Entities {
		e := &backup.Entities[i]
		existing, err := s.entities.Get(e.BabyID, e.ID)
		if err != nil {
			return stats, fmt.Errorf("failed to check entity %s: %w", e.ID, err)
		}
		if existing != nil {
			stats.Skipped++
			continue
		}
		if err := s.entities.Create(e); err != nil {
			if errors.Is(err, repository.ErrDuplicateID) {
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("failed to import entity %s: %w", e.ID, err)
		}
		stats.Entities++
	}

	s.logger.Info("backup imported",
		zap.Int("babies", stats.Babies),
		zap.Int("entities", stats.Entities),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// Import merges the backup file at inputPath
func (s *BackupService) Import(inputPath string) (ImportStats, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// Clear deletes every baby and, through the stores, their entities
func (s *BackupService) Clear() (int, error) {
	babies, err := s.babies.ListBabies()
	if err != nil {
		return 0, fmt.Errorf("failed to list babies: %w", err)
	}
	for _, baby := range babies {
		if err := s.babies.DeleteBaby(baby.ID); err != nil {
			return 0, fmt.Errorf("failed to delete baby %s: %w", baby.ID, err)
		}
	}
	return len(babies), nil
}
