package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"babymind/internal/models"
	"babymind/internal/repository"
)

// BabyService manages baby profiles
type BabyService struct {
	store repository.BabyStore
}

// NewBabyService creates a new baby service
func NewBabyService(store repository.BabyStore) *BabyService {
	return &BabyService{store: store}
}

// Create validates and stores a new baby profile
func (s *BabyService) Create(baby *models.Baby, now time.Time) error {
	if err := baby.Validate(); err != nil {
		return err
	}
	if baby.ID == uuid.Nil {
		baby.ID = uuid.New()
	}
	baby.CreatedAt = now
	baby.UpdatedAt = now

	if err := s.store.CreateBaby(baby); err != nil {
		return fmt.Errorf("failed to create baby: %w", err)
	}
	return nil
}

// Get returns a baby or ErrBabyNotFound
func (s *BabyService) Get(id uuid.UUID) (*models.Baby, error) {
	baby, err := s.store.GetBabyByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get baby: %w", err)
	}
	if baby == nil {
		return nil, ErrBabyNotFound
	}
	return baby, nil
}

// List returns all baby profiles
func (s *BabyService) List() ([]models.Baby, error) {
	babies, err := s.store.ListBabies()
	if err != nil {
		return nil, fmt.Errorf("failed to list babies: %w", err)
	}
	return babies, nil
}

// Delete removes a baby and everything tracked for it
func (s *BabyService) Delete(id uuid.UUID) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.store.DeleteBaby(id); err != nil {
		return fmt.Errorf("failed to delete baby: %w", err)
	}
	return nil
}
