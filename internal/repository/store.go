package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"babymind/internal/models"
)

// ErrDuplicateID is returned when creating a record whose id already exists
var ErrDuplicateID = errors.New("record with this id already exists")

// EntityStore is the per-baby collection of tracked records. Every lookup
// is scoped by baby id; Get returns nil, nil when no record matches.
type EntityStore interface {
	Create(entity *models.Entity) error
	Get(babyID, id uuid.UUID) (*models.Entity, error)
	Update(entity *models.Entity) error
	Delete(babyID, id uuid.UUID) error
	ListByBaby(babyID uuid.UUID) ([]models.Entity, error)
	// ListDueReminders returns uncompleted, un-notified reminders of every
	// baby scheduled at or before the given time
	ListDueReminders(at time.Time) ([]models.Entity, error)
}

// BabyStore holds baby profiles. GetBabyByID returns nil, nil when absent.
type BabyStore interface {
	CreateBaby(baby *models.Baby) error
	GetBabyByID(id uuid.UUID) (*models.Baby, error)
	ListBabies() ([]models.Baby, error)
	UpdateBaby(baby *models.Baby) error
	DeleteBaby(id uuid.UUID) error
}
