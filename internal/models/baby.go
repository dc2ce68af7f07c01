package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"babymind/internal/validation"
)

// Gender of a baby profile
type Gender string

const (
	GenderGirl        Gender = "girl"
	GenderBoy         Gender = "boy"
	GenderUnspecified Gender = "unspecified"
)

// Baby represents a child profile. It is read-only input to age calculations.
type Baby struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	BirthDate        time.Time `json:"birth_date"`
	Gender           Gender    `json:"gender"`
	BirthWeightGrams int       `json:"birth_weight_grams"`
	BirthHeightCm    float64   `json:"birth_height_cm"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks the fields a caller must supply when creating a baby
func (b *Baby) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrBabyNameRequired
	}
	if err := validation.ValidateName(b.Name); err != nil {
		return err
	}
	if b.BirthDate.IsZero() {
		return ErrBirthDateRequired
	}
	switch b.Gender {
	case GenderGirl, GenderBoy, GenderUnspecified:
	case "":
		b.Gender = GenderUnspecified
	default:
		return ErrInvalidGender
	}
	if err := validation.ValidateBirthWeight(b.BirthWeightGrams); err != nil {
		return err
	}
	return validation.ValidateBirthHeight(b.BirthHeightCm)
}
