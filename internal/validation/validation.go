// Package validation checks user-supplied profile and configuration values.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Plausible ranges for birth measurements
const (
	MinBirthWeightGrams = 300
	MaxBirthWeightGrams = 7000
	MinBirthHeightCm    = 20
	MaxBirthHeightCm    = 70
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > 100 {
		return ValidationError{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}

// ValidateBirthWeight accepts zero (unknown) or a plausible weight in grams
func ValidateBirthWeight(grams int) error {
	if grams == 0 {
		return nil
	}
	if grams < MinBirthWeightGrams || grams > MaxBirthWeightGrams {
		return ValidationError{
			Field:   "birth_weight_grams",
			Message: fmt.Sprintf("must be between %d and %d", MinBirthWeightGrams, MaxBirthWeightGrams),
		}
	}
	return nil
}

// ValidateBirthHeight accepts zero (unknown) or a plausible length in cm
func ValidateBirthHeight(cm float64) error {
	if cm == 0 {
		return nil
	}
	if cm < MinBirthHeightCm || cm > MaxBirthHeightCm {
		return ValidationError{
			Field:   "birth_height_cm",
			Message: fmt.Sprintf("must be between %d and %d", MinBirthHeightCm, MaxBirthHeightCm),
		}
	}
	return nil
}
