package models

import "errors"

var (
	ErrBabyNameRequired  = errors.New("baby name is required")
	ErrBirthDateRequired = errors.New("birth date is required")
	ErrInvalidGender     = errors.New("invalid gender")
	ErrInvalidEntity     = errors.New("invalid entity")
)
