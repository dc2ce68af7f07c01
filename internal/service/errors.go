package service

import "errors"

var (
	ErrBabyNotFound = errors.New("baby not found")
)
