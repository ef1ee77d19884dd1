package service

import (
	"errors"

	"agriconnect/statemachine"
)

var (
	ErrValidation        = errors.New("validation")
	ErrDuplicateEntity   = errors.New("already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrOutOfStock        = errors.New("insufficient stock")
	ErrNotEligible       = errors.New("order not found or not eligible for review")
	ErrDuplicateReview   = errors.New("order already reviewed")
	ErrInvalidTransition = statemachine.ErrInvalidTransition
)
