package domain

import "errors"

var (
	ErrItemNotFound           = errors.New("catalog item not found")
	ErrInsufficientQuantity   = errors.New("insufficient quantity")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidAction          = errors.New("invalid workflow action")
	ErrInvalidResult          = errors.New("invalid verification result")
	ErrMismatchReasonRequired = errors.New("mismatch reason required")
	ErrLockerRequired         = errors.New("locker id required")
	ErrActorRequired          = errors.New("actor required")
	ErrItemNameRequired       = errors.New("item name required")
	ErrItemAlreadyExists      = errors.New("catalog item already exists")
	ErrInvalidID              = errors.New("invalid id")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)
