package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no document matches the key.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey is returned when an insert collides with an existing
	// primary key or unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDuplicateEmail is the users.email flavour of ErrDuplicateKey.
	ErrDuplicateEmail = fmt.Errorf("%w: email already registered", ErrDuplicateKey)

	// ErrInsufficientQuantity is returned by ReserveEquipment when fewer units
	// are available than requested.
	ErrInsufficientQuantity = errors.New("insufficient equipment quantity")
)
