/*
Package game
File: errors.go
Description:
    Sentinel errors and the typed ConfigurationError.
    Callers match them with errors.Is / errors.As; the API maps them to status codes.
*/

package game

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")

	ErrSlotIndexOutOfRange     = errors.New("upgrade slot index out of range")
	ErrUnknownUpgradeCategory  = errors.New("unknown upgrade category")
	ErrUpgradeCategoryMismatch = errors.New("upgrade does not fit this slot category")
	ErrMintNotEligible         = errors.New("ship is not eligible to mint")
	ErrShipNotFound            = errors.New("ship not found")
	ErrShipExists              = errors.New("ship already in fleet")
)

// ConfigurationError is returned when a ship cannot be constructed.
// No partially built ship is ever returned alongside it.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
