package compass

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientHistory the price table is shorter than the parameters need
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrNilRegistry the engine was built without a symbol registry
	ErrNilRegistry = errors.New("registry is required")
)

// InsufficientHistoryError names the row count required and available.
type InsufficientHistoryError struct {
	Required  int
	Available int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("need at least %d days of data, got %d", e.Required, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientHistory) hold.
func (e *InsufficientHistoryError) Is(target error) bool {
	return target == ErrInsufficientHistory
}
