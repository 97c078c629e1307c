package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientFunds is the purchase rejection for business reasons
	// (not enough balance, loan fully funded, amount below minimum).
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidQuantity rejects non-positive fetch quantities before any
	// network call is made.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrInvalidAmount rejects non-positive purchase amounts before any
	// network call is made.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// InvalidSortError reports a sort key outside the supported set for the
// operation. Valid lists the accepted keys.
type InvalidSortError struct {
	Sort  string
	Valid []string
}

func (e *InvalidSortError) Error() string {
	return fmt.Sprintf("cannot sort by %q; valid sort keys: %s", e.Sort, strings.Join(e.Valid, ", "))
}

// InvalidPeriodicityError reports an unsupported periodicity value.
type InvalidPeriodicityError struct {
	Periodicity string
	Valid       []string
}

func (e *InvalidPeriodicityError) Error() string {
	return fmt.Sprintf("periodicity must be one of the following: %s (got %q)", strings.Join(e.Valid, ", "), e.Periodicity)
}

// InvalidTypeError reports an unsupported loan or transaction type name.
type InvalidTypeError struct {
	Type  string
	Valid []string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("type must be one of the following: %s (got %q)", strings.Join(e.Valid, ", "), e.Type)
}
