package nexus

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownPortfolio    = errors.New("unknown portfolio")
	ErrUnknownKind         = errors.New("unknown transaction type")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrDuplicateID         = errors.New("duplicate transaction id")
	ErrNotFound            = errors.New("transaction not found")
)

// InsufficientBalanceError reports a disposal larger than the book holds on
// the disposal date.
type InsufficientBalanceError struct {
	Portfolio PortfolioID
	Requested Quantity
	Available Quantity
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in %q: requested %s, only %s available",
		e.Portfolio.Label(), e.Requested.StringFixed(4), e.Available.StringFixed(4))
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }
