package ledger

import "errors"

var (
	// Conversion errors
	ErrInvalidAmount = errors.New("ledger: amount out of range for conversion")

	// Balance errors
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// Exclusion errors
	ErrAlreadyExcluded = errors.New("ledger: account already excluded from reflection")
	ErrNotExcluded     = errors.New("ledger: account not excluded from reflection")
)
