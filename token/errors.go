package token

import "errors"

// Validation errors.
var (
	ErrInvalidConfig   = errors.New("token: invalid genesis config")
	ErrZeroAddress     = errors.New("token: zero address")
	ErrTxLimitExceeded = errors.New("token: transfer amount exceeds the max transaction limit")
)

// Permission errors.
var (
	ErrNotOwner        = errors.New("token: caller is not the owner")
	ErrExcludedAccount = errors.New("token: excluded account cannot redistribute")
)

// Allowance errors.
var (
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrAllowanceBelowZero    = errors.New("token: decreased allowance below zero")
)
