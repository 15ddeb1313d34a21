package service

import "errors"

var (
	// ErrInvalidInput marks a request that violates a precondition or a
	// configured limit.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNonAmortizing marks inputs whose fixed payment cannot retire the
	// balance in float32 arithmetic.
	ErrNonAmortizing = errors.New("loan does not amortize")
)
