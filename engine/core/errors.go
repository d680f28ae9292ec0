package core

import (
	"errors"
	"fmt"
)

var (
	// ErrContractViolation marks programming errors: GPU-referenced state
	// touched while work that uses it may still be executing.
	ErrContractViolation = errors.New("contract violation")
	ErrUnknown           = errors.New("unknown")
)

// Violation panics with an error wrapping ErrContractViolation.
func Violation(format string, args ...interface{}) {
	err := fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
	LogError("%s", err)
	panic(err)
}
